package session

import (
	"context"
	"fmt"
	"io"

	"github.com/f3rmion/frostrelay/frost"
	"github.com/f3rmion/frostrelay/group"
	"github.com/f3rmion/frostrelay/round"
)

// Keygen round numbers.
const (
	KeygenRoundCommit uint16 = 1
	KeygenRoundShare  uint16 = 2
)

// KeygenMsg is exchanged during distributed key generation. Round 1
// broadcasts carry Commitments and the proof of knowledge (ProofR, ProofZ),
// round 2 p2p messages carry Share.
type KeygenMsg struct {
	Round       uint16   `json:"round"`
	Execution   []byte   `json:"eid"`
	Commitments [][]byte `json:"commitments,omitempty"`
	ProofR      []byte   `json:"proof_r,omitempty"`
	ProofZ      []byte   `json:"proof_z,omitempty"`
	Share       []byte   `json:"share,omitempty"`
}

// RoundNumber implements round.Message.
func (m KeygenMsg) RoundNumber() uint16 { return m.Round }

// KeygenBuilder configures one party's key generation run.
type KeygenBuilder struct {
	suite     *frost.Ciphersuite
	eid       ExecutionID
	index     uint16
	parties   uint16
	threshold uint16
}

// Keygen prepares key generation for party i of n. The threshold defaults
// to n.
func Keygen(suite *frost.Ciphersuite, eid ExecutionID, i, n uint16) *KeygenBuilder {
	return &KeygenBuilder{
		suite:     suite,
		eid:       eid,
		index:     i,
		parties:   n,
		threshold: n,
	}
}

// SetThreshold sets the number of parties needed to sign.
func (b *KeygenBuilder) SetThreshold(t uint16) *KeygenBuilder {
	b.threshold = t
	return b
}

// Start runs both keygen rounds over d and returns this party's key share.
func (b *KeygenBuilder) Start(ctx context.Context, rng io.Reader, d round.Delivery[KeygenMsg]) (*frost.KeyShare, error) {
	if b.parties == 0 || b.index >= b.parties {
		return nil, fmt.Errorf("party index %d out of range for %d parties", b.index, b.parties)
	}
	if b.threshold < 1 || b.threshold > b.parties {
		return nil, fmt.Errorf("threshold %d out of range for %d parties", b.threshold, b.parties)
	}

	p, err := NewParticipant(b.suite, int(b.threshold), int(b.parties), int(b.index)+1)
	if err != nil {
		return nil, err
	}
	allIDs := make([]int, b.parties)
	for i := range allIDs {
		allIDs[i] = i + 1
	}

	r1, err := p.GenerateRound1(rng, allIDs)
	if err != nil {
		return nil, err
	}

	router := round.NewRouter[KeygenMsg](d.Incoming, b.parties, b.index)
	router.AddRound(KeygenRoundCommit, round.Broadcast)
	router.AddRound(KeygenRoundShare, round.P2P)

	commitments := make([][]byte, len(r1.Broadcast.Commitments))
	for i, c := range r1.Broadcast.Commitments {
		commitments[i] = c.Bytes()
	}
	err = round.SendAll(ctx, d.Outgoing, round.ToAll(KeygenMsg{
		Round:       KeygenRoundCommit,
		Execution:   b.eid[:],
		Commitments: commitments,
		ProofR:      r1.Broadcast.Proof.R.Bytes(),
		ProofZ:      r1.Broadcast.Proof.Z.Bytes(),
	}))
	if err != nil {
		return nil, fmt.Errorf("send commitments: %w", err)
	}

	msgs, err := router.Complete(ctx, KeygenRoundCommit)
	if err != nil {
		return nil, fmt.Errorf("keygen round 1: %w", err)
	}
	broadcasts := make([]*frost.Round1Data, b.parties)
	broadcasts[b.index] = r1.Broadcast
	for _, in := range msgs {
		bc, err := b.decodeCommitments(p.FROST(), in)
		if err != nil {
			return nil, err
		}
		broadcasts[in.Sender] = bc
	}

	var shares []round.Outgoing[KeygenMsg]
	for j := uint16(0); j < b.parties; j++ {
		if j == b.index {
			continue
		}
		shares = append(shares, round.ToParty(j, KeygenMsg{
			Round:     KeygenRoundShare,
			Execution: b.eid[:],
			Share:     r1.PrivateShares[int(j)+1].Share.Bytes(),
		}))
	}
	if err := round.SendAll(ctx, d.Outgoing, shares...); err != nil {
		return nil, fmt.Errorf("send shares: %w", err)
	}

	msgs, err = router.Complete(ctx, KeygenRoundShare)
	if err != nil {
		return nil, fmt.Errorf("keygen round 2: %w", err)
	}
	received := make([]*frost.Round1PrivateData, 0, len(msgs))
	for _, in := range msgs {
		if err := b.eid.check(in.Msg.Execution, in.Sender); err != nil {
			return nil, err
		}
		share, err := b.suite.Group.NewScalar().SetBytes(in.Msg.Share)
		if err != nil || len(in.Msg.Share) == 0 {
			return nil, fmt.Errorf("%w: share from party %d", ErrMalformedMessage, in.Sender)
		}
		received = append(received, &frost.Round1PrivateData{
			FromID: p.FROST().IdentifierFor(in.Sender),
			ToID:   p.FROST().IdentifierFor(b.index),
			Share:  share,
		})
	}

	result, err := p.ProcessRound1(&Round1Input{
		Broadcasts:    broadcasts,
		PrivateShares: received,
	})
	if err != nil {
		return nil, err
	}
	return result.KeyShare, nil
}

func (b *KeygenBuilder) decodeCommitments(f *frost.FROST, in round.Incoming[KeygenMsg]) (*frost.Round1Data, error) {
	if err := b.eid.check(in.Msg.Execution, in.Sender); err != nil {
		return nil, err
	}
	if len(in.Msg.Commitments) != int(b.threshold) {
		return nil, fmt.Errorf("%w: party %d sent %d commitments, want %d",
			ErrMalformedMessage, in.Sender, len(in.Msg.Commitments), b.threshold)
	}
	points := make([]group.Point, len(in.Msg.Commitments))
	for k, raw := range in.Msg.Commitments {
		pt, err := b.suite.Group.NewPoint().SetBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: commitment %d from party %d: %v", ErrMalformedMessage, k, in.Sender, err)
		}
		points[k] = pt
	}
	R, err := b.suite.Group.NewPoint().SetBytes(in.Msg.ProofR)
	if err != nil {
		return nil, fmt.Errorf("%w: proof nonce from party %d: %v", ErrMalformedMessage, in.Sender, err)
	}
	if len(in.Msg.ProofZ) == 0 {
		return nil, fmt.Errorf("%w: proof response from party %d", ErrMalformedMessage, in.Sender)
	}
	z, err := b.suite.Group.NewScalar().SetBytes(in.Msg.ProofZ)
	if err != nil {
		return nil, fmt.Errorf("%w: proof response from party %d: %v", ErrMalformedMessage, in.Sender, err)
	}

	bc := &frost.Round1Data{
		ID:          f.IdentifierFor(in.Sender),
		Commitments: points,
		Proof:       &frost.Proof{R: R, Z: z},
	}
	if err := f.VerifyRound1(bc); err != nil {
		return nil, fmt.Errorf("party %d: %w", in.Sender, err)
	}
	return bc, nil
}

package session

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/f3rmion/frostrelay/frost"
	"github.com/f3rmion/frostrelay/round"
)

// Signing round numbers.
const (
	SigningRoundCommit uint16 = 1
	SigningRoundShare  uint16 = 2
)

// SigningMsg is exchanged during signing. Round 1 broadcasts carry the
// nonce commitments, round 2 broadcasts carry the signature share.
type SigningMsg struct {
	Round     uint16 `json:"round"`
	Execution []byte `json:"eid"`
	Hiding    []byte `json:"hiding,omitempty"`
	Binding   []byte `json:"binding,omitempty"`
	Share     []byte `json:"share,omitempty"`
}

// RoundNumber implements round.Message.
func (m SigningMsg) RoundNumber() uint16 { return m.Round }

// SigningBuilder configures one signer's run.
//
// Signers are addressed by their position in the signer set: party i of the
// run holds the key share with keygen index signers[i].
type SigningBuilder struct {
	suite   *frost.Ciphersuite
	eid     ExecutionID
	index   uint16
	share   *frost.KeyShare
	signers []uint16
	message []byte
}

// Signing prepares signing of message by party i of the signer set.
func Signing(suite *frost.Ciphersuite, eid ExecutionID, i uint16, share *frost.KeyShare, signers []uint16, message []byte) *SigningBuilder {
	msg := make([]byte, len(message))
	copy(msg, message)
	set := make([]uint16, len(signers))
	copy(set, signers)
	return &SigningBuilder{
		suite:   suite,
		eid:     eid,
		index:   i,
		share:   share,
		signers: set,
		message: msg,
	}
}

// SetTaprootTweak folds a BIP-341 tweak into the key share so the resulting
// signature verifies under the Taproot output key. A nil merkleRoot commits
// to key-path spending only.
func (b *SigningBuilder) SetTaprootTweak(merkleRoot []byte) (*SigningBuilder, error) {
	f, err := b.suite.New(b.share.Threshold, b.share.Total)
	if err != nil {
		return nil, err
	}
	tweaked, err := f.TaprootTweak(b.share, merkleRoot)
	if err != nil {
		return nil, err
	}
	out := *b
	out.share = tweaked
	return &out, nil
}

// KeyShare returns the key share the builder signs with.
func (b *SigningBuilder) KeyShare() *frost.KeyShare {
	return b.share
}

func (b *SigningBuilder) validate() error {
	if b.share == nil {
		return fmt.Errorf("%w: no key share", ErrSignerSet)
	}
	if len(b.signers) < b.share.Threshold {
		return fmt.Errorf("%w: %d signers, threshold is %d", ErrSignerSet, len(b.signers), b.share.Threshold)
	}
	if int(b.index) >= len(b.signers) {
		return fmt.Errorf("%w: party index %d out of range for %d signers", ErrSignerSet, b.index, len(b.signers))
	}
	seen := make(map[uint16]bool, len(b.signers))
	for _, s := range b.signers {
		if int(s) >= b.share.Total {
			return fmt.Errorf("%w: signer %d out of range for %d parties", ErrSignerSet, s, b.share.Total)
		}
		if seen[s] {
			return fmt.Errorf("%w: signer %d listed twice", ErrSignerSet, s)
		}
		seen[s] = true
	}
	if b.signers[b.index] != b.share.Index {
		return fmt.Errorf("%w: position %d names signer %d, key share belongs to %d",
			ErrSignerSet, b.index, b.signers[b.index], b.share.Index)
	}
	return nil
}

// Sign runs both signing rounds over d. Every signer verifies all
// signature shares and the aggregate, so all honest signers return the
// same signature.
func (b *SigningBuilder) Sign(ctx context.Context, rng io.Reader, d round.Delivery[SigningMsg]) (*frost.Signature, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	p, err := NewParticipant(b.suite, b.share.Threshold, b.share.Total, int(b.share.Index)+1)
	if err != nil {
		return nil, err
	}
	p.SetKeyShare(b.share)
	f := p.FROST()
	g := b.suite.Group

	sess, err := p.NewSigningSession(rng, b.message)
	if err != nil {
		return nil, err
	}

	parties := uint16(len(b.signers))
	router := round.NewRouter[SigningMsg](d.Incoming, parties, b.index)
	router.AddRound(SigningRoundCommit, round.Broadcast)
	router.AddRound(SigningRoundShare, round.Broadcast)

	own := sess.Commitment()
	err = round.SendAll(ctx, d.Outgoing, round.ToAll(SigningMsg{
		Round:     SigningRoundCommit,
		Execution: b.eid[:],
		Hiding:    own.HidingPoint.Bytes(),
		Binding:   own.BindingPoint.Bytes(),
	}))
	if err != nil {
		return nil, fmt.Errorf("send commitment: %w", err)
	}

	msgs, err := router.Complete(ctx, SigningRoundCommit)
	if err != nil {
		return nil, fmt.Errorf("signing round 1: %w", err)
	}
	commitments := []*frost.SigningCommitment{own}
	for _, in := range msgs {
		if err := b.eid.check(in.Msg.Execution, in.Sender); err != nil {
			return nil, err
		}
		hiding, err := g.NewPoint().SetBytes(in.Msg.Hiding)
		if err != nil {
			return nil, fmt.Errorf("%w: hiding commitment from party %d: %v", ErrMalformedMessage, in.Sender, err)
		}
		binding, err := g.NewPoint().SetBytes(in.Msg.Binding)
		if err != nil {
			return nil, fmt.Errorf("%w: binding commitment from party %d: %v", ErrMalformedMessage, in.Sender, err)
		}
		commitments = append(commitments, &frost.SigningCommitment{
			ID:           f.IdentifierFor(b.signers[in.Sender]),
			HidingPoint:  hiding,
			BindingPoint: binding,
		})
	}
	// Binding factors hash the whole list, so every signer needs the
	// same order.
	sort.Slice(commitments, func(i, j int) bool {
		return participantNumber(f, commitments[i].ID) < participantNumber(f, commitments[j].ID)
	})

	myShare, err := sess.Sign(commitments)
	if err != nil {
		return nil, err
	}
	err = round.SendAll(ctx, d.Outgoing, round.ToAll(SigningMsg{
		Round:     SigningRoundShare,
		Execution: b.eid[:],
		Share:     myShare.Z.Bytes(),
	}))
	if err != nil {
		return nil, fmt.Errorf("send signature share: %w", err)
	}

	msgs, err = router.Complete(ctx, SigningRoundShare)
	if err != nil {
		return nil, fmt.Errorf("signing round 2: %w", err)
	}
	shares := []*frost.SignatureShare{myShare}
	for _, in := range msgs {
		if err := b.eid.check(in.Msg.Execution, in.Sender); err != nil {
			return nil, err
		}
		signer := b.signers[in.Sender]
		z, err := g.NewScalar().SetBytes(in.Msg.Share)
		if err != nil || len(in.Msg.Share) == 0 {
			return nil, fmt.Errorf("%w: signature share from party %d", ErrMalformedMessage, in.Sender)
		}
		ss := &frost.SignatureShare{ID: f.IdentifierFor(signer), Z: z}
		if !f.VerifyShare(ss, b.share.VerificationShares[signer], b.share.GroupKey, b.message, commitments) {
			return nil, fmt.Errorf("%w: signature share from signer %d", ErrInvalidShare, signer)
		}
		shares = append(shares, ss)
	}

	sig, err := Aggregate(f, b.message, b.share.GroupKey, commitments, shares)
	if err != nil {
		return nil, err
	}
	if err := Verify(f, b.message, sig, b.share.GroupKey); err != nil {
		return nil, err
	}
	return sig, nil
}

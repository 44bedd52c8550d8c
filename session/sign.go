package session

import (
	"fmt"
	"io"
	"sync"

	"github.com/f3rmion/frostrelay/frost"
	"github.com/f3rmion/frostrelay/group"
)

// SigningSession holds one signer's nonces for a single message. Sign may
// be called once; the nonces are dropped afterwards whatever the outcome.
//
// Create sessions using [Participant.NewSigningSession].
type SigningSession struct {
	mu         sync.Mutex
	frost      *frost.FROST
	keyShare   *frost.KeyShare
	message    []byte
	nonce      *frost.SigningNonce
	commitment *frost.SigningCommitment
	consumed   bool
}

// NewSigningSession draws fresh nonces for signing message with the
// participant's key share.
func (p *Participant) NewSigningSession(rng io.Reader, message []byte) (*SigningSession, error) {
	if p.keyShare == nil {
		return nil, ErrNoKeyShare
	}

	nonce, commitment, err := p.frost.SignRound1(rng, p.keyShare)
	if err != nil {
		return nil, fmt.Errorf("draw nonces: %w", err)
	}

	return &SigningSession{
		frost:      p.frost,
		keyShare:   p.keyShare,
		message:    append([]byte(nil), message...),
		nonce:      nonce,
		commitment: commitment,
	}, nil
}

// Commitment returns the nonce commitment to broadcast to the other signers.
func (s *SigningSession) Commitment() *frost.SigningCommitment {
	return s.commitment
}

// Message returns the message being signed.
func (s *SigningSession) Message() []byte {
	return s.message
}

// Sign produces this signer's share. allCommitments must hold every
// signer's commitment, this one included, in the same order on every
// signer.
func (s *SigningSession) Sign(allCommitments []*frost.SigningCommitment) (*frost.SignatureShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumed {
		return nil, ErrSessionConsumed
	}
	s.consumed = true
	defer func() { s.nonce = nil }()

	seen := make(map[string]bool, len(allCommitments))
	own := false
	for _, c := range allCommitments {
		id := string(c.ID.Bytes())
		if seen[id] {
			return nil, fmt.Errorf("%w: signer %d committed twice", ErrSignerSet, participantNumber(s.frost, c.ID))
		}
		seen[id] = true
		own = own || c.ID.Equal(s.commitment.ID)
	}
	if !own {
		return nil, fmt.Errorf("%w: own commitment missing", ErrSignerSet)
	}

	return s.frost.SignRound2(s.keyShare, s.nonce, s.message, allCommitments)
}

// IsConsumed reports whether Sign has been called.
func (s *SigningSession) IsConsumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumed
}

// Aggregate combines one signature share per commitment into a signature
// under groupKey.
func Aggregate(
	f *frost.FROST,
	message []byte,
	groupKey group.Point,
	commitments []*frost.SigningCommitment,
	shares []*frost.SignatureShare,
) (*frost.Signature, error) {
	switch {
	case len(shares) == 0:
		return nil, fmt.Errorf("%w: no signature shares", ErrSignerSet)
	case len(commitments) == 0:
		return nil, fmt.Errorf("%w: no commitments", ErrSignerSet)
	case len(shares) != len(commitments):
		return nil, fmt.Errorf("%w: %d shares for %d commitments", ErrSignerSet, len(shares), len(commitments))
	case groupKey == nil:
		return nil, fmt.Errorf("no group key")
	}
	return f.Aggregate(message, groupKey, commitments, shares)
}

// Verify checks sig over message against groupKey.
func Verify(f *frost.FROST, message []byte, sig *frost.Signature, groupKey group.Point) error {
	if !f.Verify(message, sig, groupKey) {
		return ErrBadSignature
	}
	return nil
}

// QuickSign signs message with key shares held in one process, running
// both rounds locally. It needs at least threshold shares of one group key.
func QuickSign(
	f *frost.FROST,
	rng io.Reader,
	signerShares []*frost.KeyShare,
	message []byte,
) (*frost.Signature, error) {
	if len(signerShares) < f.Threshold() {
		return nil, fmt.Errorf("%w: %d key shares, threshold is %d", ErrSignerSet, len(signerShares), f.Threshold())
	}
	groupKey := signerShares[0].GroupKey
	for _, ks := range signerShares[1:] {
		if !ks.GroupKey.Equal(groupKey) {
			return nil, fmt.Errorf("%w: key shares belong to different group keys", ErrSignerSet)
		}
	}

	nonces := make([]*frost.SigningNonce, len(signerShares))
	commitments := make([]*frost.SigningCommitment, len(signerShares))
	for i, ks := range signerShares {
		nonce, commitment, err := f.SignRound1(rng, ks)
		if err != nil {
			return nil, err
		}
		nonces[i], commitments[i] = nonce, commitment
	}

	shares := make([]*frost.SignatureShare, len(signerShares))
	for i, ks := range signerShares {
		share, err := f.SignRound2(ks, nonces[i], message, commitments)
		if err != nil {
			return nil, err
		}
		shares[i] = share
	}

	sig, err := f.Aggregate(message, groupKey, commitments, shares)
	if err != nil {
		return nil, err
	}
	if err := Verify(f, message, sig, groupKey); err != nil {
		return nil, err
	}
	return sig, nil
}

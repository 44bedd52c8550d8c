package frost

import (
	"errors"
	"fmt"

	"github.com/f3rmion/frostrelay/group"
)

// MaxParticipants is the largest supported participant count. Participant
// identifiers are 16-bit on the wire.
const MaxParticipants = 1<<16 - 1

// FROST holds the group, hash and threshold parameters.
type FROST struct {
	group     group.Group
	hasher    Hasher
	threshold int // t - minimum signers needed
	total     int // n - total participants
}

// KeyShare represents a participant's share of the secret key.
type KeyShare struct {
	ID        group.Scalar // participant identifier (Index + 1)
	Index     uint16       // 0-based party index at keygen
	Threshold int
	Total     int
	SecretKey group.Scalar // secret key share
	PublicKey group.Point  // public key share
	GroupKey  group.Point  // combined group public key

	// VerificationShares holds every participant's public key share,
	// indexed by party index. Used to check signature shares.
	VerificationShares []group.Point

	// Tweaked is set once a Taproot tweak has been folded into the share.
	Tweaked bool
}

// Signature is a Schnorr signature.
type Signature struct {
	R group.Point
	Z group.Scalar
}

// New creates a FROST instance with the given group and threshold parameters
// using the default [SHA256Hasher].
// threshold is the minimum number of signers required (t).
// total is the total number of participants (n).
func New(g group.Group, threshold, total int) (*FROST, error) {
	return NewWithHasher(g, threshold, total, &SHA256Hasher{})
}

// NewWithHasher creates a FROST instance that derives binding factors and
// challenges with the given hasher.
func NewWithHasher(g group.Group, threshold, total int, hasher Hasher) (*FROST, error) {
	if threshold < 1 {
		return nil, errors.New("threshold must be at least 1")
	}
	if total < threshold {
		return nil, errors.New("total must be >= threshold")
	}
	if total > MaxParticipants {
		return nil, fmt.Errorf("total must be at most %d", MaxParticipants)
	}
	if hasher == nil {
		return nil, errors.New("hasher is required")
	}

	return &FROST{
		group:     g,
		hasher:    hasher,
		threshold: threshold,
		total:     total,
	}, nil
}

// Group returns the group this instance operates in.
func (f *FROST) Group() group.Group { return f.group }

// Threshold returns t.
func (f *FROST) Threshold() int { return f.threshold }

// Total returns n.
func (f *FROST) Total() int { return f.total }

// IdentifierFor returns the scalar identifier of the participant with the
// given 0-based party index.
func (f *FROST) IdentifierFor(index uint16) group.Scalar {
	return f.scalarFromInt(int(index) + 1)
}

func (f *FROST) scalarFromInt(n int) group.Scalar {
	return group.ScalarFromUint16(f.group, uint16(n))
}

func (f *FROST) evalPolynomial(coeffs []group.Scalar, x group.Scalar) group.Scalar {
	result := f.group.NewScalar().Set(coeffs[len(coeffs)-1])
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = f.group.NewScalar().Mul(result, x)
		result = f.group.NewScalar().Add(result, coeffs[i])
	}
	return result
}

// evalCommitments returns sum(commitments[k] * x^k), the public image of the
// committed polynomial at x.
func (f *FROST) evalCommitments(commitments []group.Point, x group.Scalar) group.Point {
	result := f.group.NewPoint()
	xPower := f.scalarFromInt(1)
	for _, commit := range commitments {
		term := f.group.NewPoint().ScalarMult(xPower, commit)
		result = f.group.NewPoint().Add(result, term)
		xPower = f.group.NewScalar().Mul(xPower, x)
	}
	return result
}

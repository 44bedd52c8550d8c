package frost

import (
	"errors"
	"fmt"
	"io"

	"github.com/f3rmion/frostrelay/group"
)

var (
	// ErrInvalidProof is returned when a dealer's proof of knowledge of its
	// constant term does not verify.
	ErrInvalidProof = errors.New("invalid proof of knowledge")
	// ErrInvalidShare is returned when a secret share does not match the
	// dealer's commitments.
	ErrInvalidShare = errors.New("share does not match commitments")
)

// Proof is a Schnorr proof of knowledge of a dealer's constant term a0:
// Z*G == R + c*C0 with c = HDKG(id, C0, R). It binds each commitment to its
// dealer and rules out rogue-key contributions to the group key.
type Proof struct {
	R group.Point
	Z group.Scalar
}

// Round1Data is broadcast by each dealer in round 1.
type Round1Data struct {
	ID          group.Scalar  // dealer identifier
	Commitments []group.Point // C_k = a_k * G for each coefficient
	Proof       *Proof
}

// Round1PrivateData is sent privately to each participant.
type Round1PrivateData struct {
	FromID group.Scalar
	ToID   group.Scalar
	Share  group.Scalar // f_from(to)
}

// Participant holds one dealer's DKG state.
type Participant struct {
	id             group.Scalar
	number         int // 1-based
	coefficients   []group.Scalar
	commitments    []group.Point
	proof          *Proof
	receivedShares map[string]group.Scalar
}

// NewParticipant samples a degree t-1 polynomial for the dealer with the
// given 1-based number and proves knowledge of its constant term.
func (f *FROST) NewParticipant(r io.Reader, id int) (*Participant, error) {
	if id < 1 || id > f.total {
		return nil, fmt.Errorf("participant ID must be between 1 and %d, got %d", f.total, id)
	}

	coeffs := make([]group.Scalar, f.threshold)
	commits := make([]group.Point, f.threshold)
	for i := range coeffs {
		c, err := f.group.RandomScalar(r)
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
		commits[i] = f.group.NewPoint().ScalarMult(c, f.group.Generator())
	}

	ident := f.scalarFromInt(id)
	k, err := f.group.RandomScalar(r)
	if err != nil {
		return nil, err
	}
	R := f.group.NewPoint().ScalarMult(k, f.group.Generator())
	c := f.hasher.HDKG(f.group, ident.Bytes(), commits[0].Bytes(), R.Bytes())
	z := f.group.NewScalar().Mul(coeffs[0], c)
	z = f.group.NewScalar().Add(k, z)

	return &Participant{
		id:             ident,
		number:         id,
		coefficients:   coeffs,
		commitments:    commits,
		proof:          &Proof{R: R, Z: z},
		receivedShares: make(map[string]group.Scalar),
	}, nil
}

// Round1Broadcast returns data to broadcast to all participants.
func (p *Participant) Round1Broadcast() *Round1Data {
	return &Round1Data{
		ID:          p.id,
		Commitments: p.commitments,
		Proof:       p.proof,
	}
}

// VerifyRound1 checks the shape of a dealer's broadcast and its proof of
// knowledge.
func (f *FROST) VerifyRound1(b *Round1Data) error {
	if len(b.Commitments) != f.threshold {
		return fmt.Errorf("broadcast has %d commitments, want %d", len(b.Commitments), f.threshold)
	}
	if b.Proof == nil || b.Proof.R == nil || b.Proof.Z == nil {
		return fmt.Errorf("%w: missing", ErrInvalidProof)
	}
	c := f.hasher.HDKG(f.group, b.ID.Bytes(), b.Commitments[0].Bytes(), b.Proof.R.Bytes())
	lhs := f.group.NewPoint().ScalarMult(b.Proof.Z, f.group.Generator())
	rhs := f.group.NewPoint().ScalarMult(c, b.Commitments[0])
	rhs = f.group.NewPoint().Add(b.Proof.R, rhs)
	if !lhs.Equal(rhs) {
		return ErrInvalidProof
	}
	return nil
}

// Round1PrivateSend returns the share to send privately to recipient.
func (f *FROST) Round1PrivateSend(p *Participant, recipientID int) *Round1PrivateData {
	toID := f.scalarFromInt(recipientID)
	return &Round1PrivateData{
		FromID: p.id,
		ToID:   toID,
		Share:  f.evalPolynomial(p.coefficients, toID),
	}
}

// Round2ReceiveShare checks share*G against the sender's commitments and
// stores the share.
func (f *FROST) Round2ReceiveShare(p *Participant, data *Round1PrivateData, senderCommitments []group.Point) error {
	if len(senderCommitments) != f.threshold {
		return fmt.Errorf("sender committed to %d coefficients, want %d", len(senderCommitments), f.threshold)
	}
	if !data.ToID.Equal(p.id) {
		return errors.New("share is addressed to another participant")
	}

	lhs := f.group.NewPoint().ScalarMult(data.Share, f.group.Generator())
	if !lhs.Equal(f.evalCommitments(senderCommitments, data.ToID)) {
		return ErrInvalidShare
	}

	p.receivedShares[string(data.FromID.Bytes())] = data.Share
	return nil
}

// Finalize verifies every broadcast and derives the key share. The
// polynomial is erased on success.
func (f *FROST) Finalize(p *Participant, allBroadcasts []*Round1Data) (*KeyShare, error) {
	if len(allBroadcasts) != f.total {
		return nil, fmt.Errorf("have %d broadcasts, want %d", len(allBroadcasts), f.total)
	}
	if len(p.receivedShares) != f.total-1 {
		return nil, fmt.Errorf("have %d shares, want %d", len(p.receivedShares), f.total-1)
	}
	for _, b := range allBroadcasts {
		if err := f.VerifyRound1(b); err != nil {
			return nil, fmt.Errorf("dealer %x: %w", b.ID.Bytes(), err)
		}
	}

	secretKey := f.evalPolynomial(p.coefficients, p.id)
	for _, share := range p.receivedShares {
		secretKey = f.group.NewScalar().Add(secretKey, share)
	}
	publicKey := f.group.NewPoint().ScalarMult(secretKey, f.group.Generator())

	groupKey := f.group.NewPoint()
	for _, b := range allBroadcasts {
		groupKey = f.group.NewPoint().Add(groupKey, b.Commitments[0])
	}
	if groupKey.IsIdentity() {
		return nil, errors.New("group key is the identity")
	}

	// Y_j = sum over dealers of F_dealer(j).
	verificationShares := make([]group.Point, f.total)
	for j := 1; j <= f.total; j++ {
		x := f.scalarFromInt(j)
		y := f.group.NewPoint()
		for _, b := range allBroadcasts {
			y = f.group.NewPoint().Add(y, f.evalCommitments(b.Commitments, x))
		}
		verificationShares[j-1] = y
	}
	if !verificationShares[p.number-1].Equal(publicKey) {
		return nil, ErrInvalidShare
	}

	p.coefficients = nil
	return &KeyShare{
		ID:                 p.id,
		Index:              uint16(p.number - 1),
		Threshold:          f.threshold,
		Total:              f.total,
		SecretKey:          secretKey,
		PublicKey:          publicKey,
		GroupKey:           groupKey,
		VerificationShares: verificationShares,
	}, nil
}

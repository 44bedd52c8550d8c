package frost

import (
	"errors"
	"fmt"
	"io"

	"github.com/f3rmion/frostrelay/group"
)

// SigningNonce holds a participant's nonce pair for signing.
type SigningNonce struct {
	ID group.Scalar
	D  group.Scalar // hiding nonce
	E  group.Scalar // binding nonce
}

// SigningCommitment is broadcast in round 1 of signing.
type SigningCommitment struct {
	ID           group.Scalar
	HidingPoint  group.Point // D * G
	BindingPoint group.Point // E * G
}

// SignatureShare is a participant's share of the signature.
type SignatureShare struct {
	ID group.Scalar
	Z  group.Scalar
}

// SignRound1 generates nonces and commitment for signing. Nonces are hedged:
// each mixes 32 fresh random bytes with the secret share through H3, so a
// weak random source alone does not reveal them.
func (f *FROST) SignRound1(r io.Reader, share *KeyShare) (*SigningNonce, *SigningCommitment, error) {
	d, err := f.nonce(r, share.SecretKey)
	if err != nil {
		return nil, nil, err
	}
	e, err := f.nonce(r, share.SecretKey)
	if err != nil {
		return nil, nil, err
	}

	nonce := &SigningNonce{
		ID: share.ID,
		D:  d,
		E:  e,
	}

	commitment := &SigningCommitment{
		ID:           share.ID,
		HidingPoint:  f.group.NewPoint().ScalarMult(d, f.group.Generator()),
		BindingPoint: f.group.NewPoint().ScalarMult(e, f.group.Generator()),
	}

	return nonce, commitment, nil
}

func (f *FROST) nonce(r io.Reader, secret group.Scalar) (group.Scalar, error) {
	var random [32]byte
	if _, err := io.ReadFull(r, random[:]); err != nil {
		return nil, fmt.Errorf("read nonce randomness: %w", err)
	}
	k := f.hasher.H3(f.group, random[:], secret.Bytes())
	if k.IsZero() {
		return nil, errors.New("derived zero nonce")
	}
	return k, nil
}

// SignRound2 generates a signature share.
//
// In groups with x-only encodings the share is produced for the even-y
// representatives of both the group commitment R and the group key, so the
// aggregate is a valid BIP-340 signature.
func (f *FROST) SignRound2(
	share *KeyShare,
	nonce *SigningNonce,
	message []byte,
	commitments []*SigningCommitment,
) (*SignatureShare, error) {
	R, bindingFactors := f.groupCommitment(share.GroupKey, message, commitments)

	// Compute challenge c = H(R, GroupKey, message)
	c := f.challenge(R, share.GroupKey, message)

	// Compute Lagrange coefficient for this signer
	lambda := f.lagrangeCoefficient(share.ID, commitments)

	// Compute signature share: z_i = d + rho * e + lambda * s * c
	myRho := bindingFactors[string(share.ID.Bytes())]

	z := f.group.NewScalar().Mul(myRho, nonce.E) // rho * e
	z = f.group.NewScalar().Add(nonce.D, z)      // d + rho * e
	if f.oddY(R) {
		z = f.group.NewScalar().Negate(z)
	}
	lambdaS := f.group.NewScalar().Mul(lambda, share.SecretKey) // lambda * s
	lambdaSC := f.group.NewScalar().Mul(lambdaS, c)             // lambda * s * c
	if f.oddY(share.GroupKey) {
		lambdaSC = f.group.NewScalar().Negate(lambdaSC)
	}
	z = f.group.NewScalar().Add(z, lambdaSC) // d + rho*e + lambda*s*c

	return &SignatureShare{
		ID: share.ID,
		Z:  z,
	}, nil
}

// VerifyShare checks a single signature share against the signer's
// verification share:
//
//	z_i*G == (D_i + rho_i*E_i) + lambda_i*c*Y_i
//
// with the same parity adjustments as [FROST.SignRound2].
func (f *FROST) VerifyShare(
	sigShare *SignatureShare,
	verificationShare group.Point,
	groupKey group.Point,
	message []byte,
	commitments []*SigningCommitment,
) bool {
	var own *SigningCommitment
	for _, comm := range commitments {
		if comm.ID.Equal(sigShare.ID) {
			own = comm
			break
		}
	}
	if own == nil {
		return false
	}

	R, bindingFactors := f.groupCommitment(groupKey, message, commitments)
	c := f.challenge(R, groupKey, message)
	lambda := f.lagrangeCoefficient(sigShare.ID, commitments)
	rho := bindingFactors[string(sigShare.ID.Bytes())]

	nonceCommit := f.group.NewPoint().Add(own.HidingPoint, f.group.NewPoint().ScalarMult(rho, own.BindingPoint))
	if f.oddY(R) {
		nonceCommit = f.group.NewPoint().Negate(nonceCommit)
	}
	lambdaC := f.group.NewScalar().Mul(lambda, c)
	keyTerm := f.group.NewPoint().ScalarMult(lambdaC, verificationShare)
	if f.oddY(groupKey) {
		keyTerm = f.group.NewPoint().Negate(keyTerm)
	}

	lhs := f.group.NewPoint().ScalarMult(sigShare.Z, f.group.Generator())
	rhs := f.group.NewPoint().Add(nonceCommit, keyTerm)
	return lhs.Equal(rhs)
}

// Aggregate combines signature shares into a final signature under
// groupKey.
func (f *FROST) Aggregate(
	message []byte,
	groupKey group.Point,
	commitments []*SigningCommitment,
	shares []*SignatureShare,
) (*Signature, error) {
	// Recompute R
	R, _ := f.groupCommitment(groupKey, message, commitments)
	if f.oddY(R) {
		R = f.group.NewPoint().Negate(R)
	}

	// Sum all z shares
	z := f.group.NewScalar()
	for _, s := range shares {
		z = f.group.NewScalar().Add(z, s.Z)
	}

	return &Signature{R: R, Z: z}, nil
}

// Verify checks a FROST signature.
func (f *FROST) Verify(message []byte, sig *Signature, groupKey group.Point) bool {
	// c = H(R, GroupKey, message)
	c := f.challenge(sig.R, groupKey, message)

	Y := groupKey
	if f.oddY(Y) {
		Y = f.group.NewPoint().Negate(Y)
	}

	// Check: z*G == R + c*Y
	lhs := f.group.NewPoint().ScalarMult(sig.Z, f.group.Generator())

	cY := f.group.NewPoint().ScalarMult(c, Y)
	rhs := f.group.NewPoint().Add(sig.R, cY)

	return lhs.Equal(rhs)
}

// groupCommitment computes R = sum(D_i + rho_i * E_i) and the binding
// factors it was built from.
func (f *FROST) groupCommitment(groupKey group.Point, message []byte, commitments []*SigningCommitment) (group.Point, map[string]group.Scalar) {
	bindingFactors := f.computeBindingFactors(groupKey, message, commitments)
	R := f.group.NewPoint()
	for _, comm := range commitments {
		rho := bindingFactors[string(comm.ID.Bytes())]
		rhoE := f.group.NewPoint().ScalarMult(rho, comm.BindingPoint)
		term := f.group.NewPoint().Add(comm.HidingPoint, rhoE)
		R = f.group.NewPoint().Add(R, term)
	}
	return R, bindingFactors
}

func (f *FROST) challenge(R, groupKey group.Point, message []byte) group.Scalar {
	return f.hasher.H2(f.group, R.Bytes(), groupKey.Bytes(), message)
}

// oddY reports whether p has an odd y coordinate in a group with x-only
// encodings. It is always false for other groups.
func (f *FROST) oddY(p group.Point) bool {
	xo, ok := f.group.(group.XOnly)
	return ok && !xo.HasEvenY(p)
}

// computeBindingFactors derives rho_i = H1(Y || H4(msg) || H5(commitments), id_i)
// for every signer.
func (f *FROST) computeBindingFactors(groupKey group.Point, message []byte, commitments []*SigningCommitment) map[string]group.Scalar {
	var commBytes []byte
	for _, c := range commitments {
		commBytes = append(commBytes, c.ID.Bytes()...)
		commBytes = append(commBytes, c.HidingPoint.Bytes()...)
		commBytes = append(commBytes, c.BindingPoint.Bytes()...)
	}

	prefix := append([]byte{}, groupKey.Bytes()...)
	prefix = append(prefix, f.hasher.H4(f.group, message)...)
	prefix = append(prefix, f.hasher.H5(f.group, commBytes)...)

	factors := make(map[string]group.Scalar, len(commitments))
	for _, c := range commitments {
		factors[string(c.ID.Bytes())] = f.hasher.H1(f.group, prefix, c.ID.Bytes())
	}
	return factors
}

func (f *FROST) lagrangeCoefficient(id group.Scalar, commitments []*SigningCommitment) group.Scalar {
	num := f.scalarFromInt(1)
	den := f.scalarFromInt(1)

	for _, c := range commitments {
		if c.ID.Equal(id) {
			continue
		}
		// num *= c.ID
		num = f.group.NewScalar().Mul(num, c.ID)
		// den *= (c.ID - id)
		diff := f.group.NewScalar().Sub(c.ID, id)
		den = f.group.NewScalar().Mul(den, diff)
	}

	denInv, _ := f.group.NewScalar().Invert(den)
	return f.group.NewScalar().Mul(num, denInv)
}

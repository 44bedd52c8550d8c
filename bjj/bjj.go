package bjj

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"golang.org/x/crypto/blake2b"

	"github.com/f3rmion/frostrelay/group"
)

const (
	// ScalarSize is the length of a big-endian scalar encoding.
	ScalarSize = 32
	// PointSize is the length of a compressed point encoding.
	PointSize = 32

	// wideSize is the number of random bytes reduced into one scalar.
	wideSize = 48
)

var (
	// ErrInvalidPoint is returned for encodings that are not points of the
	// prime-order subgroup.
	ErrInvalidPoint = errors.New("bjj: invalid point encoding")
	// ErrZeroInverse is returned when inverting the zero scalar.
	ErrZeroInverse = errors.New("bjj: zero has no inverse")
)

// subgroupOrder is the order of the prime-order subgroup, not the BN254
// scalar field.
var subgroupOrder *big.Int

func init() {
	curve := twistededwards.GetEdwardsCurve()
	subgroupOrder = new(big.Int).Set(&curve.Order)
}

// Scalar is an integer modulo the Baby Jubjub subgroup order. Every
// operation leaves it reduced.
type Scalar struct {
	inner big.Int
}

func scalarOf(s group.Scalar) *big.Int { return &s.(*Scalar).inner }

func (s *Scalar) reduced() *Scalar {
	s.inner.Mod(&s.inner, subgroupOrder)
	return s
}

// Add sets s to a + b and returns s.
func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.inner.Add(scalarOf(a), scalarOf(b))
	return s.reduced()
}

// Sub sets s to a - b and returns s.
func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	s.inner.Sub(scalarOf(a), scalarOf(b))
	return s.reduced()
}

// Mul sets s to a * b and returns s.
func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.inner.Mul(scalarOf(a), scalarOf(b))
	return s.reduced()
}

// Negate sets s to -a and returns s.
func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.inner.Neg(scalarOf(a))
	return s.reduced()
}

// Invert sets s to 1/a and returns s, or ErrZeroInverse.
func (s *Scalar) Invert(a group.Scalar) (group.Scalar, error) {
	x := scalarOf(a)
	if x.Sign() == 0 {
		return nil, ErrZeroInverse
	}
	s.inner.ModInverse(x, subgroupOrder)
	return s, nil
}

// Set copies a into s and returns s.
func (s *Scalar) Set(a group.Scalar) group.Scalar {
	s.inner.Set(scalarOf(a))
	return s
}

// Bytes returns the ScalarSize-byte big-endian encoding.
func (s *Scalar) Bytes() []byte {
	return s.inner.FillBytes(make([]byte, ScalarSize))
}

// SetBytes reads a big-endian integer of any length and reduces it. Wide
// inputs such as 64-byte digests are accepted.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	s.inner.SetBytes(data)
	return s.reduced(), nil
}

// Equal reports whether s == b.
func (s *Scalar) Equal(b group.Scalar) bool {
	return s.inner.Cmp(scalarOf(b)) == 0
}

// IsZero reports whether s == 0.
func (s *Scalar) IsZero() bool {
	return s.inner.Sign() == 0
}

// Point is an affine point on Baby Jubjub, wrapping gnark-crypto's
// twisted Edwards PointAffine. The identity is (0, 1).
type Point struct {
	inner twistededwards.PointAffine
}

func pointOf(p group.Point) *twistededwards.PointAffine { return &p.(*Point).inner }

// Add sets p to a + b and returns p.
func (p *Point) Add(a, b group.Point) group.Point {
	p.inner.Add(pointOf(a), pointOf(b))
	return p
}

// Sub sets p to a - b and returns p.
func (p *Point) Sub(a, b group.Point) group.Point {
	var neg twistededwards.PointAffine
	neg.Neg(pointOf(b))
	p.inner.Add(pointOf(a), &neg)
	return p
}

// Negate sets p to -a and returns p.
func (p *Point) Negate(a group.Point) group.Point {
	p.inner.Neg(pointOf(a))
	return p
}

// ScalarMult sets p to s * q and returns p.
func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	p.inner.ScalarMultiplication(pointOf(q), scalarOf(s))
	return p
}

// Set copies a into p and returns p.
func (p *Point) Set(a group.Point) group.Point {
	p.inner.Set(pointOf(a))
	return p
}

// Bytes returns the PointSize-byte compressed encoding.
func (p *Point) Bytes() []byte {
	b := p.inner.Bytes()
	return b[:]
}

// SetBytes decodes a compressed point. Points off the curve or outside the
// prime-order subgroup are rejected with ErrInvalidPoint; p is left
// unchanged on error.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if len(data) != PointSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidPoint, len(data), PointSize)
	}
	var q twistededwards.PointAffine
	if err := q.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	if !q.IsOnCurve() {
		return nil, fmt.Errorf("%w: not on curve", ErrInvalidPoint)
	}
	var check twistededwards.PointAffine
	check.ScalarMultiplication(&q, subgroupOrder)
	if !check.IsZero() {
		return nil, fmt.Errorf("%w: not in prime-order subgroup", ErrInvalidPoint)
	}
	p.inner.Set(&q)
	return p, nil
}

// Equal reports whether p == b.
func (p *Point) Equal(b group.Point) bool {
	return p.inner.Equal(pointOf(b))
}

// IsIdentity reports whether p is (0, 1).
func (p *Point) IsIdentity() bool {
	return p.inner.IsZero()
}

// BJJ implements [group.Group] for Baby Jubjub. Use &BJJ{} or new(BJJ).
type BJJ struct{}

// NewScalar returns zero.
func (g *BJJ) NewScalar() group.Scalar {
	return new(Scalar)
}

// NewPoint returns the identity.
func (g *BJJ) NewPoint() group.Point {
	var p Point
	p.inner.X.SetZero()
	p.inner.Y.SetOne()
	return &p
}

// Generator returns the standard base point.
func (g *BJJ) Generator() group.Point {
	return &Point{inner: twistededwards.GetEdwardsCurve().Base}
}

// RandomScalar reads wideSize bytes from r and reduces them, which keeps
// the modular bias negligible. Zero is redrawn.
func (g *BJJ) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [wideSize]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("bjj: read randomness: %w", err)
		}
		s := new(Scalar)
		s.inner.SetBytes(buf[:])
		if !s.reduced().IsZero() {
			return s, nil
		}
	}
}

// HashToScalar reduces the Blake2b-512 digest of the concatenated data.
func (g *BJJ) HashToScalar(data ...[]byte) (group.Scalar, error) {
	h, err := blake2b.New512(nil)
	if err != nil {
		return nil, err
	}
	for _, d := range data {
		h.Write(d)
	}
	return new(Scalar).SetBytes(h.Sum(nil))
}

// Order returns the subgroup order, big-endian.
func (g *BJJ) Order() []byte {
	return subgroupOrder.Bytes()
}

package secp256k1

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/f3rmion/frostrelay/group"
)

const (
	// ScalarSize is the length of a big-endian scalar encoding.
	ScalarSize = 32
	// CompressedSize is the length of a SEC1 compressed point encoding.
	CompressedSize = 33
	// XOnlySize is the length of a BIP-340 x-only point encoding.
	XOnlySize = 32
)

// Scalar is an integer modulo the secp256k1 group order.
// It implements [group.Scalar] on top of btcec's constant-time ModNScalar.
type Scalar struct {
	inner btcec.ModNScalar
}

// Add sets s to a + b (mod N) and returns s.
func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.inner.Add2(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

// Sub sets s to a - b (mod N) and returns s.
func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	var neg btcec.ModNScalar
	neg.NegateVal(&b.(*Scalar).inner)
	s.inner.Add2(&a.(*Scalar).inner, &neg)
	return s
}

// Mul sets s to a * b (mod N) and returns s.
func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.inner.Mul2(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

// Negate sets s to -a (mod N) and returns s.
func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.inner.NegateVal(&a.(*Scalar).inner)
	return s
}

// Invert sets s to a^(-1) (mod N) and returns s.
// Returns an error if a is zero.
func (s *Scalar) Invert(a group.Scalar) (group.Scalar, error) {
	aScalar := a.(*Scalar)
	if aScalar.inner.IsZero() {
		return nil, errors.New("cannot invert zero scalar")
	}
	s.inner.InverseValNonConst(&aScalar.inner)
	return s, nil
}

// Set copies a into s and returns s.
func (s *Scalar) Set(a group.Scalar) group.Scalar {
	s.inner.Set(&a.(*Scalar).inner)
	return s
}

// Bytes returns the 32-byte big-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	b := s.inner.Bytes()
	return b[:]
}

// SetBytes sets s from a big-endian byte slice of at most 32 bytes.
// The value is reduced modulo the group order.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	if len(data) > ScalarSize {
		return nil, fmt.Errorf("scalar encoding is %d bytes, want at most %d", len(data), ScalarSize)
	}
	s.inner.SetByteSlice(data)
	return s, nil
}

// Equal reports whether s and b are the same scalar.
func (s *Scalar) Equal(b group.Scalar) bool {
	return s.inner.Equals(&b.(*Scalar).inner)
}

// IsZero reports whether s is zero.
func (s *Scalar) IsZero() bool {
	return s.inner.IsZero()
}

// Point is a secp256k1 curve point in Jacobian coordinates.
// The zero value is the point at infinity.
type Point struct {
	inner btcec.JacobianPoint
}

// Add sets p to a + b and returns p.
func (p *Point) Add(a, b group.Point) group.Point {
	var r btcec.JacobianPoint
	btcec.AddNonConst(&a.(*Point).inner, &b.(*Point).inner, &r)
	p.inner.Set(&r)
	return p
}

// Sub sets p to a - b and returns p.
func (p *Point) Sub(a, b group.Point) group.Point {
	var negB Point
	negB.Negate(b)
	return p.Add(a, &negB)
}

// Negate sets p to -a and returns p.
func (p *Point) Negate(a group.Point) group.Point {
	aPoint := a.(*Point)
	p.inner.Set(&aPoint.inner)
	if p.IsIdentity() {
		return p
	}
	p.inner.ToAffine()
	p.inner.Y.Negate(1).Normalize()
	return p
}

// ScalarMult sets p to s * q and returns p.
func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	var r btcec.JacobianPoint
	btcec.ScalarMultNonConst(&s.(*Scalar).inner, &q.(*Point).inner, &r)
	p.inner.Set(&r)
	return p
}

// Set copies a into p and returns p.
func (p *Point) Set(a group.Point) group.Point {
	p.inner.Set(&a.(*Point).inner)
	return p
}

// Bytes returns the 33-byte SEC1 compressed encoding of p.
// The point at infinity encodes as 33 zero bytes.
func (p *Point) Bytes() []byte {
	out := make([]byte, CompressedSize)
	if p.IsIdentity() {
		return out
	}
	var affine btcec.JacobianPoint
	affine.Set(&p.inner)
	affine.ToAffine()

	out[0] = 0x02
	if affine.Y.IsOdd() {
		out[0] = 0x03
	}
	x := affine.X.Bytes()
	copy(out[1:], x[:])
	return out
}

// SetBytes sets p from a SEC1 encoding (compressed or uncompressed).
// 33 zero bytes decode to the point at infinity.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if len(data) == CompressedSize && isZero(data) {
		p.inner = btcec.JacobianPoint{}
		return p, nil
	}
	pub, err := btcec.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("invalid secp256k1 point: %w", err)
	}
	pub.AsJacobian(&p.inner)
	return p, nil
}

// Equal reports whether p and b are the same point.
func (p *Point) Equal(b group.Point) bool {
	bPoint := b.(*Point)
	if p.IsIdentity() || bPoint.IsIdentity() {
		return p.IsIdentity() && bPoint.IsIdentity()
	}
	var x, y btcec.JacobianPoint
	x.Set(&p.inner)
	x.ToAffine()
	y.Set(&bPoint.inner)
	y.ToAffine()
	return x.X.Equals(&y.X) && x.Y.Equals(&y.Y)
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	x, y, z := p.inner.X, p.inner.Y, p.inner.Z
	x.Normalize()
	y.Normalize()
	z.Normalize()
	return (x.IsZero() && y.IsZero()) || z.IsZero()
}

// Group implements [group.Group] and [group.XOnly] for secp256k1.
type Group struct{}

// New returns the secp256k1 group.
func New() *Group {
	return &Group{}
}

// NewScalar returns a new zero scalar.
func (g *Group) NewScalar() group.Scalar {
	return &Scalar{}
}

// NewPoint returns a new point at infinity.
func (g *Group) NewPoint() group.Point {
	return &Point{}
}

// Generator returns the secp256k1 base point G.
func (g *Group) Generator() group.Point {
	var one btcec.ModNScalar
	one.SetInt(1)
	var p Point
	btcec.ScalarBaseMultNonConst(&one, &p.inner)
	return &p
}

// RandomScalar returns a uniformly random non-zero scalar read from r.
// Candidates at or above the group order are rejected and redrawn.
func (g *Group) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [ScalarSize]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		s := &Scalar{}
		if overflow := s.inner.SetByteSlice(buf[:]); overflow || s.inner.IsZero() {
			continue
		}
		return s, nil
	}
}

// HashToScalar hashes the concatenated data with SHA-256 and reduces the
// digest modulo the group order.
func (g *Group) HashToScalar(data ...[]byte) (group.Scalar, error) {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	s := &Scalar{}
	s.inner.SetByteSlice(h.Sum(nil))
	return s, nil
}

// Order returns the group order N as a big-endian byte slice.
func (g *Group) Order() []byte {
	return btcec.S256().Params().N.Bytes()
}

// XOnlyBytes returns the 32-byte x coordinate of p.
func (g *Group) XOnlyBytes(p group.Point) []byte {
	return p.Bytes()[1:]
}

// HasEvenY reports whether the y coordinate of p is even.
func (g *Group) HasEvenY(p group.Point) bool {
	return p.Bytes()[0] != 0x03
}

// LiftX returns the point with the given x coordinate and an even y
// coordinate, as BIP-340 does for x-only public keys.
func (g *Group) LiftX(xOnly []byte) (group.Point, error) {
	if len(xOnly) != XOnlySize {
		return nil, fmt.Errorf("x-only encoding is %d bytes, want %d", len(xOnly), XOnlySize)
	}
	compressed := make([]byte, CompressedSize)
	compressed[0] = 0x02
	copy(compressed[1:], xOnly)
	return g.NewPoint().SetBytes(compressed)
}

// TaggedHash returns the BIP-340 tagged hash SHA256(SHA256(tag) ||
// SHA256(tag) || msgs...).
func TaggedHash(tag []byte, msgs ...[]byte) []byte {
	h := chainhash.TaggedHash(tag, msgs...)
	return h[:]
}

// ScalarFromHash interprets a 32-byte digest as a scalar. It reports false
// when the digest is not below the group order, which BIP-341 treats as a
// failure rather than reducing.
func ScalarFromHash(digest []byte) (*Scalar, bool) {
	s := &Scalar{}
	if len(digest) != ScalarSize {
		return nil, false
	}
	if overflow := s.inner.SetByteSlice(digest); overflow {
		return nil, false
	}
	return s, true
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

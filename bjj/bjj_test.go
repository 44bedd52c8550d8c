package bjj

import (
	"bytes"
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"

	"github.com/f3rmion/frostrelay/group"
)

func TestScalar(t *testing.T) {
	g := &BJJ{}

	t.Run("AddSub", func(t *testing.T) {
		a, _ := g.RandomScalar(rand.Reader)
		b, _ := g.RandomScalar(rand.Reader)

		sum := g.NewScalar().Add(a, b)
		diff := g.NewScalar().Sub(sum, b)

		if !diff.Equal(a) {
			t.Error("(a+b)-b != a")
		}
	})

	t.Run("MulInvert", func(t *testing.T) {
		a, _ := g.RandomScalar(rand.Reader)
		aInv, err := g.NewScalar().Invert(a)
		if err != nil {
			t.Fatal(err)
		}

		product := g.NewScalar().Mul(a, aInv)

		// a * a^-1 = 1 => product
		// check if product equals one
		// if product = 1, then product * b = b for any b
		b, _ := g.RandomScalar(rand.Reader)
		result := g.NewScalar().Mul(product, b)

		if !result.Equal(b) {
			t.Error("a*a^-1 != 1")
		}
	})

	t.Run("InvertZeroFails", func(t *testing.T) {
		zero := g.NewScalar()
		_, err := g.NewScalar().Invert(zero)
		if err == nil {
			t.Error("expected error inverting zero")
		}
	})

	t.Run("Negate", func(t *testing.T) {
		zero := g.NewScalar()
		a, _ := g.RandomScalar(rand.Reader)
		negA := g.NewScalar().Negate(a)

		result := g.NewScalar().Add(a, negA)

		if !result.Equal(zero) {
			t.Error("negating scalar failed")
		}
	})

	t.Run("BytesRoundtrip", func(t *testing.T) {
		a, _ := g.RandomScalar(rand.Reader)

		bytes := a.Bytes()
		restored, err := g.NewScalar().SetBytes(bytes)
		if err != nil {
			t.Fatal(err)
		}

		if !restored.Equal(a) {
			t.Error("scalar bytes roundtrip failed")
		}
	})

	t.Run("FromUint16", func(t *testing.T) {
		one := group.ScalarFromUint16(g, 1)
		x := group.ScalarFromUint16(g, 0x1234)
		sum := g.NewScalar()
		for i := 0; i < 0x1234; i++ {
			sum = g.NewScalar().Add(sum, one)
		}
		if !sum.Equal(x) {
			t.Error("ScalarFromUint16(0x1234) != 0x1234 * 1")
		}
	})

	t.Run("NewScalarIsZero", func(t *testing.T) {
		zero := g.NewScalar()
		if !zero.IsZero() {
			t.Error("new scalar should be zero")
		}
	})

	t.Run("Equal", func(t *testing.T) {
		// RandomScalar never returns zero, the one value with a == -a.
		a, _ := g.RandomScalar(rand.Reader)
		b := g.NewScalar().Set(a)
		if !a.Equal(b) {
			t.Error("copied scalar should equal original")
		}

		b = g.NewScalar().Negate(a)
		if a.Equal(b) {
			t.Error("a should not equal -a")
		}
	})
}

func TestPoint(t *testing.T) {
	g := &BJJ{}

	t.Run("AddSub", func(t *testing.T) {
		s1, _ := g.RandomScalar(rand.Reader)
		s2, _ := g.RandomScalar(rand.Reader)
		P := g.NewPoint().ScalarMult(s1, g.Generator())
		Q := g.NewPoint().ScalarMult(s2, g.Generator())

		sum := g.NewPoint().Add(P, Q)
		diff := g.NewPoint().Sub(sum, Q)

		if !diff.Equal(P) {
			t.Error("(P+Q)-Q != P")
		}
	})

	t.Run("Negate", func(t *testing.T) {
		s, _ := g.RandomScalar(rand.Reader)
		P := g.NewPoint().ScalarMult(s, g.Generator())
		negP := g.NewPoint().Negate(P)

		result := g.NewPoint().Add(P, negP)

		if !result.IsIdentity() {
			t.Error("P + (-P) != identity")
		}
	})

	t.Run("BytesRoundtrip", func(t *testing.T) {
		s, _ := g.RandomScalar(rand.Reader)
		P := g.NewPoint().ScalarMult(s, g.Generator())

		bytes := P.Bytes()
		restored, err := g.NewPoint().SetBytes(bytes)
		if err != nil {
			t.Fatal(err)
		}

		if !restored.Equal(P) {
			t.Error("point bytes roundtrip failed")
		}
	})

	t.Run("InvalidEncoding", func(t *testing.T) {
		if _, err := g.NewPoint().SetBytes([]byte{1, 2, 3}); err == nil {
			t.Error("expected error for short encoding")
		}
	})

	t.Run("OrderAnnihilates", func(t *testing.T) {
		order, _ := g.NewScalar().SetBytes(g.Order())
		if !order.IsZero() {
			t.Error("order should reduce to zero")
		}
	})

	t.Run("IsIdentity", func(t *testing.T) {
		identity := g.NewPoint()
		if !identity.IsIdentity() {
			t.Error("new point should be identity")
		}

		gen := g.Generator()
		if gen.IsIdentity() {
			t.Error("generator should not be identity")
		}
	})
}

func TestZeroInverse(t *testing.T) {
	g := &BJJ{}
	if _, err := g.NewScalar().Invert(g.NewScalar()); !errors.Is(err, ErrZeroInverse) {
		t.Fatalf("Invert(0) error = %v, want ErrZeroInverse", err)
	}
}

func TestScalarEncodingWidth(t *testing.T) {
	g := &BJJ{}
	one, _ := g.NewScalar().SetBytes([]byte{1})
	b := one.Bytes()
	if len(b) != ScalarSize || b[ScalarSize-1] != 1 {
		t.Fatalf("Bytes() = %x", b)
	}

	wide := bytes.Repeat([]byte{0xff}, 64)
	s, err := g.NewScalar().SetBytes(wide)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Bytes()) != ScalarSize {
		t.Fatalf("wide input produced %d-byte scalar", len(s.Bytes()))
	}
}

func TestPointRejects(t *testing.T) {
	g := &BJJ{}

	t.Run("Length", func(t *testing.T) {
		gen := g.Generator().Bytes()
		if _, err := g.NewPoint().SetBytes(append(gen, 0)); !errors.Is(err, ErrInvalidPoint) {
			t.Fatalf("error = %v, want ErrInvalidPoint", err)
		}
	})

	t.Run("SmallOrder", func(t *testing.T) {
		// (0, -1) is on the curve and has order 2.
		var low twistededwards.PointAffine
		low.Y.SetOne()
		low.Y.Neg(&low.Y)
		enc := low.Bytes()

		p := g.Generator()
		if _, err := p.SetBytes(enc[:]); !errors.Is(err, ErrInvalidPoint) {
			t.Fatalf("error = %v, want ErrInvalidPoint", err)
		}
		if !p.Equal(g.Generator()) {
			t.Error("point changed after failed decode")
		}
	})
}

func TestHashToScalar(t *testing.T) {
	g := &BJJ{}
	a, err := g.HashToScalar([]byte("frost"), []byte("relay"))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := g.HashToScalar([]byte("frostrelay"))
	if !a.Equal(b) {
		t.Error("hash should cover the concatenation")
	}
	c, _ := g.HashToScalar([]byte("frostrelax"))
	if a.Equal(c) {
		t.Error("different inputs hashed to the same scalar")
	}
}

func TestSubgroupOrder(t *testing.T) {
	want, ok := new(big.Int).SetString("2736030358979909402780800718157159386076813972158567259200215660948447373041", 10)
	if !ok {
		t.Fatal("bad constant")
	}
	got := new(big.Int).SetBytes(new(BJJ).Order())
	if got.Cmp(want) != 0 {
		t.Fatalf("order = %s, want %s", got, want)
	}

	// Mutating the returned bytes must not touch the package order.
	b := new(BJJ).Order()
	b[0] ^= 0xff
	if new(big.Int).SetBytes(new(BJJ).Order()).Cmp(want) != 0 {
		t.Fatal("order aliased by caller")
	}
}

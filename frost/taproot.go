package frost

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/f3rmion/frostrelay/group"
	"github.com/f3rmion/frostrelay/secp256k1"
)

const tagTapTweak = "TapTweak"

// ErrTweakUnsupported is returned when a Taproot tweak is requested in a
// group without x-only point encodings.
var ErrTweakUnsupported = errors.New("taproot tweak requires a group with x-only encodings")

// TaprootTweak returns a copy of share adjusted for BIP-341 output keys.
//
// With P the even-y internal key and t = H_TapTweak(x(P) || merkleRoot), the
// output key is Q = P + t*G. Every secret share s_i becomes g_Q*(g_P*s_i + t),
// where g_P and g_Q are -1 when the respective point has odd y. Lagrange
// coefficients sum to one, so the tweaked shares sign for x(Q). A nil
// merkleRoot commits to key-path spending only.
func (f *FROST) TaprootTweak(share *KeyShare, merkleRoot []byte) (*KeyShare, error) {
	if share.Tweaked {
		return nil, errors.New("key share is already tweaked")
	}
	tw, err := f.taprootTweak(share.GroupKey, merkleRoot)
	if err != nil {
		return nil, err
	}
	negP, negQ, t, tG, Q := tw.negP, tw.negQ, tw.t, tw.tG, tw.Q

	tweakScalar := func(s group.Scalar) group.Scalar {
		out := f.group.NewScalar().Set(s)
		if negP {
			out = f.group.NewScalar().Negate(out)
		}
		out = f.group.NewScalar().Add(out, t)
		if negQ {
			out = f.group.NewScalar().Negate(out)
		}
		return out
	}
	tweakPoint := func(p group.Point) group.Point {
		out := f.group.NewPoint().Set(p)
		if negP {
			out = f.group.NewPoint().Negate(out)
		}
		out = f.group.NewPoint().Add(out, tG)
		if negQ {
			out = f.group.NewPoint().Negate(out)
		}
		return out
	}

	verificationShares := make([]group.Point, len(share.VerificationShares))
	for i, vs := range share.VerificationShares {
		verificationShares[i] = tweakPoint(vs)
	}
	groupKey := f.group.NewPoint().Set(Q)
	if negQ {
		groupKey = f.group.NewPoint().Negate(groupKey)
	}

	return &KeyShare{
		ID:                 share.ID,
		Index:              share.Index,
		Threshold:          share.Threshold,
		Total:              share.Total,
		SecretKey:          tweakScalar(share.SecretKey),
		PublicKey:          tweakPoint(share.PublicKey),
		GroupKey:           groupKey,
		VerificationShares: verificationShares,
		Tweaked:            true,
	}, nil
}

// TaprootOutputKey returns the even-y BIP-341 output key committing to
// internal and merkleRoot.
func (f *FROST) TaprootOutputKey(internal group.Point, merkleRoot []byte) (group.Point, error) {
	tw, err := f.taprootTweak(internal, merkleRoot)
	if err != nil {
		return nil, err
	}
	if tw.negQ {
		return f.group.NewPoint().Negate(tw.Q), nil
	}
	return tw.Q, nil
}

type taprootParams struct {
	negP, negQ bool
	t          group.Scalar
	tG, Q      group.Point
}

func (f *FROST) taprootTweak(groupKey group.Point, merkleRoot []byte) (*taprootParams, error) {
	xo, ok := f.group.(group.XOnly)
	if !ok {
		return nil, ErrTweakUnsupported
	}
	if len(merkleRoot) != 0 && len(merkleRoot) != 32 {
		return nil, fmt.Errorf("merkle root is %d bytes, want 32", len(merkleRoot))
	}
	if groupKey == nil || groupKey.IsIdentity() {
		return nil, errors.New("group key is the identity")
	}

	negP := !xo.HasEvenY(groupKey)
	P := f.group.NewPoint().Set(groupKey)
	if negP {
		P = f.group.NewPoint().Negate(P)
	}

	digest := secp256k1.TaggedHash([]byte(tagTapTweak), xo.XOnlyBytes(P), merkleRoot)
	if !belowOrder(digest, f.group.Order()) {
		return nil, errors.New("tweak hash is not below the group order")
	}
	t, err := f.group.NewScalar().SetBytes(digest)
	if err != nil {
		return nil, fmt.Errorf("tweak scalar: %w", err)
	}
	tG := f.group.NewPoint().ScalarMult(t, f.group.Generator())

	Q := f.group.NewPoint().Add(P, tG)
	if Q.IsIdentity() {
		return nil, errors.New("tweaked output key is the identity")
	}
	return &taprootParams{negP: negP, negQ: !xo.HasEvenY(Q), t: t, tG: tG, Q: Q}, nil
}

// belowOrder reports whether the big-endian value v is less than order.
func belowOrder(v, order []byte) bool {
	v = bytes.TrimLeft(v, "\x00")
	order = bytes.TrimLeft(order, "\x00")
	if len(v) != len(order) {
		return len(v) < len(order)
	}
	return bytes.Compare(v, order) < 0
}

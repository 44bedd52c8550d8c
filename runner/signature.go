package runner

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/pkg/errors"
)

// XOnlySize is the length of an x-only public key or nonce point.
const XOnlySize = 32

// NormalizeXOnly converts a point encoding to its 32-byte x-only form. A
// 33-byte encoding loses its leading byte, a 32-byte encoding is returned
// as a copy, and any other length fails with ErrUnexpectedLength.
func NormalizeXOnly(b []byte) ([]byte, error) {
	switch len(b) {
	case XOnlySize + 1:
		return append([]byte(nil), b[1:]...), nil
	case XOnlySize:
		return append([]byte(nil), b...), nil
	default:
		return nil, errors.Wrapf(ErrUnexpectedLength, "point encoding of %d bytes", len(b))
	}
}

// SchnorrSignature is a BIP-340 signature split into its components.
type SchnorrSignature struct {
	// R is the x-only nonce point.
	R []byte `json:"r"`
	// S is the big-endian scalar.
	S []byte `json:"s"`
}

// Bytes returns R || S.
func (s *SchnorrSignature) Bytes() []byte {
	out := make([]byte, 0, len(s.R)+len(s.S))
	out = append(out, s.R...)
	return append(out, s.S...)
}

// Hex returns the hex encoding of Bytes.
func (s *SchnorrSignature) Hex() string {
	return hex.EncodeToString(s.Bytes())
}

// Verify checks the signature over a 32-byte message hash against an
// x-only public key.
func (s *SchnorrSignature) Verify(pubKey, msgHash []byte) error {
	pk, err := schnorr.ParsePubKey(pubKey)
	if err != nil {
		return errors.Wrap(err, "parse public key")
	}
	sig, err := schnorr.ParseSignature(s.Bytes())
	if err != nil {
		return errors.Wrap(err, "parse signature")
	}
	if !sig.Verify(msgHash, pk) {
		return errors.New("signature verification failed")
	}
	return nil
}

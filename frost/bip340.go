package frost

import (
	"github.com/f3rmion/frostrelay/group"
	"github.com/f3rmion/frostrelay/secp256k1"
)

// Tags used by [BIP340Hasher]. The challenge tag is fixed by BIP-340; the
// others only need to be distinct.
const (
	tagChallenge = "BIP0340/challenge"
	tagRho       = "FROST/secp256k1/rho"
	tagNonce     = "FROST/secp256k1/nonce"
	tagMsg       = "FROST/secp256k1/msg"
	tagCom       = "FROST/secp256k1/com"
	tagDKG       = "FROST/secp256k1/dkg"
)

// BIP340Hasher implements Hasher with BIP-340 tagged SHA-256 hashes.
// Its challenge is e = H_tag(x(R) || x(Y) || msg), which makes aggregated
// signatures verifiable by any BIP-340 verifier.
type BIP340Hasher struct{}

// NewBIP340Hasher returns a BIP340Hasher.
func NewBIP340Hasher() *BIP340Hasher {
	return &BIP340Hasher{}
}

func (h *BIP340Hasher) hashToScalar(g group.Group, tag string, data ...[]byte) group.Scalar {
	s := g.NewScalar()
	s.SetBytes(secp256k1.TaggedHash([]byte(tag), data...))
	return s
}

// H1 implements Hasher.H1.
func (h *BIP340Hasher) H1(g group.Group, prefix, signerID []byte) group.Scalar {
	return h.hashToScalar(g, tagRho, prefix, signerID)
}

// H2 implements Hasher.H2. R and Y may be given compressed; only their x
// coordinates enter the hash.
func (h *BIP340Hasher) H2(g group.Group, R, Y, msg []byte) group.Scalar {
	return h.hashToScalar(g, tagChallenge, xOnly(R), xOnly(Y), msg)
}

// H3 implements Hasher.H3.
func (h *BIP340Hasher) H3(g group.Group, random, secret []byte) group.Scalar {
	return h.hashToScalar(g, tagNonce, random, secret)
}

// H4 implements Hasher.H4.
func (h *BIP340Hasher) H4(g group.Group, msg []byte) []byte {
	return secp256k1.TaggedHash([]byte(tagMsg), msg)
}

// H5 implements Hasher.H5.
func (h *BIP340Hasher) H5(g group.Group, encCommitList []byte) []byte {
	return secp256k1.TaggedHash([]byte(tagCom), encCommitList)
}

// HDKG implements Hasher.HDKG.
func (h *BIP340Hasher) HDKG(g group.Group, id, commitment, R []byte) group.Scalar {
	return h.hashToScalar(g, tagDKG, id, commitment, R)
}

func xOnly(b []byte) []byte {
	if len(b) == secp256k1.CompressedSize {
		return b[1:]
	}
	return b
}

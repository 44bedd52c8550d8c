package frost

import (
	"crypto/sha256"
	"hash"
	"slices"

	"github.com/f3rmion/frostrelay/group"
	"golang.org/x/crypto/blake2b"
)

// Hasher supplies the hash functions of a ciphersuite. The roles follow
// RFC 9591: H1 binding factors, H2 challenge, H3 nonces, H4 message digest,
// H5 commitment-list digest.
type Hasher interface {
	// H1 derives a signer's binding factor from the binding prefix
	// (group key, H4(msg), H5(commitments)) and the signer identifier.
	H1(g group.Group, prefix, signerID []byte) group.Scalar

	// H2 computes the Schnorr challenge over R, the group key Y and msg.
	H2(g group.Group, R, Y, msg []byte) group.Scalar

	// H3 derives a nonce from fresh randomness and the signer's secret.
	H3(g group.Group, random, secret []byte) group.Scalar

	// H4 digests the message.
	H4(g group.Group, msg []byte) []byte

	// H5 digests the encoded commitment list.
	H5(g group.Group, encCommitList []byte) []byte

	// HDKG computes the challenge of a DKG proof of knowledge over the
	// dealer identifier, its constant-term commitment and the proof nonce R.
	HDKG(g group.Group, id, commitment, R []byte) group.Scalar
}

// domainHasher prefixes every hash with a context string and a role tag.
type domainHasher struct {
	context      string
	newHash      func() hash.Hash
	littleEndian bool
}

func (h domainHasher) hash(tag string, data ...[]byte) []byte {
	w := h.newHash()
	w.Write([]byte(h.context))
	w.Write([]byte(tag))
	for _, d := range data {
		w.Write(d)
	}
	return w.Sum(nil)
}

func (h domainHasher) scalar(g group.Group, tag string, data ...[]byte) group.Scalar {
	digest := h.hash(tag, data...)
	if h.littleEndian {
		slices.Reverse(digest)
	}
	s := g.NewScalar()
	s.SetBytes(digest)
	return s
}

// SHA256Hasher is the default hasher: SHA-256 under the context string
// "FROST-SHA256-v1".
type SHA256Hasher struct{}

func (SHA256Hasher) d() domainHasher {
	return domainHasher{
		context: "FROST-SHA256-v1",
		newHash: sha256.New,
	}
}

// H1 implements Hasher.
func (h *SHA256Hasher) H1(g group.Group, prefix, signerID []byte) group.Scalar {
	return h.d().scalar(g, "rho", prefix, signerID)
}

// H2 implements Hasher.
func (h *SHA256Hasher) H2(g group.Group, R, Y, msg []byte) group.Scalar {
	return h.d().scalar(g, "chal", R, Y, msg)
}

// H3 implements Hasher.
func (h *SHA256Hasher) H3(g group.Group, random, secret []byte) group.Scalar {
	return h.d().scalar(g, "nonce", random, secret)
}

// H4 implements Hasher.
func (h *SHA256Hasher) H4(g group.Group, msg []byte) []byte {
	return h.d().hash("msg", msg)
}

// H5 implements Hasher.
func (h *SHA256Hasher) H5(g group.Group, encCommitList []byte) []byte {
	return h.d().hash("com", encCommitList)
}

// HDKG implements Hasher.
func (h *SHA256Hasher) HDKG(g group.Group, id, commitment, R []byte) group.Scalar {
	return h.d().scalar(g, "dkg", id, commitment, R)
}

// Blake2bHasher is the Baby Jubjub hasher: Blake2b-512 with the Ledger/iden3
// context string, digests read little-endian before reduction.
type Blake2bHasher struct {
	// Prefix is the context string. NewBlake2bHasher sets
	// "FROST-EDBABYJUJUB-BLAKE512-v1".
	Prefix string
}

// NewBlake2bHasher returns a Blake2bHasher with the Ledger-compatible prefix.
func NewBlake2bHasher() *Blake2bHasher {
	return &Blake2bHasher{Prefix: SuiteBabyJubjub + "-v1"}
}

func (h *Blake2bHasher) d() domainHasher {
	return domainHasher{
		context: h.Prefix,
		newHash: func() hash.Hash {
			w, _ := blake2b.New512(nil)
			return w
		},
		littleEndian: true,
	}
}

// H1 implements Hasher.
func (h *Blake2bHasher) H1(g group.Group, prefix, signerID []byte) group.Scalar {
	return h.d().scalar(g, "rho", prefix, signerID)
}

// H2 implements Hasher.
func (h *Blake2bHasher) H2(g group.Group, R, Y, msg []byte) group.Scalar {
	return h.d().scalar(g, "chal", R, Y, msg)
}

// H3 implements Hasher.
func (h *Blake2bHasher) H3(g group.Group, random, secret []byte) group.Scalar {
	return h.d().scalar(g, "nonce", random, secret)
}

// H4 implements Hasher.
func (h *Blake2bHasher) H4(g group.Group, msg []byte) []byte {
	return h.d().hash("msg", msg)
}

// H5 implements Hasher.
func (h *Blake2bHasher) H5(g group.Group, encCommitList []byte) []byte {
	return h.d().hash("com", encCommitList)
}

// HDKG implements Hasher.
func (h *Blake2bHasher) HDKG(g group.Group, id, commitment, R []byte) group.Scalar {
	return h.d().scalar(g, "dkg", id, commitment, R)
}

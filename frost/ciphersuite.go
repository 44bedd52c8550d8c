package frost

import (
	"github.com/f3rmion/frostrelay/bjj"
	"github.com/f3rmion/frostrelay/group"
	"github.com/f3rmion/frostrelay/secp256k1"
)

// Ciphersuite names.
const (
	SuiteBitcoin    = "FROST-secp256k1-BIP340"
	SuiteBabyJubjub = "FROST-EDBABYJUJUB-BLAKE512"
)

// Ciphersuite pairs a group with the hasher used for binding factors and
// challenges. Key shares are bound to the suite that produced them.
type Ciphersuite struct {
	Name   string
	Group  group.Group
	Hasher Hasher
}

// Bitcoin returns the secp256k1 suite producing BIP-340 signatures.
func Bitcoin() *Ciphersuite {
	return &Ciphersuite{
		Name:   SuiteBitcoin,
		Group:  secp256k1.New(),
		Hasher: NewBIP340Hasher(),
	}
}

// BabyJubjub returns the Baby Jubjub suite with Ledger-compatible Blake2b
// hashing.
func BabyJubjub() *Ciphersuite {
	return &Ciphersuite{
		Name:   SuiteBabyJubjub,
		Group:  &bjj.BJJ{},
		Hasher: NewBlake2bHasher(),
	}
}

// New returns a FROST instance for this suite.
func (cs *Ciphersuite) New(threshold, total int) (*FROST, error) {
	return NewWithHasher(cs.Group, threshold, total, cs.Hasher)
}

// SupportsTaproot reports whether shares of this suite can be tweaked.
func (cs *Ciphersuite) SupportsTaproot() bool {
	_, ok := cs.Group.(group.XOnly)
	return ok
}

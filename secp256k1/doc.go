// Package secp256k1 provides a secp256k1 implementation of the
// [group.Group] interface for use with FROST threshold signatures that
// must verify as Bitcoin BIP-340 Schnorr signatures.
//
// The package wraps the constant-time field and scalar arithmetic from
// btcec (github.com/btcsuite/btcd/btcec/v2). Points serialize in the
// 33-byte SEC1 compressed form; the [Group] additionally implements
// [group.XOnly] so that callers can obtain the 32-byte x-only encoding
// and the y parity that BIP-340 relies on.
//
// # Usage
//
//	g := secp256k1.New()
//	f, err := frost.NewWithHasher(g, threshold, total, frost.NewBIP340Hasher())
//
// # Tagged hashes
//
// [TaggedHash] exposes the BIP-340 tagged hash construction used for the
// signature challenge ("BIP0340/challenge") and the Taproot key tweak
// ("TapTweak").
package secp256k1

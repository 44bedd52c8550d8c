// Package bjj provides a Baby Jubjub elliptic curve implementation of the
// [group.Group] interface for use with FROST threshold signatures.
//
// Baby Jubjub is a twisted Edwards curve defined over the scalar field of
// BN254 (also known as alt_bn128). It is commonly used in zero-knowledge
// proof systems and privacy-preserving applications.
//
// This package wraps the Baby Jubjub implementation from gnark-crypto,
// providing a clean interface that satisfies [group.Group], [group.Scalar],
// and [group.Point].
//
// # Curve Parameters
//
// Baby Jubjub is defined by the equation:
//
//	a*x^2 + y^2 = 1 + d*x^2*y^2
//
// where a = 168700 and d = 168696 over the BN254 scalar field.
//
// The curve has a prime-order subgroup of size:
//
//	2736030358979909402780800718157159386076813972158567259200215660948447373041
//
// # Usage
//
// Create a BJJ group and use it with FROST:
//
//	g := &bjj.BJJ{}
//	f, err := frost.New(g, threshold, total)
//
// or through the ciphersuite, which pairs the curve with Blake2b hashing:
//
//	f, err := frost.BabyJubjub().New(threshold, total)
//
// The BJJ type implements [group.Group] and can be used anywhere a Group
// is required.
//
// # Security
//
// Curve arithmetic comes from gnark-crypto. Scalars are kept reduced modulo
// the subgroup order. The curve has cofactor 8, so [Point.SetBytes] rejects
// any encoding that is not in the prime-order subgroup with
// [ErrInvalidPoint]; DKG commitments and nonce commitments received from
// peers always pass through it.
package bjj

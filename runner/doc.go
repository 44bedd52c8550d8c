// Package runner runs one party's side of FROST key generation or signing
// over a pair of envelope queues and turns the outcome into a result record.
//
// # Runs
//
// [Runner.RunKeygen] drives distributed key generation and returns the
// serialized key share together with the 32-byte x-only group key.
// [Runner.RunSigning] loads a key share, applies the key-path Taproot tweak
// and produces a 64-byte BIP-340 signature that verifies under
// [Runner.OutputKey].
//
// Each run owns its inbound and outbound adapters. The caller owns the
// queues and is responsible for routing envelopes between parties; see the
// memnet package for an in-memory network.
//
// # Failures
//
// A run never returns an error or panics. Every failure is reported in the
// result with a description in Error and the classified error in Err, which
// wraps one of [relay.ErrMalformed], [relay.ErrTransport],
// [ErrUnexpectedLength], [ErrTweak] or [ErrProtocol]. Duration is always set.
//
// # Benchmarking
//
// With benchmarking enabled, RunSigning times six phases with a
// bench.Recorder and attaches the report to the result.
package runner

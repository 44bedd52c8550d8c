// Package round defines the message delivery contract between a
// round-based protocol and its transport.
//
// A protocol receives a [Delivery]: a [Source] of [Incoming] messages and a
// [Sink] for [Outgoing] ones. Each outgoing message is addressed either to
// [AllParties] or to [OneParty]. The transport assigns the sender and a
// per-sender message ID on the receiving side.
//
// [Router] turns the flat incoming stream into completed rounds.
package round

// Package relay carries round-based protocol messages over envelope queues.
//
// An [Outbound] adapter turns each outgoing protocol message into an
// [Envelope] (session id, sender, optional recipient, payload, per-sender
// sequence number) and pushes it into a bounded [Queue] without blocking.
// An [Inbound] adapter pulls envelopes from a party's queue, decodes the
// payload and classifies it as broadcast or p2p by the presence of a
// recipient. Together they form a [round.Delivery].
//
// Payloads are encoded with a [PayloadCodec]; whole envelopes crossing a
// network hop are encoded with a [WireCodec] ([JSONWire] or
// [ProtobufWire]).
//
// Errors wrap [ErrMalformed] or [ErrTransport] so callers can classify
// failures with errors.Is.
package relay

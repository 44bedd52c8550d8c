package relay

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/f3rmion/frostrelay/round"
)

// Outbound publishes protocol messages as envelopes. It implements
// round.Sink.
//
// Every accepted message is enqueued immediately, so Flush and Close have
// nothing to do. A full or closed queue fails the send instead of waiting.
type Outbound[M any] struct {
	dst       Sender
	codec     PayloadCodec[M]
	sessionID string
	sender    uint16
	seq       uint64
	log       zerolog.Logger
}

// NewOutbound returns an adapter publishing envelopes from sender in
// sessionID to dst.
func NewOutbound[M any](dst Sender, codec PayloadCodec[M], sessionID string, sender uint16) *Outbound[M] {
	return &Outbound[M]{
		dst:       dst,
		codec:     codec,
		sessionID: sessionID,
		sender:    sender,
		log:       zerolog.Nop(),
	}
}

// WithLogger sets the logger used for per-envelope trace output.
func (out *Outbound[M]) WithLogger(l zerolog.Logger) *Outbound[M] {
	out.log = l
	return out
}

// Send implements round.Sink.
func (out *Outbound[M]) Send(ctx context.Context, msg round.Outgoing[M]) error {
	out.seq++
	seq := out.seq

	var recipient *uint16
	if i, ok := msg.Recipient.Party(); ok {
		recipient = Recipient(i)
	}

	env, err := Encode(out.codec, msg.Msg, out.sessionID, out.sender, recipient, seq)
	if err != nil {
		return err
	}
	if err := out.dst.TrySend(env); err != nil {
		return errors.Wrapf(err, "send seq %d to %s", seq, msg.Recipient)
	}

	out.log.Trace().
		Stringer("to", msg.Recipient).
		Uint64("seq", seq).
		Int("bytes", len(env.Payload)).
		Msg("envelope sent")
	return nil
}

// Flush implements round.Sink.
func (out *Outbound[M]) Flush(ctx context.Context) error { return nil }

// Close implements round.Sink.
func (out *Outbound[M]) Close() error { return nil }

// Seq returns the sequence number of the last envelope produced.
func (out *Outbound[M]) Seq() uint64 { return out.seq }

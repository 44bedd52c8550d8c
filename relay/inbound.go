package relay

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/f3rmion/frostrelay/round"
)

// Inbound presents a queue of envelopes to a protocol as a round.Source.
//
// Seq is passed through as the message ID; the adapter does not reorder or
// deduplicate. The first decode failure ends the stream: it and every later
// Recv return the same error.
type Inbound[M any] struct {
	src   Receiver
	codec PayloadCodec[M]
	log   zerolog.Logger
	err   error
}

// NewInbound returns an adapter reading envelopes from src.
func NewInbound[M any](src Receiver, codec PayloadCodec[M]) *Inbound[M] {
	return &Inbound[M]{
		src:   src,
		codec: codec,
		log:   zerolog.Nop(),
	}
}

// WithLogger sets the logger used for per-envelope trace output.
func (in *Inbound[M]) WithLogger(l zerolog.Logger) *Inbound[M] {
	in.log = l
	return in
}

// Recv implements round.Source.
func (in *Inbound[M]) Recv(ctx context.Context) (round.Incoming[M], error) {
	if in.err != nil {
		return round.Incoming[M]{}, in.err
	}
	env, err := in.src.Recv(ctx)
	if err == io.EOF {
		return round.Incoming[M]{}, io.EOF
	}
	if err != nil {
		if !errors.Is(err, ErrTransport) {
			err = errors.Wrapf(ErrTransport, "receive: %v", err)
		}
		return round.Incoming[M]{}, err
	}

	msg, err := Decode(in.codec, env)
	if err != nil {
		in.err = err
		in.log.Warn().Err(err).Uint16("sender", env.Sender).Uint64("seq", env.Seq).Msg("dropping inbound stream")
		return round.Incoming[M]{}, err
	}

	in.log.Trace().
		Uint16("sender", env.Sender).
		Stringer("type", env.Kind()).
		Uint64("seq", env.Seq).
		Int("bytes", len(env.Payload)).
		Msg("envelope received")

	return round.Incoming[M]{
		ID:     env.Seq,
		Sender: env.Sender,
		Type:   env.Kind(),
		Msg:    msg,
	}, nil
}

package runner

import (
	"github.com/pkg/errors"

	"github.com/f3rmion/frostrelay/relay"
	"github.com/f3rmion/frostrelay/round"
	"github.com/f3rmion/frostrelay/session"
)

var (
	// ErrUnexpectedLength is returned when a key or signature component does
	// not have the expected encoding length.
	ErrUnexpectedLength = errors.New("unexpected length")
	// ErrTweak is returned when the Taproot tweak cannot be applied.
	ErrTweak = errors.New("failed to set taproot tweak")
	// ErrProtocol wraps failures reported by the protocol engine.
	ErrProtocol = errors.New("protocol error")
)

// classify maps an engine error onto the error taxonomy while keeping the
// original chain intact for errors.Is.
func classify(err error) error {
	switch {
	case errors.Is(err, relay.ErrTransport), errors.Is(err, relay.ErrMalformed):
		return err
	case errors.Is(err, round.ErrUnexpectedEOF):
		return relay.Mark(relay.ErrTransport, err)
	case errors.Is(err, session.ErrMalformedMessage):
		return relay.Mark(relay.ErrMalformed, err)
	default:
		return relay.Mark(ErrProtocol, err)
	}
}

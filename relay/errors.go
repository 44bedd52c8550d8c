package relay

import "github.com/pkg/errors"

var (
	// ErrMalformed marks data that could not be serialized or
	// deserialized: an envelope payload, a wire frame or a key share.
	ErrMalformed = errors.New("malformed data")

	// ErrTransport marks failures to hand an envelope to, or take one
	// from, a transport queue.
	ErrTransport = errors.New("transport error")

	// ErrQueueFull is returned by a non-blocking send into a full queue.
	ErrQueueFull = errors.WithMessage(ErrTransport, "queue full")

	// ErrQueueClosed is returned by a send into a closed queue.
	ErrQueueClosed = errors.WithMessage(ErrTransport, "queue closed")
)

// kindError marks cause with a taxonomy sentinel. errors.Is matches the
// sentinel and everything cause wraps.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string { return e.kind.Error() + ": " + e.cause.Error() }

func (e *kindError) Is(target error) bool { return target == e.kind }

func (e *kindError) Unwrap() error { return e.cause }

// Mark returns cause tagged with kind, one of the sentinels such as
// ErrTransport or ErrMalformed.
func Mark(kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &kindError{kind: kind, cause: cause}
}

package relay

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Sender is the producer side of an envelope queue. TrySend never blocks.
type Sender interface {
	TrySend(env Envelope) error
}

// Receiver is the consumer side of an envelope queue. Recv blocks until an
// envelope is available and returns io.EOF once the queue is closed and
// drained.
type Receiver interface {
	Recv(ctx context.Context) (Envelope, error)
}

// Queue is a bounded multi-producer single-consumer envelope queue.
type Queue struct {
	mu     sync.RWMutex
	ch     chan Envelope
	closed bool
}

// NewQueue returns a queue holding at most capacity envelopes.
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan Envelope, capacity)}
}

// TrySend enqueues env or fails immediately with ErrQueueFull or
// ErrQueueClosed.
func (q *Queue) TrySend(env Envelope) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return errors.WithStack(ErrQueueClosed)
	}
	select {
	case q.ch <- env:
		return nil
	default:
		return errors.WithStack(ErrQueueFull)
	}
}

// Recv implements Receiver.
func (q *Queue) Recv(ctx context.Context) (Envelope, error) {
	select {
	case env, ok := <-q.ch:
		if !ok {
			return Envelope{}, io.EOF
		}
		return env, nil
	case <-ctx.Done():
		return Envelope{}, Mark(ErrTransport, ctx.Err())
	}
}

// Close stops accepting envelopes. Envelopes already queued can still be
// received. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

// Len returns the number of queued envelopes.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}

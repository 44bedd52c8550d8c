// Package memnet connects per-party envelope queues in memory.
//
// Each party gets an outbox it publishes to and an inbox it reads from.
// [Network.Run] pumps every outbox: broadcasts are copied to every other
// party, p2p envelopes go to their recipient. Envelopes from one sender are
// delivered in the order they were sent.
package memnet

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/f3rmion/frostrelay/metrics"
	"github.com/f3rmion/frostrelay/relay"
	"github.com/f3rmion/frostrelay/round"
)

// DefaultQueueSize is the inbox and outbox capacity used when none is set.
const DefaultQueueSize = 256

// Interceptor sees every envelope before delivery. Returning false drops it.
type Interceptor func(env relay.Envelope) (relay.Envelope, bool)

// Endpoint is one party's view of the network.
type Endpoint struct {
	index  uint16
	inbox  *relay.Queue
	outbox *relay.Queue
}

// Index returns the party index.
func (e *Endpoint) Index() uint16 { return e.index }

// Inbox returns the queue the party reads from.
func (e *Endpoint) Inbox() relay.Receiver { return e.inbox }

// Outbox returns the queue the party publishes to.
func (e *Endpoint) Outbox() relay.Sender { return e.outbox }

// Network routes envelopes between a fixed set of parties.
type Network struct {
	endpoints []*Endpoint
	wire      relay.WireCodec
	intercept Interceptor
	metrics   *metrics.Metrics
	log       zerolog.Logger
	queueSize int

	closeOnce sync.Once
}

// Option configures a Network.
type Option func(*Network)

// WithQueueSize sets the inbox and outbox capacity.
func WithQueueSize(n int) Option {
	return func(nw *Network) { nw.queueSize = n }
}

// WithWireCodec makes every hop serialize and parse the envelope with c.
func WithWireCodec(c relay.WireCodec) Option {
	return func(nw *Network) { nw.wire = c }
}

// WithInterceptor installs f on every hop.
func WithInterceptor(f Interceptor) Option {
	return func(nw *Network) { nw.intercept = f }
}

// WithMetrics counts routed envelopes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(nw *Network) { nw.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(nw *Network) { nw.log = l }
}

// New creates a network for parties 0..n-1.
func New(n uint16, opts ...Option) *Network {
	nw := &Network{
		log:       zerolog.Nop(),
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(nw)
	}
	nw.endpoints = make([]*Endpoint, n)
	for i := range nw.endpoints {
		nw.endpoints[i] = &Endpoint{
			index:  uint16(i),
			inbox:  relay.NewQueue(nw.queueSize),
			outbox: relay.NewQueue(nw.queueSize),
		}
	}
	return nw
}

// Size returns the number of parties.
func (nw *Network) Size() int { return len(nw.endpoints) }

// Endpoint returns party i's endpoint.
func (nw *Network) Endpoint(i uint16) *Endpoint { return nw.endpoints[i] }

// Close stops accepting envelopes. Run delivers what is already queued,
// closes every inbox and returns.
func (nw *Network) Close() {
	nw.closeOnce.Do(func() {
		for _, ep := range nw.endpoints {
			ep.outbox.Close()
		}
	})
}

// Run pumps envelopes until Close is called or ctx is done. Every inbox is
// closed on return, so readers observe end of input.
func (nw *Network) Run(ctx context.Context) error {
	defer func() {
		for _, ep := range nw.endpoints {
			ep.inbox.Close()
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, ep := range nw.endpoints {
		g.Go(func() error { return nw.pump(gctx, ep) })
	}
	return g.Wait()
}

func (nw *Network) pump(ctx context.Context, from *Endpoint) error {
	for {
		env, err := from.outbox.Recv(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if env.Sender != from.index {
			nw.log.Warn().Uint16("endpoint", from.index).Stringer("envelope", env).Msg("dropping envelope with forged sender")
			continue
		}
		if err := nw.route(env); err != nil {
			return err
		}
	}
}

func (nw *Network) route(env relay.Envelope) error {
	if nw.wire != nil {
		b, err := nw.wire.Marshal(env)
		if err != nil {
			return errors.Wrapf(err, "wire encode %s", env)
		}
		decoded, err := nw.wire.Unmarshal(b)
		if err != nil {
			return errors.Wrapf(err, "wire decode %s", env)
		}
		env = decoded
	}
	if nw.intercept != nil {
		var keep bool
		if env, keep = nw.intercept(env); !keep {
			nw.log.Debug().Stringer("envelope", env).Msg("envelope dropped by interceptor")
			return nil
		}
	}

	if env.Kind() == round.Broadcast {
		for _, ep := range nw.endpoints {
			if ep.index == env.Sender {
				continue
			}
			if err := nw.deliver(ep, env); err != nil {
				return err
			}
		}
		return nil
	}

	to := *env.Recipient
	if int(to) >= len(nw.endpoints) || to == env.Sender {
		nw.log.Warn().Stringer("envelope", env).Msg("dropping envelope for unknown recipient")
		return nil
	}
	return nw.deliver(nw.endpoints[to], env)
}

func (nw *Network) deliver(to *Endpoint, env relay.Envelope) error {
	if err := to.inbox.TrySend(env); err != nil {
		return errors.Wrapf(err, "deliver %s", env)
	}
	nw.metrics.EnvelopeRouted(env.Kind().String())
	nw.log.Trace().Stringer("envelope", env).Uint16("to", to.index).Msg("envelope routed")
	return nil
}

package runner

import (
	"crypto/rand"
	"io"

	"github.com/rs/zerolog"

	"github.com/f3rmion/frostrelay/frost"
	"github.com/f3rmion/frostrelay/metrics"
)

// Runner drives keygen and signing runs. It holds no per-run state; each
// call builds its own adapters and counters, so one Runner may serve many
// concurrent runs.
type Runner struct {
	log     zerolog.Logger
	suite   *frost.Ciphersuite
	rand    io.Reader
	metrics *metrics.Metrics
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards output.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithCiphersuite sets the ciphersuite. The default is frost.Bitcoin().
func WithCiphersuite(cs *frost.Ciphersuite) Option {
	return func(r *Runner) { r.suite = cs }
}

// WithRand sets the randomness source. The default is crypto/rand.
func WithRand(rng io.Reader) Option {
	return func(r *Runner) { r.rand = rng }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// New returns a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		log:   zerolog.Nop(),
		suite: frost.Bitcoin(),
		rand:  rand.Reader,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ciphersuite returns the runner's ciphersuite.
func (r *Runner) Ciphersuite() *frost.Ciphersuite { return r.suite }

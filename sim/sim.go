// Package sim runs key generation and signing for every party in one
// process, connected by an in-memory network.
package sim

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/f3rmion/frostrelay/config"
	"github.com/f3rmion/frostrelay/memnet"
	"github.com/f3rmion/frostrelay/metrics"
	"github.com/f3rmion/frostrelay/relay"
	"github.com/f3rmion/frostrelay/runner"
)

// ErrDisagreement is returned when parties finish with different outputs.
var ErrDisagreement = errors.New("parties disagree")

// Result summarizes a simulation.
type Result struct {
	PublicKey   []byte                   `json:"public_key"`
	OutputKey   []byte                   `json:"output_key,omitempty"`
	MessageHash []byte                   `json:"message_hash,omitempty"`
	Signature   *runner.SchnorrSignature `json:"signature,omitempty"`
	Verified    bool                     `json:"verified"`
	Keygen      []runner.KeygenResult    `json:"keygen"`
	Signing     []runner.SigningResult   `json:"signing,omitempty"`
	Duration    time.Duration            `json:"duration_ns"`
}

// Simulator runs configured simulations.
type Simulator struct {
	cfg     config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	rand    io.Reader
	wire    relay.WireCodec
	run     *runner.Runner
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger passed to every party.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

// WithMetrics sets the collector shared by the runners and the network.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Simulator) { s.metrics = m }
}

// WithRand sets the randomness source.
func WithRand(r io.Reader) Option {
	return func(s *Simulator) { s.rand = r }
}

// New validates cfg and returns a Simulator.
func New(cfg config.Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	s := &Simulator{
		cfg:  cfg,
		log:  zerolog.Nop(),
		rand: rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}

	cs, err := cfg.Suite()
	if err != nil {
		return nil, err
	}
	if s.wire, err = relay.WireCodecByName(cfg.Wire); err != nil {
		return nil, err
	}
	s.run = runner.New(
		runner.WithLogger(s.log),
		runner.WithCiphersuite(cs),
		runner.WithRand(s.rand),
		runner.WithMetrics(s.metrics),
	)
	return s, nil
}

// MessageHash returns the 32-byte hash that Sign signs.
func (s *Simulator) MessageHash() [32]byte {
	var h [32]byte
	if s.cfg.MessageHash != "" {
		b, _ := hex.DecodeString(s.cfg.MessageHash)
		copy(h[:], b)
		return h
	}
	return sha256.Sum256([]byte(s.cfg.Message))
}

// Keygen runs key generation for every party and checks that all of them
// derived the same public key.
func (s *Simulator) Keygen(ctx context.Context) ([]runner.KeygenResult, error) {
	n := uint16(s.cfg.Parties)
	results := make([]runner.KeygenResult, n)
	err := s.exchange(ctx, n, func(ctx context.Context, i uint16, ep *memnet.Endpoint) {
		results[i] = s.run.RunKeygen(ctx, i, n, uint16(s.cfg.Threshold), s.cfg.SessionID, ep.Inbox(), ep.Outbox())
	})
	for i, res := range results {
		if !res.Success {
			return results, errors.Wrapf(res.Err, "party %d keygen", i)
		}
		if !bytes.Equal(res.PublicKey, results[0].PublicKey) {
			return results, errors.Wrapf(ErrDisagreement, "party %d public key %x, party 0 has %x", i, res.PublicKey, results[0].PublicKey)
		}
	}
	return results, err
}

// Sign runs signing among the configured signers. shares is indexed by
// keygen index.
func (s *Simulator) Sign(ctx context.Context, shares [][]byte) ([]runner.SigningResult, error) {
	signers := s.cfg.SignerIndices()
	hash := s.MessageHash()
	sessionID := s.cfg.SessionID + "/sign"

	results := make([]runner.SigningResult, len(signers))
	err := s.exchange(ctx, uint16(len(signers)), func(ctx context.Context, p uint16, ep *memnet.Endpoint) {
		share := shares[signers[p]]
		results[p] = s.run.RunSigning(ctx, p, signers, sessionID, hash, share, ep.Inbox(), ep.Outbox(), s.cfg.Benchmark)
	})
	for p, res := range results {
		if !res.Success {
			return results, errors.Wrapf(res.Err, "signer %d (party %d)", p, signers[p])
		}
		if !bytes.Equal(res.Signature.Bytes(), results[0].Signature.Bytes()) {
			return results, errors.Wrapf(ErrDisagreement, "signer %d produced a different signature", p)
		}
	}
	return results, err
}

// Run performs key generation followed by signing and verifies the
// signature under the Taproot output key.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}

	kg, err := s.Keygen(ctx)
	res.Keygen = kg
	if err != nil {
		return res, err
	}
	res.PublicKey = kg[0].PublicKey
	s.log.Info().
		Int("parties", s.cfg.Parties).
		Int("threshold", s.cfg.Threshold).
		Str("public_key", hex.EncodeToString(res.PublicKey)).
		Msg("keygen finished")

	shares := make([][]byte, len(kg))
	for i, r := range kg {
		shares[i] = r.KeyShare
	}
	if res.OutputKey, err = s.run.OutputKey(shares[0]); err != nil {
		return res, err
	}

	hash := s.MessageHash()
	res.MessageHash = hash[:]
	sigs, err := s.Sign(ctx, shares)
	res.Signing = sigs
	if err != nil {
		return res, err
	}
	res.Signature = sigs[0].Signature
	if err := res.Signature.Verify(res.OutputKey, hash[:]); err != nil {
		return res, errors.Wrap(err, "verify aggregate signature")
	}
	res.Verified = true
	res.Duration = time.Since(start)

	s.log.Info().
		Str("output_key", hex.EncodeToString(res.OutputKey)).
		Str("signature", res.Signature.Hex()).
		Dur("duration", res.Duration).
		Msg("signature verified")
	return res, nil
}

// exchange runs fn for n parties over a fresh network and waits for all of
// them. The configured timeout bounds the whole exchange.
func (s *Simulator) exchange(ctx context.Context, n uint16, fn func(context.Context, uint16, *memnet.Endpoint)) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	nw := memnet.New(n,
		memnet.WithQueueSize(s.cfg.QueueSize),
		memnet.WithWireCodec(s.wire),
		memnet.WithMetrics(s.metrics),
		memnet.WithLogger(s.log),
	)
	netErr := make(chan error, 1)
	go func() { netErr <- nw.Run(ctx) }()

	var g errgroup.Group
	for i := uint16(0); i < n; i++ {
		g.Go(func() error {
			fn(ctx, i, nw.Endpoint(i))
			return nil
		})
	}
	_ = g.Wait()
	nw.Close()

	if err := <-netErr; err != nil {
		return errors.Wrap(err, "network")
	}
	return nil
}

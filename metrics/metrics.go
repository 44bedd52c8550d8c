// Package metrics exposes Prometheus collectors for session runs and the
// in-memory network. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "frostrelay"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Protocol labels.
const (
	ProtocolKeygen  = "keygen"
	ProtocolSigning = "signing"
)

// Metrics groups the collectors.
type Metrics struct {
	sessions  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	phases    *prometheus.HistogramVec
	envelopes *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Completed session runs by protocol and outcome.",
		}, []string{"protocol", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Wall-clock duration of session runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"protocol"}),
		phases: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "signing_phase_seconds",
			Help:      "Duration of individual signing phases.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 12),
		}, []string{"phase"}),
		envelopes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "envelopes_routed_total",
			Help:      "Envelopes routed by the in-memory network.",
		}, []string{"kind"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.sessions, m.durations, m.phases, m.envelopes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveSession counts a finished run and its duration.
func (m *Metrics) ObserveSession(protocol string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeFailure
	if success {
		outcome = OutcomeSuccess
	}
	m.sessions.WithLabelValues(protocol, outcome).Inc()
	m.durations.WithLabelValues(protocol).Observe(d.Seconds())
}

// ObservePhase records one signing phase.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phases.WithLabelValues(phase).Observe(d.Seconds())
}

// EnvelopeRouted counts an envelope of the given kind ("broadcast", "p2p").
func (m *Metrics) EnvelopeRouted(kind string) {
	if m == nil {
		return
	}
	m.envelopes.WithLabelValues(kind).Inc()
}

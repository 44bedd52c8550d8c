package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveSession(ProtocolKeygen, true, 10*time.Millisecond)
	m.ObserveSession(ProtocolSigning, true, 20*time.Millisecond)
	m.ObserveSession(ProtocolSigning, false, time.Millisecond)
	m.ObservePhase("5. MPC signing protocol", time.Millisecond)
	m.EnvelopeRouted("broadcast")
	m.EnvelopeRouted("broadcast")
	m.EnvelopeRouted("p2p")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues(ProtocolKeygen, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues(ProtocolSigning, OutcomeFailure)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.envelopes.WithLabelValues("broadcast")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.durations))
	assert.Equal(t, 1, testutil.CollectAndCount(m.phases))

	expected := `
# HELP frostrelay_envelopes_routed_total Envelopes routed by the in-memory network.
# TYPE frostrelay_envelopes_routed_total counter
frostrelay_envelopes_routed_total{kind="broadcast"} 2
frostrelay_envelopes_routed_total{kind="p2p"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "frostrelay_envelopes_routed_total"))
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSession(ProtocolSigning, true, time.Second)
		m.ObservePhase("x", time.Second)
		m.EnvelopeRouted("p2p")
	})
}

package sim

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/frostrelay/bench"
	"github.com/f3rmion/frostrelay/config"
	"github.com/f3rmion/frostrelay/frost"
	"github.com/f3rmion/frostrelay/metrics"
	"github.com/f3rmion/frostrelay/runner"
)

func TestRunDefault(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	s, err := New(config.Default(), WithMetrics(m))
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Verified)
	assert.Len(t, res.PublicKey, 32)
	assert.Len(t, res.OutputKey, 32)
	assert.Len(t, res.Keygen, 3)
	require.Len(t, res.Signing, 2)
	assert.Len(t, res.Signature.Bytes(), 64)
	for _, sr := range res.Signing {
		require.NotNil(t, sr.Benchmark)
		assert.Len(t, sr.Benchmark.Phases, len(bench.SigningPhases))
	}

	hash := sha256.Sum256([]byte("frostrelay"))
	assert.Equal(t, hash[:], res.MessageHash)
	count, err := testutil.GatherAndCount(reg, "frostrelay_envelopes_routed_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunProtobufSubset(t *testing.T) {
	cfg := config.Default()
	cfg.Parties = 5
	cfg.Threshold = 3
	cfg.Signers = []int{4, 1, 3}
	cfg.Wire = "protobuf"
	cfg.Benchmark = false
	cfg.MessageHash = hex.EncodeToString(make([]byte, 32))

	s, err := New(cfg)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, make([]byte, 32), res.MessageHash)
	for _, sr := range res.Signing {
		assert.Nil(t, sr.Benchmark)
	}
}

func TestKeygenBabyJubjub(t *testing.T) {
	cfg := config.Default()
	cfg.Ciphersuite = frost.SuiteBabyJubjub

	s, err := New(cfg)
	require.NoError(t, err)
	kg, err := s.Keygen(context.Background())
	require.NoError(t, err)
	assert.Len(t, kg, 3)

	_, err = s.Run(context.Background())
	require.ErrorIs(t, err, runner.ErrTweak)
}

func TestInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Threshold = 9
	_, err := New(cfg)
	assert.Error(t, err)
}

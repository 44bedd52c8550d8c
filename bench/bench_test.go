package bench

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	rec := NewRecorder(ProtocolSigning, 2, "s1")
	for i, name := range SigningPhases {
		rec.RecordStep(name, time.Duration(i+1)*time.Millisecond)
	}
	rec.Complete()

	r := rec.Report()
	assert.Equal(t, ProtocolSigning, r.Protocol)
	assert.Equal(t, uint16(2), r.Party)
	assert.Equal(t, "s1", r.SessionID)
	assert.True(t, r.Completed)
	require.Len(t, r.Phases, 6)
	for i, p := range r.Phases {
		assert.Equal(t, SigningPhases[i], p.Name)
	}
	d, ok := r.Phase(PhaseSign)
	require.True(t, ok)
	assert.Equal(t, 5*time.Millisecond, d)
	_, ok = r.Phase("missing")
	assert.False(t, ok)
}

func TestCompleteFreezesTotal(t *testing.T) {
	rec := NewRecorder(ProtocolSigning, 0, "s1")
	rec.Complete()
	first := rec.Report().Total
	time.Sleep(5 * time.Millisecond)
	rec.Complete()
	assert.Equal(t, first, rec.Report().Total)
}

func TestReportIsSnapshot(t *testing.T) {
	rec := NewRecorder(ProtocolSigning, 0, "s1")
	rec.RecordStep(PhaseDeserialize, time.Millisecond)
	r := rec.Report()
	rec.RecordStep(PhaseSetup, time.Millisecond)
	assert.Len(t, r.Phases, 1)
	assert.False(t, r.Completed)
	assert.Equal(t, 2, rec.Len())
}

func TestRecordStepSkipsWhenBusy(t *testing.T) {
	rec := NewRecorder(ProtocolSigning, 0, "s1")
	rec.mu.Lock()
	rec.RecordStep(PhaseDeserialize, time.Millisecond)
	rec.mu.Unlock()
	assert.Equal(t, 0, rec.Len())
}

func TestConcurrentRecording(t *testing.T) {
	rec := NewRecorder(ProtocolSigning, 0, "s1")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rec.RecordStep(PhaseSign, time.Microsecond)
			}
		}()
	}
	wg.Wait()
	n := rec.Len()
	assert.LessOrEqual(t, n, 400)
	assert.Greater(t, n, 0)
}

func TestTimer(t *testing.T) {
	rec := NewRecorder(ProtocolSigning, 0, "s1")
	tm := rec.Begin()
	time.Sleep(time.Millisecond)
	d := tm.Done(PhaseTweak)
	got, ok := rec.Report().Phase(PhaseTweak)
	require.True(t, ok)
	assert.Equal(t, d, got)

	var none *Recorder
	assert.NotPanics(t, func() { none.Begin().Done(PhaseTweak) })
}

func TestReportLog(t *testing.T) {
	var buf bytes.Buffer
	r := Report{
		Protocol:  ProtocolSigning,
		SessionID: "s1",
		Phases: []Phase{
			{Name: PhaseDeserialize, Duration: time.Millisecond},
			{Name: PhaseSign, Duration: 3 * time.Millisecond},
		},
		Total: 4 * time.Millisecond,
	}
	r.Log(zerolog.New(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, PhaseDeserialize, first["phase"])
	assert.InDelta(t, 25.0, first["percent"], 0.001)
	assert.Contains(t, lines[2], "benchmark complete")
}

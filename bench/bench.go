package bench

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ProtocolSigning names the signing protocol in reports.
const ProtocolSigning = "FROST-Signing"

// Signing phases, in execution order.
const (
	PhaseDeserialize = "1. Deserialize key_share"
	PhaseSetup       = "2. Protocol setup (channels, party)"
	PhaseBuilder     = "3. Create signing builder"
	PhaseTweak       = "4. Set taproot tweak (BIP-341)"
	PhaseSign        = "5. MPC signing protocol"
	PhaseExtract     = "6. Extract signature components"
)

// SigningPhases lists the signing phases in execution order.
var SigningPhases = []string{
	PhaseDeserialize,
	PhaseSetup,
	PhaseBuilder,
	PhaseTweak,
	PhaseSign,
	PhaseExtract,
}

// Phase is one timed step of a run.
type Phase struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
}

// Report is an immutable snapshot of a recorder.
type Report struct {
	Protocol  string        `json:"protocol"`
	Party     uint16        `json:"party"`
	SessionID string        `json:"session_id"`
	Phases    []Phase       `json:"phases"`
	Total     time.Duration `json:"total_ns"`
	Completed bool          `json:"completed"`
}

// Phase returns the duration recorded for name.
func (r Report) Phase(name string) (time.Duration, bool) {
	for _, p := range r.Phases {
		if p.Name == name {
			return p.Duration, true
		}
	}
	return 0, false
}

// Log writes one line per phase with its share of the total.
func (r Report) Log(l zerolog.Logger) {
	total := r.Total
	if total <= 0 {
		for _, p := range r.Phases {
			total += p.Duration
		}
	}
	for _, p := range r.Phases {
		pct := 0.0
		if total > 0 {
			pct = float64(p.Duration) / float64(total) * 100
		}
		l.Info().
			Str("protocol", r.Protocol).
			Str("phase", p.Name).
			Dur("duration", p.Duration).
			Float64("percent", pct).
			Msg("benchmark phase")
	}
	l.Info().
		Str("protocol", r.Protocol).
		Uint16("party", r.Party).
		Str("session_id", r.SessionID).
		Int("phases", len(r.Phases)).
		Dur("total", total).
		Msg("benchmark complete")
}

// Recorder accumulates phase timings for one run. It is safe for concurrent
// use; a record that cannot take the lock immediately is dropped.
type Recorder struct {
	mu        sync.Mutex
	protocol  string
	party     uint16
	sessionID string
	start     time.Time
	phases    []Phase
	total     time.Duration
	completed bool
}

// NewRecorder starts a recorder for party in sessionID.
func NewRecorder(protocol string, party uint16, sessionID string) *Recorder {
	return &Recorder{
		protocol:  protocol,
		party:     party,
		sessionID: sessionID,
		start:     time.Now(),
	}
}

// RecordStep appends a phase. It never blocks.
func (r *Recorder) RecordStep(name string, d time.Duration) {
	if !r.mu.TryLock() {
		return
	}
	defer r.mu.Unlock()
	r.phases = append(r.phases, Phase{Name: name, Duration: d})
}

// Complete freezes the total elapsed time. Later calls are ignored.
func (r *Recorder) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.completed {
		return
	}
	r.total = time.Since(r.start)
	r.completed = true
}

// Report returns a snapshot. Before Complete the total is the time elapsed
// so far.
func (r *Recorder) Report() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := r.total
	if !r.completed {
		total = time.Since(r.start)
	}
	phases := make([]Phase, len(r.phases))
	copy(phases, r.phases)
	return Report{
		Protocol:  r.protocol,
		Party:     r.party,
		SessionID: r.sessionID,
		Phases:    phases,
		Total:     total,
		Completed: r.completed,
	}
}

// Len returns the number of recorded phases.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.phases)
}

// Timer measures one phase at a time.
type Timer struct {
	rec   *Recorder
	start time.Time
}

// Begin starts timing a phase. A nil recorder yields a timer whose Done is
// a no-op.
func (r *Recorder) Begin() Timer {
	return Timer{rec: r, start: time.Now()}
}

// Done records the time since Begin under name and returns it.
func (t Timer) Done(name string) time.Duration {
	d := time.Since(t.start)
	if t.rec != nil {
		t.rec.RecordStep(name, d)
	}
	return d
}

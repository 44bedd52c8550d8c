// Package bench records per-phase timings of a protocol run.
//
// A [Recorder] is an append-only log of (phase, duration) pairs plus a start
// time. Recording never fails: if the recorder is busy the record is
// skipped. [Recorder.Complete] freezes the total and [Recorder.Report]
// returns an immutable snapshot.
package bench

package runner

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"

	"github.com/f3rmion/frostrelay/bench"
	"github.com/f3rmion/frostrelay/logging"
	"github.com/f3rmion/frostrelay/metrics"
	"github.com/f3rmion/frostrelay/relay"
	"github.com/f3rmion/frostrelay/round"
	"github.com/f3rmion/frostrelay/session"
)

// Sign is RunSigning with benchmarking enabled.
func (r *Runner) Sign(
	ctx context.Context,
	partyIndex uint16,
	signers []uint16,
	sessionID string,
	msgHash [32]byte,
	keyShare []byte,
	inbound relay.Receiver,
	outbound relay.Sender,
) SigningResult {
	return r.RunSigning(ctx, partyIndex, signers, sessionID, msgHash, keyShare, inbound, outbound, true)
}

// RunSigning produces a BIP-340 signature over msgHash under the key-path
// Taproot output key of the serialized keyShare.
//
// partyIndex is this party's position in signers, and signers[i] is the
// keygen index of the party at position i. Envelopes are addressed by
// position.
//
// When benchmark is set, each phase is timed and the report is attached to
// the result. A key share that cannot be deserialized fails before any phase
// is recorded, so that result carries no report.
func (r *Runner) RunSigning(
	ctx context.Context,
	partyIndex uint16,
	signers []uint16,
	sessionID string,
	msgHash [32]byte,
	keyShare []byte,
	inbound relay.Receiver,
	outbound relay.Sender,
	benchmark bool,
) (res SigningResult) {
	start := time.Now()
	log := logging.Party(r.log, partyIndex, sessionID)

	var rec *bench.Recorder
	if benchmark {
		rec = bench.NewRecorder(bench.ProtocolSigning, partyIndex, sessionID)
	}
	report := func() *bench.Report {
		if rec == nil || rec.Len() == 0 {
			return nil
		}
		rec.Complete()
		rep := rec.Report()
		return &rep
	}

	defer func() {
		if p := recover(); p != nil {
			res = signingFailure(errors.Wrapf(ErrProtocol, "panic: %v", p), time.Since(start), report())
		}
		if !res.Success {
			log.Error().Err(res.Err).Float64("duration_secs", res.Duration).Msg("signing failed")
		}
		if res.Benchmark != nil {
			res.Benchmark.Log(log)
			for _, ph := range res.Benchmark.Phases {
				r.metrics.ObservePhase(ph.Name, ph.Duration)
			}
		}
		r.metrics.ObserveSession(metrics.ProtocolSigning, res.Success, time.Since(start))
	}()

	log.Info().
		Uints16("signers", signers).
		Str("message_hash", hex.EncodeToString(msgHash[:])).
		Bool("benchmark", benchmark).
		Msg("signing starting")

	timer := rec.Begin()
	share, err := r.suite.UnmarshalKeyShare(keyShare)
	if err != nil {
		err = relay.Mark(relay.ErrMalformed, errors.Wrap(err, "key share deserialization error"))
		return signingFailure(err, time.Since(start), nil)
	}
	timer.Done(bench.PhaseDeserialize)
	log.Debug().
		Str("shared_public_key", hex.EncodeToString(share.GroupKey.Bytes())).
		Uint16("keygen_index", share.Index).
		Msg("key share loaded")

	timer = rec.Begin()
	eid := session.NewExecutionID([]byte(sessionID))
	codec := relay.JSONPayload[session.SigningMsg]{}
	delivery := round.Delivery[session.SigningMsg]{
		Incoming: relay.NewInbound[session.SigningMsg](inbound, codec).WithLogger(log),
		Outgoing: relay.NewOutbound[session.SigningMsg](outbound, codec, sessionID, partyIndex).WithLogger(log),
	}
	timer.Done(bench.PhaseSetup)

	timer = rec.Begin()
	builder := session.Signing(r.suite, eid, partyIndex, share, signers, msgHash[:])
	timer.Done(bench.PhaseBuilder)

	timer = rec.Begin()
	builder, err = builder.SetTaprootTweak(nil)
	if err != nil {
		return signingFailure(relay.Mark(ErrTweak, err), time.Since(start), report())
	}
	timer.Done(bench.PhaseTweak)

	timer = rec.Begin()
	sig, err := builder.Sign(ctx, r.rand, delivery)
	timer.Done(bench.PhaseSign)
	if err != nil {
		return signingFailure(classify(err), time.Since(start), report())
	}

	timer = rec.Begin()
	rx, err := NormalizeXOnly(sig.R.Bytes())
	if err != nil {
		return signingFailure(errors.Wrap(err, "signature R"), time.Since(start), report())
	}
	s := sig.Z.Bytes()
	if len(rx) != XOnlySize || len(s) != XOnlySize {
		err := errors.Wrapf(ErrUnexpectedLength, "signature lengths R=%d, s=%d", len(rx), len(s))
		return signingFailure(err, time.Since(start), report())
	}
	timer.Done(bench.PhaseExtract)

	out := &SchnorrSignature{R: rx, S: s}
	elapsed := time.Since(start)
	log.Info().
		Str("r", hex.EncodeToString(rx)).
		Str("s", hex.EncodeToString(s)).
		Float64("duration_secs", elapsed.Seconds()).
		Msg("signing completed")

	return SigningResult{
		Success:   true,
		Signature: out,
		Duration:  elapsed.Seconds(),
		Benchmark: report(),
	}
}

// OutputKey returns the 32-byte x-only key-path Taproot output key that
// signatures from RunSigning verify under.
func (r *Runner) OutputKey(keyShare []byte) ([]byte, error) {
	share, err := r.suite.UnmarshalKeyShare(keyShare)
	if err != nil {
		return nil, relay.Mark(relay.ErrMalformed, err)
	}
	f, err := r.suite.New(share.Threshold, share.Total)
	if err != nil {
		return nil, err
	}
	q, err := f.TaprootOutputKey(share.GroupKey, nil)
	if err != nil {
		return nil, relay.Mark(ErrTweak, err)
	}
	return NormalizeXOnly(q.Bytes())
}

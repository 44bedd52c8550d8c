package runner

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"

	"github.com/f3rmion/frostrelay/logging"
	"github.com/f3rmion/frostrelay/metrics"
	"github.com/f3rmion/frostrelay/relay"
	"github.com/f3rmion/frostrelay/round"
	"github.com/f3rmion/frostrelay/session"
)

// RunKeygen runs distributed key generation as party partyIndex of
// numParties, exchanging messages only through inbound and outbound. The
// execution is bound to sessionID; a retry needs a fresh session id.
//
// RunKeygen never fails: every error, including a panic in the engine,
// becomes a failure result.
func (r *Runner) RunKeygen(
	ctx context.Context,
	partyIndex, numParties, threshold uint16,
	sessionID string,
	inbound relay.Receiver,
	outbound relay.Sender,
) (res KeygenResult) {
	start := time.Now()
	log := logging.Party(r.log, partyIndex, sessionID)

	defer func() {
		if p := recover(); p != nil {
			res = keygenFailure(errors.Wrapf(ErrProtocol, "panic: %v", p), time.Since(start))
		}
		if !res.Success {
			log.Error().Err(res.Err).Float64("duration_secs", res.Duration).Msg("keygen failed")
		}
		r.metrics.ObserveSession(metrics.ProtocolKeygen, res.Success, time.Since(start))
	}()

	log.Info().
		Uint16("parties", numParties).
		Uint16("threshold", threshold).
		Str("ciphersuite", r.suite.Name).
		Msg("keygen starting")

	eid := session.NewExecutionID([]byte(sessionID))
	codec := relay.JSONPayload[session.KeygenMsg]{}
	delivery := round.Delivery[session.KeygenMsg]{
		Incoming: relay.NewInbound[session.KeygenMsg](inbound, codec).WithLogger(log),
		Outgoing: relay.NewOutbound[session.KeygenMsg](outbound, codec, sessionID, partyIndex).WithLogger(log),
	}

	share, err := session.Keygen(r.suite, eid, partyIndex, numParties).
		SetThreshold(threshold).
		Start(ctx, r.rand, delivery)
	if err != nil {
		return keygenFailure(classify(err), time.Since(start))
	}

	pub, err := NormalizeXOnly(share.GroupKey.Bytes())
	if err != nil {
		return keygenFailure(errors.Wrap(err, "group key"), time.Since(start))
	}
	data, err := r.suite.MarshalKeyShare(share)
	if err != nil {
		return keygenFailure(errors.Wrap(err, "serialize key share"), time.Since(start))
	}

	elapsed := time.Since(start)
	log.Info().
		Str("public_key", hex.EncodeToString(pub)).
		Float64("duration_secs", elapsed.Seconds()).
		Msg("keygen completed")

	return KeygenResult{
		Success:   true,
		KeyShare:  data,
		PublicKey: pub,
		Duration:  elapsed.Seconds(),
	}
}

package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/f3rmion/frostrelay/frost"
	"github.com/f3rmion/frostrelay/group"
	"github.com/f3rmion/frostrelay/round"
)

// hub connects n endpoints with buffered channels.
type hub[M any] struct {
	inboxes []chan round.Incoming[M]
}

func newHub[M any](n int) *hub[M] {
	h := &hub[M]{inboxes: make([]chan round.Incoming[M], n)}
	for i := range h.inboxes {
		h.inboxes[i] = make(chan round.Incoming[M], 64)
	}
	return h
}

func (h *hub[M]) delivery(i uint16) round.Delivery[M] {
	ep := &endpoint[M]{h: h, self: i}
	return round.Delivery[M]{Incoming: ep, Outgoing: ep}
}

type endpoint[M any] struct {
	h      *hub[M]
	self   uint16
	seq    uint64
	mutate func(*round.Outgoing[M])
}

func (e *endpoint[M]) Recv(ctx context.Context) (round.Incoming[M], error) {
	select {
	case m, ok := <-e.h.inboxes[e.self]:
		if !ok {
			return round.Incoming[M]{}, io.EOF
		}
		return m, nil
	case <-ctx.Done():
		return round.Incoming[M]{}, ctx.Err()
	}
}

func (e *endpoint[M]) Send(ctx context.Context, out round.Outgoing[M]) error {
	if e.mutate != nil {
		e.mutate(&out)
	}
	e.seq++
	if to, ok := out.Recipient.Party(); ok {
		e.h.inboxes[to] <- round.Incoming[M]{ID: e.seq, Sender: e.self, Type: round.P2P, Msg: out.Msg}
		return nil
	}
	for j := range e.h.inboxes {
		if uint16(j) == e.self {
			continue
		}
		e.h.inboxes[j] <- round.Incoming[M]{ID: e.seq, Sender: e.self, Type: round.Broadcast, Msg: out.Msg}
	}
	return nil
}

func (e *endpoint[M]) Flush(ctx context.Context) error { return nil }
func (e *endpoint[M]) Close() error                    { return nil }

func runKeygen(t *testing.T, suite *frost.Ciphersuite, eids []ExecutionID, threshold uint16) ([]*frost.KeyShare, []error) {
	t.Helper()
	n := uint16(len(eids))
	h := newHub[KeygenMsg](int(n))
	shares := make([]*frost.KeyShare, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := uint16(0); i < n; i++ {
		wg.Add(1)
		go func(i uint16) {
			defer wg.Done()
			shares[i], errs[i] = Keygen(suite, eids[i], i, n).
				SetThreshold(threshold).
				Start(context.Background(), rand.Reader, h.delivery(i))
		}(i)
	}
	wg.Wait()
	return shares, errs
}

func sameEID(n int, sessionID string) []ExecutionID {
	eids := make([]ExecutionID, n)
	for i := range eids {
		eids[i] = NewExecutionID([]byte(sessionID))
	}
	return eids
}

func TestKeygenAndSignOverDelivery(t *testing.T) {
	suite := frost.Bitcoin()
	shares, errs := runKeygen(t, suite, sameEID(3, "keygen"), 2)
	for i, err := range errs {
		if err != nil {
			t.Fatalf("party %d keygen: %v", i, err)
		}
	}
	for i := 1; i < len(shares); i++ {
		if !shares[i].GroupKey.Equal(shares[0].GroupKey) {
			t.Fatal("parties disagree on the group key")
		}
	}

	digest := sha256.Sum256([]byte("pay to taproot"))
	signers := []uint16{2, 0}
	eid := NewExecutionID([]byte("sign"))
	h := newHub[SigningMsg](len(signers))

	sigs := make([]*frost.Signature, len(signers))
	errs = make([]error, len(signers))
	var wg sync.WaitGroup
	for pos, signer := range signers {
		wg.Add(1)
		go func(pos uint16, share *frost.KeyShare) {
			defer wg.Done()
			b, err := Signing(suite, eid, pos, share, signers, digest[:]).SetTaprootTweak(nil)
			if err != nil {
				errs[pos] = err
				return
			}
			sigs[pos], errs[pos] = b.Sign(context.Background(), rand.Reader, h.delivery(pos))
		}(uint16(pos), shares[signer])
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("signer %d: %v", i, err)
		}
	}
	if !sigs[0].R.Equal(sigs[1].R) || !sigs[0].Z.Equal(sigs[1].Z) {
		t.Error("signers produced different signatures")
	}

	f, _ := suite.New(2, 3)
	outputKey, err := f.TaprootOutputKey(shares[0].GroupKey, nil)
	if err != nil {
		t.Fatal(err)
	}
	xo := suite.Group.(group.XOnly)
	pub, err := schnorr.ParsePubKey(xo.XOnlyBytes(outputKey))
	if err != nil {
		t.Fatal(err)
	}
	raw := append(append([]byte{}, xo.XOnlyBytes(sigs[0].R)...), sigs[0].Z.Bytes()...)
	parsed, err := schnorr.ParseSignature(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.Verify(digest[:], pub) {
		t.Error("signature does not verify under the taproot output key")
	}
}

func TestKeygenSingleParty(t *testing.T) {
	shares, errs := runKeygen(t, frost.BabyJubjub(), sameEID(1, "solo"), 1)
	if errs[0] != nil {
		t.Fatal(errs[0])
	}
	if shares[0].Threshold != 1 || shares[0].Total != 1 {
		t.Errorf("got t=%d n=%d", shares[0].Threshold, shares[0].Total)
	}
}

func TestKeygenForeignExecution(t *testing.T) {
	eids := sameEID(3, "s1")
	eids[1] = NewExecutionID([]byte("s2"))
	_, errs := runKeygen(t, frost.Bitcoin(), eids, 2)
	for i, err := range errs {
		if !errors.Is(err, ErrForeignExecution) {
			t.Errorf("party %d: expected ErrForeignExecution, got %v", i, err)
		}
	}
}

func TestKeygenParameterValidation(t *testing.T) {
	eid := NewExecutionID([]byte("bad"))
	h := newHub[KeygenMsg](3)
	cases := []struct {
		name      string
		i, n, thr uint16
	}{
		{"IndexOutOfRange", 3, 3, 2},
		{"ZeroThreshold", 0, 3, 0},
		{"ThresholdAboveParties", 0, 3, 4},
		{"NoParties", 0, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Keygen(frost.Bitcoin(), eid, tc.i, tc.n).
				SetThreshold(tc.thr).
				Start(context.Background(), rand.Reader, h.delivery(0))
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSigningSignerSetValidation(t *testing.T) {
	suite := frost.BabyJubjub()
	shares, errs := runKeygen(t, suite, sameEID(3, "set"), 2)
	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	eid := NewExecutionID([]byte("set"))
	msg := []byte("msg")

	cases := []struct {
		name    string
		pos     uint16
		share   *frost.KeyShare
		signers []uint16
	}{
		{"BelowThreshold", 0, shares[0], []uint16{0}},
		{"Duplicate", 0, shares[0], []uint16{0, 0}},
		{"OutOfRange", 0, shares[0], []uint16{0, 3}},
		{"PositionOutOfRange", 2, shares[0], []uint16{0, 1}},
		{"WrongShare", 0, shares[1], []uint16{0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Signing(suite, eid, tc.pos, tc.share, tc.signers, msg).
				Sign(context.Background(), rand.Reader, round.Delivery[SigningMsg]{})
			if !errors.Is(err, ErrSignerSet) {
				t.Errorf("expected ErrSignerSet, got %v", err)
			}
		})
	}
}

func TestSigningDetectsInvalidShare(t *testing.T) {
	suite := frost.Bitcoin()
	shares, errs := runKeygen(t, suite, sameEID(3, "cheat"), 3)
	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	signers := []uint16{0, 1, 2}
	eid := NewExecutionID([]byte("cheat-sign"))
	h := newHub[SigningMsg](3)
	message := sha256.Sum256([]byte("cheat"))

	errs = make([]error, 3)
	var wg sync.WaitGroup
	for pos := uint16(0); pos < 3; pos++ {
		d := h.delivery(pos)
		if pos == 1 {
			ep := d.Outgoing.(*endpoint[SigningMsg])
			ep.mutate = func(out *round.Outgoing[SigningMsg]) {
				if out.Msg.Round == SigningRoundShare {
					z := append([]byte{}, out.Msg.Share...)
					z[31] ^= 1
					out.Msg.Share = z
				}
			}
		}
		wg.Add(1)
		go func(pos uint16, d round.Delivery[SigningMsg]) {
			defer wg.Done()
			_, errs[pos] = Signing(suite, eid, pos, shares[pos], signers, message[:]).
				Sign(context.Background(), rand.Reader, d)
		}(pos, d)
	}
	wg.Wait()

	for _, pos := range []int{0, 2} {
		if !errors.Is(errs[pos], ErrInvalidShare) {
			t.Errorf("party %d: expected ErrInvalidShare, got %v", pos, errs[pos])
		}
	}
}

func TestKeygenRejectsForgedProof(t *testing.T) {
	suite := frost.Bitcoin()
	eid := NewExecutionID([]byte("forged"))
	h := newHub[KeygenMsg](3)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errs := make([]error, 3)
	var wg sync.WaitGroup
	for i := uint16(0); i < 3; i++ {
		d := h.delivery(i)
		if i == 1 {
			ep := d.Outgoing.(*endpoint[KeygenMsg])
			ep.mutate = func(out *round.Outgoing[KeygenMsg]) {
				if out.Msg.Round == KeygenRoundCommit {
					z := append([]byte{}, out.Msg.ProofZ...)
					z[len(z)-1] ^= 1
					out.Msg.ProofZ = z
				}
			}
		}
		wg.Add(1)
		go func(i uint16, d round.Delivery[KeygenMsg]) {
			defer wg.Done()
			_, errs[i] = Keygen(suite, eid, i, 3).SetThreshold(2).Start(ctx, rand.Reader, d)
		}(i, d)
	}
	wg.Wait()

	for _, i := range []int{0, 2} {
		if !errors.Is(errs[i], frost.ErrInvalidProof) {
			t.Errorf("party %d: expected ErrInvalidProof, got %v", i, errs[i])
		}
	}
}

func TestSetTaprootTweakUnsupported(t *testing.T) {
	suite := frost.BabyJubjub()
	shares, errs := runKeygen(t, suite, sameEID(2, "bjj"), 2)
	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	_, err := Signing(suite, NewExecutionID([]byte("bjj")), 0, shares[0], []uint16{0, 1}, []byte("m")).
		SetTaprootTweak(nil)
	if !errors.Is(err, frost.ErrTweakUnsupported) {
		t.Errorf("expected ErrTweakUnsupported, got %v", err)
	}
}

func TestExecutionID(t *testing.T) {
	a := NewExecutionID([]byte("s1"))
	b := NewExecutionID([]byte("s1"))
	c := NewExecutionID([]byte("s2"))
	if a != b {
		t.Error("same session id should give the same execution id")
	}
	if a == c {
		t.Error("different session ids should give different execution ids")
	}
	if len(a.String()) != 16 {
		t.Errorf("String() = %q", a.String())
	}
}

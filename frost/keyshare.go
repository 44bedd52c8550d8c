package frost

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/f3rmion/frostrelay/group"
)

type keyShareJSON struct {
	Suite              string   `json:"suite"`
	Index              uint16   `json:"index"`
	Threshold          int      `json:"threshold"`
	Total              int      `json:"total"`
	ID                 []byte   `json:"id"`
	SecretKey          []byte   `json:"secret_key"`
	PublicKey          []byte   `json:"public_key"`
	GroupKey           []byte   `json:"group_key"`
	VerificationShares [][]byte `json:"verification_shares"`
	Tweaked            bool     `json:"tweaked,omitempty"`
}

// MarshalKeyShare serializes a key share for durable storage.
func (cs *Ciphersuite) MarshalKeyShare(ks *KeyShare) ([]byte, error) {
	if ks == nil || ks.ID == nil || ks.SecretKey == nil || ks.PublicKey == nil || ks.GroupKey == nil {
		return nil, errors.New("incomplete key share")
	}
	vs := make([][]byte, len(ks.VerificationShares))
	for i, p := range ks.VerificationShares {
		vs[i] = p.Bytes()
	}
	return json.Marshal(keyShareJSON{
		Suite:              cs.Name,
		Index:              ks.Index,
		Threshold:          ks.Threshold,
		Total:              ks.Total,
		ID:                 ks.ID.Bytes(),
		SecretKey:          ks.SecretKey.Bytes(),
		PublicKey:          ks.PublicKey.Bytes(),
		GroupKey:           ks.GroupKey.Bytes(),
		VerificationShares: vs,
		Tweaked:            ks.Tweaked,
	})
}

// UnmarshalKeyShare restores a key share produced by MarshalKeyShare under
// the same suite.
func (cs *Ciphersuite) UnmarshalKeyShare(data []byte) (*KeyShare, error) {
	var raw keyShareJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode key share: %w", err)
	}
	if raw.Suite != cs.Name {
		return nil, fmt.Errorf("key share belongs to suite %q, not %q", raw.Suite, cs.Name)
	}
	if raw.Threshold < 1 || raw.Total < raw.Threshold || raw.Total > MaxParticipants {
		return nil, fmt.Errorf("invalid parameters t=%d n=%d", raw.Threshold, raw.Total)
	}
	if int(raw.Index) >= raw.Total {
		return nil, fmt.Errorf("index %d out of range for %d parties", raw.Index, raw.Total)
	}
	if len(raw.VerificationShares) != raw.Total {
		return nil, fmt.Errorf("have %d verification shares, want %d", len(raw.VerificationShares), raw.Total)
	}

	g := cs.Group
	ks := &KeyShare{
		Index:     raw.Index,
		Threshold: raw.Threshold,
		Total:     raw.Total,
		Tweaked:   raw.Tweaked,
	}
	var err error
	if ks.ID, err = g.NewScalar().SetBytes(raw.ID); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if !ks.ID.Equal(group.ScalarFromUint16(g, raw.Index+1)) {
		return nil, errors.New("id does not match index")
	}
	if ks.SecretKey, err = g.NewScalar().SetBytes(raw.SecretKey); err != nil {
		return nil, fmt.Errorf("secret key: %w", err)
	}
	if ks.PublicKey, err = g.NewPoint().SetBytes(raw.PublicKey); err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	if ks.GroupKey, err = g.NewPoint().SetBytes(raw.GroupKey); err != nil {
		return nil, fmt.Errorf("group key: %w", err)
	}
	ks.VerificationShares = make([]group.Point, raw.Total)
	for i, b := range raw.VerificationShares {
		if ks.VerificationShares[i], err = g.NewPoint().SetBytes(b); err != nil {
			return nil, fmt.Errorf("verification share %d: %w", i, err)
		}
	}

	expected := g.NewPoint().ScalarMult(ks.SecretKey, g.Generator())
	if !expected.Equal(ks.PublicKey) || !ks.PublicKey.Equal(ks.VerificationShares[ks.Index]) {
		return nil, errors.New("secret key does not match public key share")
	}
	return ks, nil
}

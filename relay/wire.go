package relay

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"go.dedis.ch/protobuf"
)

// WireCodec serializes whole envelopes for a network hop.
type WireCodec interface {
	Name() string
	Marshal(env Envelope) ([]byte, error)
	Unmarshal(data []byte) (Envelope, error)
}

// JSONWire is the self-describing text encoding. Field names and order
// follow the Envelope struct tags.
type JSONWire struct{}

// Name implements WireCodec.
func (JSONWire) Name() string { return "json" }

// Marshal implements WireCodec.
func (JSONWire) Marshal(env Envelope) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "marshal envelope: %v", err)
	}
	return b, nil
}

// Unmarshal implements WireCodec.
func (JSONWire) Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, errors.Wrapf(ErrMalformed, "unmarshal envelope: %v", err)
	}
	return env, nil
}

// pbEnvelope mirrors Envelope with field types the protobuf encoder
// supports. Field order defines the tag numbers.
type pbEnvelope struct {
	SessionID string
	Sender    uint32
	Recipient *uint32
	Round     uint32
	Payload   []byte
	Seq       uint64
}

// ProtobufWire is the binary encoding based on go.dedis.ch/protobuf.
type ProtobufWire struct{}

// Name implements WireCodec.
func (ProtobufWire) Name() string { return "protobuf" }

// Marshal implements WireCodec.
func (ProtobufWire) Marshal(env Envelope) ([]byte, error) {
	pb := &pbEnvelope{
		SessionID: env.SessionID,
		Sender:    uint32(env.Sender),
		Round:     uint32(env.Round),
		Payload:   env.Payload,
		Seq:       env.Seq,
	}
	if env.Recipient != nil {
		r := uint32(*env.Recipient)
		pb.Recipient = &r
	}
	b, err := protobuf.Encode(pb)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "encode envelope: %v", err)
	}
	return b, nil
}

// Unmarshal implements WireCodec.
func (ProtobufWire) Unmarshal(data []byte) (Envelope, error) {
	pb := &pbEnvelope{}
	if err := protobuf.Decode(data, pb); err != nil {
		return Envelope{}, errors.Wrapf(ErrMalformed, "decode envelope: %v", err)
	}
	if pb.Sender > math.MaxUint16 || pb.Round > math.MaxUint16 {
		return Envelope{}, errors.Wrapf(ErrMalformed, "sender %d or round %d exceeds 16 bits", pb.Sender, pb.Round)
	}
	env := Envelope{
		SessionID: pb.SessionID,
		Sender:    uint16(pb.Sender),
		Round:     uint16(pb.Round),
		Payload:   pb.Payload,
		Seq:       pb.Seq,
	}
	// The encoding does not distinguish nil from empty.
	if len(env.Payload) == 0 {
		env.Payload = nil
	}
	if pb.Recipient != nil {
		if *pb.Recipient > math.MaxUint16 {
			return Envelope{}, errors.Wrapf(ErrMalformed, "recipient %d exceeds 16 bits", *pb.Recipient)
		}
		env.Recipient = Recipient(uint16(*pb.Recipient))
	}
	return env, nil
}

// WireCodecByName returns the codec registered under name.
func WireCodecByName(name string) (WireCodec, error) {
	switch name {
	case "json", "":
		return JSONWire{}, nil
	case "protobuf":
		return ProtobufWire{}, nil
	default:
		return nil, errors.Errorf("unknown wire codec %q", name)
	}
}

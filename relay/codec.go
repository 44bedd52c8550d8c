package relay

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// PayloadCodec turns protocol messages into envelope payloads and back.
type PayloadCodec[M any] interface {
	Marshal(msg M) ([]byte, error)
	Unmarshal(data []byte) (M, error)
}

// JSONPayload encodes protocol messages as JSON.
type JSONPayload[M any] struct{}

// Marshal implements PayloadCodec.
func (JSONPayload[M]) Marshal(msg M) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal implements PayloadCodec.
func (JSONPayload[M]) Unmarshal(data []byte) (M, error) {
	var msg M
	err := json.Unmarshal(data, &msg)
	return msg, err
}

// Encode wraps msg in an envelope. Serialization failures wrap ErrMalformed.
func Encode[M any](codec PayloadCodec[M], msg M, sessionID string, sender uint16, recipient *uint16, seq uint64) (Envelope, error) {
	payload, err := codec.Marshal(msg)
	if err != nil {
		return Envelope{}, errors.Wrapf(ErrMalformed, "encode payload seq %d: %v", seq, err)
	}
	return Envelope{
		SessionID: sessionID,
		Sender:    sender,
		Recipient: recipient,
		Payload:   payload,
		Seq:       seq,
	}, nil
}

// Decode extracts the protocol message carried by env. Deserialization
// failures wrap ErrMalformed and keep the underlying cause in the message.
func Decode[M any](codec PayloadCodec[M], env Envelope) (M, error) {
	msg, err := codec.Unmarshal(env.Payload)
	if err != nil {
		var zero M
		return zero, errors.Wrapf(ErrMalformed, "decode payload from party %d seq %d: %v", env.Sender, env.Seq, err)
	}
	return msg, nil
}

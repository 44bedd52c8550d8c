package relay

import (
	"fmt"

	"github.com/f3rmion/frostrelay/round"
)

// Envelope addresses one serialized protocol message.
//
// Recipient is nil for broadcasts. Seq starts at 1 and increases by one for
// every envelope a sender emits within a session. Round is reserved and
// always 0; rounds are tracked inside the payload.
type Envelope struct {
	SessionID string  `json:"session_id"`
	Sender    uint16  `json:"sender"`
	Recipient *uint16 `json:"recipient"`
	Round     uint16  `json:"round"`
	Payload   []byte  `json:"payload"`
	Seq       uint64  `json:"seq"`
}

// Kind classifies the envelope by whether it names a recipient.
func (e Envelope) Kind() round.MessageType {
	if e.Recipient == nil {
		return round.Broadcast
	}
	return round.P2P
}

// IsFor reports whether party i should receive e. A sender never receives
// its own broadcast.
func (e Envelope) IsFor(i uint16) bool {
	if e.Recipient == nil {
		return e.Sender != i
	}
	return *e.Recipient == i
}

func (e Envelope) String() string {
	to := "all"
	if e.Recipient != nil {
		to = fmt.Sprintf("%d", *e.Recipient)
	}
	return fmt.Sprintf("session=%s %d->%s seq=%d len=%d", e.SessionID, e.Sender, to, e.Seq, len(e.Payload))
}

// Recipient returns a pointer suitable for Envelope.Recipient.
func Recipient(i uint16) *uint16 {
	return &i
}

package round

import (
	"context"
	"fmt"
)

// MessageType tells whether a message was addressed to everyone or to a
// single party.
type MessageType uint8

const (
	// Broadcast messages are delivered to every other party.
	Broadcast MessageType = iota
	// P2P messages are delivered to one party only.
	P2P
)

func (t MessageType) String() string {
	switch t {
	case Broadcast:
		return "broadcast"
	case P2P:
		return "p2p"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}

// Incoming is a message received from another party.
type Incoming[M any] struct {
	// ID is unique per sender within one execution.
	ID     uint64
	Sender uint16
	Type   MessageType
	Msg    M
}

// Destination addresses an outgoing message.
type Destination struct {
	party uint16
	one   bool
}

// AllParties addresses every other party.
func AllParties() Destination { return Destination{} }

// OneParty addresses the party with the given index.
func OneParty(i uint16) Destination { return Destination{party: i, one: true} }

// IsBroadcast reports whether d addresses every party.
func (d Destination) IsBroadcast() bool { return !d.one }

// Party returns the addressed party index. ok is false for broadcasts.
func (d Destination) Party() (i uint16, ok bool) { return d.party, d.one }

func (d Destination) String() string {
	if d.one {
		return fmt.Sprintf("party %d", d.party)
	}
	return "all"
}

// Outgoing is a message a party wants delivered.
type Outgoing[M any] struct {
	Recipient Destination
	Msg       M
}

// ToAll wraps msg as a broadcast.
func ToAll[M any](msg M) Outgoing[M] {
	return Outgoing[M]{Recipient: AllParties(), Msg: msg}
}

// ToParty wraps msg as a p2p message to party i.
func ToParty[M any](i uint16, msg M) Outgoing[M] {
	return Outgoing[M]{Recipient: OneParty(i), Msg: msg}
}

// Source yields incoming messages. Recv blocks until a message is available
// and returns io.EOF once the stream is exhausted.
type Source[M any] interface {
	Recv(ctx context.Context) (Incoming[M], error)
}

// Sink accepts outgoing messages. Send may buffer; Flush forces delivery of
// everything sent so far. Close releases the sink.
type Sink[M any] interface {
	Send(ctx context.Context, msg Outgoing[M]) error
	Flush(ctx context.Context) error
	Close() error
}

// Delivery is the incoming and outgoing halves handed to a protocol.
type Delivery[M any] struct {
	Incoming Source[M]
	Outgoing Sink[M]
}

// SendAll sends each message to sink and flushes once.
func SendAll[M any](ctx context.Context, sink Sink[M], msgs ...Outgoing[M]) error {
	for _, m := range msgs {
		if err := sink.Send(ctx, m); err != nil {
			return err
		}
	}
	return sink.Flush(ctx)
}

package round

import (
	"context"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// Message is implemented by protocol messages that know which round they
// belong to.
type Message interface {
	RoundNumber() uint16
}

type roundState[M Message] struct {
	kind     MessageType
	received map[uint16]Incoming[M]
	done     bool
}

// Router pulls messages from a Source and sorts them into rounds. Each
// registered round completes once every other party has sent exactly one
// message of the expected type. Messages for rounds that are not being
// awaited yet are kept until they are.
type Router[M Message] struct {
	src     Source[M]
	parties uint16
	self    uint16
	rounds  map[uint16]*roundState[M]
}

// NewRouter returns a router for party self among parties participants.
func NewRouter[M Message](src Source[M], parties, self uint16) *Router[M] {
	return &Router[M]{
		src:     src,
		parties: parties,
		self:    self,
		rounds:  make(map[uint16]*roundState[M]),
	}
}

// AddRound registers a round that expects one message of kind from every
// other party.
func (r *Router[M]) AddRound(number uint16, kind MessageType) {
	r.rounds[number] = &roundState[M]{
		kind:     kind,
		received: make(map[uint16]Incoming[M]),
	}
}

// Complete blocks until the given round has a message from every other
// party and returns them ordered by sender.
func (r *Router[M]) Complete(ctx context.Context, number uint16) ([]Incoming[M], error) {
	target, ok := r.rounds[number]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownRound, "round %d was not registered", number)
	}
	if target.done {
		return nil, errors.Errorf("round %d already completed", number)
	}

	for len(target.received) < int(r.parties)-1 {
		in, err := r.src.Recv(ctx)
		if err == io.EOF {
			return nil, errors.Wrapf(ErrUnexpectedEOF, "round %d has %d of %d messages",
				number, len(target.received), r.parties-1)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "receive for round %d", number)
		}
		if err := r.accept(in); err != nil {
			return nil, err
		}
	}

	target.done = true
	out := make([]Incoming[M], 0, len(target.received))
	for _, in := range target.received {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sender < out[j].Sender })
	target.received = nil
	return out, nil
}

func (r *Router[M]) accept(in Incoming[M]) error {
	if in.Sender >= r.parties || in.Sender == r.self {
		return errors.Wrapf(ErrUnknownSender, "sender %d (self %d, %d parties)", in.Sender, r.self, r.parties)
	}
	number := in.Msg.RoundNumber()
	st, ok := r.rounds[number]
	if !ok || st.done {
		return errors.Wrapf(ErrUnknownRound, "round %d from party %d", number, in.Sender)
	}
	if in.Type != st.kind {
		return errors.Wrapf(ErrUnexpectedType, "round %d wants %s, party %d sent %s", number, st.kind, in.Sender, in.Type)
	}
	if _, dup := st.received[in.Sender]; dup {
		return errors.Wrapf(ErrDuplicateMessage, "round %d from party %d", number, in.Sender)
	}
	st.received[in.Sender] = in
	return nil
}

package session

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/f3rmion/frostrelay/secp256k1"
)

const executionTag = "frostrelay/execution"

// ExecutionID binds protocol messages to one protocol run.
type ExecutionID [32]byte

// NewExecutionID derives the execution identifier from a caller-supplied
// session id. Every party of one run must use the same session id.
func NewExecutionID(sessionID []byte) ExecutionID {
	var eid ExecutionID
	copy(eid[:], secp256k1.TaggedHash([]byte(executionTag), sessionID))
	return eid
}

// String returns the hex encoding of the first eight bytes.
func (e ExecutionID) String() string {
	return hex.EncodeToString(e[:8])
}

func (e ExecutionID) check(got []byte, sender uint16) error {
	if !bytes.Equal(e[:], got) {
		return fmt.Errorf("%w: party %d", ErrForeignExecution, sender)
	}
	return nil
}

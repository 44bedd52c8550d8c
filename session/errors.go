package session

import "errors"

var (
	// ErrForeignExecution is returned when a message carries another
	// execution's identifier.
	ErrForeignExecution = errors.New("message belongs to another execution")
	// ErrInvalidShare is returned when a secret share or signature share
	// fails verification. The error names the culprit.
	ErrInvalidShare = errors.New("invalid share")
	// ErrSignerSet is returned for an unusable signer set.
	ErrSignerSet = errors.New("invalid signer set")
	// ErrMalformedMessage is returned when a protocol message cannot be
	// decoded into group elements.
	ErrMalformedMessage = errors.New("malformed protocol message")
	// ErrNoKeyShare is returned when signing is attempted before key
	// generation finished.
	ErrNoKeyShare = errors.New("no key share: key generation not complete")
	// ErrSessionConsumed is returned by a second Sign on one session.
	ErrSessionConsumed = errors.New("signing session already used")
	// ErrBadSignature is returned when an aggregate signature does not
	// verify.
	ErrBadSignature = errors.New("signature verification failed")
)

package round

import "github.com/pkg/errors"

var (
	// ErrUnexpectedEOF is returned when the source is exhausted before a
	// round completed.
	ErrUnexpectedEOF = errors.New("round: incoming stream ended before round completed")
	// ErrUnknownRound is returned for a message carrying a round number the
	// router was not told about.
	ErrUnknownRound = errors.New("round: message for unknown round")
	// ErrDuplicateMessage is returned when a party sends twice in one round.
	ErrDuplicateMessage = errors.New("round: duplicate message")
	// ErrUnexpectedType is returned when a p2p message arrives in a
	// broadcast round or vice versa.
	ErrUnexpectedType = errors.New("round: unexpected message type")
	// ErrUnknownSender is returned for a sender index outside the party set
	// or equal to the local party.
	ErrUnknownSender = errors.New("round: unknown sender")
)

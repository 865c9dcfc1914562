package event

import "errors"

// Sentinel errors shared by every adapter and the root package, per the
// error taxonomy in spec.md §7.
var (
	// ErrInFlight is returned by send_message when a turn is already in
	// progress on this session (spec.md §3, §4.8).
	ErrInFlight = errors.New("agentsession: a turn is already in flight")
	// ErrClosed is returned by any operation attempted after close().
	ErrClosed = errors.New("agentsession: session is closed")
	// ErrNotFound is returned when resume/history lookup cannot locate the
	// requested session id on disk.
	ErrNotFound = errors.New("agentsession: session not found")
	// ErrProtocolViolation marks a child response that breaks its own
	// protocol contract, e.g. a resumed session reporting a different
	// SessionId than requested.
	ErrProtocolViolation = errors.New("agentsession: protocol violation")
)

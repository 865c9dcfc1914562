// Package event defines the normalized event and approval vocabulary shared
// by every adapter. Nothing in this package depends on how a child process
// is spawned or which wire dialect it speaks — that keeps it importable from
// both the adapters and the public agentsession package without a cycle.
package event

import (
	"encoding/json"
	"time"
)

// Kind identifies which normalized event variant a Event carries.
type Kind string

// Event kinds, one per normalized event variant.
const (
	KindInit     Kind = "init"
	KindText     Kind = "text"
	KindThinking Kind = "thinking"
	KindToolUse  Kind = "tool_use"
	KindResult   Kind = "tool_result"
	KindTurnEnd  Kind = "turn_end"
	KindError    Kind = "error"
	KindUnknown  Kind = "unknown"
)

// TurnStatus reports how a turn concluded.
type TurnStatus string

// Terminal turn outcomes.
const (
	TurnSuccess   TurnStatus = "success"
	TurnError     TurnStatus = "error"
	TurnCancelled TurnStatus = "cancelled"
)

// Usage reports token accounting for a completed turn, when the agent
// reports it.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Event is the tagged union every adapter normalizes its wire dialect into.
// Only the fields relevant to Kind are populated; the rest are zero.
type Event struct {
	Kind      Kind
	SessionID string
	TurnID    string
	// Timestamp is nil when the source event carried no parseable
	// timestamp; callers must not assume "now" (see SPEC_FULL.md §6.4).
	Timestamp *time.Time

	// Init
	Model string

	// Text / Thinking
	Text       string
	IsPartial  bool
	Thinking   string
	Summary    string

	// ToolUse
	ToolUseID string
	ToolName  string
	Input     any

	// ToolResult (reuses ToolUseID above)
	Output       string
	IsError      bool
	ErrorMessage string

	// TurnEnd
	Status     TurnStatus
	Usage      *Usage
	DurationMS int64

	// Error
	Code string

	// Unknown
	OriginalType string
	Raw          any
}

// ParseTimestamp looks for a top-level "timestamp" field on a raw wire line
// and parses it as RFC3339. It returns nil when the field is absent or does
// not parse, rather than falling back to "now" — spec.md §9 flags the "now"
// fallback as clock-skew-hiding, so this implementation never guesses.
func ParseTimestamp(raw []byte) *time.Time {
	var envelope struct {
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Timestamp == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, envelope.Timestamp)
	if err != nil {
		return nil
	}
	return &t
}

// FatalError wraps an Event of Kind Error that terminates the session's
// event stream, per spec.md §7's propagation policy: at most one fatal
// error reaches the consumer, after which the stream is closed.
type FatalError struct {
	Event Event
}

// Error implements the error interface using the wrapped event's message
// verbatim, preserving the child's original text per spec.md §7.
func (e *FatalError) Error() string {
	return e.Event.ErrorMessage
}

// Package agentc implements AgentC's spawn-per-turn, file-backed dialect:
// a flat event stream with no control channel, grounded on the
// init/message/tool_use/tool_result/result/error/retry taxonomy in
// spec.md §4.2 and the turn/thread split shown in
// other_examples/58fe49b1_kdlbs-kandev…codex-adapter.go.go.
package agentc

// InitEvent carries the SessionId on the first turn.
type InitEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Model     string `json:"model,omitempty"`
}

// MessageEvent covers role `user` / `assistant|model` / anything else.
type MessageEvent struct {
	Type      string `json:"type"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// ToolUseEvent and ToolResultEvent are flat (no containing content array),
// unlike AgentA's block-embedded shape.
type ToolUseEvent struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Input     any    `json:"input"`
	SessionID string `json:"session_id,omitempty"`
}

type ToolResultEvent struct {
	Type      string `json:"type"`
	ToolUseID string `json:"tool_use_id"`
	Output    any    `json:"output"`
	IsError   bool   `json:"is_error"`
	SessionID string `json:"session_id,omitempty"`
}

// ResultEvent is the turn's terminal event.
type ResultEvent struct {
	Type       string `json:"type"`
	IsError    bool   `json:"is_error"`
	Result     string `json:"result"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
}

// ErrorEvent is a non-terminal error notice.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RetryEvent signals the child is retrying an upstream call; carried as
// Unknown since this library does no retry handling of its own (spec.md §1
// Non-goals: "no retry/backoff of the child's upstream API calls").
type RetryEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

// Package agentb implements AgentB's app-server per-turn wire dialect: RPC
// frames keyed by a top-level type, with an inner tagged union for item
// payloads. Struct shapes follow the item/tool_call/file_change taxonomy
// shown in other_examples/43c7a4d1_kdlbs-kandev…amp_adapter.go.go and
// other_examples/58fe49b1_kdlbs-kandev…codex-adapter.go.go, the two pack
// files closest to a real app-server protocol.
package agentb

import "encoding/json"

// ThreadStartedEvent is the SessionId source (aliased as ThreadId).
type ThreadStartedEvent struct {
	Type     string `json:"type"`
	ThreadID string `json:"thread_id"`
}

// SessionMetaEvent carries model info for an already-started thread.
type SessionMetaEvent struct {
	Type     string `json:"type"`
	ThreadID string `json:"thread_id"`
	Model    string `json:"model"`
}

// TurnCompletedEvent and TurnFailedEvent are a turn's terminal events.
type TurnCompletedEvent struct {
	Type       string `json:"type"`
	ThreadID   string `json:"thread_id"`
	DurationMS int64  `json:"duration_ms"`
	Usage      *Usage `json:"usage"`
}

type TurnFailedEvent struct {
	Type     string `json:"type"`
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
}

// Usage mirrors AgentB's turn-level token accounting.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ItemEvent wraps item.started/updated/completed; Item is an inner tagged
// union discriminated by its own Type field.
type ItemEvent struct {
	Type     string          `json:"type"`
	ThreadID string          `json:"thread_id"`
	Item     json.RawMessage `json:"item"`
}

// itemEnvelope sniffs an Item's inner type before full decode.
type itemEnvelope struct {
	Type string `json:"type"`
}

// AgentMessageItem is a streamed or final assistant text block.
type AgentMessageItem struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	IsPartial bool   `json:"is_partial"`
}

// ReasoningItem is a thinking trace.
type ReasoningItem struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Summary string `json:"summary,omitempty"`
}

// ToolCallItem is the app-server's tool-invocation item, covering tool_call,
// file_change, mcp_tool_call, and web_search, which all share this shape.
type ToolCallItem struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Input     any    `json:"input"`
	Output    any    `json:"output,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
	ErrorText string `json:"error,omitempty"`
	Status    string `json:"status,omitempty"`
}

// ErrorEvent is a non-terminal error notice. (Item types without a struct
// here, such as todo_list, are decoded as Unknown events.)
type ErrorEvent struct {
	Type     string `json:"type"`
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
}

// ApprovalRequiredEvent is AgentB's out-of-band approval channel.
type ApprovalRequiredEvent struct {
	Type        string `json:"type"`
	RequestID   string `json:"request_id"`
	ToolName    string `json:"tool_name"`
	Description string `json:"description"`
	Input       any    `json:"input"`
}

// ApprovalResponseFrame is the RPC frame the adapter writes back on the
// dedicated approval channel, echoing the originating request id (spec.md
// §4.6, §6).
type ApprovalResponseFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	Decision  string `json:"decision"`
	Message   string `json:"message,omitempty"`
}

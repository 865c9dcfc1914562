// Package agenta implements AgentA's long-lived bidirectional stream-json
// wire dialect: typed envelopes for the assistant/user/system/result events
// the child emits on stdout, and the user-message/control-response lines
// the adapter writes back on stdin. Struct shapes are grounded on
// dm-vev-OpenClaude/internal/streamjson/events.go, which implements this
// exact dialect for its own process.
package agenta

import "encoding/json"

// ContentBlock is one block of an Anthropic-style content array: text,
// thinking, tool_use, or tool_result.
type ContentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Thinking  string `json:"thinking,omitempty"`
	Summary   string `json:"summary,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Input     any    `json:"input,omitempty"`
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   any    `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// Message is the envelope carried by assistant/user events.
type Message struct {
	Role    string `json:"role"`
	Model   string `json:"model,omitempty"`
	Content any    `json:"content"`
	Usage   *Usage `json:"usage,omitempty"`
}

// Usage mirrors the Claude-style usage block on assistant messages.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// AssistantEvent carries an ordered list of content blocks; each block
// expands into one normalized event in block order (spec.md §4.2).
type AssistantEvent struct {
	Type      string  `json:"type"`
	Message   Message `json:"message"`
	SessionID string  `json:"session_id"`
}

// UserEvent, when it carries tool_result blocks, expands to ToolResult
// events (spec.md §4.2). User events that are just the consumer's own
// prompt echoed back are not emitted by the adapter (it already has them).
type UserEvent struct {
	Type      string  `json:"type"`
	Message   Message `json:"message"`
	SessionID string  `json:"session_id"`
}

// SystemInitEvent is the authoritative source of SessionID (spec.md §4.2).
type SystemInitEvent struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
}

// SystemEvent covers every system subtype other than init, including
// mid-session compaction boundaries, which spec.md §9 says to treat as
// opaque regardless of subtype.
type SystemEvent struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	SessionID string `json:"session_id"`
}

// ResultEvent is the terminal event of a turn.
type ResultEvent struct {
	Type       string   `json:"type"`
	Subtype    string   `json:"subtype"`
	IsError    bool     `json:"is_error"`
	DurationMS int64    `json:"duration_ms"`
	SessionID  string   `json:"session_id"`
	Usage      *Usage   `json:"usage"`
	Result     string   `json:"result"`
	Errors     []string `json:"errors,omitempty"`
}

// ControlRequestEvent is AgentA's out-of-band approval/control channel.
type ControlRequestEvent struct {
	Type      string         `json:"type"`
	RequestID string         `json:"request_id"`
	Request   map[string]any `json:"request"`
}

// CanUseToolRequest is the decoded form of a control_request whose
// Request.subtype is "can_use_tool".
type CanUseToolRequest struct {
	RequestID   string
	ToolName    string
	ToolUseID   string
	Input       any
	Description string
}

// ParseCanUseTool extracts a CanUseToolRequest from a ControlRequestEvent
// whose subtype is "can_use_tool", returning ok=false for any other
// subtype.
func ParseCanUseTool(ev ControlRequestEvent) (CanUseToolRequest, bool) {
	if ev.Request == nil {
		return CanUseToolRequest{}, false
	}
	subtype, _ := ev.Request["subtype"].(string)
	if subtype != "can_use_tool" {
		return CanUseToolRequest{}, false
	}
	req := CanUseToolRequest{RequestID: ev.RequestID}
	req.ToolName, _ = ev.Request["tool_name"].(string)
	req.ToolUseID, _ = ev.Request["tool_use_id"].(string)
	req.Input = ev.Request["input"]
	req.Description, _ = ev.Request["description"].(string)
	return req, true
}

// UserMessageLine builds the stdin line for a new user prompt (spec.md
// §4.5, §6). No newline is embedded in text without JSON escaping it.
func UserMessageLine(text string) ([]byte, error) {
	payload := map[string]any{
		"type": "user",
		"message": map[string]any{
			"role": "user",
			"content": []map[string]any{
				{"type": "text", "text": text},
			},
		},
	}
	return encodeLine(payload)
}

// ControlResponseLine builds the stdin line answering a control_request,
// tagged with the originating request_id (spec.md §4.5, §6).
func ControlResponseLine(requestID, behavior string, updatedInput any, message string) ([]byte, error) {
	response := map[string]any{"behavior": behavior}
	if updatedInput != nil {
		response["updatedInput"] = updatedInput
	}
	if message != "" {
		response["message"] = message
	}
	payload := map[string]any{
		"type":       "control_response",
		"request_id": requestID,
		"response":   response,
	}
	return encodeLine(payload)
}

func encodeLine(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

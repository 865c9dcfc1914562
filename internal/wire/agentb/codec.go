package agentb

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/csells/agentsession/event"
)

// Context carries the latched session id, aliased as ThreadId for this
// dialect but semantically the same (spec.md §4.6).
type Context struct {
	SessionID string
}

type envelope struct {
	Type string `json:"type"`
}

// Decode turns one AgentB wire frame into zero or more normalized events.
// Partial/final agent_message reconciliation and answering approval_required
// are adapter concerns (spec.md §4.6); the codec reports what the wire said
// without deduplicating across frames.
func Decode(raw []byte, ctx Context) ([]event.Event, *ApprovalRequiredEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("agentb: decode envelope: %w", err)
	}

	switch env.Type {
	case "thread.started":
		var ev ThreadStartedEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agentb: decode thread.started: %w", err)
		}
		return []event.Event{{Kind: event.KindInit, SessionID: ev.ThreadID}}, nil, nil

	case "session.meta":
		var ev SessionMetaEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agentb: decode session.meta: %w", err)
		}
		return []event.Event{{
			Kind:      event.KindInit,
			SessionID: sessionOr(ctx, ev.ThreadID),
			Model:     ev.Model,
		}}, nil, nil

	case "turn.started":
		return nil, nil, nil

	case "turn.completed":
		var ev TurnCompletedEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agentb: decode turn.completed: %w", err)
		}
		return []event.Event{{
			Kind:       event.KindTurnEnd,
			SessionID:  sessionOr(ctx, ev.ThreadID),
			Status:     event.TurnSuccess,
			Usage:      toUsage(ev.Usage),
			DurationMS: ev.DurationMS,
		}}, nil, nil

	case "turn.failed":
		var ev TurnFailedEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agentb: decode turn.failed: %w", err)
		}
		return []event.Event{{
			Kind:         event.KindTurnEnd,
			SessionID:    sessionOr(ctx, ev.ThreadID),
			Status:       event.TurnError,
			ErrorMessage: ev.Message,
		}}, nil, nil

	case "item.started", "item.updated", "item.completed":
		var ev ItemEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agentb: decode %s: %w", env.Type, err)
		}
		return decodeItem(sessionOr(ctx, ev.ThreadID), env.Type, ev.Item), nil, nil

	case "user_message":
		return nil, nil, nil

	case "error":
		var ev ErrorEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agentb: decode error: %w", err)
		}
		return []event.Event{{
			Kind:         event.KindError,
			SessionID:    sessionOr(ctx, ev.ThreadID),
			ErrorMessage: ev.Message,
		}}, nil, nil

	case "approval_required":
		var ev ApprovalRequiredEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agentb: decode approval_required: %w", err)
		}
		return []event.Event{{
			Kind:         event.KindUnknown,
			SessionID:    ctx.SessionID,
			OriginalType: "approval_required",
			Raw:          raw,
		}}, &ev, nil

	default:
		return []event.Event{{
			Kind:         event.KindUnknown,
			SessionID:    ctx.SessionID,
			OriginalType: env.Type,
			Raw:          raw,
		}}, nil, nil
	}
}

func decodeItem(sessionID, frameType string, raw json.RawMessage) []event.Event {
	var env itemEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return []event.Event{{Kind: event.KindUnknown, SessionID: sessionID, OriginalType: "item:decode_error", Raw: raw}}
	}

	switch env.Type {
	case "agent_message":
		var item AgentMessageItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil
		}
		isPartial := item.IsPartial || frameType == "item.started" || frameType == "item.updated"
		return []event.Event{{
			Kind:      event.KindText,
			SessionID: sessionID,
			Text:      item.Text,
			IsPartial: isPartial,
		}}

	case "reasoning":
		var item ReasoningItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil
		}
		return []event.Event{{
			Kind:      event.KindThinking,
			SessionID: sessionID,
			Thinking:  item.Text,
			Summary:   item.Summary,
		}}

	case "tool_call", "file_change", "mcp_tool_call", "web_search":
		var item ToolCallItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil
		}
		if frameType == "item.completed" {
			return []event.Event{{
				Kind:         event.KindResult,
				SessionID:    sessionID,
				ToolUseID:    item.ID,
				Output:       toText(item.Output),
				IsError:      item.IsError,
				ErrorMessage: item.ErrorText,
			}}
		}
		return []event.Event{{
			Kind:      event.KindToolUse,
			SessionID: sessionID,
			ToolUseID: item.ID,
			ToolName:  item.Name,
			Input:     item.Input,
		}}

	default:
		return []event.Event{{
			Kind:         event.KindUnknown,
			SessionID:    sessionID,
			OriginalType: "item:" + env.Type,
			Raw:          raw,
		}}
	}
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func sessionOr(ctx Context, threadID string) string {
	if threadID != "" {
		return threadID
	}
	return ctx.SessionID
}

func toUsage(u *Usage) *event.Usage {
	if u == nil {
		return nil
	}
	return &event.Usage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
}

// ApprovalResponseLine builds the approval-channel frame the adapter writes
// back, echoing the originating request id verbatim (spec.md §4.6, §6).
func ApprovalResponseLine(requestID, decision, message string) ([]byte, error) {
	frame := ApprovalResponseFrame{
		Type:      "approval_response",
		RequestID: requestID,
		Decision:  decision,
		Message:   message,
	}
	b, err := json.Marshal(frame)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// TurnFrame builds the RPC frame that starts a new turn on the shared child
// (spec.md §4.6: "multiple turns share one child process"). It generates and
// returns a fresh request id for the caller's own logs; the turn.* frames
// the child sends back do not carry it.
func TurnFrame(prompt string) ([]byte, string, error) {
	requestID := uuid.NewString()
	frame := map[string]any{"type": "turn.start", "request_id": requestID, "prompt": prompt}
	b, err := json.Marshal(frame)
	if err != nil {
		return nil, "", err
	}
	return append(b, '\n'), requestID, nil
}

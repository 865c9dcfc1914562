package agentc

import (
	"encoding/json"
	"fmt"

	"github.com/csells/agentsession/event"
)

// Context carries the latched session id, used when history replay or a
// resumed turn's wire lines omit session_id (spec.md §4.2).
type Context struct {
	SessionID string
}

type envelope struct {
	Type string `json:"type"`
}

// Decode turns one AgentC wire line into zero or one normalized event (ok
// is false when the line carries no new information, e.g. the consumer's
// own prompt echoed back). This dialect is flat: unlike AgentA, a line
// never fans out to more than one event.
func Decode(raw []byte, ctx Context) (ev event.Event, ok bool, err error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return event.Event{}, false, fmt.Errorf("agentc: decode envelope: %w", err)
	}

	switch env.Type {
	case "init":
		var e InitEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return event.Event{}, false, fmt.Errorf("agentc: decode init: %w", err)
		}
		return event.Event{Kind: event.KindInit, SessionID: e.SessionID, Model: e.Model}, true, nil

	case "message":
		var e MessageEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return event.Event{}, false, fmt.Errorf("agentc: decode message: %w", err)
		}
		sid := sessionOr(ctx, e.SessionID)
		if e.Role == "user" {
			// The consumer's own prompt echoed back; carries no new
			// information (mirrors AgentA's bare user-text handling).
			return event.Event{}, false, nil
		}
		return event.Event{Kind: event.KindText, SessionID: sid, Text: e.Text}, true, nil

	case "tool_use":
		var e ToolUseEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return event.Event{}, false, fmt.Errorf("agentc: decode tool_use: %w", err)
		}
		return event.Event{
			Kind:      event.KindToolUse,
			SessionID: sessionOr(ctx, e.SessionID),
			ToolUseID: e.ID,
			ToolName:  e.Name,
			Input:     e.Input,
		}, true, nil

	case "tool_result":
		var e ToolResultEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return event.Event{}, false, fmt.Errorf("agentc: decode tool_result: %w", err)
		}
		return event.Event{
			Kind:      event.KindResult,
			SessionID: sessionOr(ctx, e.SessionID),
			ToolUseID: e.ToolUseID,
			Output:    toText(e.Output),
			IsError:   e.IsError,
		}, true, nil

	case "result":
		var e ResultEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return event.Event{}, false, fmt.Errorf("agentc: decode result: %w", err)
		}
		sid := sessionOr(ctx, e.SessionID)
		if e.IsError {
			return event.Event{Kind: event.KindError, SessionID: sid, ErrorMessage: e.Result}, true, nil
		}
		return event.Event{
			Kind:       event.KindTurnEnd,
			SessionID:  sid,
			Status:     event.TurnSuccess,
			DurationMS: e.DurationMS,
		}, true, nil

	case "error":
		var e ErrorEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return event.Event{}, false, fmt.Errorf("agentc: decode error: %w", err)
		}
		return event.Event{Kind: event.KindError, SessionID: ctx.SessionID, ErrorMessage: e.Message}, true, nil

	case "retry":
		return event.Event{Kind: event.KindUnknown, SessionID: ctx.SessionID, OriginalType: "retry", Raw: raw}, true, nil

	default:
		return event.Event{Kind: event.KindUnknown, SessionID: ctx.SessionID, OriginalType: env.Type, Raw: raw}, true, nil
	}
}

func sessionOr(ctx Context, sid string) string {
	if sid != "" {
		return sid
	}
	return ctx.SessionID
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

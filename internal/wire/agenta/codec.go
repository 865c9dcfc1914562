package agenta

import (
	"encoding/json"
	"fmt"

	"github.com/csells/agentsession/event"
)

// Context carries the latched session id so events preceding (or lacking)
// a system/init line can still be stamped consistently.
type Context struct {
	SessionID string
}

// envelope is sniffed first to route decoding to the right typed struct.
type envelope struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
}

// Decode turns one AgentA wire line into zero or more normalized events, in
// wire order, per spec.md §4.2. A content-bearing assistant/user event fans
// out into one event per block. control_request lines additionally surface
// a CanUseToolRequest the adapter must answer out of band; the request is
// also returned as an Unknown event for observability, per spec.md §4.5.
func Decode(raw []byte, ctx Context) ([]event.Event, *CanUseToolRequest, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("agenta: decode envelope: %w", err)
	}

	switch env.Type {
	case "system":
		if env.Subtype == "init" {
			var ev SystemInitEvent
			if err := json.Unmarshal(raw, &ev); err != nil {
				return nil, nil, fmt.Errorf("agenta: decode system init: %w", err)
			}
			return []event.Event{{
				Kind:      event.KindInit,
				SessionID: ev.SessionID,
				Model:     ev.Model,
			}}, nil, nil
		}
		var ev SystemEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agenta: decode system: %w", err)
		}
		return []event.Event{{
			Kind:         event.KindUnknown,
			SessionID:    sessionOr(ctx, ev.SessionID),
			OriginalType: "system:" + ev.Subtype,
			Raw:          raw,
		}}, nil, nil

	case "assistant":
		var ev AssistantEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agenta: decode assistant: %w", err)
		}
		return blocksToEvents(sessionOr(ctx, ev.SessionID), ev.Message.Content), nil, nil

	case "user":
		var ev UserEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agenta: decode user: %w", err)
		}
		// Only tool_result blocks are surfaced; a bare user text echo is
		// the consumer's own prompt and carries no new information.
		events := blocksToEvents(sessionOr(ctx, ev.SessionID), ev.Message.Content)
		filtered := events[:0]
		for _, e := range events {
			if e.Kind == event.KindResult {
				filtered = append(filtered, e)
			}
		}
		return filtered, nil, nil

	case "result":
		var ev ResultEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agenta: decode result: %w", err)
		}
		sid := sessionOr(ctx, ev.SessionID)
		if ev.IsError {
			msg := ev.Result
			if msg == "" && len(ev.Errors) > 0 {
				msg = ev.Errors[0]
			}
			return []event.Event{{
				Kind:         event.KindError,
				SessionID:    sid,
				ErrorMessage: msg,
			}}, nil, nil
		}
		return []event.Event{{
			Kind:       event.KindTurnEnd,
			SessionID:  sid,
			Status:     resultStatus(ev.Subtype),
			Usage:      toUsage(ev.Usage),
			DurationMS: ev.DurationMS,
		}}, nil, nil

	case "control_request":
		var ev ControlRequestEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, nil, fmt.Errorf("agenta: decode control_request: %w", err)
		}
		var req *CanUseToolRequest
		if parsed, ok := ParseCanUseTool(ev); ok {
			req = &parsed
		}
		return []event.Event{{
			Kind:         event.KindUnknown,
			SessionID:    ctx.SessionID,
			OriginalType: "control_request",
			Raw:          raw,
		}}, req, nil

	default:
		return []event.Event{{
			Kind:         event.KindUnknown,
			SessionID:    ctx.SessionID,
			OriginalType: env.Type,
			Raw:          raw,
		}}, nil, nil
	}
}

func sessionOr(ctx Context, sid string) string {
	if sid != "" {
		return sid
	}
	return ctx.SessionID
}

func resultStatus(subtype string) event.TurnStatus {
	switch subtype {
	case "success":
		return event.TurnSuccess
	case "cancelled", "canceled":
		return event.TurnCancelled
	default:
		return event.TurnError
	}
}

func toUsage(u *Usage) *event.Usage {
	if u == nil {
		return nil
	}
	return &event.Usage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
}

// blocksToEvents fans a Message's content out into one event per block, in
// array order (spec.md §4.2's block-order invariant).
func blocksToEvents(sessionID string, content any) []event.Event {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		// A single text block ships as a bare string on some wire lines.
		var text string
		if err := json.Unmarshal(raw, &text); err == nil && text != "" {
			return []event.Event{{Kind: event.KindText, SessionID: sessionID, Text: text}}
		}
		return nil
	}

	events := make([]event.Event, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case "text":
			events = append(events, event.Event{
				Kind:      event.KindText,
				SessionID: sessionID,
				Text:      b.Text,
			})
		case "thinking":
			events = append(events, event.Event{
				Kind:      event.KindThinking,
				SessionID: sessionID,
				Thinking:  b.Thinking,
				Summary:   b.Summary,
			})
		case "tool_use":
			events = append(events, event.Event{
				Kind:      event.KindToolUse,
				SessionID: sessionID,
				ToolUseID: b.ID,
				ToolName:  b.Name,
				Input:     b.Input,
			})
		case "tool_result":
			events = append(events, event.Event{
				Kind:         event.KindResult,
				SessionID:    sessionID,
				ToolUseID:    b.ToolUseID,
				Output:       contentToText(b.Content),
				IsError:      b.IsError,
				ErrorMessage: errMessage(b.IsError, b.Content),
			})
		default:
			events = append(events, event.Event{
				Kind:         event.KindUnknown,
				SessionID:    sessionID,
				OriginalType: "block:" + b.Type,
				Raw:          b,
			})
		}
	}
	return events
}

func contentToText(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func errMessage(isError bool, content any) string {
	if !isError {
		return ""
	}
	return contentToText(content)
}

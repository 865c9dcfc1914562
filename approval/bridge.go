// Package approval converts between each adapter's native approval-request
// shape and the unified event.ApprovalRequest/ApprovalResponse vocabulary.
// Every function here is a pure, side-effect-free conversion (spec.md
// §4.10); the adapters own the actual round trip over the control channel.
package approval

import "github.com/csells/agentsession/event"

// commandKeys and filePathKeys list, in priority order, the input keys that
// commonly carry a shell command or a file path inside a tool's input object.
var commandKeys = []string{"command"}
var filePathKeys = []string{"file_path", "path", "blocked_path"}

// FromNative builds a unified ApprovalRequest from a native request's id,
// tool name, description, and raw input object. Command and FilePath are
// lifted from well-known input keys when present.
func FromNative(id, toolName, description string, input any) event.ApprovalRequest {
	req := event.ApprovalRequest{
		ID:          id,
		ToolName:    toolName,
		Description: description,
		Input:       input,
	}
	m, _ := input.(map[string]any)
	if m != nil {
		req.Command = firstStringField(m, commandKeys)
		req.FilePath = firstStringField(m, filePathKeys)
	}
	return req
}

func firstStringField(m map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// NativeBehavior maps a unified Decision to the {allow,deny,allow_always,
// deny_always} vocabulary the children speak on the wire, along with the
// input to echo back. Per spec.md §4.10, an Allow decision that supplies no
// UpdatedInput must echo the original input back verbatim — the wire
// protocol requires the field to be present.
func NativeBehavior(resp event.ApprovalResponse, originalInput any) (behavior string, updatedInput any) {
	switch resp.Decision {
	case event.Allow:
		behavior = "allow"
	case event.AllowAlways:
		behavior = "allow_always"
	case event.DenyAlways:
		behavior = "deny_always"
	default:
		behavior = "deny"
	}
	if resp.Decision == event.Allow || resp.Decision == event.AllowAlways {
		if resp.UpdatedInput != nil {
			updatedInput = resp.UpdatedInput
		} else {
			updatedInput = originalInput
		}
	}
	return behavior, updatedInput
}

// Denied reports whether behavior (as returned by NativeBehavior) denotes a
// denial, for adapters that need to branch on the outcome without
// re-deriving it from the original Decision.
func Denied(behavior string) bool {
	return behavior == "deny" || behavior == "deny_always"
}

// AutoDeny builds the standard response an adapter returns when no handler
// is configured in delegate mode, or when the configured handler panics
// (spec.md §4.5, §7).
func AutoDeny(message string) event.ApprovalResponse {
	return event.ApprovalResponse{Decision: event.Deny, Message: message}
}

package event

// Decision is the consumer's answer to an ApprovalRequest.
type Decision string

// The four decisions an ApprovalHandler may return, per spec.md §3.
const (
	Allow       Decision = "allow"
	Deny        Decision = "deny"
	AllowAlways Decision = "allow_always"
	DenyAlways  Decision = "deny_always"
)

// ApprovalRequest is the unified shape an adapter presents to a consumer's
// ApprovalHandler, regardless of which child protocol originated it.
type ApprovalRequest struct {
	ID          string
	ToolName    string
	Description string
	Input       any
	// Command is lifted from known input keys (e.g. "command") by the
	// ApprovalBridge when the underlying tool input carries one.
	Command string
	// FilePath is lifted from "file_path"/"path"/"blocked_path".
	FilePath string
}

// ApprovalResponse is the consumer's decision, optionally carrying an
// updated tool input (AdapterA) or a message surfaced back to the child.
type ApprovalResponse struct {
	Decision     Decision
	Message      string
	UpdatedInput any
}

// ApprovalHandler is invoked once per tool-execution approval request.
// It may suspend; while it does, the adapter continues to consume events
// from the child to avoid deadlocking it (spec.md §5).
type ApprovalHandler func(req ApprovalRequest) ApprovalResponse

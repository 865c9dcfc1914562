// Package config defines the session configuration consumed by the
// ArgBuilders and adapters. It has no dependency on how a child process is
// spawned, so it is safely importable from both internal adapter packages
// and the public agentsession package.
package config

import "github.com/csells/agentsession/event"

// Kind selects which of the three adapter variants a Session uses.
type Kind string

// The three supported adapter kinds, per spec.md §1.
const (
	AgentA Kind = "agent_a" // long-lived bidirectional JSONL
	AgentB Kind = "agent_b" // app-server per-turn with approval callback
	AgentC Kind = "agent_c" // spawn-per-turn with file-backed history/resume
)

// SandboxMode controls what the child's tools may touch on disk. Values are
// kebab-cased at the ArgBuilder boundary (e.g. WorkspaceWrite becomes
// "workspace-write"); see spec.md §8 invariant 8.
type SandboxMode string

// Supported sandbox modes.
const (
	SandboxUnset           SandboxMode = ""
	SandboxReadOnly        SandboxMode = "readOnly"
	SandboxWorkspaceWrite  SandboxMode = "workspaceWrite"
	SandboxDangerFullAccess SandboxMode = "dangerFullAccess"
)

// ApprovalPolicy controls when AgentB asks before running a tool, passed
// through as a `-c approval_policy=<value>` override.
type ApprovalPolicy string

// Supported approval policies.
const (
	ApprovalPolicyUnset     ApprovalPolicy = ""
	ApprovalPolicyOnRequest ApprovalPolicy = "onRequest"
	ApprovalPolicyOnFailure ApprovalPolicy = "onFailure"
	ApprovalPolicyNever     ApprovalPolicy = "never"
)

// Config describes one Session: which agent to run, where, and how.
type Config struct {
	// Kind selects the adapter. Required.
	Kind Kind
	// ProjectDir is the working directory the child is launched in.
	// Required, and immutable for the life of the Session.
	ProjectDir string
	// Executable overrides the child binary name. Empty uses the
	// adapter's conventional default (A-exec/B-exec/C-exec).
	Executable string
	// ResumeID resumes a prior session/thread instead of starting a new
	// one. It applies from the first send: the first child is already
	// started in resume mode for this id.
	ResumeID string
	// Model overrides the agent's default model, when non-empty.
	Model string
	// BypassApprovals auto-approves every tool call at the child level
	// (AgentA: --dangerously-skip-permissions; AgentB:
	// approval_policy=on-failure + sandbox_mode=workspace-write;
	// AgentC: -y). Mutually exclusive in intent with DelegateApprovals,
	// but ArgBuilder does not enforce that — it is pure and total.
	BypassApprovals bool
	// DelegateApprovals routes tool approval through the consumer's
	// ApprovalHandler via the control channel (AgentA) or the native
	// approval RPC (AgentB). AgentC has no interactive control channel
	// and ignores this field.
	DelegateApprovals bool
	// SandboxMode constrains filesystem access. AgentA has no
	// corresponding flag and ignores this field.
	SandboxMode SandboxMode
	// ApprovalPolicy is AgentB's native approval cadence knob.
	ApprovalPolicy ApprovalPolicy
	// ExtraArgs are appended to the argv verbatim, after every other
	// flag ArgBuilder constructs.
	ExtraArgs []string
	// Env overrides/augments the inherited process environment.
	Env map[string]string
	// ApprovalHandler answers tool-execution approval requests when
	// DelegateApprovals is set. AgentC ignores it (see above).
	ApprovalHandler event.ApprovalHandler
}

// Package argbuild builds the argv vector handed to each child process.
// Every Build function is pure and total: it never touches the filesystem
// or environment (spec.md §4.3), so it is trivially testable against the
// knob table without spawning anything.
package argbuild

import "github.com/csells/agentsession/config"

// DefaultExecutable returns the conventional binary name for an adapter
// kind when config.Config.Executable is left empty.
func DefaultExecutable(kind config.Kind) string {
	switch kind {
	case config.AgentA:
		return "agent-a"
	case config.AgentB:
		return "agent-b"
	case config.AgentC:
		return "agent-c"
	default:
		return ""
	}
}

// BuildA constructs AgentA's argv: always a bidirectional stream-json
// handshake, grounded on
// other_examples/b26f6380_shaharia-lab-claude-agent-sdk-go__claude-process.go.go's
// `--input-format stream-json --output-format stream-json --verbose` spawn.
func BuildA(cfg config.Config) []string {
	args := []string{"--input-format", "stream-json", "--output-format", "stream-json", "--verbose"}

	if cfg.ResumeID != "" {
		args = append(args, "--resume", cfg.ResumeID)
	}
	if cfg.BypassApprovals {
		args = append(args, "--dangerously-skip-permissions")
	}
	if cfg.DelegateApprovals {
		args = append(args, "--permission-prompt-tool", "stdio")
	}
	if cfg.Model != "" {
		args = append(args, "--model", cfg.Model)
	}
	// SandboxMode has no AgentA equivalent (spec.md §4.3 table: "n/a").

	return append(args, cfg.ExtraArgs...)
}

// BuildB constructs AgentB's argv. Resume is a subcommand, not a flag;
// bypass/model/sandbox/approval knobs are all `-c key=value` overrides, per
// the TOML-style config flags in
// other_examples/58fe49b1_kdlbs-kandev…codex-adapter.go.go.
func BuildB(cfg config.Config) []string {
	var args []string
	if cfg.ResumeID != "" {
		args = append(args, "resume", cfg.ResumeID)
	}

	if cfg.BypassApprovals {
		args = append(args, "-c", "approval_policy=on-failure", "-c", "sandbox_mode=workspace-write")
	} else {
		if cfg.ApprovalPolicy != config.ApprovalPolicyUnset {
			args = append(args, "-c", "approval_policy="+Kebab(string(cfg.ApprovalPolicy)))
		}
		if cfg.SandboxMode != config.SandboxUnset {
			args = append(args, "-c", "sandbox_mode="+Kebab(string(cfg.SandboxMode)))
		}
	}
	// DelegateApprovals has no flag: it is the app-server's native
	// approval RPC, always available on this adapter (spec.md §4.3).

	if cfg.Model != "" {
		args = append(args, "-c", "model="+cfg.Model)
	}

	return append(args, cfg.ExtraArgs...)
}

// BuildC constructs AgentC's argv. DelegateApprovals is not supported by
// this adapter and is silently ignored, per spec.md §4.3's table.
func BuildC(cfg config.Config) []string {
	var args []string
	if cfg.ResumeID != "" {
		args = append(args, "-r", cfg.ResumeID)
	}
	if cfg.BypassApprovals {
		args = append(args, "-y")
	}
	if cfg.Model != "" {
		args = append(args, "--model", cfg.Model)
	}
	if cfg.SandboxMode != config.SandboxUnset {
		args = append(args, "--sandbox", Kebab(string(cfg.SandboxMode)))
	}

	return append(args, cfg.ExtraArgs...)
}

// PromptArgsC appends AgentC's per-turn prompt: positional on a session's
// first turn, `-p <prompt>` when resuming (spec.md §4.7).
func PromptArgsC(args []string, prompt string, resuming bool) []string {
	if resuming {
		return append(args, "-p", prompt)
	}
	return append(args, prompt)
}

package argbuild

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/csells/agentsession/config"
)

func TestKebabConvertsLowerCamelCase(t *testing.T) {
	require.Equal(t, "workspace-write", Kebab("workspaceWrite"))
	require.Equal(t, "danger-full-access", Kebab("dangerFullAccess"))
	require.Equal(t, "on-request", Kebab("onRequest"))
	require.Equal(t, "read-only", Kebab("readOnly"))
	require.Equal(t, "never", Kebab("never"))
}

func TestBuildAIncludesStreamJSONHandshake(t *testing.T) {
	args := BuildA(config.Config{})
	require.Equal(t, []string{"--input-format", "stream-json", "--output-format", "stream-json", "--verbose"}, args)
}

func TestBuildAResumeAndBypass(t *testing.T) {
	args := BuildA(config.Config{ResumeID: "sid-1", BypassApprovals: true, Model: "opus"})
	require.Contains(t, args, "--resume")
	require.Contains(t, args, "sid-1")
	require.Contains(t, args, "--dangerously-skip-permissions")
	require.Contains(t, args, "--model")
	require.Contains(t, args, "opus")
}

func TestBuildBResumeIsSubcommandNotFlag(t *testing.T) {
	args := BuildB(config.Config{ResumeID: "th-1"})
	require.Equal(t, []string{"resume", "th-1"}, args)
}

func TestBuildBSandboxModeIsKebabCased(t *testing.T) {
	args := BuildB(config.Config{SandboxMode: config.SandboxWorkspaceWrite})
	require.Contains(t, args, "sandbox_mode=workspace-write")
}

func TestBuildBBypassSetsBothKnobs(t *testing.T) {
	args := BuildB(config.Config{BypassApprovals: true})
	require.Contains(t, args, "approval_policy=on-failure")
	require.Contains(t, args, "sandbox_mode=workspace-write")
}

func TestBuildCIgnoresDelegateApprovals(t *testing.T) {
	args := BuildC(config.Config{DelegateApprovals: true})
	require.Empty(t, args)
}

func TestBuildCSandboxFlag(t *testing.T) {
	args := BuildC(config.Config{SandboxMode: config.SandboxDangerFullAccess})
	require.Equal(t, []string{"--sandbox", "danger-full-access"}, args)
}

func TestPromptArgsCPositionalVsResume(t *testing.T) {
	require.Equal(t, []string{"do a thing"}, PromptArgsC(nil, "do a thing", false))
	require.Equal(t, []string{"-p", "do a thing"}, PromptArgsC(nil, "do a thing", true))
}

func TestExtraArgsAppendedVerbatimAfterEverything(t *testing.T) {
	args := BuildC(config.Config{BypassApprovals: true, ExtraArgs: []string{"--foo", "bar"}})
	require.Equal(t, []string{"-y", "--foo", "bar"}, args)
}

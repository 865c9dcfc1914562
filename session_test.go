package agentsession

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/csells/agentsession/config"
	"github.com/csells/agentsession/event"
)

func TestNewRejectsEmptyProjectDir(t *testing.T) {
	_, err := New(config.Config{Kind: config.AgentA})
	require.Error(t, err)
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New(config.Config{Kind: "agent_z", ProjectDir: t.TempDir()})
	require.Error(t, err)
}

func TestSendMessageAfterCloseFails(t *testing.T) {
	s, err := New(config.Config{Kind: config.AgentC, ProjectDir: t.TempDir(), Executable: "definitely-not-a-real-binary"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.SendMessage(context.Background(), "hi")
	require.ErrorIs(t, err, event.ErrClosed)
}

func TestSendMessageSpawnFailureResetsInFlight(t *testing.T) {
	s, err := New(config.Config{Kind: config.AgentC, ProjectDir: t.TempDir(), Executable: "definitely-not-a-real-binary"})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.SendMessage(context.Background(), "hi")
	require.Error(t, err)

	// A spawn failure must not leave the in-flight flag stuck, per spec.md
	// §7: a failed send_message must not perturb the stream's invariants.
	_, err = s.SendMessage(context.Background(), "hi again")
	require.Error(t, err)
	require.NotErrorIs(t, err, event.ErrInFlight)
}

func TestListSessionsUnknownKindErrors(t *testing.T) {
	_, err := ListSessions(config.Config{Kind: "agent_z", ProjectDir: t.TempDir()})
	require.Error(t, err)
}

func TestListSessionsMissingDirectoryIsEmptyNotError(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	records, err := ListSessions(config.Config{Kind: config.AgentA, ProjectDir: t.TempDir()})
	require.NoError(t, err)
	require.Empty(t, records)
}

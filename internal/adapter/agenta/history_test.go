package agenta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/csells/agentsession/event"
	"github.com/csells/agentsession/internal/pathenc"
)

func writeSessionFile(t *testing.T, home, projectDir, sessionID, body string) {
	t.Helper()
	dir := filepath.Join(home, historyRoot, "projects", pathenc.EncodeCWD(projectDir))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, sessionID+".jsonl"), []byte(body), 0o644))
}

func TestReadHistoryDecodesLinesAndAdvancesTurnOnTurnEnd(t *testing.T) {
	home := t.TempDir()
	body := `{"type":"assistant","session_id":"sid-1","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]}}
{"type":"result","subtype":"success","is_error":false,"session_id":"sid-1"}
{"type":"assistant","session_id":"sid-1","message":{"role":"assistant","content":[{"type":"text","text":"again"}]}}
`
	writeSessionFile(t, home, "/proj", "sid-1", body)

	events, err := ReadHistory(home, "/proj", "sid-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, event.KindText, events[0].Kind)
	require.Equal(t, "0", events[0].TurnID)
	require.Equal(t, event.KindTurnEnd, events[1].Kind)
	require.Equal(t, "0", events[1].TurnID)
	require.Equal(t, event.KindText, events[2].Kind)
	require.Equal(t, "1", events[2].TurnID)
}

func TestReadHistoryMissingFileIsNotFound(t *testing.T) {
	home := t.TempDir()
	_, err := ReadHistory(home, "/proj", "does-not-exist")
	require.ErrorIs(t, err, event.ErrNotFound)
}

func TestReadHistoryToleratesUnreadableLines(t *testing.T) {
	home := t.TempDir()
	body := "not json at all\n" + `{"type":"result","subtype":"success","is_error":false,"session_id":"sid-1"}` + "\n"
	writeSessionFile(t, home, "/proj", "sid-1", body)

	events, err := ReadHistory(home, "/proj", "sid-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, event.KindTurnEnd, events[0].Kind)
}

func TestListSessionsSkipsNonSessionFilesAndSortsDescending(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, historyRoot, "projects", pathenc.EncodeCWD("/proj"))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	older := filepath.Join(dir, "sid-old.jsonl")
	newer := filepath.Join(dir, "sid-new.jsonl")
	require.NoError(t, os.WriteFile(older, []byte(`{"type":"result","subtype":"success","is_error":false}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte(`{"type":"result","subtype":"success","is_error":false}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agent-lock.jsonl"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	now := time.Now()
	olderTime := now.Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, olderTime, olderTime))
	require.NoError(t, os.Chtimes(newer, now, now))

	records, err := ListSessions(home, "/proj")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "sid-new", records[0].SessionID)
	require.Equal(t, "sid-old", records[1].SessionID)
	require.Equal(t, 1, records[0].MessageCount)
}

func TestListSessionsMissingDirIsEmptyNotError(t *testing.T) {
	home := t.TempDir()
	records, err := ListSessions(home, "/does/not/exist")
	require.NoError(t, err)
	require.Empty(t, records)
}

package agentc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/csells/agentsession/event"
)

func TestEventsFromDocumentAdvancesTurnOnAssistantMessage(t *testing.T) {
	doc := chatDocument{
		SessionID: "sid-1",
		Messages: []chatMessage{
			{Role: "user", Text: "hi"},
			{Role: "assistant", Text: "hello"},
			{Role: "tool_use", ToolUseID: "tu-1", ToolName: "Bash", Input: map[string]any{"command": "ls"}},
			{Role: "tool_result", ToolUseID: "tu-1", Output: "a.go"},
			{Role: "assistant", Text: "done"},
		},
	}
	events := eventsFromDocument(doc)

	require.Equal(t, event.KindText, events[0].Kind)
	require.Equal(t, "0", events[0].TurnID)
	require.Equal(t, event.KindTurnEnd, events[1].Kind)
	require.Equal(t, "0", events[1].TurnID)
	require.Equal(t, event.KindToolUse, events[2].Kind)
	require.Equal(t, "1", events[2].TurnID)
	require.Equal(t, event.KindResult, events[3].Kind)
	require.Equal(t, event.KindText, events[4].Kind)
	require.Equal(t, "done", events[4].Text)
	require.Equal(t, event.KindTurnEnd, events[5].Kind)
}

func TestEventsFromDocumentSkipsUserMessages(t *testing.T) {
	doc := chatDocument{SessionID: "sid-1", Messages: []chatMessage{{Role: "user", Text: "prompt"}}}
	require.Empty(t, eventsFromDocument(doc))
}

func TestParseOrModTimeFallsBackOnBadTimestamp(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, fallback, parseOrModTime("not-a-time", fallback))
}

func TestParseOrModTimeParsesRFC3339(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	want := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	require.Equal(t, want, parseOrModTime("2025-06-15T10:30:00Z", fallback))
}

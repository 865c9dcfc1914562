package agentb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/csells/agentsession/event"
)

func TestDecodeThreadStartedIsSessionIDSource(t *testing.T) {
	events, req, err := Decode([]byte(`{"type":"thread.started","thread_id":"th-1"}`), Context{})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Len(t, events, 1)
	require.Equal(t, event.KindInit, events[0].Kind)
	require.Equal(t, "th-1", events[0].SessionID)
}

func TestDecodeItemStartedAgentMessageIsPartialText(t *testing.T) {
	line := []byte(`{"type":"item.started","thread_id":"th-1","item":{"type":"agent_message","text":"Hel","is_partial":true}}`)
	events, req, err := Decode(line, Context{SessionID: "th-1"})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Len(t, events, 1)
	require.Equal(t, event.KindText, events[0].Kind)
	require.True(t, events[0].IsPartial)
}

func TestDecodeItemCompletedToolCallIsToolResult(t *testing.T) {
	line := []byte(`{"type":"item.completed","thread_id":"th-1","item":{"type":"tool_call","id":"tc-1","name":"read_file","output":"contents","is_error":false}}`)
	events, req, err := Decode(line, Context{SessionID: "th-1"})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Len(t, events, 1)
	require.Equal(t, event.KindResult, events[0].Kind)
	require.Equal(t, "tc-1", events[0].ToolUseID)
	require.Equal(t, "contents", events[0].Output)
}

func TestDecodeTurnFailedIsTurnEndError(t *testing.T) {
	events, req, err := Decode([]byte(`{"type":"turn.failed","thread_id":"th-1","message":"boom"}`), Context{SessionID: "th-1"})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Len(t, events, 1)
	require.Equal(t, event.TurnError, events[0].Status)
	require.Equal(t, "boom", events[0].ErrorMessage)
}

func TestDecodeApprovalRequiredSurfacesRequest(t *testing.T) {
	line := []byte(`{"type":"approval_required","request_id":"req-1","tool_name":"Bash","description":"run a command","input":{"command":"ls"}}`)
	events, req, err := Decode(line, Context{SessionID: "th-1"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, event.KindUnknown, events[0].Kind)
	require.NotNil(t, req)
	require.Equal(t, "req-1", req.RequestID)
	require.Equal(t, "Bash", req.ToolName)
}

func TestDecodeUserMessageIsIgnored(t *testing.T) {
	events, req, err := Decode([]byte(`{"type":"user_message","text":"hi"}`), Context{SessionID: "th-1"})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Nil(t, events)
}

func TestApprovalResponseLineEchoesRequestID(t *testing.T) {
	line, err := ApprovalResponseLine("req-1", "allow", "")
	require.NoError(t, err)
	require.Contains(t, string(line), `"request_id":"req-1"`)
}

func TestTurnFrameGeneratesDistinctRequestIDs(t *testing.T) {
	line1, id1, err := TurnFrame("hi")
	require.NoError(t, err)
	require.NotEmpty(t, id1)
	require.Contains(t, string(line1), id1)

	_, id2, err := TurnFrame("hi again")
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)
}

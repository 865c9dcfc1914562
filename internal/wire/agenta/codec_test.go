package agenta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/csells/agentsession/event"
)

func TestDecodeSystemInitIsSessionIDSource(t *testing.T) {
	events, req, err := Decode([]byte(`{"type":"system","subtype":"init","session_id":"sid-1","model":"claude"}`), Context{})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Len(t, events, 1)
	require.Equal(t, event.KindInit, events[0].Kind)
	require.Equal(t, "sid-1", events[0].SessionID)
	require.Equal(t, "claude", events[0].Model)
}

func TestDecodeAssistantFansOutBlocksInOrder(t *testing.T) {
	line := []byte(`{"type":"assistant","session_id":"sid-1","message":{"role":"assistant","content":[
		{"type":"text","text":"thinking about it"},
		{"type":"tool_use","id":"tu-1","name":"Bash","input":{"command":"ls"}}
	]}}`)
	events, req, err := Decode(line, Context{SessionID: "sid-1"})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Len(t, events, 2)
	require.Equal(t, event.KindText, events[0].Kind)
	require.Equal(t, "thinking about it", events[0].Text)
	require.Equal(t, event.KindToolUse, events[1].Kind)
	require.Equal(t, "tu-1", events[1].ToolUseID)
	require.Equal(t, "Bash", events[1].ToolName)
}

func TestDecodeUserToolResultOnly(t *testing.T) {
	line := []byte(`{"type":"user","session_id":"sid-1","message":{"role":"user","content":[
		{"type":"tool_result","tool_use_id":"tu-1","content":"total 0","is_error":false}
	]}}`)
	events, req, err := Decode(line, Context{SessionID: "sid-1"})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Len(t, events, 1)
	require.Equal(t, event.KindResult, events[0].Kind)
	require.Equal(t, "tu-1", events[0].ToolUseID)
	require.Equal(t, "total 0", events[0].Output)
	require.False(t, events[0].IsError)
}

func TestDecodeResultErrorIsFatal(t *testing.T) {
	line := []byte(`{"type":"result","subtype":"error_during_execution","is_error":true,"session_id":"sid-1","result":"boom"}`)
	events, req, err := Decode(line, Context{SessionID: "sid-1"})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Len(t, events, 1)
	require.Equal(t, event.KindError, events[0].Kind)
	require.Equal(t, "boom", events[0].ErrorMessage)
}

func TestDecodeResultSuccessIsTurnEnd(t *testing.T) {
	line := []byte(`{"type":"result","subtype":"success","is_error":false,"session_id":"sid-1","duration_ms":42,"usage":{"input_tokens":10,"output_tokens":5}}`)
	events, req, err := Decode(line, Context{SessionID: "sid-1"})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Len(t, events, 1)
	require.Equal(t, event.KindTurnEnd, events[0].Kind)
	require.Equal(t, event.TurnSuccess, events[0].Status)
	require.Equal(t, int64(42), events[0].DurationMS)
	require.Equal(t, 10, events[0].Usage.InputTokens)
}

func TestDecodeControlRequestSurfacesCanUseToolAndUnknownEvent(t *testing.T) {
	line := []byte(`{"type":"control_request","request_id":"req-9","request":{
		"subtype":"can_use_tool","tool_name":"Bash","tool_use_id":"tu-2","input":{"command":"rm -rf /"}
	}}`)
	events, req, err := Decode(line, Context{SessionID: "sid-1"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, event.KindUnknown, events[0].Kind)
	require.Equal(t, "control_request", events[0].OriginalType)
	require.NotNil(t, req)
	require.Equal(t, "req-9", req.RequestID)
	require.Equal(t, "Bash", req.ToolName)
	require.Equal(t, "tu-2", req.ToolUseID)
}

func TestDecodeUnknownSystemSubtypeIsOpaque(t *testing.T) {
	events, req, err := Decode([]byte(`{"type":"system","subtype":"compact_boundary","session_id":"sid-1"}`), Context{SessionID: "sid-1"})
	require.NoError(t, err)
	require.Nil(t, req)
	require.Len(t, events, 1)
	require.Equal(t, event.KindUnknown, events[0].Kind)
	require.Equal(t, "system:compact_boundary", events[0].OriginalType)
}

func TestUserMessageLineIsValidJSONLine(t *testing.T) {
	line, err := UserMessageLine("hello")
	require.NoError(t, err)
	require.Equal(t, byte('\n'), line[len(line)-1])
}

func TestControlResponseLineEchoesRequestID(t *testing.T) {
	line, err := ControlResponseLine("req-9", "allow", map[string]any{"command": "ls"}, "")
	require.NoError(t, err)
	require.Contains(t, string(line), `"request_id":"req-9"`)
	require.Contains(t, string(line), `"behavior":"allow"`)
}

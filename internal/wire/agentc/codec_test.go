package agentc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/csells/agentsession/event"
)

func TestDecodeInit(t *testing.T) {
	ev, ok, err := Decode([]byte(`{"type":"init","session_id":"sid-9","model":"gpt"}`), Context{})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, event.KindInit, ev.Kind)
	require.Equal(t, "sid-9", ev.SessionID)
}

func TestDecodeUserMessageEchoIsSkipped(t *testing.T) {
	_, ok, err := Decode([]byte(`{"type":"message","role":"user","text":"hi"}`), Context{SessionID: "sid-9"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDecodeAssistantMessageIsText(t *testing.T) {
	ev, ok, err := Decode([]byte(`{"type":"message","role":"assistant","text":"hello back"}`), Context{SessionID: "sid-9"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, event.KindText, ev.Kind)
	require.Equal(t, "hello back", ev.Text)
}

func TestDecodeResultSuccessIsTurnEnd(t *testing.T) {
	ev, ok, err := Decode([]byte(`{"type":"result","is_error":false,"duration_ms":12}`), Context{SessionID: "sid-9"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, event.KindTurnEnd, ev.Kind)
	require.Equal(t, event.TurnSuccess, ev.Status)
}

func TestDecodeResultErrorIsErrorKind(t *testing.T) {
	ev, ok, err := Decode([]byte(`{"type":"result","is_error":true,"result":"failed"}`), Context{SessionID: "sid-9"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, event.KindError, ev.Kind)
	require.Equal(t, "failed", ev.ErrorMessage)
}

func TestDecodeRetryIsUnknownNotFatal(t *testing.T) {
	ev, ok, err := Decode([]byte(`{"type":"retry","reason":"rate_limited"}`), Context{SessionID: "sid-9"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, event.KindUnknown, ev.Kind)
	require.Equal(t, "retry", ev.OriginalType)
}

func TestDecodeMissingTypeIsUnknown(t *testing.T) {
	ev, ok, err := Decode([]byte(`{"foo":"bar"}`), Context{SessionID: "sid-9"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, event.KindUnknown, ev.Kind)
}

package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseInbound(t *testing.T) {
	f, err := ParseInbound([]byte(`{"type":"send_message","content":"hi","room_id":7}`))
	require.NoError(t, err)
	require.Equal(t, EventSendMessage, f.Type)

	ev, err := DecodePayload[SendMessageEvent](f)
	require.NoError(t, err)
	require.Equal(t, "hi", ev.Content)
	require.Equal(t, int64(7), ev.RoomID)
}

func TestParseInboundWeakTyping(t *testing.T) {
	// 有的客户端把数字发成字符串，宽松解码要兜住
	f, err := ParseInbound([]byte(`{"type":"send_message","content":"hi","room_id":"7"}`))
	require.NoError(t, err)

	ev, err := DecodePayload[SendMessageEvent](f)
	require.NoError(t, err)
	require.Equal(t, int64(7), ev.RoomID)
}

func TestParseInboundRejectsBadFrames(t *testing.T) {
	_, err := ParseInbound([]byte(`not json`))
	require.Error(t, err)

	_, err = ParseInbound([]byte(`[1,2,3]`))
	require.Error(t, err)

	_, err = ParseInbound([]byte(`{"content":"no type"}`))
	require.Error(t, err)

	_, err = ParseInbound([]byte(`{"type":123}`))
	require.Error(t, err)
}

func TestTypingEventDecode(t *testing.T) {
	f, err := ParseInbound([]byte(`{"type":"typing","room_id":7,"is_typing":true}`))
	require.NoError(t, err)

	ev, err := DecodePayload[TypingEvent](f)
	require.NoError(t, err)
	require.True(t, ev.IsTyping)
	require.Equal(t, int64(7), ev.RoomID)
}

func TestOutboundFrameShapes(t *testing.T) {
	var m map[string]any

	require.NoError(t, json.Unmarshal(ConnectedFrame(7), &m))
	require.Equal(t, EventConnected, m["type"])
	require.Equal(t, float64(7), m["room_id"])

	require.NoError(t, json.Unmarshal(UserOnlineFrame(2, "bob"), &m))
	require.Equal(t, EventUserOnline, m["type"])
	require.Equal(t, float64(2), m["user_id"])
	require.Equal(t, "bob", m["username"])
	require.NotEmpty(t, m["timestamp"])

	require.NoError(t, json.Unmarshal(ErrorFrame("坏了"), &m))
	require.Equal(t, EventError, m["type"])
	require.Equal(t, "坏了", m["message"])

	require.NoError(t, json.Unmarshal(MessageReadFrame(5, 2), &m))
	require.Equal(t, EventMessageRead, m["type"])
	require.Equal(t, float64(5), m["message_id"])
	require.Equal(t, float64(2), m["user_id"])
}

func TestPongFrameTimestamp(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var m map[string]any
	require.NoError(t, json.Unmarshal(PongFrame(at), &m))
	require.Equal(t, EventPong, m["type"])
	require.Equal(t, "2025-06-01T12:00:00Z", m["timestamp"])
}

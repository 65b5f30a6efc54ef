package decode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Content string `json:"content"`
	RoomID  int64  `json:"room_id"`
	Flag    bool   `json:"flag"`
}

func TestMapDecodesJSONTags(t *testing.T) {
	out, err := Map[samplePayload](map[string]any{
		"content": "hi",
		"room_id": float64(7), // encoding/json 解出来的数字是 float64
		"flag":    true,
	})
	require.NoError(t, err)
	require.Equal(t, "hi", out.Content)
	require.Equal(t, int64(7), out.RoomID)
	require.True(t, out.Flag)
}

func TestMapWeakTyping(t *testing.T) {
	out, err := Map[samplePayload](map[string]any{
		"room_id": "7",
		"flag":    "true",
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), out.RoomID)
	require.True(t, out.Flag)
}

func TestMapStrictMode(t *testing.T) {
	_, err := Map[samplePayload](map[string]any{"room_id": "7"}, Options{WeaklyTypedInput: false})
	require.Error(t, err)
}

func TestMapNil(t *testing.T) {
	_, err := Map[samplePayload](nil)
	require.Error(t, err)
}

func TestMapIgnoresUnknownFields(t *testing.T) {
	out, err := Map[samplePayload](map[string]any{
		"content": "hi",
		"type":    "send_message",
	})
	require.NoError(t, err)
	require.Equal(t, "hi", out.Content)
}

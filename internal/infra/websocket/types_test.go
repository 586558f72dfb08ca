package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	tests := []struct {
		channel  string
		wantType ChannelType
		wantID   string
	}{
		{"board:abc-123", ChannelTypeBoard, "abc-123"},
		{"user:u-1", ChannelTypeUser, "u-1"},
		{"noseparator", "", "noseparator"},
		{"board:", ChannelTypeBoard, ""},
	}

	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			gotType, gotID := ParseChannel(tt.channel)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}

func TestMakeChannelRoundTrip(t *testing.T) {
	ch := MakeChannel(ChannelTypeBoard, "b-42")
	assert.Equal(t, "board:b-42", ch)

	typ, id := ParseChannel(ch)
	assert.Equal(t, ChannelTypeBoard, typ)
	assert.Equal(t, "b-42", id)
}

func TestMessageBuilder(t *testing.T) {
	msg := NewMessage(MessageTypeEvent).
		WithChannel("board:b-1").
		WithRequestID("req-7")

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, string(MessageTypeEvent), decoded["type"])
	assert.Equal(t, "board:b-1", decoded["channel"])
	assert.Equal(t, "req-7", decoded["request_id"])
}

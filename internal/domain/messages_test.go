package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsControl(t *testing.T) {
	for _, typ := range []string{MsgTypeVideoPlay, MsgTypeVideoPause, MsgTypeVideoSeek, MsgTypeVideoLoad} {
		assert.True(t, IsControl(typ), typ)
	}
	for _, typ := range []string{MsgTypeChatMessage, MsgTypeJoinRoom, MsgTypeTypingStart, "video-stop", ""} {
		assert.False(t, IsControl(typ), typ)
	}
}

func TestAnnotateChat(t *testing.T) {
	out, err := AnnotateChat([]byte(`{"type":"chat-message","roomId":"r1","text":"hi"}`), true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"chat-message","roomId":"r1","text":"hi","isHost":true}`, string(out))

	out, err = AnnotateChat([]byte(`{"type":"chat-message","roomId":"r1","isHost":true}`), false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"chat-message","roomId":"r1","isHost":false}`, string(out))

	_, err = AnnotateChat([]byte(`[1,2]`), true)
	assert.Error(t, err)
}

func TestVideoState(t *testing.T) {
	state, err := VideoState([]byte(`{"type":"video-load","roomId":"r1","video":"x","t":0}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"video":"x","t":0}`, string(state))

	_, err = VideoState([]byte(`not json`))
	assert.Error(t, err)
}

func TestSession(t *testing.T) {
	s := NewSession("c1")
	assert.False(t, s.IsInRoom())

	s.JoinRoom("r1", "alice")
	assert.True(t, s.IsInRoom())
	assert.Equal(t, "alice", s.Username)
	assert.False(t, s.JoinedAt.IsZero())

	s.LeaveRoom()
	assert.False(t, s.IsInRoom())
	assert.Equal(t, "alice", s.Username)
}

package domain

import (
	"encoding/json"
	"fmt"
)

// WebSocket message types from client.
const (
	MsgTypeJoinRoom    = "join-room"
	MsgTypeLeaveRoom   = "leave-room"
	MsgTypeVideoPlay   = "video-play"
	MsgTypeVideoPause  = "video-pause"
	MsgTypeVideoSeek   = "video-seek"
	MsgTypeVideoLoad   = "video-load"
	MsgTypeChatMessage = "chat-message"
	MsgTypeTypingStart = "typing-start"
	MsgTypeTypingStop  = "typing-stop"
)

// WebSocket message types to client. Video events and chat-message are
// relayed under their inbound names.
const (
	MsgTypeRoomJoined        = "room-joined"
	MsgTypeUserJoined        = "user-joined"
	MsgTypeRoomUsers         = "room-users"
	MsgTypeUserLeft          = "user-left"
	MsgTypeHostChanged       = "host-changed"
	MsgTypeUserTyping        = "user-typing"
	MsgTypeUserStoppedTyping = "user-stopped-typing"
)

// IsControl reports whether msgType is a host-only playback command.
func IsControl(msgType string) bool {
	switch msgType {
	case MsgTypeVideoPlay, MsgTypeVideoPause, MsgTypeVideoSeek, MsgTypeVideoLoad:
		return true
	}
	return false
}

// BaseMessage is decoded first to route every inbound frame.
type BaseMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// Client -> Server messages

type JoinRoomMessage struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	IsHost   bool   `json:"isHost"`
}

type TypingMessage struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// Server -> Client messages

type RoomJoinedMessage struct {
	Type         string          `json:"type"`
	IsHost       bool            `json:"isHost"`
	CurrentVideo json.RawMessage `json:"currentVideo"`
}

type UserJoinedMessage struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	UserCount int    `json:"userCount"`
}

type RoomUsersMessage struct {
	Type      string `json:"type"`
	UserCount int    `json:"userCount"`
}

type UserLeftMessage struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	UserCount int    `json:"userCount"`
}

type HostChangedMessage struct {
	Type    string `json:"type"`
	NewHost string `json:"newHost"`
}

type TypingNotice struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// AnnotateChat returns the chat frame with the sender's host flag added.
// Every other field is preserved.
func AnnotateChat(raw []byte, isHost bool) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode chat message: %w", err)
	}
	if isHost {
		fields["isHost"] = json.RawMessage("true")
	} else {
		fields["isHost"] = json.RawMessage("false")
	}
	return json.Marshal(fields)
}

// VideoState extracts the stored video state from a video-load frame: the
// payload without its routing keys.
func VideoState(raw []byte) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode video-load: %w", err)
	}
	delete(fields, "type")
	delete(fields, "roomId")
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode video state: %w", err)
	}
	return data, nil
}

package pubsub

import (
	"encoding/json"
	"fmt"
)

// ChannelRoomEvents is the per-room lifecycle notification channel.
const ChannelRoomEvents = "watchparty:room:%s:events"

// Room lifecycle event types.
const (
	EventRoomCreated  = "room_created"
	EventRoomClosed   = "room_closed"
	EventMemberJoined = "member_joined"
	EventMemberLeft   = "member_left"
	EventHostChanged  = "host_changed"
	EventVideoLoaded  = "video_loaded"
)

// RoomEventsChannel returns the channel name for a room's lifecycle events.
func RoomEventsChannel(roomID string) string {
	return fmt.Sprintf(ChannelRoomEvents, roomID)
}

// RoomCreatedPayload is sent when the first member joins a room.
type RoomCreatedPayload struct {
	RoomID string `json:"room_id"`
	Host   string `json:"host"`
}

// RoomClosedPayload is sent when the last member leaves a room.
type RoomClosedPayload struct {
	RoomID string `json:"room_id"`
	Reason string `json:"reason"` // "leave", "disconnect", "switch"
}

// MemberJoinedPayload is sent for every accepted join.
type MemberJoinedPayload struct {
	RoomID    string `json:"room_id"`
	Username  string `json:"username"`
	IsHost    bool   `json:"is_host"`
	UserCount int    `json:"user_count"`
}

// MemberLeftPayload is sent for every departure, including the last one.
type MemberLeftPayload struct {
	RoomID    string `json:"room_id"`
	Username  string `json:"username"`
	UserCount int    `json:"user_count"`
	Reason    string `json:"reason"`
}

// HostChangedPayload is sent whenever host authority moves.
type HostChangedPayload struct {
	RoomID       string `json:"room_id"`
	PreviousHost string `json:"previous_host"`
	NewHost      string `json:"new_host"`
	Reason       string `json:"reason"` // "departure", "claim"
}

// VideoLoadedPayload is sent when the host loads a new video.
type VideoLoadedPayload struct {
	RoomID string          `json:"room_id"`
	Video  json.RawMessage `json:"video"`
}

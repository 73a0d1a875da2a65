package service

import (
	"context"

	"github.com/weiawesome/wes-io-live/watchparty-service/internal/domain"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/hub"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/room"
	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/pubsub"
)

// Deliverer queues an encoded frame for one connection.
type Deliverer interface {
	Deliver(clientID string, data []byte)
}

// EventEmitter hands room lifecycle events to the event bus without blocking.
type EventEmitter interface {
	Emit(event *pubsub.Event)
}

// RoomService routes client events and runs the join/leave lifecycle. All
// methods must be called from the hub loop.
type RoomService interface {
	hub.Dispatcher

	HandleJoinRoom(ctx context.Context, client *hub.Client, msg *domain.JoinRoomMessage) error
	HandleLeaveRoom(ctx context.Context, client *hub.Client, roomID string) error
	HandleControl(ctx context.Context, client *hub.Client, msgType, roomID string, raw []byte) error
	HandleChatMessage(ctx context.Context, client *hub.Client, roomID string, raw []byte) error
	HandleTyping(ctx context.Context, client *hub.Client, msg *domain.TypingMessage) error

	Rooms() []room.Summary
	Room(roomID string) (room.Snapshot, bool)
}

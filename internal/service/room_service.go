package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/weiawesome/wes-io-live/watchparty-service/internal/audit"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/domain"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/hub"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/room"
	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/pubsub"
)

// Reasons a member leaves a room.
const (
	reasonLeave      = "leave"
	reasonDisconnect = "disconnect"
	reasonSwitch     = "switch"
)

type roomService struct {
	registry *room.Registry
	out      Deliverer
	events   EventEmitter
}

func NewRoomService(registry *room.Registry, out Deliverer, events EventEmitter) RoomService {
	return &roomService{
		registry: registry,
		out:      out,
		events:   events,
	}
}

func (s *roomService) HandleMessage(c *hub.Client, message []byte) {
	ctx := log.WithClient(context.Background(), c.ID)
	l := log.Ctx(ctx)

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		s.drop(ctx, metrics.ReasonMalformed, "")
		return
	}

	var err error
	switch base.Type {
	case domain.MsgTypeJoinRoom:
		var msg domain.JoinRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.drop(ctx, metrics.ReasonMalformed, base.Type)
			return
		}
		err = s.HandleJoinRoom(ctx, c, &msg)

	case domain.MsgTypeLeaveRoom:
		err = s.HandleLeaveRoom(ctx, c, base.RoomID)

	case domain.MsgTypeVideoPlay, domain.MsgTypeVideoPause, domain.MsgTypeVideoSeek, domain.MsgTypeVideoLoad:
		err = s.HandleControl(ctx, c, base.Type, base.RoomID, message)

	case domain.MsgTypeChatMessage:
		err = s.HandleChatMessage(ctx, c, base.RoomID, message)

	case domain.MsgTypeTypingStart, domain.MsgTypeTypingStop:
		var msg domain.TypingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.drop(ctx, metrics.ReasonMalformed, base.Type)
			return
		}
		err = s.HandleTyping(ctx, c, &msg)

	default:
		s.drop(ctx, metrics.ReasonUnknownType, base.Type)
		return
	}

	metrics.InboundEvents.WithLabelValues(base.Type).Inc()
	if err != nil {
		l.Error().Err(err).Str(log.FieldEventType, base.Type).Msg("failed to handle message")
	}
}

func (s *roomService) HandleDisconnect(c *hub.Client) {
	ctx := log.WithClient(context.Background(), c.ID)
	if !c.Session.IsInRoom() {
		return
	}
	s.leave(ctx, c, reasonDisconnect)
}

func (s *roomService) HandleJoinRoom(ctx context.Context, c *hub.Client, msg *domain.JoinRoomMessage) error {
	if msg.RoomID == "" {
		s.drop(ctx, metrics.ReasonMalformed, msg.Type)
		return nil
	}

	if c.Session.IsInRoom() {
		if c.Session.RoomID == msg.RoomID {
			if rm, ok := s.registry.Get(msg.RoomID); ok {
				return s.sendJoinSnapshot(c, rm)
			}
		}
		s.leave(ctx, c, reasonSwitch)
	}

	rm, res := s.registry.Join(msg.RoomID, c.ID, msg.Username, msg.IsHost)
	c.Session.JoinRoom(msg.RoomID, msg.Username)
	ctx = log.WithRoom(ctx, msg.RoomID)

	if res.Created {
		metrics.Rooms.Inc()
		s.emit(ctx, pubsub.EventRoomCreated, rm.ID, pubsub.RoomCreatedPayload{RoomID: rm.ID, Host: msg.Username})
	}

	audit.Log(ctx, audit.ActionJoinRoom, rm.ID, msg.Username, "joined room")
	if res.ClaimRejected {
		host, _ := rm.Host()
		audit.LogWithDetail(ctx, audit.ActionHostClaimRejected, rm.ID, msg.Username, host, "host claim on hosted room rejected")
	}

	if err := s.broadcast(rm, c.ID, &domain.UserJoinedMessage{
		Type:      domain.MsgTypeUserJoined,
		Username:  msg.Username,
		UserCount: res.UserCount,
	}); err != nil {
		return err
	}

	if err := s.sendJoinSnapshot(c, rm); err != nil {
		return err
	}

	if res.HostChanged {
		if err := s.announceHost(ctx, rm, res.PreviousHost, msg.Username, "claim"); err != nil {
			return err
		}
	}

	s.emit(ctx, pubsub.EventMemberJoined, rm.ID, pubsub.MemberJoinedPayload{
		RoomID:    rm.ID,
		Username:  msg.Username,
		IsHost:    res.IsHost,
		UserCount: res.UserCount,
	})
	return nil
}

func (s *roomService) HandleLeaveRoom(ctx context.Context, c *hub.Client, roomID string) error {
	if roomID == "" || c.Session.RoomID != roomID {
		return nil
	}
	s.leave(ctx, c, reasonLeave)
	return nil
}

func (s *roomService) HandleControl(ctx context.Context, c *hub.Client, msgType, roomID string, raw []byte) error {
	rm, ok := s.memberRoom(ctx, c, roomID, msgType)
	if !ok {
		return nil
	}
	ctx = log.WithRoom(ctx, roomID)

	if !rm.IsHost(c.ID) {
		metrics.DroppedEvents.WithLabelValues(metrics.ReasonNotHost).Inc()
		audit.LogWithDetail(ctx, audit.ActionControlDropped, roomID, c.Session.Username, msgType, "control event from non-host dropped")
		return nil
	}

	if msgType == domain.MsgTypeVideoLoad {
		state, err := domain.VideoState(raw)
		if err != nil {
			return err
		}
		rm.SetCurrentVideo(state)
		s.emit(ctx, pubsub.EventVideoLoaded, roomID, pubsub.VideoLoadedPayload{RoomID: roomID, Video: state})
	}

	s.broadcastRaw(rm, c.ID, raw)
	return nil
}

func (s *roomService) HandleChatMessage(ctx context.Context, c *hub.Client, roomID string, raw []byte) error {
	rm, ok := s.memberRoom(ctx, c, roomID, domain.MsgTypeChatMessage)
	if !ok {
		return nil
	}

	data, err := domain.AnnotateChat(raw, rm.IsHost(c.ID))
	if err != nil {
		return err
	}
	s.broadcastRaw(rm, "", data)
	return nil
}

func (s *roomService) HandleTyping(ctx context.Context, c *hub.Client, msg *domain.TypingMessage) error {
	rm, ok := s.memberRoom(ctx, c, msg.RoomID, msg.Type)
	if !ok {
		return nil
	}

	username := msg.Username
	if username == "" {
		username = c.Session.Username
	}

	noticeType := domain.MsgTypeUserTyping
	if msg.Type == domain.MsgTypeTypingStop {
		noticeType = domain.MsgTypeUserStoppedTyping
		rm.StopTyping(username)
	} else {
		rm.StartTyping(username)
	}

	return s.broadcast(rm, c.ID, &domain.TypingNotice{
		Type:     noticeType,
		RoomID:   rm.ID,
		Username: username,
	})
}

func (s *roomService) Rooms() []room.Summary {
	return s.registry.Summaries()
}

func (s *roomService) Room(roomID string) (room.Snapshot, bool) {
	rm, ok := s.registry.Get(roomID)
	if !ok {
		return room.Snapshot{}, false
	}
	return rm.Snapshot(), true
}

// leave is the single cleanup path for explicit leaves, room switches and
// disconnects.
func (s *roomService) leave(ctx context.Context, c *hub.Client, reason string) {
	roomID := c.Session.RoomID
	username := c.Session.Username
	c.Session.LeaveRoom()
	ctx = log.WithRoom(ctx, roomID)
	l := log.Ctx(ctx)

	rm, res, ok := s.registry.Leave(roomID, c.ID)
	if !ok {
		return
	}

	if reason == reasonDisconnect {
		audit.Log(ctx, audit.ActionDisconnect, roomID, username, "member disconnected")
	} else {
		audit.LogWithDetail(ctx, audit.ActionLeaveRoom, roomID, username, reason, "member left room")
	}
	s.emit(ctx, pubsub.EventMemberLeft, roomID, pubsub.MemberLeftPayload{
		RoomID:    roomID,
		Username:  username,
		UserCount: res.UserCount,
		Reason:    reason,
	})

	if res.Empty {
		metrics.Rooms.Dec()
		s.emit(ctx, pubsub.EventRoomClosed, roomID, pubsub.RoomClosedPayload{RoomID: roomID, Reason: reason})
		l.Info().Msg("room closed")
		return
	}

	if res.StoppedTyping {
		if err := s.broadcast(rm, "", &domain.TypingNotice{
			Type:     domain.MsgTypeUserStoppedTyping,
			RoomID:   roomID,
			Username: username,
		}); err != nil {
			l.Error().Err(err).Msg("failed to announce stopped typing")
		}
	}

	if res.HostChanged {
		if err := s.announceHost(ctx, rm, res.PreviousHost, res.NewHost, "departure"); err != nil {
			l.Error().Err(err).Msg("failed to announce host change")
		}
	}

	if err := s.broadcast(rm, c.ID, &domain.UserLeftMessage{
		Type:      domain.MsgTypeUserLeft,
		Username:  username,
		UserCount: res.UserCount,
	}); err != nil {
		l.Error().Err(err).Msg("failed to announce departure")
	}
}

func (s *roomService) announceHost(ctx context.Context, rm *room.Room, previous, next, reason string) error {
	metrics.HostChanges.WithLabelValues(reason).Inc()
	audit.LogWithDetail(ctx, audit.ActionHostChanged, rm.ID, next, previous, "host authority transferred")
	s.emit(ctx, pubsub.EventHostChanged, rm.ID, pubsub.HostChangedPayload{
		RoomID:       rm.ID,
		PreviousHost: previous,
		NewHost:      next,
		Reason:       reason,
	})

	return s.broadcast(rm, "", &domain.HostChangedMessage{
		Type:    domain.MsgTypeHostChanged,
		NewHost: next,
	})
}

func (s *roomService) sendJoinSnapshot(c *hub.Client, rm *room.Room) error {
	if err := s.send(c.ID, &domain.RoomJoinedMessage{
		Type:         domain.MsgTypeRoomJoined,
		IsHost:       rm.IsHost(c.ID),
		CurrentVideo: rm.CurrentVideo(),
	}); err != nil {
		return err
	}
	return s.send(c.ID, &domain.RoomUsersMessage{
		Type:      domain.MsgTypeRoomUsers,
		UserCount: rm.UserCount(),
	})
}

// memberRoom resolves roomID for an event that requires the sender to be a
// member of that room.
func (s *roomService) memberRoom(ctx context.Context, c *hub.Client, roomID, msgType string) (*room.Room, bool) {
	rm, ok := s.registry.Get(roomID)
	if !ok {
		s.drop(ctx, metrics.ReasonNotMember, msgType)
		return nil, false
	}
	if _, ok := rm.Member(c.ID); !ok {
		s.drop(ctx, metrics.ReasonNotMember, msgType)
		return nil, false
	}
	return rm, true
}

func (s *roomService) send(clientID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal outbound message: %w", err)
	}
	s.out.Deliver(clientID, data)
	return nil
}

func (s *roomService) broadcast(rm *room.Room, exclude string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal outbound message: %w", err)
	}
	s.broadcastRaw(rm, exclude, data)
	return nil
}

func (s *roomService) broadcastRaw(rm *room.Room, exclude string, data []byte) {
	for _, id := range rm.ConnIDs(exclude) {
		s.out.Deliver(id, data)
	}
}

func (s *roomService) emit(ctx context.Context, eventType, roomID string, payload interface{}) {
	evt, err := pubsub.NewEvent(eventType, roomID, payload)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldEventType, eventType).Msg("failed to build room event")
		return
	}
	s.events.Emit(evt)
}

func (s *roomService) drop(ctx context.Context, reason, msgType string) {
	metrics.DroppedEvents.WithLabelValues(reason).Inc()
	l := log.Ctx(ctx)
	l.Debug().Str("reason", reason).Str(log.FieldEventType, msgType).Msg("event dropped")
}

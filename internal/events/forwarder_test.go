package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/pubsub"
)

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	events   []*pubsub.Event
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, event *pubsub.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func mustEvent(t *testing.T, typ, roomID string) *pubsub.Event {
	t.Helper()
	evt, err := pubsub.NewEvent(typ, roomID, pubsub.RoomClosedPayload{RoomID: roomID})
	require.NoError(t, err)
	return evt
}

func TestForwarder_PublishesToRoomChannel(t *testing.T) {
	pub := &recordingPublisher{}
	f := NewForwarder(pub, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	f.Emit(mustEvent(t, pubsub.EventRoomCreated, "r1"))
	f.Emit(mustEvent(t, pubsub.EventRoomClosed, "r2"))

	require.Eventually(t, func() bool { return pub.count() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"watchparty:room:r1:events", "watchparty:room:r2:events"}, pub.channels)
	assert.Equal(t, pubsub.EventRoomCreated, pub.events[0].Type)
}

func TestForwarder_DrainsOnShutdown(t *testing.T) {
	pub := &recordingPublisher{}
	f := NewForwarder(pub, 8)

	f.Emit(mustEvent(t, pubsub.EventMemberLeft, "r1"))
	f.Emit(mustEvent(t, pubsub.EventRoomClosed, "r1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.Run(ctx))
	assert.Equal(t, 2, pub.count())
}

func TestForwarder_DropsWhenFull(t *testing.T) {
	pub := &recordingPublisher{}
	f := NewForwarder(pub, 1)

	f.Emit(mustEvent(t, pubsub.EventRoomCreated, "r1"))
	f.Emit(mustEvent(t, pubsub.EventRoomCreated, "r2"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.Run(ctx))
	require.Equal(t, 1, pub.count())
	assert.Equal(t, "r1", pub.events[0].RoomID)
}

func TestForwarder_PublishErrorDoesNotStop(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	f := NewForwarder(pub, 4)

	f.Emit(mustEvent(t, pubsub.EventRoomCreated, "r1"))
	f.Emit(mustEvent(t, pubsub.EventRoomClosed, "r1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.Run(ctx))
	assert.Equal(t, 2, pub.count())
}

package events

import (
	"context"
	"time"

	"github.com/weiawesome/wes-io-live/watchparty-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/log"
	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/pubsub"
)

const drainTimeout = 5 * time.Second

// Forwarder moves room events from the hub loop to the event bus. Emit never
// blocks; Run does the network I/O on its own goroutine.
type Forwarder struct {
	publisher pubsub.Publisher
	queue     chan *pubsub.Event
}

func NewForwarder(publisher pubsub.Publisher, size int) *Forwarder {
	if size <= 0 {
		size = 1024
	}
	return &Forwarder{
		publisher: publisher,
		queue:     make(chan *pubsub.Event, size),
	}
}

// Emit queues an event. When the queue is full the event is dropped.
func (f *Forwarder) Emit(event *pubsub.Event) {
	select {
	case f.queue <- event:
	default:
		metrics.DroppedEvents.WithLabelValues(metrics.ReasonBusFull).Inc()
		l := log.L()
		l.Warn().Str(log.FieldEventType, event.Type).Str(log.FieldRoomID, event.RoomID).Msg("event bus queue full, dropping event")
	}
}

// Run publishes queued events until ctx is cancelled, then drains whatever is
// still queued.
func (f *Forwarder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			f.drain()
			return nil
		case evt := <-f.queue:
			f.publish(ctx, evt)
		}
	}
}

func (f *Forwarder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case evt := <-f.queue:
			f.publish(ctx, evt)
		default:
			return
		}
	}
}

func (f *Forwarder) publish(ctx context.Context, evt *pubsub.Event) {
	if err := f.publisher.Publish(ctx, pubsub.RoomEventsChannel(evt.RoomID), evt); err != nil {
		metrics.BusPublishFailures.Inc()
		l := log.L()
		l.Error().Err(err).Str(log.FieldEventType, evt.Type).Str(log.FieldRoomID, evt.RoomID).Msg("failed to publish room event")
	}
}

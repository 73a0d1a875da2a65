package hub

import (
	"context"
	"errors"
	"sync"

	"github.com/weiawesome/wes-io-live/watchparty-service/internal/config"
	"github.com/weiawesome/wes-io-live/watchparty-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/watchparty-service/pkg/log"
)

// ErrStopped is returned by hub operations after Stop.
var ErrStopped = errors.New("hub stopped")

// Dispatcher handles client traffic. Both methods are called only from the
// hub loop, one at a time, so implementations need no locking.
type Dispatcher interface {
	HandleMessage(client *Client, message []byte)
	HandleDisconnect(client *Client)
}

// inbound is a message or a departure notice. Both travel on one channel so a
// client's last messages are handled before its disconnect.
type inbound struct {
	client  *Client
	message []byte
	leave   bool
}

// Hub is the single owner of all connection and room state. Every mutation
// runs on the goroutine executing Run.
type Hub struct {
	clients    map[string]*Client // clientID -> client
	register   chan *Client
	inbound    chan inbound
	calls      chan func()
	done       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once
	dispatcher Dispatcher
	config     config.WebSocketConfig
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		inbound:  make(chan inbound, 256),
		calls:    make(chan func()),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		config:   cfg,
	}
}

// SetDispatcher must be called before Run.
func (h *Hub) SetDispatcher(d Dispatcher) {
	h.dispatcher = d
}

func (h *Hub) Run() {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.clients[client.ID] = client
			metrics.Connections.Inc()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client registered")

		case in := <-h.inbound:
			if _, ok := h.clients[in.client.ID]; !ok {
				continue
			}
			if in.leave {
				h.dropClient(in.client)
				continue
			}
			h.dispatcher.HandleMessage(in.client, in.message)

		case fn := <-h.calls:
			fn()

		case <-h.done:
			for _, client := range h.clients {
				h.dropClient(client)
			}
			l := log.L()
			l.Info().Msg("hub stopped")
			return
		}
	}
}

// Stop closes every client and waits for Run to return.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
	<-h.stopped
}

// Register adds a client. It returns ErrStopped once the hub is shutting down.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrStopped
	}
}

// Unregister schedules the client's departure after any message it already
// submitted.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.inbound <- inbound{client: client, leave: true}:
	case <-h.done:
	}
}

// Submit queues a message from client for the dispatcher.
func (h *Hub) Submit(client *Client, message []byte) {
	select {
	case h.inbound <- inbound{client: client, message: message}:
	case <-h.done:
	}
}

// Do runs fn on the hub loop and waits for it to finish. It is the only way
// for other goroutines to read hub-owned state.
func (h *Hub) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn()
	}

	select {
	case h.calls <- call:
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-finished
	return nil
}

// Deliver queues data for clientID. It must be called from the hub loop.
// A client whose queue is full is evicted.
func (h *Hub) Deliver(clientID string, data []byte) {
	client, ok := h.clients[clientID]
	if !ok {
		return
	}

	select {
	case client.Send <- data:
	default:
		metrics.DroppedEvents.WithLabelValues(metrics.ReasonSlowClient).Inc()
		if !client.evicting {
			client.evicting = true
			l := log.L()
			l.Warn().Str(log.FieldClientID, client.ID).Msg("client send buffer full, evicting")
			go h.Unregister(client)
		}
	}
}

// ClientCount must be called from the hub loop.
func (h *Hub) ClientCount() int {
	return len(h.clients)
}

func (h *Hub) dropClient(client *Client) {
	delete(h.clients, client.ID)
	close(client.Send)
	metrics.Connections.Dec()

	h.dispatcher.HandleDisconnect(client)

	l := log.L()
	l.Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")
}

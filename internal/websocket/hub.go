package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gabaylakad/backend/internal/domain"
	"go.uber.org/zap"
)

// PublishFunc stores an inbound location sample. It is wired to the
// location service at startup; the service in turn broadcasts through
// the hub, so the hub only depends on this narrow function.
type PublishFunc func(ctx context.Context, sample *domain.LocationSample) error

// Hub fans location_update events out to every connected client. There is
// no per-listener filtering: each caregiver dashboard receives the full
// stream and filters client-side.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	stop       chan struct{}
	done       chan struct{}
	stopped    bool
	publish    PublishFunc
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// SetPublishFunc enables inbound publish_location handling.
func (h *Hub) SetPublishFunc(fn PublishFunc) {
	h.publish = fn
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer; drop rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop shuts the hub down and blocks until Run has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister safely unregisters a client, tolerating a stopped hub.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	default:
	}
}

// BroadcastLocation implements service.Broadcaster.
func (h *Hub) BroadcastLocation(sample *domain.LocationSample) {
	msg, err := NewMessage(MessageTypeLocationUpdate, LocationUpdatePayload{Sample: *sample})
	if err != nil {
		zap.L().Warn("failed to build location_update message", zap.Error(err))
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// ClientCount reports connected listeners.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

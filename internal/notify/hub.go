package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/phrazzld/slotswap-api/internal/events"
	"github.com/phrazzld/slotswap-api/internal/platform/logger"
)

// Message is the envelope written to websocket clients.
type Message struct {
	Type    string            `json:"type"`
	Payload *events.SwapEvent `json:"payload"`
}

type delivery struct {
	recipients []uuid.UUID
	payload    []byte
}

// Hub maintains the set of active clients and fans events out to them.
// Run must be running for registrations and deliveries to make progress.
type Hub struct {
	clients map[uuid.UUID]map[*client]bool

	register   chan *client
	unregister chan *client
	deliver    chan delivery
	count      chan chan int
	done       chan struct{}

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// Ensure Hub implements events.EventHandler interface
var _ events.EventHandler = (*Hub)(nil)

// NewHub creates a hub. If logger is nil, a default logger will be used.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		deliver:    make(chan delivery),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.With(slog.String("component", "notify_hub")),
	}
}

// Run processes registrations and deliveries until ctx is cancelled, then
// closes every open connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, conns := range h.clients {
				for c := range conns {
					close(c.send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*client]bool)
			return

		case c := <-h.register:
			conns, ok := h.clients[c.userID]
			if !ok {
				conns = make(map[*client]bool)
				h.clients[c.userID] = conns
			}
			conns[c] = true

		case c := <-h.unregister:
			h.remove(c)

		case d := <-h.deliver:
			for _, userID := range d.recipients {
				for c := range h.clients[userID] {
					select {
					case c.send <- d.payload:
					default:
						h.logger.Warn("dropping slow websocket client",
							slog.String("user_id", userID.String()))
						h.remove(c)
					}
				}
			}

		case reply := <-h.count:
			n := 0
			for _, conns := range h.clients {
				n += len(conns)
			}
			reply <- n
		}
	}
}

func (h *Hub) remove(c *client) {
	conns, ok := h.clients[c.userID]
	if !ok || !conns[c] {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
}

// HandleEvent implements events.EventHandler. It queues the event for every
// open connection of the event's recipients.
func (h *Hub) HandleEvent(ctx context.Context, event *events.SwapEvent) error {
	payload, err := json.Marshal(Message{Type: event.Type, Payload: event})
	if err != nil {
		return fmt.Errorf("failed to marshal swap event: %w", err)
	}

	select {
	case h.deliver <- delivery{recipients: uniqueRecipients(event), payload: payload}:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func uniqueRecipients(event *events.SwapEvent) []uuid.UUID {
	out := make([]uuid.UUID, 0, 2)
	seen := make(map[uuid.UUID]bool, 2)
	for _, id := range event.Recipients() {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ConnectionCount returns the number of open connections.
func (h *Hub) ConnectionCount(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-h.done:
		return 0, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case n := <-reply:
		return n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Serve upgrades the request to a websocket owned by userID and starts its
// pumps. It returns once the client is registered.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		logger: h.logger.With(slog.String("user_id", userID.String())),
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return fmt.Errorf("notification hub is stopped")
	case <-r.Context().Done():
		_ = conn.Close()
		return r.Context().Err()
	}

	log.Debug("websocket client connected", slog.String("user_id", userID.String()))

	go c.writePump()
	go c.readPump()
	return nil
}

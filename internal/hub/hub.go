package hub

import (
	"sync"

	"github.com/rs/zerolog/log"

	"taskhub/internal/domain"
)

// Client is one live delivery channel to a single connected session.
// A user with three open tabs has three clients. Outgoing
// notifications are buffered; the transport layer drains Receive.
type Client struct {
	userID string
	send   chan domain.Notification
	closed bool
}

// NewClient builds a client for userID with a bounded outgoing buffer.
func NewClient(userID string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 16
	}
	return &Client{userID: userID, send: make(chan domain.Notification, buffer)}
}

// UserID returns the identity this client delivers to.
func (c *Client) UserID() string { return c.userID }

// Receive returns the channel the transport reads outgoing
// notifications from. It is closed when the client is unregistered.
func (c *Client) Receive() <-chan domain.Notification { return c.send }

// Hub maintains live delivery channels keyed by user identity and
// pushes notifications to them as they are created. The registry is
// the only shared mutable state; the mutex is never held across
// blocking I/O, since enqueues into client buffers are non-blocking.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*Client]struct{}
}

func New() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register adds a client under its user. Idempotent per client
// instance and safe to call from concurrent connection-accept flows.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes a client and closes its channel. No-op if the
// client is already gone; the user's registry entry is dropped when
// its last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Publish delivers n to every open channel for userID, each at most
// once. A client whose buffer is full is treated as dead: it is
// dropped and the remaining clients still receive the notification.
// No channels for the user means no live delivery; the stored record
// remains queryable.
func (h *Hub) Publish(userID string, n domain.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[userID] {
		h.sendLocked(c, n)
	}
}

// Broadcast delivers n to every client across all users. Used for
// system-wide announcements, not the deadline path.
func (h *Hub) Broadcast(n domain.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.sendLocked(c, n)
		}
	}
}

func (h *Hub) sendLocked(c *Client, n domain.Notification) {
	select {
	case c.send <- n:
	default:
		log.Warn().Str("user_id", c.userID).Msg("dropping slow notification client")
		h.removeLocked(c)
	}
}

// Shutdown closes every client channel and empties the registry.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			if !c.closed {
				c.closed = true
				close(c.send)
			}
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
}

// ClientCount reports how many channels are open for userID.
func (h *Hub) ClientCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Frame types pushed to clients
const (
	FrameMessageCreated      = "message.created"
	FrameNotificationCreated = "notification.created"
)

// Frame is the JSON document sent over the socket
type Frame struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type delivery struct {
	userIDs []int64
	data    []byte
}

// Hub maintains the set of active clients keyed by user and pushes frames to them.
// A user may hold several connections (tabs, devices).
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "websocket").Logger(),
	}
}

// Run handles registrations and deliveries until Stop is called
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.deliver:
			h.deliverFrame(d)

		case <-h.quit:
			h.closeAll()
			return
		}
	}
}

// Stop disconnects every client and waits for Run to return
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
	<-h.done
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Debug().
		Int64("userID", client.userID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel; h.mu must be held
func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Debug().Int64("userID", client.userID).Msg("Client unregistered")
}

func (h *Hub) deliverFrame(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, userID := range d.userIDs {
		for client := range h.clients[userID] {
			select {
			case client.send <- d.data:
			default:
				// slow consumer
				h.logger.Warn().Int64("userID", userID).Msg("Client send buffer full, disconnecting")
				h.removeLocked(client)
			}
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			h.removeLocked(client)
		}
	}
}

// SendToUsers queues frame for every connection of the given users.
// Users without a connection are skipped silently.
func (h *Hub) SendToUsers(userIDs []int64, frameType string, data interface{}) error {
	if len(userIDs) == 0 {
		return nil
	}
	raw, err := json.Marshal(Frame{Type: frameType, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return err
	}

	select {
	case h.deliver <- delivery{userIDs: userIDs, data: raw}:
	case <-h.quit:
	}
	return nil
}

// IsOnline reports whether the user has at least one open connection
func (h *Hub) IsOnline(userID int64) bool {
	return h.ClientCount(userID) > 0
}

// ClientCount returns the number of open connections of a user
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// enqueueRegister hands a client to Run, giving up when the hub is stopped
func (h *Hub) enqueueRegister(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) enqueueUnregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

package websocket

import (
	"context"
	"sync"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/logger"
)

// Hub configuration constants
const (
	// Max connections per user
	maxConnectionsPerUser = 10

	// Broadcast buffer size
	broadcastBufferSize = 256
)

// AuthorizeFunc reports whether a client may subscribe to a channel.
type AuthorizeFunc func(ctx context.Context, userID, channel string) bool

// BroadcastMessage represents a message to broadcast to a channel.
type BroadcastMessage struct {
	Channel string
	Message *Message
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients        map[*Client]bool
	userConnCounts map[string]int

	// Channel subscriptions: channel -> set of clients
	channels map[string]map[*Client]bool

	broadcast  chan *BroadcastMessage
	register   chan *Client
	unregister chan *Client

	authorizeFn AuthorizeFunc
	logger      *logger.Logger
	mu          sync.RWMutex
}

// NewHub creates a new Hub. The authorize function gates channel
// subscriptions; a nil function only allows users onto their own
// user channel.
func NewHub(authorize AuthorizeFunc, log *logger.Logger) *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		userConnCounts: make(map[string]int),
		channels:       make(map[string]map[*Client]bool),
		broadcast:      make(chan *BroadcastMessage, broadcastBufferSize),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		authorizeFn:    authorize,
		logger:         log.With("component", "websocket_hub"),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("websocket hub started")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("websocket hub stopping")
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			count := h.userConnCounts[client.UserID]
			if count >= maxConnectionsPerUser {
				h.mu.Unlock()
				h.logger.Warn("connection limit exceeded",
					"user_id", client.UserID,
					"current", count,
					"max", maxConnectionsPerUser,
				)
				client.Close()
				continue
			}
			h.userConnCounts[client.UserID] = count + 1
			h.clients[client] = true
			h.mu.Unlock()

			h.logger.Debug("client registered",
				"client_id", client.ID,
				"user_id", client.UserID,
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.removeClientFromAllChannels(client)
				if count := h.userConnCounts[client.UserID]; count > 1 {
					h.userConnCounts[client.UserID] = count - 1
				} else {
					delete(h.userConnCounts, client.UserID)
				}
			}
			h.mu.Unlock()

			h.logger.Debug("client unregistered",
				"client_id", client.ID,
				"user_id", client.UserID,
			)

		case msg := <-h.broadcast:
			h.broadcastToChannel(msg)
		}
	}
}

// Broadcast sends a message to all clients subscribed to a channel.
func (h *Hub) Broadcast(channel string, msg *Message) {
	h.broadcast <- &BroadcastMessage{Channel: channel, Message: msg}
}

// BroadcastEvent broadcasts an event payload to a channel.
func (h *Hub) BroadcastEvent(channel string, data any) {
	msg := NewMessage(MessageTypeEvent).
		WithChannel(channel).
		WithData(data)
	h.Broadcast(channel, msg)
}

// PublishBoardEvent fans a membership event out to the board channel
// and to the affected user's channel.
func (h *Hub) PublishBoardEvent(event board.Event) {
	h.BroadcastEvent(MakeChannel(ChannelTypeBoard, event.BoardID.String()), event)
	h.BroadcastEvent(MakeChannel(ChannelTypeUser, event.SubjectID.String()), event)
}

// subscribeToChannel adds a client to a channel (internal use).
func (h *Hub) subscribeToChannel(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][client] = true
}

// unsubscribeFromChannel removes a client from a channel (internal use).
func (h *Hub) unsubscribeFromChannel(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.channels[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}
}

// authorizeSubscription checks if a client can subscribe to a channel.
// Every user may follow their own user channel; board channels go
// through the authorize function.
func (h *Hub) authorizeSubscription(ctx context.Context, client *Client, channel string) bool {
	channelType, id := ParseChannel(channel)
	switch channelType {
	case ChannelTypeUser:
		return id == client.UserID
	case ChannelTypeBoard:
		if h.authorizeFn == nil {
			return false
		}
		return h.authorizeFn(ctx, client.UserID, channel)
	default:
		return false
	}
}

// broadcastToChannel sends a message to all clients subscribed to a channel.
func (h *Hub) broadcastToChannel(msg *BroadcastMessage) {
	h.mu.RLock()
	clients, ok := h.channels[msg.Channel]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy client list to avoid holding lock during send
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	for _, client := range clientList {
		if err := client.SendMessage(msg.Message); err != nil {
			h.logger.Debug("failed to send message to client",
				"client_id", client.ID,
				"channel", msg.Channel,
				"error", err,
			)
		}
	}
}

// removeClientFromAllChannels removes a client from all channel subscriptions.
func (h *Hub) removeClientFromAllChannels(client *Client) {
	for channel, clients := range h.channels {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}
}

// closeAllClients closes all client connections.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
	h.channels = make(map[string]map[*Client]bool)
}

// Stats contains hub statistics.
type Stats struct {
	TotalClients  int `json:"total_clients"`
	TotalChannels int `json:"total_channels"`
}

// GetStats returns hub statistics.
func (h *Hub) GetStats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return Stats{
		TotalClients:  len(h.clients),
		TotalChannels: len(h.channels),
	}
}

package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/boardkit/api/internal/infra/http/middleware"
	"github.com/boardkit/api/pkg/apierror"
	"github.com/boardkit/api/pkg/jwt"
	"github.com/boardkit/api/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, check origin against allowed domains
		return true
	},
}

// Handler handles WebSocket connections.
type Handler struct {
	hub    *Hub
	tokens *jwt.Generator
	logger *logger.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, tokens *jwt.Generator, log *logger.Logger) *Handler {
	return &Handler{
		hub:    hub,
		tokens: tokens,
		logger: log,
	}
}

// ServeWS handles WebSocket upgrade requests.
// GET /api/v1/ws?token=xxx
//
// Browsers cannot set an Authorization header on the upgrade request,
// so the connection may instead carry a short-lived token in the query
// string.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if userID == "" {
		if token := r.URL.Query().Get("token"); token != "" {
			claims, err := h.tokens.ValidateAccessToken(token)
			if err == nil {
				userID = claims.UserID
			}
		}
	}

	if userID == "" {
		h.logger.Warn("websocket connection attempt without auth",
			"remote_addr", r.RemoteAddr,
		)
		apierror.Unauthorized("authentication required").WriteJSON(w)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			"user_id", userID,
			"error", err,
		)
		return
	}

	client := NewClient(h.hub, conn, userID, h.logger)
	h.hub.register <- client

	h.logger.Info("websocket client connected",
		"client_id", client.ID,
		"user_id", userID,
		"remote_addr", r.RemoteAddr,
	)

	go client.WritePump()
	go client.ReadPump()
}

// GetHub returns the hub instance.
func (h *Handler) GetHub() *Hub {
	return h.hub
}

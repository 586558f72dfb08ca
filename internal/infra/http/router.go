// Package http provides the HTTP server and routing for the API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/boardkit/api/internal/infra/http/handler"
)

// Handlers bundles everything the router serves.
type Handlers struct {
	Auth       *handler.AuthHandler
	Workspace  *handler.WorkspaceHandler
	Board      *handler.BoardHandler
	Member     *handler.MemberHandler
	InviteLink *handler.InviteLinkHandler
	List       *handler.ListHandler
	Card       *handler.CardHandler
	Label      *handler.LabelHandler
	Batch      *handler.BatchHandler
	Health     *handler.HealthHandler

	// WS serves the WebSocket upgrade endpoint. Optional.
	WS http.HandlerFunc
}

// RouterConfig carries the route-level middleware.
type RouterConfig struct {
	// Auth guards everything under /api/v1 except the public auth and
	// redemption endpoints.
	Auth func(http.Handler) http.Handler

	// RedeemLimit throttles invite redemption attempts. Optional.
	RedeemLimit func(http.Handler) http.Handler
}

// NewRouter builds the chi router with all API routes registered.
func NewRouter(h Handlers, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.CleanPath)
	r.Use(chimw.StripSlashes)

	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.Refresh)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth)

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.Me)

			r.Route("/workspaces", func(r chi.Router) {
				r.Post("/", h.Workspace.Create)
				r.Get("/", h.Workspace.List)
				r.Get("/{workspaceID}", h.Workspace.Get)
				r.Patch("/{workspaceID}", h.Workspace.Update)
				r.Delete("/{workspaceID}", h.Workspace.Delete)
			})

			r.Route("/boards", func(r chi.Router) {
				r.Post("/", h.Board.Create)
				r.Get("/", h.Board.List)
				r.Get("/{boardID}", h.Board.Get)
				r.Patch("/{boardID}", h.Board.Update)
				r.Delete("/{boardID}", h.Board.Delete)
				r.Post("/{boardID}/close", h.Board.Close)
				r.Post("/{boardID}/reopen", h.Board.Reopen)
				r.Get("/{boardID}/activity", h.Board.Activity)
				r.Get("/{boardID}/role", h.Member.Role)

				r.Route("/{boardID}/members", func(r chi.Router) {
					r.Post("/", h.Member.Invite)
					r.Get("/", h.Member.List)
					r.Get("/search", h.Member.Search)
					r.Patch("/{userID}", h.Member.ChangeRole)
					r.Delete("/{userID}", h.Member.Remove)
				})

				r.Route("/{boardID}/invite-link", func(r chi.Router) {
					r.Put("/", h.InviteLink.Issue)
					r.Get("/", h.InviteLink.Get)
					r.Delete("/", h.InviteLink.Revoke)
				})

				r.Post("/{boardID}/lists", h.List.Create)
				r.Get("/{boardID}/lists", h.List.ListByBoard)
				r.Post("/{boardID}/labels", h.Label.Create)
				r.Get("/{boardID}/labels", h.Label.ListByBoard)
			})

			r.Route("/lists", func(r chi.Router) {
				r.Patch("/{listID}", h.List.Update)
				r.Delete("/{listID}", h.List.Delete)
				r.Get("/{listID}/cards", h.Card.ListByList)
			})

			r.Route("/labels", func(r chi.Router) {
				r.Patch("/{labelID}", h.Label.Update)
				r.Delete("/{labelID}", h.Label.Delete)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Post("/", h.Card.Create)
				r.Post("/batch", h.Batch.Apply)
				r.Get("/inbox", h.Card.ListInbox)
				r.Get("/{cardID}", h.Card.Get)
				r.Patch("/{cardID}", h.Card.Update)
				r.Delete("/{cardID}", h.Card.Delete)
				r.Post("/{cardID}/move", h.Card.Move)

				r.Post("/{cardID}/comments", h.Card.AddComment)
				r.Get("/{cardID}/comments", h.Card.ListComments)

				r.Post("/{cardID}/checklist", h.Card.AddChecklistItem)
				r.Get("/{cardID}/checklist", h.Card.ListChecklist)

				r.Post("/{cardID}/attachments", h.Card.Attach)
				r.Get("/{cardID}/attachments", h.Card.ListAttachments)

				r.Put("/{cardID}/labels/{labelID}", h.Card.AttachLabel)
				r.Delete("/{cardID}/labels/{labelID}", h.Card.DetachLabel)
			})

			r.Patch("/comments/{commentID}", h.Card.EditComment)
			r.Delete("/comments/{commentID}", h.Card.DeleteComment)

			r.Patch("/checklist/{itemID}", h.Card.UpdateChecklistItem)
			r.Delete("/checklist/{itemID}", h.Card.DeleteChecklistItem)

			r.Get("/attachments/{attachmentID}/url", h.Card.AttachmentURL)
			r.Delete("/attachments/{attachmentID}", h.Card.DeleteAttachment)

			// Redemption is authenticated and separately throttled:
			// invite tokens are guessable by construction.
			r.Group(func(r chi.Router) {
				if cfg.RedeemLimit != nil {
					r.Use(cfg.RedeemLimit)
				}
				r.Post("/invite-links/{token}/redeem", h.InviteLink.Redeem)
			})

			if h.WS != nil {
				r.Get("/ws", h.WS)
			}
		})
	})

	return r
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/boardkit/api/internal/app"
	"github.com/boardkit/api/pkg/apierror"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/validator"
)

// InviteLinkHandler handles invite link requests.
type InviteLinkHandler struct {
	links     *app.InviteLinkService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewInviteLinkHandler creates a new InviteLinkHandler.
func NewInviteLinkHandler(links *app.InviteLinkService, log *logger.Logger) *InviteLinkHandler {
	return &InviteLinkHandler{
		links:     links,
		validator: validator.New(),
		logger:    log.With("handler", "invitelink"),
	}
}

// InviteLinkResponse is the admin-facing representation of an invite
// link. The token is included: only admins can reach this response.
type InviteLinkResponse struct {
	ID        string     `json:"id"`
	BoardID   string     `json:"board_id"`
	Token     string     `json:"token"`
	Role      string     `json:"role"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

func newInviteLinkResponse(l *board.InviteLink) InviteLinkResponse {
	return InviteLinkResponse{
		ID:        l.ID().String(),
		BoardID:   l.BoardID().String(),
		Token:     l.Token(),
		Role:      string(l.Role()),
		Active:    l.Active(),
		ExpiresAt: l.ExpiresAt(),
		CreatedBy: l.CreatedBy().String(),
		CreatedAt: l.CreatedAt(),
	}
}

// Issue creates or replaces the board's active invite link.
// PUT /api/v1/boards/{boardID}/invite-link
func (h *InviteLinkHandler) Issue(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	var req app.IssueLinkInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	link, err := h.links.Issue(r.Context(), boardID, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newInviteLinkResponse(link))
}

// Get returns the board's active invite link.
// GET /api/v1/boards/{boardID}/invite-link
func (h *InviteLinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	link, err := h.links.Get(r.Context(), boardID, actorID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newInviteLinkResponse(link))
}

// Revoke deactivates the board's active invite link. Revoking a board
// with no active link is a no-op.
// DELETE /api/v1/boards/{boardID}/invite-link
func (h *InviteLinkHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	if err := h.links.Revoke(r.Context(), boardID, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RedeemResponse reports the outcome of redeeming an invite link.
type RedeemResponse struct {
	BoardID       string `json:"board_id"`
	Role          string `json:"role"`
	AlreadyMember bool   `json:"already_member"`
}

// Redeem joins the caller to the link's board.
// POST /api/v1/invite-links/{token}/redeem
//
// An unknown token is a 404; a revoked or expired link is a 410. The
// two failure bodies are identical beyond the status so the response
// does not reveal whether a guessed token ever existed with what role.
func (h *InviteLinkHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		apierror.BadRequest("Invalid token").WriteJSON(w)
		return
	}

	result, err := h.links.Redeem(r.Context(), token, actorID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := RedeemResponse{
		BoardID:       result.BoardID.String(),
		Role:          string(result.Role),
		AlreadyMember: result.AlreadyMember,
	}

	status := http.StatusCreated
	if result.AlreadyMember {
		status = http.StatusOK
	}
	respondJSON(w, status, resp)
}

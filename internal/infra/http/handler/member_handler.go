package handler

import (
	"net/http"
	"time"

	"github.com/boardkit/api/internal/app"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/pagination"
	"github.com/boardkit/api/pkg/validator"
)

// MemberHandler handles board membership requests.
type MemberHandler struct {
	members   *app.MembershipService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members *app.MembershipService, log *logger.Logger) *MemberHandler {
	return &MemberHandler{
		members:   members,
		validator: validator.New(),
		logger:    log.With("handler", "member"),
	}
}

// MembershipResponse is the public representation of a membership.
type MembershipResponse struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	InvitedBy string    `json:"invited_by,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}

func newMembershipResponse(m *board.Membership) MembershipResponse {
	resp := MembershipResponse{
		ID:       m.ID().String(),
		BoardID:  m.BoardID().String(),
		UserID:   m.UserID().String(),
		Role:     string(m.Role()),
		JoinedAt: m.JoinedAt(),
	}
	if invitedBy := m.InvitedBy(); invitedBy != nil {
		resp.InvitedBy = invitedBy.String()
	}
	return resp
}

// MemberResponse is a membership joined with user info.
type MemberResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

func newMemberResponse(m *board.MemberWithUser) MemberResponse {
	return MemberResponse{
		UserID:    m.Membership.UserID().String(),
		Email:     m.Email,
		Name:      m.Name,
		AvatarURL: m.AvatarURL,
		Role:      string(m.Membership.Role()),
		JoinedAt:  m.Membership.JoinedAt(),
	}
}

// InviteResponse reports the outcome of an invite.
type InviteResponse struct {
	Membership    *MembershipResponse `json:"membership,omitempty"`
	AlreadyMember bool                `json:"already_member"`
	EffectiveRole string              `json:"effective_role"`
}

// Invite adds a user to the board.
// POST /api/v1/boards/{boardID}/members
func (h *MemberHandler) Invite(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	var req app.InviteMemberInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	result, err := h.members.Invite(r.Context(), boardID, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := InviteResponse{
		AlreadyMember: result.AlreadyMember,
		EffectiveRole: string(result.EffectiveRole),
	}
	if result.Membership != nil {
		m := newMembershipResponse(result.Membership)
		resp.Membership = &m
	}

	status := http.StatusCreated
	if result.AlreadyMember {
		status = http.StatusOK
	}
	respondJSON(w, status, resp)
}

// ChangeRole updates a member's role.
// PATCH /api/v1/boards/{boardID}/members/{userID}
func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}

	var req app.ChangeRoleInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	m, err := h.members.ChangeRole(r.Context(), boardID, actorID(r), userID, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newMembershipResponse(m))
}

// Remove removes a member from the board. Members may remove
// themselves; removing others requires admin access.
// DELETE /api/v1/boards/{boardID}/members/{userID}
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}

	if err := h.members.Remove(r.Context(), boardID, actorID(r), userID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List returns the board's members with user info.
// GET /api/v1/boards/{boardID}/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	members, err := h.members.ListMembers(r.Context(), boardID, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}

	data := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		data = append(data, newMemberResponse(m))
	}
	respondJSON(w, http.StatusOK, ListResponse[MemberResponse]{Data: data, Total: len(data)})
}

// Search filters the board's members by name or email substring.
// GET /api/v1/boards/{boardID}/members/search?q=ann&limit=20&offset=0
func (h *MemberHandler) Search(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	query := r.URL.Query()
	page := pagination.New(
		parseQueryInt(query.Get("page"), 1),
		parseQueryInt(query.Get("per_page"), 20),
	)
	filters := board.MemberSearchFilters{
		Search: query.Get("q"),
		Limit:  page.Limit(),
		Offset: page.Offset(),
	}

	result, err := h.members.SearchMembers(r.Context(), boardID, actorID(r), filters)
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}

	data := make([]MemberResponse, 0, len(result.Members))
	for _, m := range result.Members {
		data = append(data, newMemberResponse(m))
	}
	respondJSON(w, http.StatusOK, pagination.NewResult(data, result.Total, page))
}

// RoleResponse reports the caller's effective role on a board.
type RoleResponse struct {
	BoardID string `json:"board_id"`
	Role    string `json:"role"`
}

// Role returns the caller's effective role on the board.
// GET /api/v1/boards/{boardID}/role
func (h *MemberHandler) Role(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	role, err := h.members.ResolveRole(r.Context(), boardID, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, RoleResponse{BoardID: boardID.String(), Role: string(role)})
}

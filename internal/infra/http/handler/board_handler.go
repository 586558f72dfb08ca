package handler

import (
	"net/http"
	"time"

	"github.com/boardkit/api/internal/app"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/validator"
)

// BoardHandler handles board requests.
type BoardHandler struct {
	boards    *app.BoardService
	activity  *app.ActivityService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(boards *app.BoardService, activity *app.ActivityService, log *logger.Logger) *BoardHandler {
	return &BoardHandler{
		boards:    boards,
		activity:  activity,
		validator: validator.New(),
		logger:    log.With("handler", "board"),
	}
}

// BoardResponse is the public representation of a board.
type BoardResponse struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Background  string    `json:"background,omitempty"`
	Visibility  string    `json:"visibility"`
	CreatorID   string    `json:"creator_id"`
	Closed      bool      `json:"closed"`
	Role        string    `json:"role,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newBoardResponse(b *board.Board) BoardResponse {
	return BoardResponse{
		ID:          b.ID().String(),
		WorkspaceID: b.WorkspaceID().String(),
		Name:        b.Name(),
		Background:  b.Background(),
		Visibility:  string(b.Visibility()),
		CreatorID:   b.CreatorID().String(),
		Closed:      b.Closed(),
		CreatedAt:   b.CreatedAt(),
		UpdatedAt:   b.UpdatedAt(),
	}
}

// Create handles board creation.
// POST /api/v1/boards
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req app.CreateBoardInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	b, err := h.boards.Create(r.Context(), actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newBoardResponse(b))
}

// Get returns a single board.
// GET /api/v1/boards/{boardID}
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	b, err := h.boards.Get(r.Context(), id, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newBoardResponse(b))
}

// List returns every board the caller can see, with their effective
// role on each.
// GET /api/v1/boards
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.boards.ListForUser(r.Context(), actorID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	data := make([]BoardResponse, 0, len(list))
	for _, item := range list {
		resp := newBoardResponse(item.Board)
		resp.Role = string(item.Role)
		data = append(data, resp)
	}
	respondJSON(w, http.StatusOK, ListResponse[BoardResponse]{Data: data, Total: len(data)})
}

// Update changes board settings.
// PATCH /api/v1/boards/{boardID}
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	var req app.UpdateBoardInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	b, err := h.boards.Update(r.Context(), id, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newBoardResponse(b))
}

// Close archives a board.
// POST /api/v1/boards/{boardID}/close
func (h *BoardHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	b, err := h.boards.Close(r.Context(), id, actorID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newBoardResponse(b))
}

// Reopen restores a closed board.
// POST /api/v1/boards/{boardID}/reopen
func (h *BoardHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	b, err := h.boards.Reopen(r.Context(), id, actorID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newBoardResponse(b))
}

// Delete removes a board permanently.
// DELETE /api/v1/boards/{boardID}
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	if err := h.boards.Delete(r.Context(), id, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivityEventResponse is one entry of the board activity feed.
type ActivityEventResponse struct {
	Action     string    `json:"action"`
	BoardID    string    `json:"board_id"`
	ActorID    string    `json:"actor_id"`
	SubjectID  string    `json:"subject_id"`
	Role       string    `json:"role,omitempty"`
	OldRole    string    `json:"old_role,omitempty"`
	ViaLink    bool      `json:"via_link,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Activity returns the board's membership activity feed, newest first.
// GET /api/v1/boards/{boardID}/activity?limit=50
func (h *BoardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	limit := parseQueryInt(r.URL.Query().Get("limit"), 0)
	events, err := h.activity.ListByBoard(r.Context(), id, actorID(r), limit)
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}

	data := make([]ActivityEventResponse, 0, len(events))
	for _, e := range events {
		data = append(data, ActivityEventResponse{
			Action:     string(e.Action),
			BoardID:    e.BoardID.String(),
			ActorID:    e.ActorID.String(),
			SubjectID:  e.SubjectID.String(),
			Role:       string(e.Role),
			OldRole:    string(e.OldRole),
			ViaLink:    e.ViaLink,
			OccurredAt: e.OccurredAt,
		})
	}
	respondJSON(w, http.StatusOK, ListResponse[ActivityEventResponse]{Data: data, Total: len(data)})
}

package handler

import (
	"net/http"
	"time"

	"github.com/boardkit/api/internal/app"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/validator"
)

// ListHandler handles list requests.
type ListHandler struct {
	lists     *app.ListService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewListHandler creates a new ListHandler.
func NewListHandler(lists *app.ListService, log *logger.Logger) *ListHandler {
	return &ListHandler{
		lists:     lists,
		validator: validator.New(),
		logger:    log.With("handler", "list"),
	}
}

// BoardListResponse is the public representation of a list.
type BoardListResponse struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

func newBoardListResponse(l *board.List) BoardListResponse {
	return BoardListResponse{
		ID:        l.ID().String(),
		BoardID:   l.BoardID().String(),
		Name:      l.Name(),
		Position:  l.Position(),
		CreatedAt: l.CreatedAt(),
	}
}

// Create adds a list to a board.
// POST /api/v1/boards/{boardID}/lists
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	var req app.CreateListInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	l, err := h.lists.Create(r.Context(), boardID, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newBoardListResponse(l))
}

// ListByBoard returns the board's lists in position order.
// GET /api/v1/boards/{boardID}/lists
func (h *ListHandler) ListByBoard(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	lists, err := h.lists.ListByBoard(r.Context(), boardID, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}

	data := make([]BoardListResponse, 0, len(lists))
	for _, l := range lists {
		data = append(data, newBoardListResponse(l))
	}
	respondJSON(w, http.StatusOK, ListResponse[BoardListResponse]{Data: data, Total: len(data)})
}

// Update renames or repositions a list.
// PATCH /api/v1/lists/{listID}
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	listID, ok := idParam(w, r, "listID")
	if !ok {
		return
	}

	var req app.UpdateListInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	l, err := h.lists.Update(r.Context(), listID, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newBoardListResponse(l))
}

// Delete removes a list and its cards.
// DELETE /api/v1/lists/{listID}
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listID, ok := idParam(w, r, "listID")
	if !ok {
		return
	}

	if err := h.lists.Delete(r.Context(), listID, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/boardkit/api/internal/app"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/validator"
)

// LabelHandler handles label requests.
type LabelHandler struct {
	labels    *app.LabelService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewLabelHandler creates a new LabelHandler.
func NewLabelHandler(labels *app.LabelService, log *logger.Logger) *LabelHandler {
	return &LabelHandler{
		labels:    labels,
		validator: validator.New(),
		logger:    log.With("handler", "label"),
	}
}

// LabelResponse is the public representation of a label.
type LabelResponse struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

func newLabelResponse(l *board.Label) LabelResponse {
	return LabelResponse{
		ID:      l.ID().String(),
		BoardID: l.BoardID().String(),
		Name:    l.Name(),
		Color:   l.Color(),
	}
}

// Create adds a label to a board.
// POST /api/v1/boards/{boardID}/labels
func (h *LabelHandler) Create(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	var req app.CreateLabelInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	l, err := h.labels.Create(r.Context(), boardID, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newLabelResponse(l))
}

// ListByBoard returns the board's labels.
// GET /api/v1/boards/{boardID}/labels
func (h *LabelHandler) ListByBoard(w http.ResponseWriter, r *http.Request) {
	boardID, ok := idParam(w, r, "boardID")
	if !ok {
		return
	}

	labels, err := h.labels.ListByBoard(r.Context(), boardID, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}

	data := make([]LabelResponse, 0, len(labels))
	for _, l := range labels {
		data = append(data, newLabelResponse(l))
	}
	respondJSON(w, http.StatusOK, ListResponse[LabelResponse]{Data: data, Total: len(data)})
}

// Update renames or recolors a label.
// PATCH /api/v1/labels/{labelID}
func (h *LabelHandler) Update(w http.ResponseWriter, r *http.Request) {
	labelID, ok := idParam(w, r, "labelID")
	if !ok {
		return
	}

	var req app.UpdateLabelInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	l, err := h.labels.Update(r.Context(), labelID, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newLabelResponse(l))
}

// Delete removes a label from its board and from every card.
// DELETE /api/v1/labels/{labelID}
func (h *LabelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	labelID, ok := idParam(w, r, "labelID")
	if !ok {
		return
	}

	if err := h.labels.Delete(r.Context(), labelID, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

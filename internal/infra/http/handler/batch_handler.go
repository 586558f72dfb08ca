package handler

import (
	"net/http"

	"github.com/boardkit/api/internal/app"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/validator"
)

// BatchHandler handles batch card mutation requests.
type BatchHandler struct {
	batches   *app.BatchService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batches *app.BatchService, log *logger.Logger) *BatchHandler {
	return &BatchHandler{
		batches:   batches,
		validator: validator.New(),
		logger:    log.With("handler", "batch"),
	}
}

// Apply applies a batch of card updates atomically. Every card must be
// filed on the same board, and the whole batch succeeds or fails
// together.
// POST /api/v1/cards/batch
func (h *BatchHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req app.ApplyBatchInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	cards, err := h.batches.Apply(r.Context(), actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCardListResponse(cards))
}

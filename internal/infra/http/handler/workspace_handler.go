package handler

import (
	"net/http"
	"time"

	"github.com/boardkit/api/internal/app"
	"github.com/boardkit/api/pkg/domain/workspace"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/validator"
)

// WorkspaceHandler handles workspace requests.
type WorkspaceHandler struct {
	workspaces *app.WorkspaceService
	validator  *validator.Validator
	logger     *logger.Logger
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaces *app.WorkspaceService, log *logger.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaces: workspaces,
		validator:  validator.New(),
		logger:     log.With("handler", "workspace"),
	}
}

// WorkspaceResponse is the public representation of a workspace.
type WorkspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newWorkspaceResponse(w *workspace.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:        w.ID().String(),
		Name:      w.Name(),
		OwnerID:   w.OwnerID().String(),
		CreatedAt: w.CreatedAt(),
	}
}

// Create handles workspace creation.
// POST /api/v1/workspaces
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req app.CreateWorkspaceInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	ws, err := h.workspaces.Create(r.Context(), actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newWorkspaceResponse(ws))
}

// Get returns a single workspace.
// GET /api/v1/workspaces/{workspaceID}
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "workspaceID")
	if !ok {
		return
	}

	ws, err := h.workspaces.Get(r.Context(), id, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newWorkspaceResponse(ws))
}

// List returns the caller's workspaces.
// GET /api/v1/workspaces
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.workspaces.ListByOwner(r.Context(), actorID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	data := make([]WorkspaceResponse, 0, len(list))
	for _, ws := range list {
		data = append(data, newWorkspaceResponse(ws))
	}
	respondJSON(w, http.StatusOK, ListResponse[WorkspaceResponse]{Data: data, Total: len(data)})
}

// Update renames a workspace.
// PATCH /api/v1/workspaces/{workspaceID}
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "workspaceID")
	if !ok {
		return
	}

	var req app.UpdateWorkspaceInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	ws, err := h.workspaces.Update(r.Context(), id, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newWorkspaceResponse(ws))
}

// Delete removes a workspace.
// DELETE /api/v1/workspaces/{workspaceID}
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "workspaceID")
	if !ok {
		return
	}

	if err := h.workspaces.Delete(r.Context(), id, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package app

import (
	"context"
	"fmt"

	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/domain/workspace"
	"github.com/boardkit/api/pkg/logger"
)

// WorkspaceService handles workspace management. Workspaces are
// single-owner containers; all mutations are owner-only.
type WorkspaceService struct {
	repo   workspace.Repository
	logger *logger.Logger
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(repo workspace.Repository, log *logger.Logger) *WorkspaceService {
	return &WorkspaceService{
		repo:   repo,
		logger: log.With("service", "workspace"),
	}
}

// CreateWorkspaceInput represents the input for creating a workspace.
type CreateWorkspaceInput struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// Create creates a workspace owned by the acting user.
func (s *WorkspaceService) Create(ctx context.Context, ownerID shared.ID, input CreateWorkspaceInput) (*workspace.Workspace, error) {
	if ownerID.IsZero() {
		return nil, fmt.Errorf("%w: an acting user is required", shared.ErrUnauthenticated)
	}

	w, err := workspace.New(input.Name, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	s.logger.Info("workspace created", "id", w.ID().String(), "owner_id", ownerID.String())
	return w, nil
}

// Get retrieves a workspace. Only the owner may read it.
func (s *WorkspaceService) Get(ctx context.Context, workspaceID, actorID shared.ID) (*workspace.Workspace, error) {
	w, err := s.repo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !w.IsOwner(actorID) {
		return nil, shared.Forbiddenf("you do not own this workspace")
	}
	return w, nil
}

// ListByOwner returns the acting user's workspaces.
func (s *WorkspaceService) ListByOwner(ctx context.Context, ownerID shared.ID) ([]*workspace.Workspace, error) {
	if ownerID.IsZero() {
		return nil, fmt.Errorf("%w: an acting user is required", shared.ErrUnauthenticated)
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// UpdateWorkspaceInput represents the input for renaming a workspace.
type UpdateWorkspaceInput struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// Update renames a workspace. Owner-only.
func (s *WorkspaceService) Update(ctx context.Context, workspaceID, actorID shared.ID, input UpdateWorkspaceInput) (*workspace.Workspace, error) {
	w, err := s.repo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !w.IsOwner(actorID) {
		return nil, shared.Forbiddenf("you do not own this workspace")
	}

	if err := w.Rename(input.Name); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return w, nil
}

// Delete removes a workspace and everything under it. Owner-only.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID, actorID shared.ID) error {
	w, err := s.repo.GetByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if !w.IsOwner(actorID) {
		return shared.Forbiddenf("you do not own this workspace")
	}

	if err := s.repo.Delete(ctx, w.ID()); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	s.logger.Info("workspace deleted", "id", w.ID().String())
	return nil
}

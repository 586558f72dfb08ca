package app

import (
	"context"
	"fmt"

	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/domain/workspace"
	"github.com/boardkit/api/pkg/logger"
)

// BoardService handles board lifecycle operations.
type BoardService struct {
	repo       board.Repository
	workspaces workspace.Repository
	gate       *access.Gate
	logger     *logger.Logger
}

// NewBoardService creates a new BoardService.
func NewBoardService(repo board.Repository, workspaces workspace.Repository, gate *access.Gate, log *logger.Logger) *BoardService {
	return &BoardService{
		repo:       repo,
		workspaces: workspaces,
		gate:       gate,
		logger:     log.With("service", "board"),
	}
}

// CreateBoardInput represents the input for creating a board.
type CreateBoardInput struct {
	WorkspaceID string `json:"workspace_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Background  string `json:"background" validate:"max=500"`
	Visibility  string `json:"visibility" validate:"omitempty,board_visibility"`
}

// Create creates a board in a workspace owned by the creator. The
// creator holds the owner role implicitly; no membership row is
// written for them. A fresh board gets the default label palette.
func (s *BoardService) Create(ctx context.Context, creatorID shared.ID, input CreateBoardInput) (*board.Board, error) {
	if creatorID.IsZero() {
		return nil, fmt.Errorf("%w: an acting user is required", shared.ErrUnauthenticated)
	}

	workspaceID, err := shared.IDFromString(input.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid workspace id format", shared.ErrValidation)
	}
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ws.OwnerID().Equals(creatorID) {
		return nil, shared.Forbiddenf("you do not own this workspace")
	}

	b, err := board.NewBoard(workspaceID, input.Name, creatorID)
	if err != nil {
		return nil, err
	}
	if input.Background != "" {
		b.UpdateBackground(input.Background)
	}
	if input.Visibility != "" {
		if err := b.UpdateVisibility(board.Visibility(input.Visibility)); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	if err := s.repo.CreateLabels(ctx, board.DefaultLabels(b.ID())); err != nil {
		// The board exists without its palette; labels can be created
		// manually, so log rather than roll back.
		s.logger.Warn("failed to create default labels", "board_id", b.ID().String(), "error", err)
	}

	s.logger.Info("board created", "id", b.ID().String(), "creator", creatorID.String())
	return b, nil
}

// Get retrieves a board. Requires view access.
func (s *BoardService) Get(ctx context.Context, boardID, actorID shared.ID) (*board.Board, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(ctx, b, actorID); err != nil {
		return nil, err
	}
	return b, nil
}

// ListForUser lists boards the user created or is a member of,
// together with their effective role on each.
func (s *BoardService) ListForUser(ctx context.Context, userID shared.ID) ([]*board.BoardWithRole, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: an acting user is required", shared.ErrUnauthenticated)
	}
	return s.repo.ListForUser(ctx, userID)
}

// UpdateBoardInput represents the input for updating a board.
type UpdateBoardInput struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=100"`
	Background *string `json:"background" validate:"omitempty,max=500"`
	Visibility *string `json:"visibility" validate:"omitempty,board_visibility"`
}

// Update changes a board's name, background, or visibility. Requires
// admin access: board settings are structural, not content.
func (s *BoardService) Update(ctx context.Context, boardID, actorID shared.ID, input UpdateBoardInput) (*board.Board, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanAdminister(ctx, b, actorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := b.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Background != nil {
		b.UpdateBackground(*input.Background)
	}
	if input.Visibility != nil {
		if err := b.UpdateVisibility(board.Visibility(*input.Visibility)); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update board: %w", err)
	}

	s.logger.Info("board updated", "id", b.ID().String())
	return b, nil
}

// Close soft-archives a board. Requires admin access.
func (s *BoardService) Close(ctx context.Context, boardID, actorID shared.ID) (*board.Board, error) {
	return s.setClosed(ctx, boardID, actorID, true)
}

// Reopen restores a closed board. Requires admin access.
func (s *BoardService) Reopen(ctx context.Context, boardID, actorID shared.ID) (*board.Board, error) {
	return s.setClosed(ctx, boardID, actorID, false)
}

func (s *BoardService) setClosed(ctx context.Context, boardID, actorID shared.ID, closed bool) (*board.Board, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanAdminister(ctx, b, actorID); err != nil {
		return nil, err
	}

	if closed {
		b.Close()
	} else {
		b.Reopen()
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update board: %w", err)
	}

	s.logger.Info("board closed state changed", "id", b.ID().String(), "closed", closed)
	return b, nil
}

// Delete permanently deletes a board. Reserved to the owner.
func (s *BoardService) Delete(ctx context.Context, boardID, actorID shared.ID) error {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if err := s.gate.CanDelete(ctx, b, actorID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, b.ID()); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	s.logger.Info("board deleted", "id", b.ID().String(), "actor", actorID.String())
	return nil
}

package app

import (
	"context"
	"fmt"

	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
)

// ListService handles list operations within a board. Creating and
// renaming lists is content work (editor); deleting one is structural
// (admin).
type ListService struct {
	repo   board.Repository
	gate   *access.Gate
	logger *logger.Logger
}

// NewListService creates a new ListService.
func NewListService(repo board.Repository, gate *access.Gate, log *logger.Logger) *ListService {
	return &ListService{
		repo:   repo,
		gate:   gate,
		logger: log.With("service", "list"),
	}
}

// CreateListInput represents the input for creating a list.
type CreateListInput struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Position int    `json:"position" validate:"min=0"`
}

// Create adds a list to a board. Requires edit access.
func (s *ListService) Create(ctx context.Context, boardID, actorID shared.ID, input CreateListInput) (*board.List, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEdit(ctx, b, actorID); err != nil {
		return nil, err
	}

	l, err := board.NewList(b.ID(), input.Name, input.Position)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateList(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	s.logger.Info("list created", "id", l.ID().String(), "board_id", b.ID().String())
	return l, nil
}

// ListByBoard returns a board's lists. Requires view access.
func (s *ListService) ListByBoard(ctx context.Context, boardID, actorID shared.ID) ([]*board.List, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(ctx, b, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListsByBoard(ctx, b.ID())
}

// UpdateListInput represents the input for updating a list.
type UpdateListInput struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Position *int    `json:"position" validate:"omitempty,min=0"`
}

// Update renames or repositions a list. Requires edit access.
func (s *ListService) Update(ctx context.Context, listID, actorID shared.ID, input UpdateListInput) (*board.List, error) {
	l, err := s.repo.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.GetByID(ctx, l.BoardID())
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEdit(ctx, b, actorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := l.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Position != nil {
		l.Reposition(*input.Position)
	}

	if err := s.repo.UpdateList(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return l, nil
}

// Delete removes a list and its cards. Destructive, so it requires
// admin access rather than edit.
func (s *ListService) Delete(ctx context.Context, listID, actorID shared.ID) error {
	l, err := s.repo.GetList(ctx, listID)
	if err != nil {
		return err
	}
	b, err := s.repo.GetByID(ctx, l.BoardID())
	if err != nil {
		return err
	}
	if err := s.gate.CanAdminister(ctx, b, actorID); err != nil {
		return err
	}

	if err := s.repo.DeleteList(ctx, l.ID()); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	s.logger.Info("list deleted", "id", l.ID().String(), "board_id", b.ID().String())
	return nil
}

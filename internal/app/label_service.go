package app

import (
	"context"
	"fmt"

	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
)

// LabelService handles board label management.
type LabelService struct {
	repo   board.Repository
	gate   *access.Gate
	logger *logger.Logger
}

// NewLabelService creates a new LabelService.
func NewLabelService(repo board.Repository, gate *access.Gate, log *logger.Logger) *LabelService {
	return &LabelService{
		repo:   repo,
		gate:   gate,
		logger: log.With("service", "label"),
	}
}

// CreateLabelInput represents the input for creating a label.
type CreateLabelInput struct {
	Name  string `json:"name" validate:"max=50"`
	Color string `json:"color" validate:"required,hex_color"`
}

// Create adds a label to a board. Requires edit access.
func (s *LabelService) Create(ctx context.Context, boardID, actorID shared.ID, input CreateLabelInput) (*board.Label, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEdit(ctx, b, actorID); err != nil {
		return nil, err
	}

	l, err := board.NewLabel(b.ID(), input.Name, input.Color)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateLabels(ctx, []*board.Label{l}); err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	return l, nil
}

// ListByBoard returns a board's labels. Requires view access.
func (s *LabelService) ListByBoard(ctx context.Context, boardID, actorID shared.ID) ([]*board.Label, error) {
	b, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(ctx, b, actorID); err != nil {
		return nil, err
	}
	return s.repo.LabelsByBoard(ctx, b.ID())
}

// UpdateLabelInput represents the input for updating a label.
type UpdateLabelInput struct {
	Name  string `json:"name" validate:"max=50"`
	Color string `json:"color" validate:"required,hex_color"`
}

// Update renames or recolors a label. Requires edit access to the
// owning board.
func (s *LabelService) Update(ctx context.Context, labelID, actorID shared.ID, input UpdateLabelInput) (*board.Label, error) {
	l, err := s.repo.GetLabel(ctx, labelID)
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

	if err := l.Update(input.Name, input.Color); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLabel(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to update label: %w", err)
	}
	return l, nil
}

// Delete removes a label from its board and from every card carrying
// it. Destructive, so it requires admin access.
func (s *LabelService) Delete(ctx context.Context, labelID, actorID shared.ID) error {
	l, err := s.repo.GetLabel(ctx, labelID)
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

	if err := s.repo.DeleteLabel(ctx, l.ID()); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	s.logger.Info("label deleted", "id", l.ID().String(), "board_id", b.ID().String())
	return nil
}

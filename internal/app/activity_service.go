package app

import (
	"context"
	"fmt"

	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
)

// ActivityReader lists persisted membership events for a board.
type ActivityReader interface {
	ListByBoard(ctx context.Context, boardID shared.ID, limit int) ([]board.Event, error)
}

// ActivityService serves the membership activity feed.
type ActivityService struct {
	boards board.Repository
	events ActivityReader
	gate   *access.Gate
	logger *logger.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(boards board.Repository, events ActivityReader, gate *access.Gate, log *logger.Logger) *ActivityService {
	return &ActivityService{
		boards: boards,
		events: events,
		gate:   gate,
		logger: log.With("service", "activity"),
	}
}

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ListByBoard returns the board's membership events, newest first.
// Requires view access.
func (s *ActivityService) ListByBoard(ctx context.Context, boardID, actorID shared.ID, limit int) ([]board.Event, error) {
	b, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(ctx, b, actorID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		return nil, fmt.Errorf("%w: limit must be at most %d", shared.ErrValidation, maxActivityLimit)
	}

	return s.events.ListByBoard(ctx, boardID, limit)
}

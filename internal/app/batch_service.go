package app

import (
	"context"
	"fmt"
	"time"

	"github.com/boardkit/api/internal/metrics"
	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
)

// BatchService applies a set of card mutations (drag-and-drop
// reordering across lists) as one all-or-nothing unit scoped to a
// single board. One admin check gates the whole batch; a failure on
// any card leaves every card untouched.
type BatchService struct {
	boards board.Repository
	cards  board.CardRepository
	gate   *access.Gate
	logger *logger.Logger
}

// NewBatchService creates a new BatchService.
func NewBatchService(boards board.Repository, cards board.CardRepository, gate *access.Gate, log *logger.Logger) *BatchService {
	return &BatchService{
		boards: boards,
		cards:  cards,
		gate:   gate,
		logger: log.With("service", "batch"),
	}
}

// CardUpdate is one card's changes within a batch. Nil fields are left
// unchanged. Updates are keyed by card ID and independent of each
// other; ordering within the batch does not affect the result.
type CardUpdate struct {
	CardID   string  `json:"card_id" validate:"required,uuid"`
	ListID   *string `json:"list_id" validate:"omitempty,uuid"`
	Position *int    `json:"position" validate:"omitempty,min=0"`
	Status   *string `json:"status" validate:"omitempty,card_status"`
}

// ApplyBatchInput represents the input for a batch card update.
type ApplyBatchInput struct {
	Updates []CardUpdate `json:"updates" validate:"required,min=1,max=100,dive"`
}

// Apply validates and persists a batch of card updates. Every card
// must be filed on the same board; a batch spanning boards or touching
// an inbox card is invalid. A reference to a nonexistent card aborts
// the whole batch.
func (s *BatchService) Apply(ctx context.Context, actorID shared.ID, input ApplyBatchInput) ([]*board.Card, error) {
	if len(input.Updates) == 0 {
		return nil, fmt.Errorf("%w: batch must not be empty", shared.ErrValidation)
	}

	cardIDs := make([]shared.ID, 0, len(input.Updates))
	seen := make(map[shared.ID]bool, len(input.Updates))
	for _, u := range input.Updates {
		id, err := shared.IDFromString(u.CardID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid card id format", shared.ErrValidation)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: card %s appears more than once in the batch", shared.ErrValidation, id)
		}
		seen[id] = true
		cardIDs = append(cardIDs, id)
	}

	// GetMany surfaces a missing ID as NotFound, aborting the batch
	// before any permission or write work.
	cards, err := s.cards.GetMany(ctx, cardIDs)
	if err != nil {
		metrics.CardBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	b, err := s.resolveCommonBoard(ctx, cards)
	if err != nil {
		metrics.CardBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	// Batch reordering is structural: one admin check covers the whole
	// batch rather than gating per card.
	if err := s.gate.CanAdminister(ctx, b, actorID); err != nil {
		metrics.CardBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	byID := make(map[shared.ID]*board.Card, len(cards))
	for _, c := range cards {
		byID[c.ID()] = c
	}

	for _, u := range input.Updates {
		id := shared.MustIDFromString(u.CardID)
		c := byID[id]
		if err := s.applyUpdate(ctx, b, c, u); err != nil {
			metrics.CardBatchesTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
	}

	start := time.Now()
	if err := s.cards.UpdateBatch(ctx, cards); err != nil {
		metrics.CardBatchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to apply card batch: %w", err)
	}
	metrics.CardBatchDuration.Observe(time.Since(start).Seconds())
	metrics.CardBatchesTotal.WithLabelValues("applied").Inc()
	metrics.CardBatchSize.Observe(float64(len(cards)))

	s.logger.Info("card batch applied",
		"board_id", b.ID().String(),
		"cards", len(cards),
	)
	return cards, nil
}

// resolveCommonBoard walks each card's list to its board and requires
// every card to land on the same one. Inbox cards have no board and
// invalidate the batch.
func (s *BatchService) resolveCommonBoard(ctx context.Context, cards []*board.Card) (*board.Board, error) {
	var common *board.Board
	listBoards := make(map[shared.ID]shared.ID)

	for _, c := range cards {
		if c.IsInbox() {
			return nil, fmt.Errorf("%w: inbox cards cannot be part of a batch", shared.ErrValidation)
		}

		boardID, ok := listBoards[*c.ListID()]
		if !ok {
			l, err := s.boards.GetList(ctx, *c.ListID())
			if err != nil {
				return nil, fmt.Errorf("failed to resolve card's list: %w", err)
			}
			boardID = l.BoardID()
			listBoards[*c.ListID()] = boardID
		}

		if common == nil {
			b, err := s.boards.GetByID(ctx, boardID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve board: %w", err)
			}
			common = b
		} else if !common.ID().Equals(boardID) {
			return nil, fmt.Errorf("%w: batch spans multiple boards", shared.ErrValidation)
		}
	}

	return common, nil
}

// applyUpdate mutates one card in memory. Target lists must belong to
// the batch's board; moving a card off-board through a batch is
// invalid.
func (s *BatchService) applyUpdate(ctx context.Context, b *board.Board, c *board.Card, u CardUpdate) error {
	if u.ListID != nil {
		listID, err := shared.IDFromString(*u.ListID)
		if err != nil {
			return fmt.Errorf("%w: invalid list id format", shared.ErrValidation)
		}
		l, err := s.boards.GetList(ctx, listID)
		if err != nil {
			return fmt.Errorf("failed to resolve target list: %w", err)
		}
		if !l.BoardID().Equals(b.ID()) {
			return fmt.Errorf("%w: target list belongs to a different board", shared.ErrValidation)
		}
		position := c.Position()
		if u.Position != nil {
			position = *u.Position
		}
		if err := c.MoveToList(listID, position); err != nil {
			return err
		}
	} else if u.Position != nil {
		c.Reposition(*u.Position)
	}

	if u.Status != nil {
		if err := c.SetStatus(board.CardStatus(*u.Status)); err != nil {
			return err
		}
	}

	return nil
}

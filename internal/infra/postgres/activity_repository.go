package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
)

// ActivityRepository persists membership activity events.
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert stores an event on the board's activity feed.
func (r *ActivityRepository) Insert(ctx context.Context, e board.Event) error {
	query := `
		INSERT INTO activity_events (id, board_id, actor_id, subject_id, action, role, old_role, via_link, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		shared.NewID().String(),
		e.BoardID.String(),
		e.ActorID.String(),
		e.SubjectID.String(),
		string(e.Action),
		nullString(string(e.Role)),
		nullString(string(e.OldRole)),
		e.ViaLink,
		e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity event: %w", err)
	}

	return nil
}

// ListByBoard retrieves a board's activity feed, newest first.
func (r *ActivityRepository) ListByBoard(ctx context.Context, boardID shared.ID, limit int) ([]board.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT board_id, actor_id, subject_id, action, COALESCE(role, ''), COALESCE(old_role, ''), via_link, occurred_at
		FROM activity_events
		WHERE board_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, boardID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}
	defer rows.Close()

	var out []board.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvent(rows *sql.Rows) (board.Event, error) {
	var (
		boardIDStr, actorIDStr, subjectIDStr string
		action, role, oldRole                string
		viaLink                              bool
		occurredAt                           time.Time
	)

	if err := rows.Scan(&boardIDStr, &actorIDStr, &subjectIDStr, &action, &role, &oldRole, &viaLink, &occurredAt); err != nil {
		return board.Event{}, fmt.Errorf("failed to scan activity event: %w", err)
	}

	boardID, _ := shared.IDFromString(boardIDStr)
	actorID, _ := shared.IDFromString(actorIDStr)
	subjectID, _ := shared.IDFromString(subjectIDStr)

	return board.Event{
		Action:     board.EventAction(action),
		BoardID:    boardID,
		ActorID:    actorID,
		SubjectID:  subjectID,
		Role:       board.Role(role),
		OldRole:    board.Role(oldRole),
		ViaLink:    viaLink,
		OccurredAt: occurredAt,
	}, nil
}

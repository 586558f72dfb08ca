package board

import (
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// List represents a column on a board. A list belongs to exactly one
// board; the board owns its lists.
type List struct {
	id        shared.ID
	boardID   shared.ID
	name      string
	position  int
	createdAt time.Time
}

// NewList creates a new List entity.
func NewList(boardID shared.ID, name string, position int) (*List, error) {
	if boardID.IsZero() {
		return nil, fmt.Errorf("%w: boardID is required", shared.ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}

	return &List{
		id:        shared.NewID(),
		boardID:   boardID,
		name:      name,
		position:  position,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteList recreates a List from persistence.
func ReconstituteList(id, boardID shared.ID, name string, position int, createdAt time.Time) *List {
	return &List{
		id:        id,
		boardID:   boardID,
		name:      name,
		position:  position,
		createdAt: createdAt,
	}
}

// ID returns the list ID.
func (l *List) ID() shared.ID {
	return l.id
}

// BoardID returns the owning board ID.
func (l *List) BoardID() shared.ID {
	return l.boardID
}

// Name returns the list name.
func (l *List) Name() string {
	return l.name
}

// Position returns the list's ordering position on the board.
func (l *List) Position() int {
	return l.position
}

// CreatedAt returns when the list was created.
func (l *List) CreatedAt() time.Time {
	return l.createdAt
}

// Rename updates the list name.
func (l *List) Rename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	l.name = name
	return nil
}

// Reposition moves the list to a new position.
func (l *List) Reposition(position int) {
	l.position = position
}

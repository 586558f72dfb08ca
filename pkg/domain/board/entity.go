// Package board contains the board aggregate: boards, lists, cards and
// their nested resources, memberships, invite links, and the role model
// that gates access to all of them.
package board

import (
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// Visibility controls who can discover a board.
type Visibility string

const (
	VisibilityPrivate   Visibility = "private"
	VisibilityWorkspace Visibility = "workspace"
)

// Board represents a kanban board.
//
// The creator is immutable and always holds the owner role implicitly;
// it is never represented by a membership row.
type Board struct {
	id          shared.ID
	workspaceID shared.ID
	name        string
	background  string
	visibility  Visibility
	creatorID   shared.ID
	closed      bool
	createdAt   time.Time
	updatedAt   time.Time
}

// NewBoard creates a new Board entity.
func NewBoard(workspaceID shared.ID, name string, creatorID shared.ID) (*Board, error) {
	if workspaceID.IsZero() {
		return nil, fmt.Errorf("%w: workspaceID is required", shared.ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if creatorID.IsZero() {
		return nil, fmt.Errorf("%w: creatorID is required", shared.ErrValidation)
	}

	now := time.Now().UTC()
	return &Board{
		id:          shared.NewID(),
		workspaceID: workspaceID,
		name:        name,
		visibility:  VisibilityPrivate,
		creatorID:   creatorID,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstitute recreates a Board from persistence.
func Reconstitute(
	id, workspaceID shared.ID,
	name, background string,
	visibility Visibility,
	creatorID shared.ID,
	closed bool,
	createdAt, updatedAt time.Time,
) *Board {
	return &Board{
		id:          id,
		workspaceID: workspaceID,
		name:        name,
		background:  background,
		visibility:  visibility,
		creatorID:   creatorID,
		closed:      closed,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the board ID.
func (b *Board) ID() shared.ID {
	return b.id
}

// WorkspaceID returns the owning workspace ID.
func (b *Board) WorkspaceID() shared.ID {
	return b.workspaceID
}

// Name returns the board name.
func (b *Board) Name() string {
	return b.name
}

// Background returns the board background.
func (b *Board) Background() string {
	return b.background
}

// Visibility returns the board visibility.
func (b *Board) Visibility() Visibility {
	return b.visibility
}

// CreatorID returns the founding user's ID. The creator is the board's
// implicit owner and never changes.
func (b *Board) CreatorID() shared.ID {
	return b.creatorID
}

// IsCreator reports whether userID is the board creator.
func (b *Board) IsCreator(userID shared.ID) bool {
	return !userID.IsZero() && b.creatorID.Equals(userID)
}

// Closed reports whether the board is soft-archived.
func (b *Board) Closed() bool {
	return b.closed
}

// CreatedAt returns when the board was created.
func (b *Board) CreatedAt() time.Time {
	return b.createdAt
}

// UpdatedAt returns when the board was last updated.
func (b *Board) UpdatedAt() time.Time {
	return b.updatedAt
}

// Rename updates the board name.
func (b *Board) Rename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	b.name = name
	b.touch()
	return nil
}

// UpdateBackground updates the board background.
func (b *Board) UpdateBackground(background string) {
	b.background = background
	b.touch()
}

// UpdateVisibility updates the board visibility.
func (b *Board) UpdateVisibility(v Visibility) error {
	if v != VisibilityPrivate && v != VisibilityWorkspace {
		return fmt.Errorf("%w: invalid visibility", shared.ErrValidation)
	}
	b.visibility = v
	b.touch()
	return nil
}

// Close soft-archives the board.
func (b *Board) Close() {
	b.closed = true
	b.touch()
}

// Reopen reverses a soft-archive.
func (b *Board) Reopen() {
	b.closed = false
	b.touch()
}

func (b *Board) touch() {
	b.updatedAt = time.Now().UTC()
}

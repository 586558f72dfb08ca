package board

import (
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// ChecklistItem represents one entry on a card's checklist.
type ChecklistItem struct {
	id        shared.ID
	cardID    shared.ID
	title     string
	done      bool
	position  int
	createdAt time.Time
}

// NewChecklistItem creates a new ChecklistItem entity.
func NewChecklistItem(cardID shared.ID, title string, position int) (*ChecklistItem, error) {
	if cardID.IsZero() {
		return nil, fmt.Errorf("%w: cardID is required", shared.ErrValidation)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", shared.ErrValidation)
	}

	return &ChecklistItem{
		id:        shared.NewID(),
		cardID:    cardID,
		title:     title,
		position:  position,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteChecklistItem recreates a ChecklistItem from persistence.
func ReconstituteChecklistItem(id, cardID shared.ID, title string, done bool, position int, createdAt time.Time) *ChecklistItem {
	return &ChecklistItem{
		id:        id,
		cardID:    cardID,
		title:     title,
		done:      done,
		position:  position,
		createdAt: createdAt,
	}
}

// ID returns the item ID.
func (i *ChecklistItem) ID() shared.ID {
	return i.id
}

// CardID returns the owning card ID.
func (i *ChecklistItem) CardID() shared.ID {
	return i.cardID
}

// Title returns the item title.
func (i *ChecklistItem) Title() string {
	return i.title
}

// Done reports whether the item is checked off.
func (i *ChecklistItem) Done() bool {
	return i.done
}

// Position returns the item's position within the checklist.
func (i *ChecklistItem) Position() int {
	return i.position
}

// CreatedAt returns when the item was created.
func (i *ChecklistItem) CreatedAt() time.Time {
	return i.createdAt
}

// Rename updates the item title.
func (i *ChecklistItem) Rename(title string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", shared.ErrValidation)
	}
	i.title = title
	return nil
}

// SetDone checks or unchecks the item.
func (i *ChecklistItem) SetDone(done bool) {
	i.done = done
}

// Reposition moves the item within the checklist.
func (i *ChecklistItem) Reposition(position int) {
	i.position = position
}

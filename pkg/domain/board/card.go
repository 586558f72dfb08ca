package board

import (
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// CardStatus is the workflow status of a card.
type CardStatus string

const (
	CardStatusDoing CardStatus = "doing"
	CardStatusDone  CardStatus = "done"
)

// Card represents a card. A card belongs to at most one list: a nil
// list ID means the card sits in its creator's personal inbox and has
// no owning board. Inbox cards use the relaxed shared-board access
// rules instead of board role resolution.
type Card struct {
	id          shared.ID
	listID      *shared.ID
	creatorID   shared.ID
	name        string
	description string
	background  string
	dueDate     *time.Time
	completed   bool
	status      CardStatus
	position    int
	createdAt   time.Time
	updatedAt   time.Time
}

// NewCard creates a new Card on a list.
func NewCard(listID shared.ID, creatorID shared.ID, name string, position int) (*Card, error) {
	if listID.IsZero() {
		return nil, fmt.Errorf("%w: listID is required", shared.ErrValidation)
	}
	c, err := newCard(creatorID, name, position)
	if err != nil {
		return nil, err
	}
	c.listID = &listID
	return c, nil
}

// NewInboxCard creates a new Card in the creator's personal inbox,
// attached to no list and thus no board.
func NewInboxCard(creatorID shared.ID, name string) (*Card, error) {
	return newCard(creatorID, name, 0)
}

func newCard(creatorID shared.ID, name string, position int) (*Card, error) {
	if creatorID.IsZero() {
		return nil, fmt.Errorf("%w: creatorID is required", shared.ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}

	now := time.Now().UTC()
	return &Card{
		id:        shared.NewID(),
		creatorID: creatorID,
		name:      name,
		status:    CardStatusDoing,
		position:  position,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstituteCard recreates a Card from persistence.
func ReconstituteCard(
	id shared.ID,
	listID *shared.ID,
	creatorID shared.ID,
	name, description, background string,
	dueDate *time.Time,
	completed bool,
	status CardStatus,
	position int,
	createdAt, updatedAt time.Time,
) *Card {
	return &Card{
		id:          id,
		listID:      listID,
		creatorID:   creatorID,
		name:        name,
		description: description,
		background:  background,
		dueDate:     dueDate,
		completed:   completed,
		status:      status,
		position:    position,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the card ID.
func (c *Card) ID() shared.ID {
	return c.id
}

// ListID returns the owning list ID, or nil for an inbox card.
func (c *Card) ListID() *shared.ID {
	return c.listID
}

// IsInbox reports whether the card is in its creator's inbox (no list,
// no board).
func (c *Card) IsInbox() bool {
	return c.listID == nil
}

// CreatorID returns the card creator's ID.
func (c *Card) CreatorID() shared.ID {
	return c.creatorID
}

// Name returns the card name.
func (c *Card) Name() string {
	return c.name
}

// Description returns the card description.
func (c *Card) Description() string {
	return c.description
}

// Background returns the card background.
func (c *Card) Background() string {
	return c.background
}

// DueDate returns the card due date (nil if unset).
func (c *Card) DueDate() *time.Time {
	return c.dueDate
}

// Completed reports whether the card is completed.
func (c *Card) Completed() bool {
	return c.completed
}

// Status returns the card's workflow status.
func (c *Card) Status() CardStatus {
	return c.status
}

// Position returns the card's ordering position within its list.
func (c *Card) Position() int {
	return c.position
}

// CreatedAt returns when the card was created.
func (c *Card) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the card was last updated.
func (c *Card) UpdatedAt() time.Time {
	return c.updatedAt
}

// Rename updates the card name.
func (c *Card) Rename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	c.name = name
	c.touch()
	return nil
}

// UpdateDescription updates the card description.
func (c *Card) UpdateDescription(description string) {
	c.description = description
	c.touch()
}

// SetDueDate sets or clears the due date.
func (c *Card) SetDueDate(due *time.Time) {
	c.dueDate = due
	c.touch()
}

// SetCompleted marks the card complete or incomplete.
func (c *Card) SetCompleted(completed bool) {
	c.completed = completed
	c.touch()
}

// SetStatus updates the workflow status.
func (c *Card) SetStatus(status CardStatus) error {
	if status != CardStatusDoing && status != CardStatusDone {
		return fmt.Errorf("%w: invalid status", shared.ErrValidation)
	}
	c.status = status
	c.touch()
	return nil
}

// MoveToList files the card on a list at the given position. Filing an
// inbox card this way gives it an owning board.
func (c *Card) MoveToList(listID shared.ID, position int) error {
	if listID.IsZero() {
		return fmt.Errorf("%w: listID is required", shared.ErrValidation)
	}
	c.listID = &listID
	c.position = position
	c.touch()
	return nil
}

// Reposition moves the card within its current list.
func (c *Card) Reposition(position int) {
	c.position = position
	c.touch()
}

func (c *Card) touch() {
	c.updatedAt = time.Now().UTC()
}

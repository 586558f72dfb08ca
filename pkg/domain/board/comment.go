package board

import (
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// Comment represents a comment on a card. Permission is derived
// transitively through card → list → board, or through the inbox
// fallback when the card has no list.
type Comment struct {
	id        shared.ID
	cardID    shared.ID
	authorID  shared.ID
	body      string
	createdAt time.Time
}

// NewComment creates a new Comment entity.
func NewComment(cardID, authorID shared.ID, body string) (*Comment, error) {
	if cardID.IsZero() {
		return nil, fmt.Errorf("%w: cardID is required", shared.ErrValidation)
	}
	if authorID.IsZero() {
		return nil, fmt.Errorf("%w: authorID is required", shared.ErrValidation)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", shared.ErrValidation)
	}

	return &Comment{
		id:        shared.NewID(),
		cardID:    cardID,
		authorID:  authorID,
		body:      body,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteComment recreates a Comment from persistence.
func ReconstituteComment(id, cardID, authorID shared.ID, body string, createdAt time.Time) *Comment {
	return &Comment{
		id:        id,
		cardID:    cardID,
		authorID:  authorID,
		body:      body,
		createdAt: createdAt,
	}
}

// ID returns the comment ID.
func (c *Comment) ID() shared.ID {
	return c.id
}

// CardID returns the owning card ID.
func (c *Comment) CardID() shared.ID {
	return c.cardID
}

// AuthorID returns the comment author's ID.
func (c *Comment) AuthorID() shared.ID {
	return c.authorID
}

// Body returns the comment body.
func (c *Comment) Body() string {
	return c.body
}

// CreatedAt returns when the comment was created.
func (c *Comment) CreatedAt() time.Time {
	return c.createdAt
}

// Edit replaces the comment body.
func (c *Comment) Edit(body string) error {
	if body == "" {
		return fmt.Errorf("%w: body is required", shared.ErrValidation)
	}
	c.body = body
	return nil
}

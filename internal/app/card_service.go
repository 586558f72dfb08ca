package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/boardkit/api/pkg/domain/access"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
)

// BlobStore abstracts object storage for attachment content.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// CardService handles cards and their nested resources: comments,
// checklist items, attachments, and label assignments. Cards may be
// filed on a list or live in the creator's personal inbox; inbox cards
// use the relaxed creator/shared-board access policy.
type CardService struct {
	boards board.Repository
	cards  board.CardRepository
	gate   *access.Gate
	blobs  BlobStore
	logger *logger.Logger
}

// NewCardService creates a new CardService.
func NewCardService(boards board.Repository, cards board.CardRepository, gate *access.Gate, log *logger.Logger, opts ...CardServiceOption) *CardService {
	s := &CardService{
		boards: boards,
		cards:  cards,
		gate:   gate,
		logger: log.With("service", "card"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CardServiceOption is a functional option for CardService.
type CardServiceOption func(*CardService)

// WithBlobStore sets the object store for attachment content.
func WithBlobStore(blobs BlobStore) CardServiceOption {
	return func(s *CardService) {
		s.blobs = blobs
	}
}

// CreateCardInput represents the input for creating a card. A nil
// ListID creates an inbox card owned personally by the creator.
type CreateCardInput struct {
	ListID   *string `json:"list_id" validate:"omitempty,uuid"`
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Position int     `json:"position" validate:"min=0"`
}

// Create creates a card. Filing on a list requires edit access to the
// list's board; creating an inbox card requires only authentication.
func (s *CardService) Create(ctx context.Context, creatorID shared.ID, input CreateCardInput) (*board.Card, error) {
	if creatorID.IsZero() {
		return nil, fmt.Errorf("%w: an acting user is required", shared.ErrUnauthenticated)
	}

	if input.ListID == nil {
		c, err := board.NewInboxCard(creatorID, input.Name)
		if err != nil {
			return nil, err
		}
		if err := s.cards.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to create card: %w", err)
		}
		return c, nil
	}

	listID, err := shared.IDFromString(*input.ListID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid list id format", shared.ErrValidation)
	}
	l, err := s.boards.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	b, err := s.boards.GetByID(ctx, l.BoardID())
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEdit(ctx, b, creatorID); err != nil {
		return nil, err
	}

	c, err := board.NewCard(listID, creatorID, input.Name, input.Position)
	if err != nil {
		return nil, err
	}
	if err := s.cards.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	s.logger.Info("card created", "id", c.ID().String(), "board_id", b.ID().String())
	return c, nil
}

// Get retrieves a card. Requires view access through the card's
// containment chain or the inbox fallback.
func (s *CardService) Get(ctx context.Context, cardID, actorID shared.ID) (*board.Card, error) {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanViewCard(ctx, c, actorID); err != nil {
		return nil, err
	}
	return c, nil
}

// ListInbox returns the acting user's own inbox cards.
func (s *CardService) ListInbox(ctx context.Context, actorID shared.ID) ([]*board.Card, error) {
	if actorID.IsZero() {
		return nil, fmt.Errorf("%w: an acting user is required", shared.ErrUnauthenticated)
	}
	return s.cards.ListInboxByCreator(ctx, actorID)
}

// ListByList returns a list's cards. Requires view access to the
// list's board.
func (s *CardService) ListByList(ctx context.Context, listID, actorID shared.ID) ([]*board.Card, error) {
	l, err := s.boards.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	b, err := s.boards.GetByID(ctx, l.BoardID())
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(ctx, b, actorID); err != nil {
		return nil, err
	}
	return s.cards.ListByList(ctx, l.ID())
}

// UpdateCardInput represents the input for updating a card.
type UpdateCardInput struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=10000"`
	DueDate     *time.Time `json:"due_date"`
	ClearDue    bool       `json:"clear_due"`
	Completed   *bool      `json:"completed"`
	Status      *string    `json:"status" validate:"omitempty,card_status"`
	Position    *int       `json:"position" validate:"omitempty,min=0"`
}

// Update changes a card's fields. Requires edit access.
func (s *CardService) Update(ctx context.Context, cardID, actorID shared.ID, input UpdateCardInput) (*board.Card, error) {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEditCard(ctx, c, actorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := c.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		c.UpdateDescription(*input.Description)
	}
	if input.ClearDue {
		c.SetDueDate(nil)
	} else if input.DueDate != nil {
		c.SetDueDate(input.DueDate)
	}
	if input.Completed != nil {
		c.SetCompleted(*input.Completed)
	}
	if input.Status != nil {
		if err := c.SetStatus(board.CardStatus(*input.Status)); err != nil {
			return nil, err
		}
	}
	if input.Position != nil {
		c.Reposition(*input.Position)
	}

	if err := s.cards.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	return c, nil
}

// Move files a card on a list. Filing an inbox card onto a board
// requires edit access to the target board; the card leaves the inbox
// policy and becomes board-governed.
func (s *CardService) Move(ctx context.Context, cardID, actorID shared.ID, targetListID shared.ID, position int) (*board.Card, error) {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEditCard(ctx, c, actorID); err != nil {
		return nil, err
	}

	l, err := s.boards.GetList(ctx, targetListID)
	if err != nil {
		return nil, err
	}
	b, err := s.boards.GetByID(ctx, l.BoardID())
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEdit(ctx, b, actorID); err != nil {
		return nil, err
	}

	if err := c.MoveToList(l.ID(), position); err != nil {
		return nil, err
	}
	if err := s.cards.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to move card: %w", err)
	}
	return c, nil
}

// Delete removes a card. Filed cards require edit access; inbox cards
// are the creator's own and never widen to collaborators.
func (s *CardService) Delete(ctx context.Context, cardID, actorID shared.ID) error {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if c.IsInbox() {
		err = s.gate.CanAdministerCard(ctx, c, actorID)
	} else {
		err = s.gate.CanEditCard(ctx, c, actorID)
	}
	if err != nil {
		return err
	}

	if err := s.cards.Delete(ctx, c.ID()); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------

// CreateCommentInput represents the input for commenting on a card.
type CreateCommentInput struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

// AddComment comments on a card. Requires edit access to the card.
func (s *CardService) AddComment(ctx context.Context, cardID, authorID shared.ID, input CreateCommentInput) (*board.Comment, error) {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEditCard(ctx, c, authorID); err != nil {
		return nil, err
	}

	comment, err := board.NewComment(c.ID(), authorID, input.Body)
	if err != nil {
		return nil, err
	}
	if err := s.cards.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// ListComments returns a card's comments. Requires view access.
func (s *CardService) ListComments(ctx context.Context, cardID, actorID shared.ID) ([]*board.Comment, error) {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanViewCard(ctx, c, actorID); err != nil {
		return nil, err
	}
	return s.cards.ListCommentsByCard(ctx, c.ID())
}

// EditComment edits a comment's body. Only the author may edit.
func (s *CardService) EditComment(ctx context.Context, commentID, actorID shared.ID, body string) (*board.Comment, error) {
	comment, err := s.cards.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.AuthorID().Equals(actorID) {
		return nil, shared.Forbiddenf("only the comment's author can edit it")
	}

	if err := comment.Edit(body); err != nil {
		return nil, err
	}
	if err := s.cards.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a comment. The author may always delete their
// own; otherwise admin access to the card is required.
func (s *CardService) DeleteComment(ctx context.Context, commentID, actorID shared.ID) error {
	comment, err := s.cards.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !comment.AuthorID().Equals(actorID) {
		c, err := s.cards.GetByID(ctx, comment.CardID())
		if err != nil {
			return err
		}
		if err := s.gate.CanAdministerCard(ctx, c, actorID); err != nil {
			return err
		}
	}
	return s.cards.DeleteComment(ctx, comment.ID())
}

// ---------------------------------------------------------------------
// Checklist items
// ---------------------------------------------------------------------

// CreateChecklistItemInput represents the input for a checklist item.
type CreateChecklistItemInput struct {
	Title    string `json:"title" validate:"required,min=1,max=500"`
	Position int    `json:"position" validate:"min=0"`
}

// AddChecklistItem adds a checklist item to a card. Requires edit
// access.
func (s *CardService) AddChecklistItem(ctx context.Context, cardID, actorID shared.ID, input CreateChecklistItemInput) (*board.ChecklistItem, error) {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEditCard(ctx, c, actorID); err != nil {
		return nil, err
	}

	item, err := board.NewChecklistItem(c.ID(), input.Title, input.Position)
	if err != nil {
		return nil, err
	}
	if err := s.cards.CreateChecklistItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create checklist item: %w", err)
	}
	return item, nil
}

// UpdateChecklistItemInput represents the input for updating a
// checklist item.
type UpdateChecklistItemInput struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=500"`
	Done     *bool   `json:"done"`
	Position *int    `json:"position" validate:"omitempty,min=0"`
}

// UpdateChecklistItem updates a checklist item. Requires edit access
// to the owning card.
func (s *CardService) UpdateChecklistItem(ctx context.Context, itemID, actorID shared.ID, input UpdateChecklistItemInput) (*board.ChecklistItem, error) {
	item, err := s.cards.GetChecklistItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	c, err := s.cards.GetByID(ctx, item.CardID())
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEditCard(ctx, c, actorID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if err := item.Rename(*input.Title); err != nil {
			return nil, err
		}
	}
	if input.Done != nil {
		item.SetDone(*input.Done)
	}
	if input.Position != nil {
		item.Reposition(*input.Position)
	}

	if err := s.cards.UpdateChecklistItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update checklist item: %w", err)
	}
	return item, nil
}

// ListChecklist returns a card's checklist items. Requires view
// access.
func (s *CardService) ListChecklist(ctx context.Context, cardID, actorID shared.ID) ([]*board.ChecklistItem, error) {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanViewCard(ctx, c, actorID); err != nil {
		return nil, err
	}
	return s.cards.ListChecklistByCard(ctx, c.ID())
}

// DeleteChecklistItem removes a checklist item. Requires edit access
// to the owning card.
func (s *CardService) DeleteChecklistItem(ctx context.Context, itemID, actorID shared.ID) error {
	item, err := s.cards.GetChecklistItem(ctx, itemID)
	if err != nil {
		return err
	}
	c, err := s.cards.GetByID(ctx, item.CardID())
	if err != nil {
		return err
	}
	if err := s.gate.CanEditCard(ctx, c, actorID); err != nil {
		return err
	}
	return s.cards.DeleteChecklistItem(ctx, item.ID())
}

// ---------------------------------------------------------------------
// Attachments
// ---------------------------------------------------------------------

// AttachFileInput represents the input for attaching a file to a card.
type AttachFileInput struct {
	FileName    string `validate:"required,min=1,max=255"`
	ContentType string `validate:"required,max=100"`
	Size        int64  `validate:"required,min=1,max=26214400"` // 25MB
	Body        io.Reader
}

// AttachFile stores the file content and records attachment metadata.
// Requires edit access to the card and a configured blob store.
func (s *CardService) AttachFile(ctx context.Context, cardID, actorID shared.ID, input AttachFileInput) (*board.Attachment, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("%w: attachment storage is not configured", shared.ErrInternal)
	}

	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanEditCard(ctx, c, actorID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("attachments/%s/%s", c.ID(), shared.NewID())
	a, err := board.NewAttachment(c.ID(), actorID, input.FileName, input.ContentType, input.Size, key)
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Put(ctx, a.StorageKey(), input.ContentType, input.Body, input.Size); err != nil {
		return nil, fmt.Errorf("failed to store attachment content: %w", err)
	}
	if err := s.cards.CreateAttachment(ctx, a); err != nil {
		// Orphaned blob; best-effort cleanup.
		if delErr := s.blobs.Delete(ctx, a.StorageKey()); delErr != nil {
			s.logger.Warn("failed to clean up orphaned blob", "key", a.StorageKey(), "error", delErr)
		}
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	s.logger.Info("attachment created", "id", a.ID().String(), "card_id", c.ID().String())
	return a, nil
}

// ListAttachments returns a card's attachment metadata. Requires view
// access.
func (s *CardService) ListAttachments(ctx context.Context, cardID, actorID shared.ID) ([]*board.Attachment, error) {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanViewCard(ctx, c, actorID); err != nil {
		return nil, err
	}
	return s.cards.ListAttachmentsByCard(ctx, c.ID())
}

// AttachmentURL returns a presigned download URL for an attachment.
// Requires view access to the owning card.
func (s *CardService) AttachmentURL(ctx context.Context, attachmentID, actorID shared.ID, ttl time.Duration) (string, error) {
	if s.blobs == nil {
		return "", fmt.Errorf("%w: attachment storage is not configured", shared.ErrInternal)
	}

	a, err := s.cards.GetAttachment(ctx, attachmentID)
	if err != nil {
		return "", err
	}
	c, err := s.cards.GetByID(ctx, a.CardID())
	if err != nil {
		return "", err
	}
	if err := s.gate.CanViewCard(ctx, c, actorID); err != nil {
		return "", err
	}

	return s.blobs.PresignGet(ctx, a.StorageKey(), ttl)
}

// DeleteAttachment removes an attachment and its stored content.
// Requires edit access to the owning card.
func (s *CardService) DeleteAttachment(ctx context.Context, attachmentID, actorID shared.ID) error {
	a, err := s.cards.GetAttachment(ctx, attachmentID)
	if err != nil {
		return err
	}
	c, err := s.cards.GetByID(ctx, a.CardID())
	if err != nil {
		return err
	}
	if err := s.gate.CanEditCard(ctx, c, actorID); err != nil {
		return err
	}

	if err := s.cards.DeleteAttachment(ctx, a.ID()); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	if s.blobs != nil {
		if err := s.blobs.Delete(ctx, a.StorageKey()); err != nil {
			s.logger.Warn("failed to delete blob", "key", a.StorageKey(), "error", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------
// Card labels
// ---------------------------------------------------------------------

// AttachLabel assigns a board label to a card. The label must belong
// to the card's board; requires edit access.
func (s *CardService) AttachLabel(ctx context.Context, cardID, labelID, actorID shared.ID) error {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if err := s.gate.CanEditCard(ctx, c, actorID); err != nil {
		return err
	}

	label, err := s.boards.GetLabel(ctx, labelID)
	if err != nil {
		return err
	}
	b, err := s.gate.BoardForCard(ctx, c)
	if err != nil {
		return fmt.Errorf("%w: labels cannot be attached to inbox cards", shared.ErrValidation)
	}
	if !label.BoardID().Equals(b.ID()) {
		return fmt.Errorf("%w: label belongs to a different board", shared.ErrValidation)
	}

	return s.cards.AttachLabel(ctx, c.ID(), label.ID())
}

// DetachLabel removes a label from a card. Requires edit access.
func (s *CardService) DetachLabel(ctx context.Context, cardID, labelID, actorID shared.ID) error {
	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if err := s.gate.CanEditCard(ctx, c, actorID); err != nil {
		return err
	}
	return s.cards.DetachLabel(ctx, c.ID(), labelID)
}

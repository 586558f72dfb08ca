package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
)

// CardRepository implements board.CardRepository using PostgreSQL.
type CardRepository struct {
	db *DB
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `id, list_id, creator_id, name, description, background, due_date, completed, status, position, created_at, updated_at`

// Create persists a new card.
func (r *CardRepository) Create(ctx context.Context, c *board.Card) error {
	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query, cardArgs(c)...)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetByID retrieves a card by ID.
func (r *CardRepository) GetByID(ctx context.Context, id shared.ID) (*board.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	c, err := scanCard(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Update updates an existing card.
func (r *CardRepository) Update(ctx context.Context, c *board.Card) error {
	result, err := r.db.ExecContext(ctx, cardUpdateQuery, cardUpdateArgs(c)...)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// Delete removes a card and its nested resources.
func (r *CardRepository) Delete(ctx context.Context, id shared.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// ListByList retrieves a list's cards ordered by position.
func (r *CardRepository) ListByList(ctx context.Context, listID shared.ID) ([]*board.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE list_id = $1 ORDER BY position, created_at`

	rows, err := r.db.QueryContext(ctx, query, listID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows)
}

// ListInboxByCreator retrieves a user's inbox cards.
func (r *CardRepository) ListInboxByCreator(ctx context.Context, creatorID shared.ID) ([]*board.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE list_id IS NULL AND creator_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, creatorID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows)
}

// GetMany retrieves the cards for the given IDs. A missing ID is an
// error, not a silent omission.
func (r *CardRepository) GetMany(ctx context.Context, ids []shared.ID) ([]*board.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(idStrs))
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	defer rows.Close()

	cards, err := collectCards(rows)
	if err != nil {
		return nil, err
	}
	if len(cards) != len(ids) {
		return nil, fmt.Errorf("%w: one or more cards do not exist", shared.ErrNotFound)
	}

	byID := make(map[shared.ID]*board.Card, len(cards))
	for _, c := range cards {
		byID[c.ID()] = c
	}
	ordered := make([]*board.Card, len(ids))
	for i, id := range ids {
		ordered[i] = byID[id]
	}
	return ordered, nil
}

// UpdateBatch persists all updates in one transaction: either every
// card is written or none are.
func (r *CardRepository) UpdateBatch(ctx context.Context, cards []*board.Card) error {
	if len(cards) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, cardUpdateQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare batch update: %w", err)
		}
		defer stmt.Close()

		for _, c := range cards {
			result, err := stmt.ExecContext(ctx, cardUpdateArgs(c)...)
			if err != nil {
				return fmt.Errorf("failed to update card %s: %w", c.ID(), err)
			}
			rows, _ := result.RowsAffected()
			if rows == 0 {
				return fmt.Errorf("%w: card %s", shared.ErrNotFound, c.ID())
			}
		}
		return nil
	})
}

// =============================================================================
// Comments
// =============================================================================

// CreateComment persists a new comment.
func (r *CardRepository) CreateComment(ctx context.Context, c *board.Comment) error {
	query := `
		INSERT INTO card_comments (id, card_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID().String(), c.CardID().String(), c.AuthorID().String(), c.Body(), c.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetComment retrieves a comment by ID.
func (r *CardRepository) GetComment(ctx context.Context, id shared.ID) (*board.Comment, error) {
	query := `SELECT id, card_id, author_id, body, created_at FROM card_comments WHERE id = $1`

	var (
		idStr, cardIDStr, authorIDStr, body string
		createdAt                           time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&idStr, &cardIDStr, &authorIDStr, &body, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}

	commentID, _ := shared.IDFromString(idStr)
	cardID, _ := shared.IDFromString(cardIDStr)
	authorID, _ := shared.IDFromString(authorIDStr)
	return board.ReconstituteComment(commentID, cardID, authorID, body, createdAt), nil
}

// UpdateComment updates a comment's body.
func (r *CardRepository) UpdateComment(ctx context.Context, c *board.Comment) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE card_comments SET body = $2 WHERE id = $1`,
		c.ID().String(), c.Body(),
	)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// DeleteComment removes a comment.
func (r *CardRepository) DeleteComment(ctx context.Context, id shared.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM card_comments WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// ListCommentsByCard retrieves a card's comments oldest first.
func (r *CardRepository) ListCommentsByCard(ctx context.Context, cardID shared.ID) ([]*board.Comment, error) {
	query := `SELECT id, card_id, author_id, body, created_at FROM card_comments WHERE card_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, cardID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []*board.Comment
	for rows.Next() {
		var (
			idStr, cardIDStr, authorIDStr, body string
			createdAt                           time.Time
		)
		if err := rows.Scan(&idStr, &cardIDStr, &authorIDStr, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		commentID, _ := shared.IDFromString(idStr)
		cID, _ := shared.IDFromString(cardIDStr)
		authorID, _ := shared.IDFromString(authorIDStr)
		out = append(out, board.ReconstituteComment(commentID, cID, authorID, body, createdAt))
	}
	return out, rows.Err()
}

// =============================================================================
// Checklist items
// =============================================================================

// CreateChecklistItem persists a new checklist item.
func (r *CardRepository) CreateChecklistItem(ctx context.Context, i *board.ChecklistItem) error {
	query := `
		INSERT INTO checklist_items (id, card_id, title, done, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		i.ID().String(), i.CardID().String(), i.Title(), i.Done(), i.Position(), i.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create checklist item: %w", err)
	}

	return nil
}

// GetChecklistItem retrieves a checklist item by ID.
func (r *CardRepository) GetChecklistItem(ctx context.Context, id shared.ID) (*board.ChecklistItem, error) {
	query := `SELECT id, card_id, title, done, position, created_at FROM checklist_items WHERE id = $1`

	var (
		idStr, cardIDStr, title string
		done                    bool
		position                int
		createdAt               time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&idStr, &cardIDStr, &title, &done, &position, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan checklist item: %w", err)
	}

	itemID, _ := shared.IDFromString(idStr)
	cardID, _ := shared.IDFromString(cardIDStr)
	return board.ReconstituteChecklistItem(itemID, cardID, title, done, position, createdAt), nil
}

// UpdateChecklistItem updates an existing checklist item.
func (r *CardRepository) UpdateChecklistItem(ctx context.Context, i *board.ChecklistItem) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE checklist_items SET title = $2, done = $3, position = $4 WHERE id = $1`,
		i.ID().String(), i.Title(), i.Done(), i.Position(),
	)
	if err != nil {
		return fmt.Errorf("failed to update checklist item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// DeleteChecklistItem removes a checklist item.
func (r *CardRepository) DeleteChecklistItem(ctx context.Context, id shared.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM checklist_items WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete checklist item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// ListChecklistByCard retrieves a card's checklist ordered by position.
func (r *CardRepository) ListChecklistByCard(ctx context.Context, cardID shared.ID) ([]*board.ChecklistItem, error) {
	query := `SELECT id, card_id, title, done, position, created_at FROM checklist_items WHERE card_id = $1 ORDER BY position, created_at`

	rows, err := r.db.QueryContext(ctx, query, cardID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	defer rows.Close()

	var out []*board.ChecklistItem
	for rows.Next() {
		var (
			idStr, cardIDStr, title string
			done                    bool
			position                int
			createdAt               time.Time
		)
		if err := rows.Scan(&idStr, &cardIDStr, &title, &done, &position, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		itemID, _ := shared.IDFromString(idStr)
		cID, _ := shared.IDFromString(cardIDStr)
		out = append(out, board.ReconstituteChecklistItem(itemID, cID, title, done, position, createdAt))
	}
	return out, rows.Err()
}

// =============================================================================
// Attachments
// =============================================================================

// CreateAttachment persists attachment metadata.
func (r *CardRepository) CreateAttachment(ctx context.Context, a *board.Attachment) error {
	query := `
		INSERT INTO card_attachments (id, card_id, uploader_id, file_name, content_type, size, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID().String(), a.CardID().String(), a.UploaderID().String(),
		a.FileName(), a.ContentType(), a.Size(), a.StorageKey(), a.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	return nil
}

// GetAttachment retrieves attachment metadata by ID.
func (r *CardRepository) GetAttachment(ctx context.Context, id shared.ID) (*board.Attachment, error) {
	query := `
		SELECT id, card_id, uploader_id, file_name, content_type, size, storage_key, created_at
		FROM card_attachments
		WHERE id = $1
	`

	var (
		idStr, cardIDStr, uploaderIDStr          string
		fileName, contentType, storageKey string
		size                              int64
		createdAt                         time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&idStr, &cardIDStr, &uploaderIDStr, &fileName, &contentType, &size, &storageKey, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan attachment: %w", err)
	}

	attachmentID, _ := shared.IDFromString(idStr)
	cardID, _ := shared.IDFromString(cardIDStr)
	uploaderID, _ := shared.IDFromString(uploaderIDStr)
	return board.ReconstituteAttachment(attachmentID, cardID, uploaderID, fileName, contentType, size, storageKey, createdAt), nil
}

// DeleteAttachment removes attachment metadata.
func (r *CardRepository) DeleteAttachment(ctx context.Context, id shared.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM card_attachments WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// ListAttachmentsByCard retrieves a card's attachment metadata.
func (r *CardRepository) ListAttachmentsByCard(ctx context.Context, cardID shared.ID) ([]*board.Attachment, error) {
	query := `
		SELECT id, card_id, uploader_id, file_name, content_type, size, storage_key, created_at
		FROM card_attachments
		WHERE card_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, cardID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var out []*board.Attachment
	for rows.Next() {
		var (
			idStr, cardIDStr, uploaderIDStr   string
			fileName, contentType, storageKey string
			size                              int64
			createdAt                         time.Time
		)
		if err := rows.Scan(&idStr, &cardIDStr, &uploaderIDStr, &fileName, &contentType, &size, &storageKey, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachmentID, _ := shared.IDFromString(idStr)
		cID, _ := shared.IDFromString(cardIDStr)
		uploaderID, _ := shared.IDFromString(uploaderIDStr)
		out = append(out, board.ReconstituteAttachment(attachmentID, cID, uploaderID, fileName, contentType, size, storageKey, createdAt))
	}
	return out, rows.Err()
}

// =============================================================================
// Card labels
// =============================================================================

// AttachLabel links a label to a card. Attaching twice is a no-op.
func (r *CardRepository) AttachLabel(ctx context.Context, cardID, labelID shared.ID) error {
	query := `
		INSERT INTO card_labels (card_id, label_id)
		VALUES ($1, $2)
		ON CONFLICT (card_id, label_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, cardID.String(), labelID.String())
	if err != nil {
		return fmt.Errorf("failed to attach label: %w", err)
	}

	return nil
}

// DetachLabel unlinks a label from a card.
func (r *CardRepository) DetachLabel(ctx context.Context, cardID, labelID shared.ID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM card_labels WHERE card_id = $1 AND label_id = $2`,
		cardID.String(), labelID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to detach label: %w", err)
	}

	return nil
}

// ListLabelIDsByCard retrieves the label IDs attached to a card.
func (r *CardRepository) ListLabelIDsByCard(ctx context.Context, cardID shared.ID) ([]shared.ID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT label_id FROM card_labels WHERE card_id = $1`, cardID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list card labels: %w", err)
	}
	defer rows.Close()

	var out []shared.ID
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, fmt.Errorf("failed to scan label id: %w", err)
		}
		id, err := shared.IDFromString(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse label id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// =============================================================================
// Scan helpers
// =============================================================================

const cardUpdateQuery = `
	UPDATE cards
	SET list_id = $2, name = $3, description = $4, background = $5, due_date = $6,
	    completed = $7, status = $8, position = $9, updated_at = $10
	WHERE id = $1
`

func cardUpdateArgs(c *board.Card) []any {
	return []any{
		c.ID().String(),
		nullID(c.ListID()),
		c.Name(),
		c.Description(),
		nullString(c.Background()),
		nullTime(c.DueDate()),
		c.Completed(),
		string(c.Status()),
		c.Position(),
		c.UpdatedAt(),
	}
}

func cardArgs(c *board.Card) []any {
	return []any{
		c.ID().String(),
		nullID(c.ListID()),
		c.CreatorID().String(),
		c.Name(),
		c.Description(),
		nullString(c.Background()),
		nullTime(c.DueDate()),
		c.Completed(),
		string(c.Status()),
		c.Position(),
		c.CreatedAt(),
		c.UpdatedAt(),
	}
}

func scanCard(row rowScanner) (*board.Card, error) {
	var (
		idStr, creatorIDStr, name, description, status string
		listID, background                             sql.NullString
		dueDate                                        sql.NullTime
		completed                                      bool
		position                                       int
		createdAt, updatedAt                           time.Time
	)

	err := row.Scan(&idStr, &listID, &creatorIDStr, &name, &description, &background, &dueDate, &completed, &status, &position, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	creatorID, _ := shared.IDFromString(creatorIDStr)

	return board.ReconstituteCard(
		id, parseNullID(listID), creatorID,
		name, description, background.String,
		nullTimeValue(dueDate), completed,
		board.CardStatus(status), position, createdAt, updatedAt,
	), nil
}

func collectCards(rows *sql.Rows) ([]*board.Card, error) {
	var out []*board.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

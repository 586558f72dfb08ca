package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
)

// BoardRepository implements board.Repository using PostgreSQL.
type BoardRepository struct {
	db *DB
}

// NewBoardRepository creates a new BoardRepository.
func NewBoardRepository(db *DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// =============================================================================
// Board CRUD
// =============================================================================

// Create persists a new board.
func (r *BoardRepository) Create(ctx context.Context, b *board.Board) error {
	query := `
		INSERT INTO boards (id, workspace_id, name, background, visibility, creator_id, closed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		b.ID().String(),
		b.WorkspaceID().String(),
		b.Name(),
		nullString(b.Background()),
		string(b.Visibility()),
		b.CreatorID().String(),
		b.Closed(),
		b.CreatedAt(),
		b.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}

	return nil
}

// GetByID retrieves a board by ID.
func (r *BoardRepository) GetByID(ctx context.Context, id shared.ID) (*board.Board, error) {
	query := `
		SELECT id, workspace_id, name, background, visibility, creator_id, closed, created_at, updated_at
		FROM boards
		WHERE id = $1
	`

	return scanBoard(r.db.QueryRowContext(ctx, query, id.String()))
}

// Update updates an existing board.
func (r *BoardRepository) Update(ctx context.Context, b *board.Board) error {
	query := `
		UPDATE boards
		SET name = $2, background = $3, visibility = $4, closed = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		b.ID().String(),
		b.Name(),
		nullString(b.Background()),
		string(b.Visibility()),
		b.Closed(),
		b.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to update board: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// Delete removes a board. Lists, cards, labels, memberships, and
// invite links go with it via ON DELETE CASCADE.
func (r *BoardRepository) Delete(ctx context.Context, id shared.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// ListByWorkspace retrieves all boards in a workspace.
func (r *BoardRepository) ListByWorkspace(ctx context.Context, workspaceID shared.ID) ([]*board.Board, error) {
	query := `
		SELECT id, workspace_id, name, background, visibility, creator_id, closed, created_at, updated_at
		FROM boards
		WHERE workspace_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	return collectBoards(rows)
}

// ListForUser retrieves boards the user created or is a member of,
// with the user's effective role on each.
func (r *BoardRepository) ListForUser(ctx context.Context, userID shared.ID) ([]*board.BoardWithRole, error) {
	query := `
		SELECT b.id, b.workspace_id, b.name, b.background, b.visibility, b.creator_id, b.closed, b.created_at, b.updated_at,
		       CASE WHEN b.creator_id = $1 THEN 'owner' ELSE m.role END AS role
		FROM boards b
		LEFT JOIN board_memberships m ON m.board_id = b.id AND m.user_id = $1
		WHERE b.creator_id = $1 OR m.user_id IS NOT NULL
		ORDER BY b.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list boards for user: %w", err)
	}
	defer rows.Close()

	var out []*board.BoardWithRole
	for rows.Next() {
		b, role, err := scanBoardWithRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, &board.BoardWithRole{Board: b, Role: role})
	}
	return out, rows.Err()
}

// =============================================================================
// Lists
// =============================================================================

// CreateList persists a new list.
func (r *BoardRepository) CreateList(ctx context.Context, l *board.List) error {
	query := `
		INSERT INTO lists (id, board_id, name, position, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		l.ID().String(), l.BoardID().String(), l.Name(), l.Position(), l.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}

	return nil
}

// GetList retrieves a list by ID.
func (r *BoardRepository) GetList(ctx context.Context, id shared.ID) (*board.List, error) {
	query := `
		SELECT id, board_id, name, position, created_at
		FROM lists
		WHERE id = $1
	`

	var (
		idStr, boardIDStr, name string
		position                int
		createdAt               time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&idStr, &boardIDStr, &name, &position, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan list: %w", err)
	}

	listID, _ := shared.IDFromString(idStr)
	boardID, _ := shared.IDFromString(boardIDStr)
	return board.ReconstituteList(listID, boardID, name, position, createdAt), nil
}

// UpdateList updates an existing list.
func (r *BoardRepository) UpdateList(ctx context.Context, l *board.List) error {
	query := `UPDATE lists SET name = $2, position = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, l.ID().String(), l.Name(), l.Position())
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// DeleteList removes a list and its cards.
func (r *BoardRepository) DeleteList(ctx context.Context, id shared.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// ListsByBoard retrieves a board's lists ordered by position.
func (r *BoardRepository) ListsByBoard(ctx context.Context, boardID shared.ID) ([]*board.List, error) {
	query := `
		SELECT id, board_id, name, position, created_at
		FROM lists
		WHERE board_id = $1
		ORDER BY position, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, boardID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	var out []*board.List
	for rows.Next() {
		var (
			idStr, boardIDStr, name string
			position                int
			createdAt               time.Time
		)
		if err := rows.Scan(&idStr, &boardIDStr, &name, &position, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		listID, _ := shared.IDFromString(idStr)
		bID, _ := shared.IDFromString(boardIDStr)
		out = append(out, board.ReconstituteList(listID, bID, name, position, createdAt))
	}
	return out, rows.Err()
}

// =============================================================================
// Labels
// =============================================================================

// CreateLabels persists labels in one statement.
func (r *BoardRepository) CreateLabels(ctx context.Context, labels []*board.Label) error {
	if len(labels) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO labels (id, board_id, name, color, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		for _, l := range labels {
			if _, err := tx.ExecContext(ctx, query,
				l.ID().String(), l.BoardID().String(), l.Name(), l.Color(), l.CreatedAt(),
			); err != nil {
				return fmt.Errorf("failed to create label: %w", err)
			}
		}
		return nil
	})
}

// GetLabel retrieves a label by ID.
func (r *BoardRepository) GetLabel(ctx context.Context, id shared.ID) (*board.Label, error) {
	query := `
		SELECT id, board_id, name, color, created_at
		FROM labels
		WHERE id = $1
	`

	var (
		idStr, boardIDStr, name, color string
		createdAt                      time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&idStr, &boardIDStr, &name, &color, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan label: %w", err)
	}

	labelID, _ := shared.IDFromString(idStr)
	boardID, _ := shared.IDFromString(boardIDStr)
	return board.ReconstituteLabel(labelID, boardID, name, color, createdAt), nil
}

// UpdateLabel updates an existing label.
func (r *BoardRepository) UpdateLabel(ctx context.Context, l *board.Label) error {
	query := `UPDATE labels SET name = $2, color = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, l.ID().String(), l.Name(), l.Color())
	if err != nil {
		return fmt.Errorf("failed to update label: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// DeleteLabel removes a label and its card links.
func (r *BoardRepository) DeleteLabel(ctx context.Context, id shared.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM labels WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// LabelsByBoard retrieves a board's labels.
func (r *BoardRepository) LabelsByBoard(ctx context.Context, boardID shared.ID) ([]*board.Label, error) {
	query := `
		SELECT id, board_id, name, color, created_at
		FROM labels
		WHERE board_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, boardID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer rows.Close()

	var out []*board.Label
	for rows.Next() {
		var (
			idStr, boardIDStr, name, color string
			createdAt                      time.Time
		)
		if err := rows.Scan(&idStr, &boardIDStr, &name, &color, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labelID, _ := shared.IDFromString(idStr)
		bID, _ := shared.IDFromString(boardIDStr)
		out = append(out, board.ReconstituteLabel(labelID, bID, name, color, createdAt))
	}
	return out, rows.Err()
}

// =============================================================================
// Memberships
// =============================================================================

// CreateMembership persists a new membership.
func (r *BoardRepository) CreateMembership(ctx context.Context, m *board.Membership) error {
	query := `
		INSERT INTO board_memberships (id, board_id, user_id, role, invited_by, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID().String(),
		m.BoardID().String(),
		m.UserID().String(),
		string(m.Role()),
		nullID(m.InvitedBy()),
		m.JoinedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: membership already exists", shared.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return nil
}

// GetMembership retrieves a membership by (board, user).
func (r *BoardRepository) GetMembership(ctx context.Context, boardID, userID shared.ID) (*board.Membership, error) {
	query := `
		SELECT id, board_id, user_id, role, invited_by, joined_at
		FROM board_memberships
		WHERE board_id = $1 AND user_id = $2
	`

	return scanMembership(r.db.QueryRowContext(ctx, query, boardID.String(), userID.String()))
}

// ChangeMembershipRole updates the role only if it still equals
// expected. The WHERE clause carries the compare-and-set: a lost race
// matches no row while the membership still exists.
func (r *BoardRepository) ChangeMembershipRole(ctx context.Context, boardID, userID shared.ID, expected, next board.Role) error {
	query := `
		UPDATE board_memberships
		SET role = $4
		WHERE board_id = $1 AND user_id = $2 AND role = $3
	`

	result, err := r.db.ExecContext(ctx, query,
		boardID.String(), userID.String(), string(expected), string(next),
	)
	if err != nil {
		return fmt.Errorf("failed to change membership role: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	if _, err := r.GetMembership(ctx, boardID, userID); err != nil {
		return err
	}
	return fmt.Errorf("%w: membership role changed concurrently", shared.ErrConflict)
}

// DeleteMembership removes a membership.
func (r *BoardRepository) DeleteMembership(ctx context.Context, boardID, userID shared.ID) error {
	query := `DELETE FROM board_memberships WHERE board_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, boardID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// ListMembersByBoard retrieves a board's memberships.
func (r *BoardRepository) ListMembersByBoard(ctx context.Context, boardID shared.ID) ([]*board.Membership, error) {
	query := `
		SELECT id, board_id, user_id, role, invited_by, joined_at
		FROM board_memberships
		WHERE board_id = $1
		ORDER BY joined_at
	`

	rows, err := r.db.QueryContext(ctx, query, boardID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var out []*board.Membership
	for rows.Next() {
		m, err := scanMembershipRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListMembersWithUserInfo retrieves a board's memberships joined with
// user display data.
func (r *BoardRepository) ListMembersWithUserInfo(ctx context.Context, boardID shared.ID) ([]*board.MemberWithUser, error) {
	query := `
		SELECT m.id, m.board_id, m.user_id, m.role, m.invited_by, m.joined_at,
		       u.email, u.name, COALESCE(u.avatar_url, '')
		FROM board_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.board_id = $1
		ORDER BY m.joined_at
	`

	rows, err := r.db.QueryContext(ctx, query, boardID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var out []*board.MemberWithUser
	for rows.Next() {
		mw, _, err := scanMemberWithUser(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, mw)
	}
	return out, rows.Err()
}

// SearchMembersWithUserInfo retrieves members matching the filters,
// with the total count before the limit was applied.
func (r *BoardRepository) SearchMembersWithUserInfo(ctx context.Context, boardID shared.ID, filters board.MemberSearchFilters) (*board.MemberSearchResult, error) {
	query := `
		SELECT m.id, m.board_id, m.user_id, m.role, m.invited_by, m.joined_at,
		       u.email, u.name, COALESCE(u.avatar_url, ''),
		       COUNT(*) OVER() AS total
		FROM board_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.board_id = $1
		  AND ($2 = '' OR u.name ILIKE '%' || $2 || '%' OR u.email ILIKE '%' || $2 || '%')
		ORDER BY m.joined_at
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query,
		boardID.String(), filters.Search, filters.Limit, filters.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search members: %w", err)
	}
	defer rows.Close()

	result := &board.MemberSearchResult{}
	for rows.Next() {
		mw, total, err := scanMemberWithUser(rows, true)
		if err != nil {
			return nil, err
		}
		result.Members = append(result.Members, mw)
		result.Total = total
	}
	return result, rows.Err()
}

// GetOrCreateMembership inserts m unless a row already exists for its
// (board, user) pair. ON CONFLICT DO NOTHING makes concurrent
// redemption by the same user safe: exactly one insert wins and every
// caller reads back the same stored row.
func (r *BoardRepository) GetOrCreateMembership(ctx context.Context, m *board.Membership) (*board.Membership, bool, error) {
	query := `
		INSERT INTO board_memberships (id, board_id, user_id, role, invited_by, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (board_id, user_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		m.ID().String(),
		m.BoardID().String(),
		m.UserID().String(),
		string(m.Role()),
		nullID(m.InvitedBy()),
		m.JoinedAt(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert membership: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		return m, true, nil
	}

	stored, err := r.GetMembership(ctx, m.BoardID(), m.UserID())
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// SharesBoard reports whether two users share at least one board,
// counting both creatorship and membership on each side.
func (r *BoardRepository) SharesBoard(ctx context.Context, userA, userB shared.ID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM boards b
			WHERE (b.creator_id = $1 OR EXISTS (
			          SELECT 1 FROM board_memberships WHERE board_id = b.id AND user_id = $1))
			  AND (b.creator_id = $2 OR EXISTS (
			          SELECT 1 FROM board_memberships WHERE board_id = b.id AND user_id = $2))
		)
	`

	var shares bool
	err := r.db.QueryRowContext(ctx, query, userA.String(), userB.String()).Scan(&shares)
	if err != nil {
		return false, fmt.Errorf("failed to check shared boards: %w", err)
	}
	return shares, nil
}

// =============================================================================
// Invite links
// =============================================================================

// ReplaceInviteLink atomically deactivates any active link for the
// board and persists l as the single active one.
func (r *BoardRepository) ReplaceInviteLink(ctx context.Context, l *board.InviteLink) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE invite_links SET active = FALSE WHERE board_id = $1 AND active`,
			l.BoardID().String(),
		)
		if err != nil {
			return fmt.Errorf("failed to deactivate previous link: %w", err)
		}

		query := `
			INSERT INTO invite_links (id, board_id, token, role, active, expires_at, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err = tx.ExecContext(ctx, query,
			l.ID().String(),
			l.BoardID().String(),
			l.Token(),
			string(l.Role()),
			l.Active(),
			nullTime(l.ExpiresAt()),
			l.CreatedBy().String(),
			l.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to create invite link: %w", err)
		}
		return nil
	})
}

// GetInviteLinkByToken retrieves an invite link by its token,
// regardless of state. The caller decides what revoked or expired
// means.
func (r *BoardRepository) GetInviteLinkByToken(ctx context.Context, token string) (*board.InviteLink, error) {
	query := `
		SELECT id, board_id, token, role, active, expires_at, created_by, created_at
		FROM invite_links
		WHERE token = $1
	`

	return scanInviteLink(r.db.QueryRowContext(ctx, query, token))
}

// GetActiveInviteLink retrieves the board's single active link.
func (r *BoardRepository) GetActiveInviteLink(ctx context.Context, boardID shared.ID) (*board.InviteLink, error) {
	query := `
		SELECT id, board_id, token, role, active, expires_at, created_by, created_at
		FROM invite_links
		WHERE board_id = $1 AND active
	`

	return scanInviteLink(r.db.QueryRowContext(ctx, query, boardID.String()))
}

// DeactivateInviteLink marks a link inactive.
func (r *BoardRepository) DeactivateInviteLink(ctx context.Context, id shared.ID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invite_links SET active = FALSE WHERE id = $1`, id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate invite link: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// DeactivateExpiredInviteLinks sweeps links whose expiry has passed.
func (r *BoardRepository) DeactivateExpiredInviteLinks(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invite_links SET active = FALSE WHERE active AND expires_at IS NOT NULL AND expires_at < NOW()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired invite links: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}

// =============================================================================
// Scan helpers
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBoard(row rowScanner) (*board.Board, error) {
	var (
		idStr, workspaceIDStr, name, visibility, creatorIDStr string
		background                                            sql.NullString
		closed                                                bool
		createdAt, updatedAt                                  time.Time
	)

	err := row.Scan(&idStr, &workspaceIDStr, &name, &background, &visibility, &creatorIDStr, &closed, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan board: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	workspaceID, _ := shared.IDFromString(workspaceIDStr)
	creatorID, _ := shared.IDFromString(creatorIDStr)

	return board.Reconstitute(
		id, workspaceID, name, background.String,
		board.Visibility(visibility), creatorID, closed, createdAt, updatedAt,
	), nil
}

func scanBoardWithRole(row rowScanner) (*board.Board, board.Role, error) {
	var (
		idStr, workspaceIDStr, name, visibility, creatorIDStr, roleStr string
		background                                                     sql.NullString
		closed                                                         bool
		createdAt, updatedAt                                           time.Time
	)

	err := row.Scan(&idStr, &workspaceIDStr, &name, &background, &visibility, &creatorIDStr, &closed, &createdAt, &updatedAt, &roleStr)
	if err != nil {
		return nil, board.RoleNone, fmt.Errorf("failed to scan board: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	workspaceID, _ := shared.IDFromString(workspaceIDStr)
	creatorID, _ := shared.IDFromString(creatorIDStr)

	b := board.Reconstitute(
		id, workspaceID, name, background.String,
		board.Visibility(visibility), creatorID, closed, createdAt, updatedAt,
	)
	return b, board.Role(roleStr), nil
}

func scanMembership(row *sql.Row) (*board.Membership, error) {
	m, err := scanMembershipRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func scanMembershipRow(row rowScanner) (*board.Membership, error) {
	var (
		idStr, boardIDStr, userIDStr, roleStr string
		invitedBy                             sql.NullString
		joinedAt                              time.Time
	)

	err := row.Scan(&idStr, &boardIDStr, &userIDStr, &roleStr, &invitedBy, &joinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan membership: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	boardID, _ := shared.IDFromString(boardIDStr)
	userID, _ := shared.IDFromString(userIDStr)

	return board.ReconstituteMembership(
		id, boardID, userID, board.Role(roleStr), parseNullID(invitedBy), joinedAt,
	), nil
}

func scanMemberWithUser(row rowScanner, withTotal bool) (*board.MemberWithUser, int, error) {
	var (
		idStr, boardIDStr, userIDStr, roleStr string
		invitedBy                             sql.NullString
		joinedAt                              time.Time
		email, name, avatarURL                string
		total                                 int
	)

	dest := []any{&idStr, &boardIDStr, &userIDStr, &roleStr, &invitedBy, &joinedAt, &email, &name, &avatarURL}
	if withTotal {
		dest = append(dest, &total)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, 0, fmt.Errorf("failed to scan member: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	boardID, _ := shared.IDFromString(boardIDStr)
	userID, _ := shared.IDFromString(userIDStr)

	return &board.MemberWithUser{
		Membership: board.ReconstituteMembership(
			id, boardID, userID, board.Role(roleStr), parseNullID(invitedBy), joinedAt,
		),
		Email:     email,
		Name:      name,
		AvatarURL: avatarURL,
	}, total, nil
}

func scanInviteLink(row *sql.Row) (*board.InviteLink, error) {
	var (
		idStr, boardIDStr, token, roleStr, createdByStr string
		active                                          bool
		expiresAt                                       sql.NullTime
		createdAt                                       time.Time
	)

	err := row.Scan(&idStr, &boardIDStr, &token, &roleStr, &active, &expiresAt, &createdByStr, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan invite link: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	boardID, _ := shared.IDFromString(boardIDStr)
	createdBy, _ := shared.IDFromString(createdByStr)

	return board.ReconstituteInviteLink(
		id, boardID, token, board.LinkRole(roleStr), active,
		nullTimeValue(expiresAt), createdBy, createdAt,
	), nil
}

func collectBoards(rows *sql.Rows) ([]*board.Board, error) {
	var out []*board.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/domain/workspace"
)

// WorkspaceRepository implements workspace.Repository using PostgreSQL.
type WorkspaceRepository struct {
	db *DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository.
func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Create persists a new workspace.
func (r *WorkspaceRepository) Create(ctx context.Context, w *workspace.Workspace) error {
	query := `
		INSERT INTO workspaces (id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		w.ID().String(), w.Name(), w.OwnerID().String(), w.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	return nil
}

// GetByID retrieves a workspace by ID.
func (r *WorkspaceRepository) GetByID(ctx context.Context, id shared.ID) (*workspace.Workspace, error) {
	query := `SELECT id, name, owner_id, created_at FROM workspaces WHERE id = $1`

	return scanWorkspace(r.db.QueryRowContext(ctx, query, id.String()))
}

// Update updates an existing workspace.
func (r *WorkspaceRepository) Update(ctx context.Context, w *workspace.Workspace) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE workspaces SET name = $2 WHERE id = $1`,
		w.ID().String(), w.Name(),
	)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// Delete removes a workspace and everything under it.
func (r *WorkspaceRepository) Delete(ctx context.Context, id shared.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// ListByOwner retrieves a user's workspaces.
func (r *WorkspaceRepository) ListByOwner(ctx context.Context, ownerID shared.ID) ([]*workspace.Workspace, error) {
	query := `SELECT id, name, owner_id, created_at FROM workspaces WHERE owner_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var out []*workspace.Workspace
	for rows.Next() {
		var (
			idStr, name, ownerIDStr string
			createdAt               time.Time
		)
		if err := rows.Scan(&idStr, &name, &ownerIDStr, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		id, _ := shared.IDFromString(idStr)
		owner, _ := shared.IDFromString(ownerIDStr)
		out = append(out, workspace.Reconstitute(id, name, owner, createdAt))
	}
	return out, rows.Err()
}

func scanWorkspace(row *sql.Row) (*workspace.Workspace, error) {
	var (
		idStr, name, ownerIDStr string
		createdAt               time.Time
	)

	err := row.Scan(&idStr, &name, &ownerIDStr, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan workspace: %w", err)
	}

	id, _ := shared.IDFromString(idStr)
	ownerID, _ := shared.IDFromString(ownerIDStr)
	return workspace.Reconstitute(id, name, ownerID, createdAt), nil
}

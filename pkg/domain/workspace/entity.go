// Package workspace contains the workspace entity, the container
// boards live in.
package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// Workspace groups boards under a single owning user.
type Workspace struct {
	id        shared.ID
	name      string
	ownerID   shared.ID
	createdAt time.Time
}

// New creates a new Workspace.
func New(name string, ownerID shared.ID) (*Workspace, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if ownerID.IsZero() {
		return nil, fmt.Errorf("%w: ownerID is required", shared.ErrValidation)
	}

	return &Workspace{
		id:        shared.NewID(),
		name:      name,
		ownerID:   ownerID,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstitute recreates a Workspace from persistence.
func Reconstitute(id shared.ID, name string, ownerID shared.ID, createdAt time.Time) *Workspace {
	return &Workspace{
		id:        id,
		name:      name,
		ownerID:   ownerID,
		createdAt: createdAt,
	}
}

// ID returns the workspace ID.
func (w *Workspace) ID() shared.ID {
	return w.id
}

// Name returns the workspace name.
func (w *Workspace) Name() string {
	return w.name
}

// OwnerID returns the owning user's ID.
func (w *Workspace) OwnerID() shared.ID {
	return w.ownerID
}

// IsOwner reports whether userID owns the workspace.
func (w *Workspace) IsOwner(userID shared.ID) bool {
	return !userID.IsZero() && w.ownerID.Equals(userID)
}

// CreatedAt returns when the workspace was created.
func (w *Workspace) CreatedAt() time.Time {
	return w.createdAt
}

// Rename updates the workspace name.
func (w *Workspace) Rename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	w.name = name
	return nil
}

// Repository defines workspace persistence.
type Repository interface {
	Create(ctx context.Context, w *Workspace) error
	GetByID(ctx context.Context, id shared.ID) (*Workspace, error)
	Update(ctx context.Context, w *Workspace) error
	Delete(ctx context.Context, id shared.ID) error
	ListByOwner(ctx context.Context, ownerID shared.ID) ([]*Workspace, error)
}

// Package access implements role resolution and the permission gate
// that guards every board-scoped operation.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
)

// MembershipReader is the membership lookup the resolver needs.
type MembershipReader interface {
	GetMembership(ctx context.Context, boardID, userID shared.ID) (*board.Membership, error)
}

// Resolver computes a user's effective role on a board.
//
// Resolution is deterministic given current membership state, but
// membership can change between requests: callers must not cache
// resolved roles across requests.
type Resolver struct {
	memberships MembershipReader
}

// NewResolver creates a new Resolver.
func NewResolver(memberships MembershipReader) *Resolver {
	return &Resolver{memberships: memberships}
}

// Resolve returns the user's effective role on the board.
//
// The board creator is always owner, regardless of any membership row
// (there must never be one). Otherwise the unique membership row
// decides; with no row the result is RoleNone. An unauthenticated
// (zero) user resolves to RoleNone.
func (r *Resolver) Resolve(ctx context.Context, b *board.Board, userID shared.ID) (board.Role, error) {
	if b == nil {
		return board.RoleNone, fmt.Errorf("%w: board is required", shared.ErrInvalidInput)
	}
	if userID.IsZero() {
		return board.RoleNone, nil
	}
	if b.IsCreator(userID) {
		return board.RoleOwner, nil
	}

	m, err := r.memberships.GetMembership(ctx, b.ID(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return board.RoleNone, nil
		}
		return board.RoleNone, fmt.Errorf("failed to resolve role: %w", err)
	}
	return m.Role(), nil
}

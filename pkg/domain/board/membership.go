package board

import (
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// Membership relates one user to one board with exactly one role drawn
// from {admin, editor, viewer}. Unique per (board, user). The board
// creator never has a row: the owner role is implicit and immutable.
type Membership struct {
	id        shared.ID
	boardID   shared.ID
	userID    shared.ID
	role      Role
	invitedBy *shared.ID // nil when joined via invite link
	joinedAt  time.Time
}

// NewMembership creates a new Membership.
func NewMembership(boardID, userID shared.ID, role Role, invitedBy *shared.ID) (*Membership, error) {
	if boardID.IsZero() {
		return nil, fmt.Errorf("%w: boardID is required", shared.ErrValidation)
	}
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: userID is required", shared.ErrValidation)
	}
	if !role.IsMembershipRole() {
		return nil, fmt.Errorf("%w: role must be one of admin, editor, viewer", shared.ErrValidation)
	}

	return &Membership{
		id:        shared.NewID(),
		boardID:   boardID,
		userID:    userID,
		role:      role,
		invitedBy: invitedBy,
		joinedAt:  time.Now().UTC(),
	}, nil
}

// ReconstituteMembership recreates a Membership from persistence.
func ReconstituteMembership(
	id, boardID, userID shared.ID,
	role Role,
	invitedBy *shared.ID,
	joinedAt time.Time,
) *Membership {
	return &Membership{
		id:        id,
		boardID:   boardID,
		userID:    userID,
		role:      role,
		invitedBy: invitedBy,
		joinedAt:  joinedAt,
	}
}

// ID returns the membership ID.
func (m *Membership) ID() shared.ID {
	return m.id
}

// BoardID returns the board ID.
func (m *Membership) BoardID() shared.ID {
	return m.boardID
}

// UserID returns the member's user ID.
func (m *Membership) UserID() shared.ID {
	return m.userID
}

// Role returns the member's role.
func (m *Membership) Role() Role {
	return m.role
}

// InvitedBy returns the inviter's user ID, nil for link joins.
func (m *Membership) InvitedBy() *shared.ID {
	return m.invitedBy
}

// JoinedAt returns when the member joined.
func (m *Membership) JoinedAt() time.Time {
	return m.joinedAt
}

// ChangeRole updates the member's role.
func (m *Membership) ChangeRole(role Role) error {
	if !role.IsMembershipRole() {
		return fmt.Errorf("%w: role must be one of admin, editor, viewer", shared.ErrValidation)
	}
	m.role = role
	return nil
}

// MemberWithUser is a membership joined with user details for listings.
type MemberWithUser struct {
	Membership *Membership
	Email      string
	Name       string
	AvatarURL  string
}

// MemberSearchFilters defines filters for searching board members.
type MemberSearchFilters struct {
	Search string // name or email substring, case-insensitive
	Limit  int
	Offset int
}

// MemberSearchResult contains search results and the total count before
// the limit was applied.
type MemberSearchResult struct {
	Members []*MemberWithUser
	Total   int
}

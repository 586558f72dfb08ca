package board

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// InviteLink is a shareable join token for a board. At most one active
// link exists per board; issuing a new one replaces the old. The link
// carries a LinkRole, mapped to a membership Role only at redemption.
type InviteLink struct {
	id        shared.ID
	boardID   shared.ID
	token     string
	role      LinkRole
	active    bool
	expiresAt *time.Time
	createdBy shared.ID
	createdAt time.Time
}

// NewInviteLink creates a new active InviteLink with a fresh token.
func NewInviteLink(boardID shared.ID, role LinkRole, createdBy shared.ID, expiresAt *time.Time) (*InviteLink, error) {
	if boardID.IsZero() {
		return nil, fmt.Errorf("%w: boardID is required", shared.ErrValidation)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: role must be one of member, admin, observer", shared.ErrValidation)
	}
	if createdBy.IsZero() {
		return nil, fmt.Errorf("%w: createdBy is required", shared.ErrValidation)
	}
	if expiresAt != nil && !expiresAt.After(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: expiresAt must be in the future", shared.ErrValidation)
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &InviteLink{
		id:        shared.NewID(),
		boardID:   boardID,
		token:     token,
		role:      role,
		active:    true,
		expiresAt: expiresAt,
		createdBy: createdBy,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstituteInviteLink recreates an InviteLink from persistence.
func ReconstituteInviteLink(
	id, boardID shared.ID,
	token string,
	role LinkRole,
	active bool,
	expiresAt *time.Time,
	createdBy shared.ID,
	createdAt time.Time,
) *InviteLink {
	return &InviteLink{
		id:        id,
		boardID:   boardID,
		token:     token,
		role:      role,
		active:    active,
		expiresAt: expiresAt,
		createdBy: createdBy,
		createdAt: createdAt,
	}
}

// ID returns the link ID.
func (l *InviteLink) ID() shared.ID {
	return l.id
}

// BoardID returns the board the link joins users to.
func (l *InviteLink) BoardID() shared.ID {
	return l.boardID
}

// Token returns the redemption token.
func (l *InviteLink) Token() string {
	return l.token
}

// Role returns the link role offered on redemption.
func (l *InviteLink) Role() LinkRole {
	return l.role
}

// Active reports whether the link is redeemable (expiry aside).
func (l *InviteLink) Active() bool {
	return l.active
}

// ExpiresAt returns the expiry time (nil = never expires).
func (l *InviteLink) ExpiresAt() *time.Time {
	return l.expiresAt
}

// CreatedBy returns the admin who issued the link.
func (l *InviteLink) CreatedBy() shared.ID {
	return l.createdBy
}

// CreatedAt returns when the link was issued.
func (l *InviteLink) CreatedAt() time.Time {
	return l.createdAt
}

// IsExpired reports whether the link's expiry has passed.
func (l *InviteLink) IsExpired() bool {
	return l.expiresAt != nil && time.Now().UTC().After(*l.expiresAt)
}

// Deactivate makes the link unredeemable. Idempotent.
func (l *InviteLink) Deactivate() {
	l.active = false
}

// generateToken generates a secure random URL-safe token.
func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

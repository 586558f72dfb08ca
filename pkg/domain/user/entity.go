// Package user provides the user domain model.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boardkit/api/pkg/domain/shared"
)

// User represents an account. Registration and sessions live outside
// the core; this model exists for member listings and actor identity.
type User struct {
	id           shared.ID
	email        string
	name         string
	avatarURL    string
	passwordHash string
	createdAt    time.Time
}

// New creates a new User.
func New(email, name, passwordHash string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", shared.ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}

	return &User{
		id:           shared.NewID(),
		email:        email,
		name:         name,
		passwordHash: passwordHash,
		createdAt:    time.Now().UTC(),
	}, nil
}

// Reconstitute recreates a User from persistence.
func Reconstitute(id shared.ID, email, name, avatarURL, passwordHash string, createdAt time.Time) *User {
	return &User{
		id:           id,
		email:        email,
		name:         name,
		avatarURL:    avatarURL,
		passwordHash: passwordHash,
		createdAt:    createdAt,
	}
}

// ID returns the user ID.
func (u *User) ID() shared.ID {
	return u.id
}

// Email returns the user's email address.
func (u *User) Email() string {
	return u.email
}

// Name returns the user's display name.
func (u *User) Name() string {
	return u.name
}

// AvatarURL returns the user's avatar URL.
func (u *User) AvatarURL() string {
	return u.avatarURL
}

// PasswordHash returns the bcrypt hash of the user's password.
func (u *User) PasswordHash() string {
	return u.passwordHash
}

// CreatedAt returns when the account was created.
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// Repository defines user persistence.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id shared.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

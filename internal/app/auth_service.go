package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/boardkit/api/internal/config"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/domain/user"
	"github.com/boardkit/api/pkg/jwt"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/password"
)

// AuthService errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// AuthService handles registration, login, and token refresh.
type AuthService struct {
	users          user.Repository
	passwordHasher *password.Hasher
	tokenGenerator *jwt.Generator
	logger         *logger.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users user.Repository, cfg config.AuthConfig, log *logger.Logger) *AuthService {
	hasher := password.New(password.WithPolicy(password.Policy{
		MinLength:     cfg.PasswordMinLength,
		RequireUpper:  true,
		RequireLower:  true,
		RequireNumber: true,
	}))

	tokenGen := jwt.NewGenerator(jwt.TokenConfig{
		Secret:               cfg.JWTSecret,
		Issuer:               cfg.JWTIssuer,
		AccessTokenDuration:  cfg.AccessTokenDuration,
		RefreshTokenDuration: cfg.RefreshTokenDuration,
	})

	return &AuthService{
		users:          users,
		passwordHasher: hasher,
		tokenGenerator: tokenGen,
		logger:         log.With("service", "auth"),
	}
}

// TokenGenerator exposes the generator for transport-layer concerns
// such as issuing short-lived WebSocket tokens.
func (s *AuthService) TokenGenerator() *jwt.Generator {
	return s.tokenGenerator
}

// RegisterInput represents the input for user registration.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,max=255"`
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*user.User, error) {
	if err := s.passwordHasher.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !shared.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := user.New(email, input.Name, hash)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if shared.IsAlreadyExists(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", u.ID().String())
	return u, nil
}

// LoginInput represents the input for login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the authenticated user and their token pair.
type LoginResult struct {
	User   *user.User
	Tokens *jwt.TokenPair
}

// Login verifies credentials and issues a token pair. The same error
// is returned whether the email is unknown or the password is wrong.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.passwordHasher.Verify(input.Password, u.PasswordHash()); err != nil {
		s.logger.Warn("failed login attempt", "user_id", u.ID().String())
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.tokenGenerator.GenerateTokenPair(u.ID().String(), u.Email(), u.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &LoginResult{User: u, Tokens: tokens}, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnauthenticated, err.Error())
	}

	userID, err := shared.IDFromString(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token subject", shared.ErrUnauthenticated)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, fmt.Errorf("%w: account no longer exists", shared.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	tokens, err := s.tokenGenerator.GenerateTokenPair(u.ID().String(), u.Email(), u.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &LoginResult{User: u, Tokens: tokens}, nil
}

// Me returns the authenticated user's account.
func (s *AuthService) Me(ctx context.Context, userID shared.ID) (*user.User, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: an acting user is required", shared.ErrUnauthenticated)
	}
	return s.users.GetByID(ctx, userID)
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/boardkit/api/internal/app"
	"github.com/boardkit/api/internal/config"
	"github.com/boardkit/api/pkg/apierror"
	"github.com/boardkit/api/pkg/domain/user"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/validator"
)

// AuthHandler handles authentication requests.
type AuthHandler struct {
	authService *app.AuthService
	authConfig  config.AuthConfig
	validator   *validator.Validator
	logger      *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *app.AuthService, authConfig config.AuthConfig, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		authConfig:  authConfig,
		validator:   validator.New(),
		logger:      log.With("handler", "auth"),
	}
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID().String(),
		Email:     u.Email(),
		Name:      u.Name(),
		AvatarURL: u.AvatarURL(),
		CreatedAt: u.CreatedAt(),
	}
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginResponse is the response body for a successful login.
type LoginResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

// Register handles user registration.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req app.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	u, err := h.authService.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrEmailAlreadyExists) {
			apierror.Conflict("email already registered").WriteJSON(w)
			return
		}
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, newUserResponse(u))
}

// Login handles credential login.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req app.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			apierror.Unauthorized("invalid email or password").WriteJSON(w)
			return
		}
		respondError(w, r, h.logger, err)
		return
	}

	h.setTokenCookies(w, result)
	respondJSON(w, http.StatusOK, h.newLoginResponse(result))
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a fresh token pair.
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token := req.RefreshToken
	if token == "" && h.authConfig.RefreshTokenCookieName != "" {
		if cookie, err := r.Cookie(h.authConfig.RefreshTokenCookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		apierror.BadRequest("refresh token required").WriteJSON(w)
		return
	}

	result, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		apierror.Unauthorized("invalid or expired refresh token").WriteJSON(w)
		return
	}

	h.setTokenCookies(w, result)
	respondJSON(w, http.StatusOK, h.newLoginResponse(result))
}

// Logout clears the token cookies.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, h.authConfig.AccessTokenCookieName)
	h.clearCookie(w, h.authConfig.RefreshTokenCookieName)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.authService.Me(r.Context(), actorID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserResponse(u))
}

func (h *AuthHandler) newLoginResponse(result *app.LoginResult) LoginResponse {
	return LoginResponse{
		User: newUserResponse(result.User),
		Tokens: TokenResponse{
			AccessToken:  result.Tokens.AccessToken,
			RefreshToken: result.Tokens.RefreshToken,
			ExpiresAt:    result.Tokens.ExpiresAt,
		},
	}
}

func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, result *app.LoginResult) {
	if h.authConfig.AccessTokenCookieName != "" {
		http.SetCookie(w, h.buildCookie(
			h.authConfig.AccessTokenCookieName,
			result.Tokens.AccessToken,
			h.authConfig.AccessTokenDuration,
		))
	}
	if h.authConfig.RefreshTokenCookieName != "" {
		http.SetCookie(w, h.buildCookie(
			h.authConfig.RefreshTokenCookieName,
			result.Tokens.RefreshToken,
			h.authConfig.RefreshTokenDuration,
		))
	}
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	if name == "" {
		return
	}
	cookie := h.buildCookie(name, "", 0)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) buildCookie(name, value string, ttl time.Duration) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	switch h.authConfig.CookieSameSite {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.authConfig.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		Secure:   h.authConfig.CookieSecure,
		HttpOnly: true,
		SameSite: sameSite,
	}
}

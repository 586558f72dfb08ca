package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/boardkit/api/internal/config"
	"github.com/boardkit/api/pkg/apierror"
	"github.com/boardkit/api/pkg/jwt"
	"github.com/boardkit/api/pkg/logger"
)

// Auth-related context keys - use logger.ContextKey for consistency.
const (
	UserIDKey                  = logger.ContextKeyUserID
	EmailKey logger.ContextKey = "email"
	NameKey  logger.ContextKey = "name"
)

// GetUserID extracts the user ID from context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetEmail extracts the user email from context.
func GetEmail(ctx context.Context) string {
	if email, ok := ctx.Value(EmailKey).(string); ok {
		return email
	}
	return ""
}

// MustGetUserID extracts the user ID from context or panics.
// Use this in handlers protected by Auth middleware. Panics indicate a
// missing middleware, not a user error.
func MustGetUserID(ctx context.Context) string {
	id := GetUserID(ctx)
	if id == "" {
		panic("MustGetUserID: user ID not found in context - ensure Auth middleware is applied")
	}
	return id
}

// Auth validates the bearer token and stores the caller's identity in
// the request context. The token may arrive in the Authorization header
// or in the access token cookie.
func Auth(tokens *jwt.Generator, cfg *config.AuthConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, cfg.AccessTokenCookieName)
			if token == "" {
				apierror.Unauthorized("authentication required").WriteJSON(w)
				return
			}

			claims, err := tokens.ValidateAccessToken(token)
			if err != nil {
				log.Debug("invalid access token",
					"request_id", GetRequestID(r.Context()),
					"error", err,
				)
				apierror.Unauthorized("invalid or expired token").WriteJSON(w)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)
			ctx = context.WithValue(ctx, NameKey, claims.Name)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads a bearer token from the Authorization header,
// falling back to the named cookie.
func extractToken(r *http.Request, cookieName string) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil {
			return cookie.Value
		}
	}
	return ""
}

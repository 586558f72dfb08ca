// Package handler contains the HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/boardkit/api/internal/infra/http/middleware"
	"github.com/boardkit/api/pkg/apierror"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/validator"
)

// ListResponse represents a list response with a total count.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// decodeJSON decodes the request body, reporting a 400 on malformed
// input. Returns false if a response was already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apierror.BadRequest("Invalid request body").WriteJSON(w)
		return false
	}
	return true
}

// validate runs struct validation, reporting a 422 on failure.
// Returns false if a response was already written.
func validate(w http.ResponseWriter, v *validator.Validator, s any) bool {
	if err := v.Validate(s); err != nil {
		apierror.ValidationFailed("Validation failed", err).WriteJSON(w)
		return false
	}
	return true
}

// idParam parses the named URL parameter as an ID, reporting a 400 on
// malformed input. Returns a zero ID and false if a response was
// already written.
func idParam(w http.ResponseWriter, r *http.Request, name string) (shared.ID, bool) {
	id, err := shared.IDFromString(chi.URLParam(r, name))
	if err != nil {
		apierror.BadRequest("Invalid " + name).WriteJSON(w)
		return shared.ID{}, false
	}
	return id, true
}

// actorID returns the authenticated user's ID. The Auth middleware
// guarantees it is present and well formed.
func actorID(r *http.Request) shared.ID {
	return shared.MustIDFromString(middleware.MustGetUserID(r.Context()))
}

// respondError maps a service error onto an HTTP response.
func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	writeServiceError(w, r, log, err, false)
}

// respondErrorMasked is respondError for view-gated reads: a forbidden
// result is reported as 404 so the response does not confirm that the
// resource exists.
func respondErrorMasked(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	writeServiceError(w, r, log, err, true)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error, maskForbidden bool) {
	requestID := middleware.GetRequestID(r.Context())

	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
		// Already shaped by the caller.
	case shared.IsValidation(err):
		apiErr = apierror.BadRequest(err.Error())
	case errors.Is(err, shared.ErrUnauthenticated):
		apiErr = apierror.Unauthorized("authentication required")
	case shared.IsForbidden(err):
		if maskForbidden {
			apiErr = apierror.NotFound("resource")
		} else {
			apiErr = apierror.Forbidden(err.Error())
		}
	case shared.IsNotFound(err):
		apiErr = apierror.NotFound("resource")
	case errors.Is(err, shared.ErrGone) || errors.Is(err, shared.ErrExpired):
		apiErr = apierror.Gone("this invite link is no longer active")
	case shared.IsConflict(err) || shared.IsAlreadyExists(err):
		apiErr = apierror.Conflict(err.Error())
	default:
		log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestID,
			"error", err,
		)
		apiErr = apierror.InternalError(err)
	}

	apiErr.WriteJSONWithRequestID(w, requestID)
}

// parseQueryInt parses a query parameter as an integer, falling back to
// defaultVal when empty or invalid.
func parseQueryInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}

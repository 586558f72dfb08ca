package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsSetStatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		status int
		code   Code
	}{
		{"bad request", BadRequest("nope"), http.StatusBadRequest, CodeBadRequest},
		{"unauthorized", Unauthorized("who are you"), http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", Forbidden("not yours"), http.StatusForbidden, CodeForbidden},
		{"not found", NotFound("board"), http.StatusNotFound, CodeNotFound},
		{"conflict", Conflict("role changed"), http.StatusConflict, CodeConflict},
		{"gone", Gone("link dead"), http.StatusGone, CodeGone},
		{"too many requests", TooManyRequests("slow down"), http.StatusTooManyRequests, CodeRateLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := Wrap(inner, http.StatusInternalServerError, CodeInternalError, "something failed")

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "boom")
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Forbidden("only admins can issue invite links").WriteJSON(rec)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, CodeForbidden, resp.Code)
	assert.Equal(t, "only admins can issue invite links", resp.Message)
	assert.Empty(t, resp.RequestID)
}

func TestWriteJSONWithRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound("card").WriteJSONWithRequestID(rec, "req-123")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-123", resp.RequestID)
}

func TestValidationErrors(t *testing.T) {
	var v ValidationErrors
	assert.False(t, v.HasErrors())

	v.Add("name", "required")
	v.Add("color", "must be a hex color")
	require.True(t, v.HasErrors())

	apiErr := v.ToAPIError()
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, CodeValidationFailed, apiErr.Code)
	assert.NotNil(t, apiErr.Details)
}

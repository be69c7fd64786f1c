package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"field", apperr.Invalid("email", "failed on 'email'"), http.StatusBadRequest, "invalid request"},
		{"not found", fmt.Errorf("user 1: %w", apperr.ErrNotFound), http.StatusNotFound, "not found"},
		{"conflict", apperr.ErrConflict, http.StatusConflict, "already exists"},
		{"in use", apperr.ErrInUse, http.StatusConflict, "still referenced"},
		{"unauthorized", apperr.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperr.ErrForbidden, http.StatusUnauthorized, "Forbidden."},
		{"body too large", fmt.Errorf("form: %w", &http.MaxBytesError{Limit: 1024}), http.StatusRequestEntityTooLarge, "request too large"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

			var body ErrorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.body, body.Error)
			assert.NotContains(t, body.Details, "connection reset")
		})
	}
}

func TestBadRequestTooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	body := http.MaxBytesReader(rec, io.NopCloser(strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`)), 16)

	var v map[string]string
	err := json.NewDecoder(body).Decode(&v)
	require.Error(t, err)
	BadRequest(rec, err)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var got ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "request too large", got.Error)
	assert.Equal(t, "body exceeds 16 bytes", got.Details)
}

func TestBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, errors.New("unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

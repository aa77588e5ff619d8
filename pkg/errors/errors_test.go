package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("db connection lost")}
	assert.Equal(t, "INTERNAL_ERROR: something broke: db connection lost", withCause.Error())

	bare := &AppError{Code: "INVALID_INPUT", Message: "document id is required"}
	assert.Equal(t, "INVALID_INPUT: document id is required", bare.Error())
}

func TestConstructors_MapToSentinels(t *testing.T) {
	assert.ErrorIs(t, InvalidInput("bad"), ErrInvalidInput)

	cause := errors.New("dial tcp: refused")
	unavail := Unavailable("source down", cause)
	assert.ErrorIs(t, unavail, ErrServiceUnavail)
	assert.ErrorIs(t, unavail, cause)

	assert.ErrorIs(t, Internal(cause), cause)
}

func TestPublic(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"app error", InvalidInput("q too long"), http.StatusBadRequest, "INVALID_INPUT", "q too long"},
		{"wrapped invalid", fmt.Errorf("remove: %w", ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT", "remove: invalid input"},
		{"wrapped unavailable", fmt.Errorf("hydrate: %w", ErrServiceUnavail), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "a dependency is unavailable, try again later"},
		{"not found", fmt.Errorf("product-service: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND", "resource not found"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN", "forbidden"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"},
		{"unknown", errors.New("secret detail"), http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := Public(tt.err)
			assert.Equal(t, tt.status, pub.Status)
			assert.Equal(t, tt.code, pub.Code)
			assert.Equal(t, tt.message, pub.Message)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestPublic_AppErrorWinsOverWrappedSentinel(t *testing.T) {
	err := Unavailable("search index is unavailable", fmt.Errorf("fetch: %w", ErrNotFound))

	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
	assert.Equal(t, "search index is unavailable", Public(err).Message)
}

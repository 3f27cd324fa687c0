package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("VAL_001", "Invalid request", http.StatusBadRequest),
			expected: "[VAL_001] Invalid request",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("VAL_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidCredentials", ErrInvalidCredentials(), "AUTH_001", 401},
		{"EmailExists", ErrEmailExists(), "AUTH_002", 409},
		{"InvalidToken", ErrInvalidToken(), "AUTH_003", 401},
		{"MerchantInactive", ErrMerchantInactive(), "AUTH_004", 403},
		{"EmailNotVerified", ErrEmailNotVerified(), "AUTH_005", 403},
		{"Forbidden", ErrForbidden("not allowed"), "AUTH_006", 403},
		{"Unauthorized", ErrUnauthorized("no token"), "AUTH_007", 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestResourceErrors(t *testing.T) {
	notFound := ErrNotFound("Invoice")
	assert.Equal(t, "RES_001", notFound.Code)
	assert.Contains(t, notFound.Message, "Invoice")
	assert.Equal(t, 404, notFound.HTTPStatus)

	conflict := ErrConflict("duplicate SKU")
	assert.Equal(t, "RES_002", conflict.Code)
	assert.Equal(t, 409, conflict.HTTPStatus)

	immutable := ErrImmutable("invoice already sent")
	assert.Equal(t, "RES_003", immutable.Code)
	assert.Equal(t, 400, immutable.HTTPStatus)
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}

func TestUpstreamErrors(t *testing.T) {
	inner := fmt.Errorf("dial tcp: timeout")
	upstream := ErrUpstream("payment gateway", inner)
	assert.Equal(t, "UP_001", upstream.Code)
	assert.Equal(t, 502, upstream.HTTPStatus)
	assert.True(t, errors.Is(upstream, inner))

	sig := ErrInvalidSignature()
	assert.Equal(t, "UP_002", sig.Code)
	assert.Equal(t, 401, sig.HTTPStatus)
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	encErr := ErrEncryptionFailure(inner)
	assert.Equal(t, "SYS_002", encErr.Code)
	assert.Equal(t, 500, encErr.HTTPStatus)

	internal := InternalError(inner)
	assert.Equal(t, "SYS_001", internal.Code)
	assert.Equal(t, 500, internal.HTTPStatus)
}

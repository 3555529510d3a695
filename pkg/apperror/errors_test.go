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
			appErr:   New("LED_002", "Insufficient funds", http.StatusPaymentRequired),
			expected: "[LED_002] Insufficient funds",
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
	appErr := New("LED_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestLedgerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidAmount", ErrInvalidAmount(), "LED_001", 400},
		{"InsufficientFunds", ErrInsufficientFunds(), "LED_002", 402},
		{"NotFound", ErrNotFound("wallet"), "LED_003", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSettlementErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"DuplicateTransaction", ErrDuplicateTransaction(), "SET_001", 409},
		{"SettlementFailed", ErrSettlementFailed(fmt.Errorf("commit aborted")), "SET_002", 503},
		{"OrderNotSettleable", ErrOrderNotSettleable(), "SET_003", 422},
		{"TransactionNotConfirmed", ErrTransactionNotConfirmed(), "SET_004", 422},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidToken", ErrInvalidToken(), "AUTH_001", 401},
		{"InvalidServiceKey", ErrInvalidServiceKey(), "AUTH_002", 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestInternalError(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	err := InternalError(inner)
	assert.Equal(t, "SYS_001", err.Code)
	assert.Equal(t, 500, err.HTTPStatus)
	assert.True(t, errors.Is(err, inner))
}

func TestSettlementFailed_WrapsCause(t *testing.T) {
	inner := fmt.Errorf("deadline exceeded")
	err := ErrSettlementFailed(inner)
	assert.True(t, errors.Is(err, inner))
}

func TestNotFoundEntity(t *testing.T) {
	err := ErrNotFound("payout")
	assert.Contains(t, err.Message, "payout")
	assert.Equal(t, "LED_003", err.Code)
}

func TestValidationMessage(t *testing.T) {
	err := Validation("invalid order ID")
	assert.Equal(t, "LED_001", err.Code)
	assert.Equal(t, 400, err.HTTPStatus)
	assert.Equal(t, "invalid order ID", err.Message)
}

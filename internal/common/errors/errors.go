// Package errors provides standardized error handling for the alert engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Alert-level precondition errors: surfaced to callers as hard failures.
const (
	ErrCodeAlertNotFound    ErrorCode = "ALERT_NOT_FOUND"
	ErrCodeAlertExpired     ErrorCode = "ALERT_EXPIRED"
	ErrCodeAlertInactive    ErrorCode = "ALERT_INACTIVE"
	ErrCodeValidationFailed ErrorCode = "ALERT_VALIDATION_FAILED"
)

// Attempt-level errors: contained at the attempt and reported only through
// aggregate counters and the delivery ledger.
const (
	ErrCodeProviderUnconfigured  ErrorCode = "PROVIDER_UNCONFIGURED"
	ErrCodeProviderTransport     ErrorCode = "PROVIDER_TRANSPORT_ERROR"
	ErrCodeConfirmationTimeout   ErrorCode = "CONFIRMATION_TIMEOUT"
	ErrCodeDuplicateAttemptSkip  ErrorCode = "DUPLICATE_ATTEMPT_SKIPPED"
	ErrCodeAttemptAlreadySettled ErrorCode = "ATTEMPT_ALREADY_SETTLED"
)

// Infrastructure errors.
const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeLedgerWriteFailed        ErrorCode = "LEDGER_WRITE_FAILED"
	ErrCodeLedgerReadFailed         ErrorCode = "LEDGER_READ_FAILED"
	ErrCodeArchiveIndexFailed       ErrorCode = "ARCHIVE_INDEX_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewAlertNotFoundError creates a non-retryable alert lookup error.
func NewAlertNotFoundError(alertID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertNotFound,
		Message:   "Alert not found",
		Details:   fmt.Sprintf("alertId: %s", alertID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertExpiredError creates a non-retryable precondition error for
// dispatching past the activation window.
func NewAlertExpiredError(alertID string, expiresAt time.Time) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertExpired,
		Message:   "Alert has expired",
		Details:   fmt.Sprintf("alertId: %s, expiredAt: %s", alertID, expiresAt.UTC().Format(time.RFC3339)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertInactiveError creates a non-retryable precondition error for
// dispatching a deactivated alert.
func NewAlertInactiveError(alertID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertInactive,
		Message:   "Alert has been deactivated",
		Details:   fmt.Sprintf("alertId: %s", alertID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable alert definition error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Alert definition validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderUnconfiguredError marks an adapter that refused a send because
// its credentials are absent or invalid. Triggers fallback selection.
func NewProviderUnconfiguredError(provider, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderUnconfigured,
		Message:   "Provider is not configured",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderTransportError marks a reachable adapter that rejected the send.
// Recorded as a failed attempt; never retried automatically to avoid
// duplicate external sends.
func NewProviderTransportError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTransport,
		Message:   "Provider transport failure",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

// NewConfirmationTimeoutError marks an attempt forcibly settled after the
// bounded confirmation window elapsed.
func NewConfirmationTimeoutError(attemptKey string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfirmationTimeout,
		Message:   "Delivery confirmation timed out",
		Details:   fmt.Sprintf("attempt: %s", attemptKey),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query error.
func NewQueryExecutionFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerWriteFailedError creates a retryable ledger write error.
func NewLedgerWriteFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerWriteFailed,
		Message:   "Delivery ledger write error",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerReadFailedError creates a retryable ledger read error.
func NewLedgerReadFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerReadFailed,
		Message:   "Delivery ledger read error",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// CodeOf extracts the ErrorCode from an error chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsUnconfigured reports whether err is a provider-unconfigured condition,
// as opposed to a genuine transport failure.
func IsUnconfigured(err error) bool {
	return IsCode(err, ErrCodeProviderUnconfigured)
}

// IsAlertPrecondition reports whether err is an alert-level precondition
// failure that must surface to the dispatch caller.
func IsAlertPrecondition(err error) bool {
	switch CodeOf(err) {
	case ErrCodeAlertNotFound, ErrCodeAlertExpired, ErrCodeAlertInactive:
		return true
	}
	return false
}

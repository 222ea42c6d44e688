// Package apperr defines the error kinds every engine operation can surface.
// Services wrap these sentinels with fmt.Errorf("...: %w", ...) so callers
// can classify failures with errors.Is while still reading a full message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrReferencedEntity    = errors.New("entity is referenced by history")
	ErrOutstandingDebt     = errors.New("client has outstanding debt")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrMissingClient       = errors.New("credit sale requires a client")
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
	ErrNotFound            = errors.New("not found")
	ErrStoreBusy           = errors.New("store is busy")
)

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// FromDB translates storage-level failures into engine error kinds.
// Anything unrecognized passes through unchanged (Internal).
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
		return fmt.Errorf("%w: %v", ErrStoreBusy, err)
	}
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicateName, err)
	}
	return err
}

// Kind returns the taxonomy name for an error, "internal" when unclassified.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(err, ErrReferencedEntity):
		return "referenced_entity"
	case errors.Is(err, ErrOutstandingDebt):
		return "outstanding_debt"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrMissingClient):
		return "missing_client"
	case errors.Is(err, ErrCreditLimitExceeded):
		return "credit_limit_exceeded"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStoreBusy):
		return "store_busy"
	default:
		return "internal"
	}
}

// Status maps an error to the HTTP status the API surface responds with.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrMissingClient),
		errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrCreditLimitExceeded):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrReferencedEntity),
		errors.Is(err, ErrOutstandingDebt):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

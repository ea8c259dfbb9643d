package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrConflict       = errors.New("resource conflict") // e.g., username already exists
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")
)

// FieldError describes one violated input rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified error carrying the message that is safe to show to clients.
// errors.Is(err, ErrConflict) and friends work through Unwrap.
type Error struct {
	Kind    error
	Message string
	Fields  []FieldError
	Cause   error // server-side detail, never sent to clients
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NewError builds a classified error.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies cause under kind with a client-facing message.
func WrapError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewValidationError reports every violated field at once.
func NewValidationError(fields []FieldError) *Error {
	return &Error{Kind: ErrValidation, Message: "Validation failed", Fields: fields}
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	// Duplicate accounts are reported as a bad request, not 409.
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict) {
		return http.StatusBadRequest
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

// ClientMessage returns the text to put in an error body. Server errors keep
// their detail only outside production.
func ClientMessage(err error, production bool) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		if HTTPStatusFromError(err) < http.StatusInternalServerError || !production {
			return e.Message
		}
	}
	if HTTPStatusFromError(err) >= http.StatusInternalServerError {
		if production {
			return "Internal server error"
		}
		return err.Error()
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return "Resource already exists"
	}
	return err.Error()
}

// FieldsFromError returns validation details, if any.
func FieldsFromError(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

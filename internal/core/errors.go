package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when a lookup matches no record.
var ErrNotFound = errors.New("country not found")

// Field names reported by DuplicateDataError and UniqueViolationError.
const (
	FieldAlpha2  = "alpha2"
	FieldAlpha3  = "alpha3"
	FieldNumeric = "numeric"
	FieldName    = "name"
)

// InvalidCodeError reports a code that matches none of the accepted shapes.
type InvalidCodeError struct {
	Code   string
	Reason string
}

func (e *InvalidCodeError) Error() string {
	return e.Reason
}

// NotFoundError reports a well-formed code with no matching record.
type NotFoundError struct {
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("country %q not found", e.Code)
}

// Unwrap lets errors.Is(err, ErrNotFound) hold for service-level failures.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// DuplicateDataError reports a uniqueness violation on store or edit.
// Field is one of FieldAlpha2, FieldAlpha3, FieldNumeric or FieldName.
type DuplicateDataError struct {
	Field string
	Value string
}

func (e *DuplicateDataError) Error() string {
	return fmt.Sprintf("Duplicate value '%s' for field '%s'", e.Value, e.Field)
}

// InvalidArgumentError reports a numeric domain violation or a malformed
// request payload.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// UniqueViolationError is returned by repositories when a storage-level
// uniqueness constraint rejects a write.
type UniqueViolationError struct {
	Field string
	Err   error
}

func (e *UniqueViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unique violation on %s: %v", e.Field, e.Err)
	}
	return "unique violation on " + e.Field
}

func (e *UniqueViolationError) Unwrap() error {
	return e.Err
}

// Outcome names the error variant for logs and metric labels.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}

	var (
		invalidCode *InvalidCodeError
		notFound    *NotFoundError
		duplicate   *DuplicateDataError
		invalidArg  *InvalidArgumentError
	)
	switch {
	case errors.As(err, &invalidCode):
		return "invalid_code"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &duplicate):
		return "duplicate"
	case errors.As(err, &invalidArg):
		return "invalid_argument"
	default:
		return "error"
	}
}

// IsDomainError reports whether err is one of the four domain variants, as
// opposed to a storage failure.
func IsDomainError(err error) bool {
	outcome := Outcome(err)
	return outcome != "ok" && outcome != "error"
}

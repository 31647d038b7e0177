package services

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Kind classifies a failure so the transport can pick a response
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindPersistence
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindPersistence:
		return "persistence"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages or conflict details
	Fields map[string]string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, cause error, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause})
}

func NotFound(format string, args ...interface{}) error {
	return newError(KindNotFound, nil, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newError(KindConflict, nil, format, args...)
}

func Unauthorized(format string, args ...interface{}) error {
	return newError(KindUnauthorized, nil, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return newError(KindForbidden, nil, format, args...)
}

func Invalid(field, message string) error {
	return errors.WithStack(&Error{
		Kind:    KindValidation,
		Message: "validation failed",
		Fields:  map[string]string{field: message},
	})
}

func conflictWith(fields map[string]string, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...), Fields: fields})
}

// persistence wraps a store error. A missing record becomes NotFound for what.
func persistence(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("%s not found", what)
	}
	return newError(KindPersistence, err, "failed to access %s", what)
}

// AsError extracts the classified error, if any
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err; unclassified errors are KindUnknown
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindUnknown
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

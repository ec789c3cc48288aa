// Package apperror defines the typed business failures shared by services
// and the HTTP boundary.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindValidation
	KindDuplicate
	KindInsufficientStock
	KindForbidden
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unexpected"
	}
}

// Error is a business failure. Subject names the entity or product involved,
// Fields carries per-field validation messages.
type Error struct {
	Kind    Kind
	Message string
	Subject string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, apperror.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrDuplicate         = &Error{Kind: KindDuplicate}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
)

func NotFound(entity string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Subject: entity,
		Message: fmt.Sprintf("%s %v not found", entity, id),
	}
}

func Validation(message string, fields map[string]string) *Error {
	if message == "" {
		message = "validation failed"
	}
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Invalid is a single-field validation failure.
func Invalid(field, message string) *Error {
	return Validation(message, map[string]string{field: message})
}

func Duplicate(field, value string) *Error {
	return &Error{
		Kind:    KindDuplicate,
		Subject: field,
		Message: fmt.Sprintf("%s %q is already taken", field, value),
		Fields:  map[string]string{field: fmt.Sprintf("The %s has already been taken.", field)},
	}
}

func InsufficientStock(product string, requested, available int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Subject: product,
		Message: fmt.Sprintf("insufficient stock for %s: requested %d, available %d", product, requested, available),
	}
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "forbidden"
	}
	return &Error{Kind: KindForbidden, Message: message}
}

func Unauthenticated(message string) *Error {
	if message == "" {
		message = "unauthenticated"
	}
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Unexpected wraps an infrastructure failure.
func Unexpected(op string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: op, Err: err}
}

// KindOf reports the kind of err; anything that is not an *Error is unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

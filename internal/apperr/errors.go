// Package apperr defines the error taxonomy shared by every domain package and
// its translation to HTTP responses.
package apperr

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an error for the request boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindAlreadyExists
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindValidation:
		return "validation_error"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindTooLarge:
		return "request_too_large"
	default:
		return "internal"
	}
}

// Error is a kinded error. Fields carries per-field messages for validation errors.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

// Generic sentinels. errors.Is(err, ErrNotFound) is true for any NotFound error.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrAlreadyExists   = &Error{Kind: KindAlreadyExists}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrTooLarge        = &Error{Kind: KindTooLarge}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is matches the generic sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Fields == nil && t.Kind == e.Kind
}

func NotFound(msg string) *Error      { return &Error{Kind: KindNotFound, Message: msg} }
func AlreadyExists(msg string) *Error { return &Error{Kind: KindAlreadyExists, Message: msg} }
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }
func TooLarge(msg string) *Error  { return &Error{Kind: KindTooLarge, Message: msg} }

// Validation builds a validation error for a single field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: map[string]string{field: msg}}
}

// ValidationFields builds a validation error for several fields.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists, KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

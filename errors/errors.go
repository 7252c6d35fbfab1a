// Package errors categorizes failures so the HTTP boundary can map them to a
// status code in one place.
package errors

import (
	stderrors "errors"
	"fmt"
)

type Category string

const (
	CategoryNotFound   Category = "not-found"
	CategoryValidation Category = "validation"
	CategoryStorage    Category = "storage"
	CategoryRateLimit  Category = "rate-limit"
)

// Error is an error tagged with a category. Two *Error values match under
// errors.Is when their categories are equal.
type Error struct {
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Category == t.Category
	}
	return false
}

// Sentinels usable with errors.Is.
var (
	ErrNotFound   = &Error{Category: CategoryNotFound}
	ErrValidation = &Error{Category: CategoryValidation}
	ErrStorage    = &Error{Category: CategoryStorage}
	ErrRateLimit  = &Error{Category: CategoryRateLimit}
)

func NotFound(format string, args ...any) error {
	return &Error{Category: CategoryNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Category: CategoryValidation, Message: fmt.Sprintf(format, args...)}
}

func RateLimited(format string, args ...any) error {
	return &Error{Category: CategoryRateLimit, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a database or filesystem failure.
func Storage(err error, format string, args ...any) error {
	return &Error{Category: CategoryStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// CategoryOf returns the category of the first *Error in err's chain, or ""
// when err carries none.
func CategoryOf(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category
	}
	return ""
}

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func New(text string) error { return stderrors.New(text) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

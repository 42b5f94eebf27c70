// Package apperr defines the failure kinds shared by all domain services.
//
// Services return these typed errors (possibly wrapped); transports classify
// them with errors.As or the Is* helpers.
package apperr

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ValidationError indicates malformed or disallowed input.
type ValidationError struct {
	Message string
}

// Validation returns a *ValidationError with the given message.
func Validation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// Validationf returns a *ValidationError with a formatted message.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

// NotFound returns a *NotFoundError for the entity with the given id.
func NotFound(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ForbiddenError indicates the actor lacks permission for the operation.
type ForbiddenError struct {
	Message string
}

// Forbidden returns a *ForbiddenError with the given message.
func Forbidden(msg string) *ForbiddenError {
	return &ForbiddenError{Message: msg}
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsForbidden reports whether err wraps a *ForbiddenError.
func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

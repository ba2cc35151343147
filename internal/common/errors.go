// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors, detected before any request is made.
	ErrValidation = errors.New("validation failed")

	// Workflow errors.
	ErrBusy         = errors.New("another request is in progress")
	ErrInvalidPhase = errors.New("action not allowed in current phase")
	ErrNoFile       = errors.New("no file selected")
	ErrOutOfRange   = errors.New("item index out of range")
	ErrSuperseded   = errors.New("request superseded")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Invalid returns a validation error carrying a message for the user.
func Invalid(userMessage string) error {
	return NewUserError(userMessage, ErrValidation)
}

// UserMessage returns the user-facing message carried by err, if any.
func UserMessage(err error) (string, bool) {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage, true
	}
	return "", false
}

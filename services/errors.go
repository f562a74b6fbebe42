package services

import (
	"errors"
	"fmt"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchFull       = errors.New("match is full")
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// ValidationError carries the message shown to the user. It matches
// ErrInvalidInput with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

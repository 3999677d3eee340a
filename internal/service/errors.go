package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrAnalyzerDisabled   = errors.New("receipt analysis is not configured")

	// ErrReceiptNotFound is the not-found of a receipt referenced by an item
	// or transaction body. It matches ErrNotFound.
	ErrReceiptNotFound = fmt.Errorf("receipt %w", ErrNotFound)
)

// ValidationError reports input rejected before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrBalanceNotFound   = fmt.Errorf("stock material balance %w", ErrNotFound)
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLockTimeout       = errors.New("stock balance is locked by another operation")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrInvalidBackend  = errors.New("invalid storage backend")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidTheme    = errors.New("invalid theme mode")
	ErrDefaultCategory = errors.New("default categories cannot be deleted")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactionInput checks the fields a caller must supply.
// Amount is deliberately not range-checked here; the entry surface
// enforces positivity before calling the store.
func validateTransactionInput(input TransactionInput) error {
	if !input.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, input.Type)
	}
	if input.Date.IsZero() {
		return fmt.Errorf("transaction date must be set")
	}
	return nil
}

// validateCategoryInput checks the fields a caller must supply.
func validateCategoryInput(input CategoryInput) error {
	if err := validateString(input.Name, "name"); err != nil {
		return err
	}
	if !input.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, input.Type)
	}
	return nil
}

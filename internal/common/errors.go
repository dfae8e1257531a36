// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Configuration errors. These are fatal at construction time: a run
	// cannot start without valid reference data.
	ErrEmptyCatalog            = errors.New("price list cannot be empty")
	ErrEmptyDiscountRules      = errors.New("discount rules cannot be empty")
	ErrMissingBulkDiscount     = errors.New("discount rules missing bulk_discount")
	ErrMissingCategoryDiscount = errors.New("discount rules missing category_discount")
	ErrInvalidConfig           = errors.New("invalid configuration")

	// LLM engine errors.
	ErrUnsupportedProvider = errors.New("unsupported LLM provider")
	ErrInvalidLLMOutput    = errors.New("LLM output failed validation")
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

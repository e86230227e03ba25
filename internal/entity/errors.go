package entity

import (
	"errors"
	"fmt"
)

// RegistryError reports a violation of the entity identity or registry
// contract. None of these are recoverable locally: callers propagate them.
type RegistryError struct {
	// Code identifies the error category.
	Code ErrorCode

	// ID is the entity id the operation was about.
	ID int

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes registry errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates no entity is registered under the id.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeDuplicateKey indicates the id is already registered.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"

	// ErrCodeInvalidID indicates an id below the allocator's high-water mark.
	ErrCodeInvalidID ErrorCode = "INVALID_ID"
)

// Error implements the error interface.
func (e *RegistryError) Error() string {
	return fmt.Sprintf("%s: %s (id=%d)", e.Code, e.Message, e.ID)
}

// IsNotFound returns true if err is, or wraps, a NotFound registry error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsDuplicateKey returns true if err is, or wraps, a DuplicateKey registry error.
func IsDuplicateKey(err error) bool {
	return hasCode(err, ErrCodeDuplicateKey)
}

// IsInvalidID returns true if err is, or wraps, an InvalidID error.
func IsInvalidID(err error) bool {
	return hasCode(err, ErrCodeInvalidID)
}

func hasCode(err error, code ErrorCode) bool {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewNotFoundError creates a RegistryError for an unknown id.
func NewNotFoundError(id int) *RegistryError {
	return &RegistryError{
		Code:    ErrCodeNotFound,
		ID:      id,
		Message: "no entity registered with this id",
	}
}

// NewDuplicateKeyError creates a RegistryError for a second registration of id.
func NewDuplicateKeyError(id int) *RegistryError {
	return &RegistryError{
		Code:    ErrCodeDuplicateKey,
		ID:      id,
		Message: "entity id already registered",
	}
}

// NewInvalidIDError creates a RegistryError for an id assigned out of order.
func NewInvalidIDError(id, next int) *RegistryError {
	return &RegistryError{
		Code:    ErrCodeInvalidID,
		ID:      id,
		Message: fmt.Sprintf("id must be >= %d", next),
	}
}

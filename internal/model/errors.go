package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// ErrValidation matches every *ValidationError via errors.Is
	ErrValidation = errors.New("validation failure")

	// Entity errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidID           = errors.New("invalid id")
	ErrNegativeMarketValue = errors.New("market value must not be negative")
	ErrEmptyLogin          = errors.New("login must not be empty")
	ErrLoginTaken          = errors.New("login already in use")
	ErrAmbiguousMatch      = errors.New("lookup matched more than one entity")
)

// EntityKind names the entity type a persistence operation worked on
type EntityKind string

const (
	KindPlayer EntityKind = "player"
	KindUser   EntityKind = "user"
)

// ValidationError is the single failure kind surfaced by the persistence
// layer. It carries no cause; backend details are logged where the failure
// is created.
type ValidationError struct {
	Kind EntityKind
}

// NewValidationError creates a ValidationError for the given entity kind
func NewValidationError(kind EntityKind) *ValidationError {
	return &ValidationError{Kind: kind}
}

// Error implements error
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: problem has occurred", e.Kind)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidation reports whether err is a ValidationError for the given kind
func IsValidation(err error, kind EntityKind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == kind
}

package storage

import "errors"

// Errors shared by Unit implementations
var (
	ErrNoTransaction     = errors.New("no transaction in progress")
	ErrTransactionActive = errors.New("transaction already in progress")
	ErrUnitClosed        = errors.New("unit of work is closed")
)

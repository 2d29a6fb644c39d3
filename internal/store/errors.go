package store

import "errors"

// Common store errors used across all store implementations.
var (
	// ErrConversationNotFound is returned when no conversation exists for
	// the given ID.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrExportNotFound is returned when no export exists for the given ID.
	ErrExportNotFound = errors.New("export not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")
)

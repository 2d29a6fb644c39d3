package service

import (
	"errors"
	"fmt"

	"github.com/k3ss-official/total-recall/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrConversationNotFound indicates the conversation does not exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrExportNotFound indicates the export does not exist.
	ErrExportNotFound = errors.New("export not found")

	// ErrNoConversationsSelected indicates a request named no conversations.
	ErrNoConversationsSelected = errors.New("no conversations selected")
)

// ServiceError wraps unexpected errors from a service with operation
// context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_processing").
	Operation string
	// Message is a human-readable description of the failure.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with operation context. Known sentinel errors
// pass through unwrapped so callers can match them directly.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrConversationNotFound) || errors.Is(err, ErrExportNotFound) ||
		errors.Is(err, ErrNoConversationsSelected) {
		return err
	}
	if errors.Is(err, store.ErrConversationNotFound) {
		return ErrConversationNotFound
	}
	if errors.Is(err, store.ErrExportNotFound) {
		return ErrExportNotFound
	}

	return &ServiceError{Operation: operation, Message: message, Err: err}
}

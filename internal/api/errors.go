package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/k3ss-official/total-recall/internal/api/shared"
	"github.com/k3ss-official/total-recall/internal/chunker"
	"github.com/k3ss-official/total-recall/internal/domain"
	"github.com/k3ss-official/total-recall/internal/service"
	"github.com/k3ss-official/total-recall/internal/service/auth"
	"github.com/k3ss-official/total-recall/internal/store"
	"github.com/k3ss-official/total-recall/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, task.ErrNotFound),
		errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, service.ErrExportNotFound),
		errors.Is(err, store.ErrConversationNotFound),
		errors.Is(err, store.ErrExportNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, service.ErrNoConversationsSelected),
		errors.Is(err, domain.ErrInvalidExportFormat),
		errors.Is(err, chunker.ErrInvalidConfig),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	// Not found errors
	case errors.Is(err, task.ErrNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, store.ErrConversationNotFound):
		return "Conversation not found"

	case errors.Is(err, service.ErrExportNotFound),
		errors.Is(err, store.ErrExportNotFound):
		return "Export not found"

	// Bad request errors
	case errors.Is(err, service.ErrNoConversationsSelected):
		return "At least one conversation must be selected"

	case errors.Is(err, domain.ErrInvalidExportFormat):
		return "Unsupported export format"

	case errors.Is(err, chunker.ErrInvalidConfig):
		return "Invalid chunking configuration"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status code and sanitized message,
// then writes the error response and logs the underlying cause. An optional
// fallbackMessage overrides the generic message for unrecognized errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if fallbackMessage != "" && message == "An unexpected error occurred" {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'ProcessRequest.ConversationIDs'
		// Error:Field validation for 'ConversationIDs' failed on the
		// 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt", "gte":
		return "value too small"
	case "max", "lt", "lte":
		return "value too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

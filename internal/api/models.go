package api

import (
	"github.com/k3ss-official/total-recall/internal/service"
)

// Common request/response structures

// LoginRequest defines the payload for the operator login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// Username identifies the authenticated operator
	Username string `json:"username"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthStatusResponse reports whether the current request is authenticated.
type AuthStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// CreateTaskRequest defines the payload for the generic task creation
// endpoint. Kind selects the job type; the kind-specific config sections are
// optional.
type CreateTaskRequest struct {
	Kind            string                    `json:"kind"             validate:"required,oneof=processing injection"`
	ConversationIDs []string                  `json:"conversation_ids" validate:"required,min=1"`
	Processing      *service.ProcessingConfig `json:"processing,omitempty"`
	Injection       *InjectionOptions         `json:"injection,omitempty"`
}

// ProcessRequest defines the payload for the processing endpoint.
type ProcessRequest struct {
	ConversationIDs []string                     `json:"conversation_ids" validate:"required,min=1"`
	Chunking        service.ChunkingConfig       `json:"chunking"`
	Summarization   service.SummarizationOptions `json:"summarization"`
}

// InjectionOptions mirrors the injection retry knobs with a JSON-friendly
// delay in seconds.
type InjectionOptions struct {
	RetryAttempts     int `json:"retry_attempts"      validate:"omitempty,gte=0,lte=10"`
	RetryDelaySeconds int `json:"retry_delay_seconds" validate:"omitempty,gte=0,lte=300"`
}

// InjectRequest defines the payload for the injection endpoint.
type InjectRequest struct {
	ConversationIDs []string `json:"conversation_ids" validate:"required,min=1"`
	InjectionOptions
}

// TaskCreatedResponse acknowledges an accepted background task.
type TaskCreatedResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// CancelResponse acknowledges a cancellation request.
type CancelResponse struct {
	TaskID   string `json:"task_id"`
	Accepted bool   `json:"accepted"`
}

// ExportRequest defines the payload for the export endpoint.
type ExportRequest struct {
	ConversationIDs []string `json:"conversation_ids" validate:"required,min=1"`
	Format          string   `json:"format"           validate:"required"`
}

// ExportResponse describes a created export artifact.
type ExportResponse struct {
	ExportID  string `json:"export_id"`
	Format    string `json:"format"`
	SizeBytes int    `json:"size_bytes"`
}

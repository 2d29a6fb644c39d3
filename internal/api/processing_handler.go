package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/k3ss-official/total-recall/internal/api/shared"
	"github.com/k3ss-official/total-recall/internal/service"
)

// ProcessingHandler exposes the kind-specific processing endpoint. It is a
// thin shim over the task surface for clients that only run processing jobs.
type ProcessingHandler struct {
	processing *service.ProcessingService
	validator  *validator.Validate
	logger     *slog.Logger
}

// NewProcessingHandler creates a new ProcessingHandler.
func NewProcessingHandler(processing *service.ProcessingService, logger *slog.Logger) *ProcessingHandler {
	return &ProcessingHandler{
		processing: processing,
		validator:  validator.New(),
		logger:     logger.With("component", "processing_handler"),
	}
}

// Process handles POST /api/processing/process.
func (h *ProcessingHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	record, err := h.processing.Start(r.Context(), req.ConversationIDs, service.ProcessingConfig{
		Chunking:      req.Chunking,
		Summarization: req.Summarization,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start processing")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskCreatedResponse{
		TaskID: record.ID,
		Status: string(record.Status),
	})
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/k3ss-official/total-recall/internal/api/shared"
	"github.com/k3ss-official/total-recall/internal/service"
)

// InjectionHandler exposes the kind-specific injection endpoint.
type InjectionHandler struct {
	injection *service.InjectionService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewInjectionHandler creates a new InjectionHandler.
func NewInjectionHandler(injection *service.InjectionService, logger *slog.Logger) *InjectionHandler {
	return &InjectionHandler{
		injection: injection,
		validator: validator.New(),
		logger:    logger.With("component", "injection_handler"),
	}
}

// Inject handles POST /api/injection/inject.
func (h *InjectionHandler) Inject(w http.ResponseWriter, r *http.Request) {
	var req InjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	record, err := h.injection.Start(r.Context(), req.ConversationIDs, req.InjectionOptions.injectionConfig())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start injection")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskCreatedResponse{
		TaskID: record.ID,
		Status: string(record.Status),
	})
}

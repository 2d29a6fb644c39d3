package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/k3ss-official/total-recall/internal/api/shared"
	"github.com/k3ss-official/total-recall/internal/domain"
	"github.com/k3ss-official/total-recall/internal/service"
)

// ExportHandler exposes synchronous conversation export and download.
type ExportHandler struct {
	exports   *service.ExportService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exports *service.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		exports:   exports,
		validator: validator.New(),
		logger:    logger.With("component", "export_handler"),
	}
}

// Create handles POST /api/export, rendering the selected conversations in
// the requested format and holding the artifact for download.
func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	export, err := h.exports.Create(r.Context(), req.ConversationIDs, domain.ExportFormat(req.Format))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create export")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, ExportResponse{
		ExportID:  export.ID,
		Format:    string(export.Format),
		SizeBytes: len(export.Data),
	})
}

// Download handles GET /api/export/{exportID}/download, serving the rendered
// artifact with its format's content type.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	exportID := chi.URLParam(r, "exportID")

	export, err := h.exports.Get(r.Context(), exportID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get export")
		return
	}

	w.Header().Set("Content-Type", export.Format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "conversations-export."+string(export.Format)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		h.logger.Error("failed to write export body", "export_id", exportID, "error", err)
	}
}

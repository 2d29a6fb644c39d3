package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/k3ss-official/total-recall/internal/api/shared"
	"github.com/k3ss-official/total-recall/internal/service"
	"github.com/k3ss-official/total-recall/internal/task"
)

// TaskHandler handles the generic task API: creation, status polling,
// listing, and cancellation.
type TaskHandler struct {
	tracker    *task.Tracker
	processing *service.ProcessingService
	injection  *service.InjectionService
	validator  *validator.Validate
	logger     *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(
	tracker *task.Tracker,
	processing *service.ProcessingService,
	injection *service.InjectionService,
	logger *slog.Logger,
) *TaskHandler {
	return &TaskHandler{
		tracker:    tracker,
		processing: processing,
		injection:  injection,
		validator:  validator.New(),
		logger:     logger.With("component", "task_handler"),
	}
}

// injectionConfig converts the JSON retry options into service config.
func (o *InjectionOptions) injectionConfig() service.InjectionConfig {
	if o == nil {
		return service.InjectionConfig{}
	}
	return service.InjectionConfig{
		RetryAttempts: o.RetryAttempts,
		RetryDelay:    time.Duration(o.RetryDelaySeconds) * time.Second,
	}
}

// Create handles POST /api/tasks. The task kind selects the job type; a
// valid request is acknowledged with 202 before any work runs.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	var (
		record task.Record
		err    error
	)
	switch req.Kind {
	case task.KindProcessing:
		var cfg service.ProcessingConfig
		if req.Processing != nil {
			cfg = *req.Processing
		}
		record, err = h.processing.Start(r.Context(), req.ConversationIDs, cfg)
	case task.KindInjection:
		record, err = h.injection.Start(r.Context(), req.ConversationIDs, req.Injection.injectionConfig())
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskCreatedResponse{
		TaskID: record.ID,
		Status: string(record.Status),
	})
}

// Get handles GET /api/tasks/{taskID}, returning the full task snapshot.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	record, err := h.tracker.Get(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// List handles GET /api/tasks, returning all task snapshots newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.tracker.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{
		"tasks": records,
		"count": len(records),
	})
}

// Cancel handles POST /api/tasks/{taskID}/cancel. Cancellation is
// cooperative: the request is acknowledged once recorded, and the task
// confirms at its next checkpoint.
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	if err := h.tracker.RequestCancel(r.Context(), taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to cancel task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CancelResponse{
		TaskID:   taskID,
		Accepted: true,
	})
}

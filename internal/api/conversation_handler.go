package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/k3ss-official/total-recall/internal/api/shared"
	"github.com/k3ss-official/total-recall/internal/domain"
	"github.com/k3ss-official/total-recall/internal/service"
)

// ConversationHandler exposes read access to the conversation archive.
type ConversationHandler struct {
	conversations *service.ConversationService
	logger        *slog.Logger
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(conversations *service.ConversationService, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		logger:        logger.With("component", "conversation_handler"),
	}
}

// List handles GET /api/conversations with optional limit, offset,
// start_date, end_date, and title query parameters.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.conversations.List(r.Context(), filter, parsePagination(r.URL.Query()))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list conversations")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Get handles GET /api/conversations/{conversationID}, returning the full
// conversation with messages.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	conversation, err := h.conversations.Get(r.Context(), conversationID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get conversation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, conversation)
}

// Search handles GET /api/conversations/search/{query}.
func (h *ConversationHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	if query == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Search query is required")
		return
	}

	page, err := h.conversations.Search(r.Context(), query, parsePagination(r.URL.Query()))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search conversations")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// parsePagination reads limit and offset query parameters, leaving the
// service defaults in place for absent or unparsable values.
func parsePagination(values url.Values) service.Pagination {
	var page service.Pagination
	if v, err := strconv.Atoi(values.Get("limit")); err == nil && v > 0 {
		page.Limit = v
	}
	if v, err := strconv.Atoi(values.Get("offset")); err == nil && v > 0 {
		page.Offset = v
	}
	return page
}

// parseFilter reads the date-range and title filter query parameters.
// Dates accept RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseFilter(values url.Values) (domain.Filter, error) {
	filter := domain.Filter{TitleContains: values.Get("title")}

	if raw := values.Get("start_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("invalid start_date: %q", raw)
		}
		filter.StartDate = &t
	}
	if raw := values.Get("end_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("invalid end_date: %q", raw)
		}
		filter.EndDate = &t
	}
	return filter, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

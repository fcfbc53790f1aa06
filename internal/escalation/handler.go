package escalation

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindhaven/wellness-platform/internal/risk"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

// Handler exposes the escalation event log to the admin API.
type Handler struct {
	events *EventStore
	logger *logging.Logger
}

func NewHandler(events *EventStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{events: events, logger: logger}
}

// ListEventsResponse is the response for listing escalation events
type ListEventsResponse struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
}

// ListEvents handles GET /admin/users/{userID}/escalations requests.
// Supports tier, start, end (RFC 3339), limit and offset query filters.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	filter := EventFilter{UserID: userID, Limit: 50}

	q := r.URL.Query()
	if tier := q.Get("tier"); tier != "" {
		filter.Tier = risk.Tier(tier)
	}
	if start := q.Get("start"); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			http.Error(w, "invalid start time", http.StatusBadRequest)
			return
		}
		filter.StartTime = t
	}
	if end := q.Get("end"); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			http.Error(w, "invalid end time", http.StatusBadRequest)
			return
		}
		filter.EndTime = t
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 200 {
			filter.Limit = parsed
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed > 0 {
			filter.Offset = parsed
		}
	}

	events, err := h.events.QueryEvents(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to query escalation events", "error", err, "user_id", userID)
		http.Error(w, "failed to query events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListEventsResponse{Events: events, Count: len(events)})
}

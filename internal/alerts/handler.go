package alerts

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mindhaven/wellness-platform/pkg/logging"
)

// Handler exposes alert delivery records to the admin API.
type Handler struct {
	records *RecordStore
	logger  *logging.Logger
}

func NewHandler(records *RecordStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{records: records, logger: logger}
}

// ListByUserResponse is the response for listing alert delivery records
type ListByUserResponse struct {
	Records []Record `json:"records"`
	Count   int      `json:"count"`
}

// ListByUser handles GET /admin/users/{userID}/alerts requests
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	records, err := h.records.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to list alert records", "error", err, "user_id", userID)
		http.Error(w, "failed to list alert records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListByUserResponse{Records: records, Count: len(records)})
}

package checkins

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mindhaven/wellness-platform/pkg/logging"
)

// Handler handles HTTP requests for check-ins
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a new check-ins handler
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Create handles POST /v1/checkins requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode check-in request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	checkin, err := h.store.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidMood) || errors.Is(err, ErrMissingUserID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create check-in", "error", err)
		http.Error(w, "failed to record check-in", http.StatusInternalServerError)
		return
	}

	h.logger.Info("check-in recorded", "id", checkin.ID, "user_id", checkin.UserID, "mood", checkin.Mood)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(checkin)
}

// ListRecentResponse is the response for listing recent check-ins
type ListRecentResponse struct {
	Checkins []Checkin `json:"checkins"`
	Count    int       `json:"count"`
}

// ListRecent handles GET /v1/users/{userID}/checkins requests
func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	limit := 5
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	list, err := h.store.Recent(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to list check-ins", "error", err, "user_id", userID)
		http.Error(w, "failed to list check-ins", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListRecentResponse{Checkins: list, Count: len(list)})
}

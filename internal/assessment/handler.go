package assessment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mindhaven/wellness-platform/pkg/logging"
)

// Handler handles HTTP requests for assessments.
type Handler struct {
	service *Service
	store   Store
	logger  *logging.Logger
}

// NewHandler creates a new assessment handler.
func NewHandler(service *Service, store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, store: store, logger: logger}
}

// Create handles POST /v1/assessments requests. The response is 200 even for
// CRITICAL tiers; only a failed write-ahead escalation log is a server error.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode assessment request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.service.Assess(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrMissingUserID) || errors.Is(err, ErrInvalidMood) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("assessment failed", "error", err, "user_id", req.UserID)
		http.Error(w, "failed to process assessment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(outcome)
}

// ListByUserResponse is the response for listing a user's assessments.
type ListByUserResponse struct {
	Assessments []Assessment `json:"assessments"`
	Count       int          `json:"count"`
}

// ListByUser handles GET /v1/users/{userID}/assessments requests.
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	list, err := h.store.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to list assessments", "error", err, "user_id", userID)
		http.Error(w, "failed to list assessments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListByUserResponse{Assessments: list, Count: len(list)})
}

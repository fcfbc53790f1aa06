package counselors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpmiddleware "github.com/mindhaven/wellness-platform/internal/http/middleware"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

// Handler exposes the on-duty roster to the admin API.
type Handler struct {
	roster *RosterStore
	logger *logging.Logger
}

func NewHandler(roster *RosterStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{roster: roster, logger: logger}
}

// CheckIn handles POST /admin/counselors requests
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var c Counselor
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Counselors checking themselves in can rely on their token identity.
	if claims, ok := httpmiddleware.CounselorFromContext(r.Context()); ok {
		if c.ID == "" {
			c.ID = claims.Subject
		}
		if c.Name == "" {
			c.Name = claims.Name
		}
	}

	checked, err := h.roster.CheckIn(r.Context(), c)
	if err != nil {
		if errors.Is(err, ErrNameRequired) || errors.Is(err, ErrContactRequired) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("counselor check-in failed", "error", err)
		http.Error(w, "failed to check in", http.StatusInternalServerError)
		return
	}

	h.logger.Info("counselor on duty", "counselor_id", checked.ID, "name", checked.Name)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(checked)
}

// CheckOut handles DELETE /admin/counselors/{counselorID} requests
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	counselorID := chi.URLParam(r, "counselorID")
	if counselorID == "" {
		http.Error(w, "missing counselor id", http.StatusBadRequest)
		return
	}

	if err := h.roster.CheckOut(r.Context(), counselorID); err != nil {
		h.logger.Error("counselor check-out failed", "error", err, "counselor_id", counselorID)
		http.Error(w, "failed to check out", http.StatusInternalServerError)
		return
	}

	h.logger.Info("counselor off duty", "counselor_id", counselorID)
	w.WriteHeader(http.StatusNoContent)
}

// ListResponse is the response for listing the on-duty roster
type ListResponse struct {
	Counselors []Counselor `json:"counselors"`
	Count      int         `json:"count"`
}

// List handles GET /admin/counselors requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	roster, err := h.roster.OnDuty(r.Context())
	if err != nil {
		h.logger.Error("failed to list roster", "error", err)
		http.Error(w, "failed to list roster", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{Counselors: roster, Count: len(roster)})
}

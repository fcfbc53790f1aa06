// Package router wires the HTTP API: public check-in and assessment
// endpoints plus a JWT-guarded admin surface for counselors.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mindhaven/wellness-platform/internal/alerts"
	"github.com/mindhaven/wellness-platform/internal/assessment"
	"github.com/mindhaven/wellness-platform/internal/checkins"
	"github.com/mindhaven/wellness-platform/internal/counselors"
	"github.com/mindhaven/wellness-platform/internal/escalation"
	httpmiddleware "github.com/mindhaven/wellness-platform/internal/http/middleware"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

// Config carries the handler dependencies for the API router.
type Config struct {
	Logger *logging.Logger

	Checkins    *checkins.Handler
	Assessments *assessment.Handler

	// Admin surface. Any of these may be nil; the matching routes are
	// simply not mounted.
	Escalations *escalation.Handler
	Roster      *counselors.Handler
	Alerts      *alerts.Handler

	// CounselorJWTSecret signs the HMAC JWTs that guard /admin routes.
	// When empty, admin routes reject every request.
	CounselorJWTSecret string

	// MetricsHandler serves GET /metrics when set (usually promhttp).
	MetricsHandler http.Handler

	CORSAllowedOrigins []string

	// PublicRateLimit caps requests per second per client IP on the
	// public API. Zero disables rate limiting.
	PublicRateLimit float64
}

// New builds the chi router for the wellness API.
func New(cfg *Config) http.Handler {
	if cfg == nil {
		cfg = &Config{}
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// Public API used by the mobile client.
	r.Group(func(r chi.Router) {
		if cfg.PublicRateLimit > 0 {
			r.Use(httpmiddleware.RateLimit(cfg.PublicRateLimit, int(cfg.PublicRateLimit*2)))
		}

		if cfg.Checkins != nil {
			r.Post("/v1/checkins", cfg.Checkins.Create)
			r.Get("/v1/users/{userID}/checkins", cfg.Checkins.ListRecent)
		}
		if cfg.Assessments != nil {
			r.Post("/v1/assessments", cfg.Assessments.Create)
			r.Get("/v1/users/{userID}/assessments", cfg.Assessments.ListByUser)
		}
	})

	// Counselor/admin surface.
	r.Route("/admin", func(r chi.Router) {
		r.Use(httpmiddleware.CounselorJWT(cfg.CounselorJWTSecret))

		if cfg.Roster != nil {
			r.Post("/counselors", cfg.Roster.CheckIn)
			r.Get("/counselors", cfg.Roster.List)
			r.Delete("/counselors/{counselorID}", cfg.Roster.CheckOut)
		}
		if cfg.Escalations != nil {
			r.Get("/users/{userID}/escalations", cfg.Escalations.ListEvents)
		}
		if cfg.Alerts != nil {
			r.Get("/users/{userID}/alerts", cfg.Alerts.ListByUser)
		}
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

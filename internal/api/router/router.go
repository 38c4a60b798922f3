package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/glowdesk/scheduling/internal/http/handlers"
	httpmiddleware "github.com/glowdesk/scheduling/internal/http/middleware"
	"github.com/glowdesk/scheduling/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Scheduling         *handlers.SchedulingHandler
	AdminAppointments  *handlers.AdminAppointmentsHandler
	AdminSettings      *handlers.AdminSettingsHandler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// RateLimitPerSecond throttles the public booking surface per
	// tenant and caller IP; <= 0 disables it.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public booking surface. Throttled per tenant and caller; admin
	// and operational endpoints are not.
	if cfg.Scheduling != nil {
		r.Route("/tenants/{tenantID}", func(tr chi.Router) {
			tr.Use(httpmiddleware.TenantID)
			if cfg.RateLimitPerSecond > 0 {
				tr.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
			}
			tr.Get("/services", cfg.Scheduling.ListServices)
			tr.Get("/staff/{staffID}/slots", cfg.Scheduling.GetSlots)
			tr.Post("/bookings", cfg.Scheduling.CreateBooking)
			tr.Post("/appointments/{appointmentID}/reschedule", cfg.Scheduling.Reschedule)
		})
	}

	// Staff-side management, JWT-protected.
	r.Route("/admin/tenants/{tenantID}", func(ar chi.Router) {
		ar.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		ar.Use(httpmiddleware.TenantID)
		if cfg.AdminAppointments != nil {
			ar.Get("/appointments/{appointmentID}", cfg.AdminAppointments.GetAppointment)
			ar.Post("/appointments/{appointmentID}/status", cfg.AdminAppointments.UpdateStatus)
		}
		if cfg.AdminSettings != nil {
			ar.Get("/settings", cfg.AdminSettings.GetSettings)
			ar.Put("/settings", cfg.AdminSettings.UpdateSettings)
		}
	})

	return r
}

/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. httplog:    Structured request logging (ECS schema, slog)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for a local frontend

ROUTE GROUPS:
  /api/entries/*     Ledger records
  /api/stats         Overtime windows
  /api/absences/*    Vacation, sick, holiday counts
  /api/reports/*     Monthly reports
  /api/history/*     Snapshots and compensations
  /api/settings/*    Weekly targets, vacation entitlement
  /api/backup        Export / import
  /api/storage       Storage summary
  /api/reset         Clear everything
  /metrics           Prometheus

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configure NewRouter. Zero values fall back to defaults.
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = h.Logger
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Entry routes
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/work", h.RecordWork)
			r.Post("/absence", h.RecordAbsence)
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Get("/stats", h.GetStats)

		// Absence routes
		r.Route("/absences", func(r chi.Router) {
			r.Get("/", h.GetYearAbsences)
			r.Get("/recent", h.GetRecentAbsences)
		})

		r.Get("/reports/{month}", h.GetMonthlyReport)

		// History routes
		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.GetHistory)
			r.Post("/snapshot", h.TakeSnapshot)
			r.Get("/compensations", h.GetCompensations)
		})

		// Settings routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/targets", h.GetWeeklyTargets)
			r.Put("/targets", h.UpdateWeeklyTargets)
			r.Get("/absence", h.GetAbsenceSettings)
			r.Put("/absence", h.UpdateAbsenceSettings)
		})

		// Storage routes
		r.Get("/backup", h.ExportBackup)
		r.Post("/backup", h.ImportBackup)
		r.Get("/storage", h.GetStorageInfo)
		r.Post("/reset", h.ResetData)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// NewLogger builds the JSON slog logger used by the server, with attributes
// renamed to the ECS schema the request logger writes.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "worktime-engine"),
	)
}

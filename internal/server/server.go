package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/luctussier/Heart-Monitor/internal/config"
	"github.com/luctussier/Heart-Monitor/internal/ingest/beatlog"
	"github.com/luctussier/Heart-Monitor/internal/storage"
)

// maxLogBytes caps uploaded beat logs. A day of beats is well under 1 MB.
const maxLogBytes = 32 << 20

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      *storage.DB
	beatlog *beatlog.Provider
	log     *slog.Logger
	apiKey  string
	render  config.RenderConfig
	whois   WhoIsClient
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, provider *beatlog.Provider, apiKey string, render config.RenderConfig, log *slog.Logger) *Server {
	s := &Server{
		db:      db,
		beatlog: provider,
		log:     log,
		apiKey:  apiKey,
		render:  render,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches dashboard requests from the local dev identity to
// tailnet identities resolved through WhoIs.
func (s *Server) SetTailscale(c WhoIsClient) {
	s.whois = c
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/beatlog", s.handleBeatLogIngest)
	})

	// Stateless analysis, nothing is stored
	s.router.Post("/api/v1/analyze", s.handleAnalyze)
	s.router.Post("/api/v1/analyze/chart", s.handleAnalyzeChart)

	s.router.Group(func(r chi.Router) {
		r.Use(s.identity)
		r.Get("/api/v1/me", s.handleMe)
		r.Get("/api/v1/workouts", s.handleQueryWorkouts)
		r.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
		r.Delete("/api/v1/workouts/{id}", s.handleDeleteWorkout)
		r.Get("/api/v1/workouts/{id}/chart", s.handleWorkoutChart)
		r.Get("/api/v1/workouts/{id}/export.fit", s.handleExportFIT)
		r.Get("/api/v1/workouts/{id}/export.parquet", s.handleExportParquet)
		r.Get("/api/v1/workouts/{id}/zones", s.handleWorkoutZones)
		r.Get("/api/v1/summary", s.handlePeriodSummary)
		r.Get("/api/v1/stats", s.handleStats)
		r.Get("/api/v1/import-logs", s.handleImportLogs)
	})
}

// identity picks the tailnet identity when tsnet is wired, otherwise the dev user.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.db, s.log)(next).ServeHTTP(w, r)
	})
}

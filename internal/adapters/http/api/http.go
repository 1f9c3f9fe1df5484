// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	"github.com/okian/gradecard/internal/domain/background"
	"github.com/okian/gradecard/internal/domain/lookup"
	"github.com/okian/gradecard/internal/domain/presenter"
	"github.com/okian/gradecard/internal/domain/record"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StudentDependencies
	BackgroundDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	studentsHandler   *StudentsHandler
	backgroundHandler *BackgroundHandler

	corsOrigins []string
	assets      fs.FS
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call /api.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithAssets serves background images from fsys under /backgrounds/.
func WithAssets(fsys fs.FS) Option {
	return func(s *Server) {
		s.assets = fsys
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		studentsHandler:   NewStudentsHandler(deps),
		backgroundHandler: NewBackgroundHandler(deps),
		corsOrigins:       []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         300,
		}))

		r.Get("/students", MetricsMiddleware(s.studentsHandler.HandleGetStudent, "/api/students"))
		r.Get("/students/{id}", MetricsMiddleware(s.studentsHandler.HandleGetStudent, "/api/students/{id}"))

		r.Get("/backgrounds", MetricsMiddleware(s.backgroundHandler.HandleList, "/api/backgrounds"))
		r.Get("/background", MetricsMiddleware(s.backgroundHandler.HandleCurrent, "/api/background"))
		r.Put("/background", MetricsMiddleware(s.backgroundHandler.HandleSelect, "/api/background"))
		r.Post("/background/next", MetricsMiddleware(s.backgroundHandler.HandleNext, "/api/background/next"))
		r.Post("/background/random", MetricsMiddleware(s.backgroundHandler.HandleRandom, "/api/background/random"))
	})

	if s.assets != nil {
		r.Handle("/backgrounds/*", http.StripPrefix("/backgrounds/", http.FileServerFS(s.assets)))
	}
}

// errorResponse is the body of every non-2xx API response. Notice is the
// localized message the page shows.
type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Notice  *presenter.Notice `json:"notice,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// noticer renders errors for users.
type noticer interface {
	Notice(err error, l presenter.Locale) presenter.Notice
	Locale(acceptLanguage string) presenter.Locale
}

// writeNotice writes err with its mapped status and rendered notice.
func writeNotice(w http.ResponseWriter, n noticer, l presenter.Locale, err error) {
	notice := n.Notice(err, l)
	writeJSON(w, statusFor(err), errorResponse{
		Code:    string(notice.Code),
		Message: err.Error(),
		Notice:  &notice,
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lookup.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, lookup.ErrNotFound), errors.Is(err, background.ErrUnknownEntry):
		return http.StatusNotFound
	case errors.Is(err, background.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, background.ErrAssetUnavailable), errors.Is(err, record.ErrLoad):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// requestLocale prefers an explicit ?lang= over Accept-Language.
func requestLocale(r *http.Request, n noticer) presenter.Locale {
	if l, ok := presenter.ParseLocale(r.URL.Query().Get("lang")); ok {
		return l
	}
	return n.Locale(r.Header.Get("Accept-Language"))
}

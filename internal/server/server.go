package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emiliopalmerini/taskpulse/internal/events"
	"github.com/emiliopalmerini/taskpulse/internal/reports"
)

// Config holds server-specific configuration.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Pinger reports whether the counter store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the handlers' collaborators, built once at startup.
type Deps struct {
	Engine    events.Engine
	Validator *events.Validator
	Query     reports.Query
	Health    Pinger
	Logger    *log.Logger
	Now       func() time.Time
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", health(d.Health, d.Logger))

	events.RegisterRoutes(r, events.NewHandler(d.Engine, d.Validator, d.Logger))
	reports.RegisterRoutes(r, reports.NewHandler(d.Query, d.Logger, d.Now))

	return r
}

func NewHTTPServer(cfg Config, d Deps) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(d),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func health(p Pinger, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := p.Ping(r.Context()); err != nil {
			logger.Warn("health check failed", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// requestLogger logs one line per request through the structured logger.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

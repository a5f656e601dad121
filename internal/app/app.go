package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/taskpulse/internal/adapters/otel"
	"github.com/emiliopalmerini/taskpulse/internal/adapters/redis"
	"github.com/emiliopalmerini/taskpulse/internal/adapters/turso"
	"github.com/emiliopalmerini/taskpulse/internal/database"
	"github.com/emiliopalmerini/taskpulse/internal/events"
	"github.com/emiliopalmerini/taskpulse/internal/migrate"
	"github.com/emiliopalmerini/taskpulse/internal/ports"
	"github.com/emiliopalmerini/taskpulse/internal/server"
	"github.com/emiliopalmerini/taskpulse/internal/stats"
)

// App owns the process-wide dependencies. The counter store client is opened
// once here and handed to everything that needs it.
type App struct {
	Config    *Config
	Logger    *log.Logger
	Store     ports.CounterStore
	Metrics   ports.StatsMetrics
	Engine    *stats.Engine
	Query     *stats.Query
	Validator *events.Validator
}

// New opens the configured store and metrics exporter and builds the engine.
func New(ctx context.Context, cfg *Config, logger *log.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewWithStore(ctx, cfg, logger, store)
}

// NewWithStore builds the App around an already opened store.
func NewWithStore(ctx context.Context, cfg *Config, logger *log.Logger, store ports.CounterStore) (*App, error) {
	validator, err := events.NewValidator()
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	metrics := newMetrics(ctx, cfg.OTEL, logger)
	statsCfg := cfg.Stats()

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Metrics:   metrics,
		Engine:    stats.NewEngine(store, metrics, logger, statsCfg),
		Query:     stats.NewQuery(store, logger, statsCfg),
		Validator: validator,
	}, nil
}

// OpenStore connects to the configured counter store backend.
func OpenStore(ctx context.Context, cfg *Config, logger *log.Logger) (ports.CounterStore, error) {
	switch cfg.StoreBackend {
	case BackendRedis:
		store, err := redis.Open(ctx, redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("counter store ready", "backend", BackendRedis, "addr", cfg.RedisAddr)
		return store, nil

	case BackendLibsql:
		client, err := database.New(ctx, cfg.TursoDatabaseURL, cfg.TursoAuthToken)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if cfg.AutoMigrate {
			if err := migrate.RunAll(log.WithContext(ctx, logger), client.DB); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		logger.Info("counter store ready", "backend", BackendLibsql, "local", database.IsLocal(cfg.TursoDatabaseURL))
		return turso.NewCounterStore(client.DB), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// newMetrics falls back to a no-op exporter when OTEL is off or unreachable.
func newMetrics(ctx context.Context, cfg otel.Config, logger *log.Logger) ports.StatsMetrics {
	exp, err := otel.NewExporter(ctx, cfg)
	if err != nil {
		if !errors.Is(err, otel.ErrDisabled) {
			logger.Warn("metrics export disabled", "err", err)
		}
		return otel.NewNoOpExporter()
	}
	logger.Info("exporting metrics", "endpoint", cfg.Endpoint)
	return exp
}

// Close flushes metrics and closes the store.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Metrics.Close(ctx), a.Store.Close())
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests for at most ShutdownTimeout.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := server.NewHTTPServer(server.Config{
		Addr:         addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, server.Deps{
		Engine:    a.Engine,
		Validator: a.Validator,
		Query:     a.Query,
		Health:    a.Query,
		Logger:    a.Logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

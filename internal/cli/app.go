package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/emiliopalmerini/taskpulse/internal/app"
)

// AppContext holds the shared dependencies for CLI commands.
type AppContext struct {
	*app.App
}

// newAppContext is replaced in tests.
var newAppContext = func(ctx context.Context) (*AppContext, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(log.WithContext(ctx, logger), cfg, logger)
	if err != nil {
		return nil, err
	}
	return &AppContext{App: a}, nil
}

// loadConfig reads the environment and builds the stderr logger.
func loadConfig() (*app.Config, *log.Logger, error) {
	cfg, err := app.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := app.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close(ctx context.Context) error {
	if a == nil || a.App == nil {
		return nil
	}
	return a.App.Close(ctx)
}

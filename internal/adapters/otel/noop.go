package otel

import (
	"context"
	"time"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (NoOpExporter) RecordEvent(context.Context, domain.EventKind, int, string, time.Duration) {}

func (NoOpExporter) RecordOpFailure(context.Context, domain.Op) {}

func (NoOpExporter) RecordPartialApply(context.Context, domain.EventKind) {}

func (NoOpExporter) RecordRetry(context.Context, domain.Op) {}

func (NoOpExporter) Close(context.Context) error {
	return nil
}

package ports

import (
	"context"
	"time"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

// StatsMetrics exports engine health to an external observability system.
type StatsMetrics interface {
	// RecordEvent records one applied lifecycle event and how long it took.
	RecordEvent(ctx context.Context, kind domain.EventKind, ops int, outcome string, took time.Duration)
	// RecordOpFailure records a counter operation that failed after retries.
	RecordOpFailure(ctx context.Context, op domain.Op)
	// RecordPartialApply records an event whose ops were only partly applied.
	RecordPartialApply(ctx context.Context, kind domain.EventKind)
	// RecordRetry records one retried store call.
	RecordRetry(ctx context.Context, op domain.Op)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

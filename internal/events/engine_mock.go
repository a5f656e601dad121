package events

import (
	"context"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
	"github.com/emiliopalmerini/taskpulse/internal/stats"
)

// MockEngine is a mock implementation of Engine for testing.
type MockEngine struct {
	ApplyCreateFunc func(ctx context.Context, task domain.Task) stats.Report
	ApplyUpdateFunc func(ctx context.Context, before, after domain.Task) stats.Report
	ApplyDeleteFunc func(ctx context.Context, task domain.Task) stats.Report
}

func (m *MockEngine) ApplyCreate(ctx context.Context, task domain.Task) stats.Report {
	if m.ApplyCreateFunc != nil {
		return m.ApplyCreateFunc(ctx, task)
	}
	return stats.Report{Kind: domain.EventCreated, TaskID: task.ID, Outcome: stats.OutcomeOK}
}

func (m *MockEngine) ApplyUpdate(ctx context.Context, before, after domain.Task) stats.Report {
	if m.ApplyUpdateFunc != nil {
		return m.ApplyUpdateFunc(ctx, before, after)
	}
	return stats.Report{Kind: domain.EventUpdated, TaskID: after.ID, Outcome: stats.OutcomeOK}
}

func (m *MockEngine) ApplyDelete(ctx context.Context, task domain.Task) stats.Report {
	if m.ApplyDeleteFunc != nil {
		return m.ApplyDeleteFunc(ctx, task)
	}
	return stats.Report{Kind: domain.EventDeleted, TaskID: task.ID, Outcome: stats.OutcomeOK}
}

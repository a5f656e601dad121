package reports

import (
	"context"
	"time"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

// MockQuery is a mock implementation of Query for testing.
type MockQuery struct {
	GetStatusCountersFunc      func(ctx context.Context, userID string) (domain.StatusCounts, error)
	GetTopTagsFunc             func(ctx context.Context, userID string, limit int) ([]domain.TagScore, error)
	GetCompletionsInRangeFunc  func(ctx context.Context, userID string, from, to time.Time) (map[string]int64, error)
	GetProductivitySummaryFunc func(ctx context.Context, userID string) (domain.ProductivitySummary, error)
	GetDashboardFunc           func(ctx context.Context, userID string, tagLimit, days int) (*domain.Dashboard, error)
}

func (m *MockQuery) GetStatusCounters(ctx context.Context, userID string) (domain.StatusCounts, error) {
	if m.GetStatusCountersFunc != nil {
		return m.GetStatusCountersFunc(ctx, userID)
	}
	return domain.StatusCounts{}, nil
}

func (m *MockQuery) GetTopTags(ctx context.Context, userID string, limit int) ([]domain.TagScore, error) {
	if m.GetTopTagsFunc != nil {
		return m.GetTopTagsFunc(ctx, userID, limit)
	}
	return []domain.TagScore{}, nil
}

func (m *MockQuery) GetCompletionsInRange(ctx context.Context, userID string, from, to time.Time) (map[string]int64, error) {
	if m.GetCompletionsInRangeFunc != nil {
		return m.GetCompletionsInRangeFunc(ctx, userID, from, to)
	}
	return map[string]int64{}, nil
}

func (m *MockQuery) GetProductivitySummary(ctx context.Context, userID string) (domain.ProductivitySummary, error) {
	if m.GetProductivitySummaryFunc != nil {
		return m.GetProductivitySummaryFunc(ctx, userID)
	}
	return domain.ProductivitySummary{}, nil
}

func (m *MockQuery) GetDashboard(ctx context.Context, userID string, tagLimit, days int) (*domain.Dashboard, error) {
	if m.GetDashboardFunc != nil {
		return m.GetDashboardFunc(ctx, userID, tagLimit, days)
	}
	return &domain.Dashboard{UserID: userID}, nil
}

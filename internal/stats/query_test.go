package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

func TestQuery_GetStatusCountersClampsNegatives(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	_, query, _ := newTestEngine(store)
	store.counters[domain.StatusKey("u1", domain.StatusPending)] = -2
	store.counters[domain.StatusKey("u1", domain.StatusCompleted)] = 3

	counts, err := query.GetStatusCounters(ctx, "u1")
	if err != nil {
		t.Fatalf("GetStatusCounters failed: %v", err)
	}
	if counts != (domain.StatusCounts{Pending: 0, Completed: 3}) {
		t.Errorf("unexpected counts: %+v", counts)
	}
	// Storage keeps the negative value as a lost-event signal.
	if got := store.counter(domain.StatusKey("u1", domain.StatusPending)); got != -2 {
		t.Errorf("stored counter = %d, want -2", got)
	}
}

func TestQuery_GetStatusCountersUnavailable(t *testing.T) {
	store := newMemStore()
	store.down = true
	_, query, _ := newTestEngine(store)

	_, err := query.GetStatusCounters(context.Background(), "u1")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestQuery_GetTopTags(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	_, query, _ := newTestEngine(store)
	set := domain.TagRankingKey("u1")
	store.sets[set] = map[string]int64{"go": 3, "db": 3, "api": 5, "old": 0, "lost": -1, "misc": 1}

	tests := []struct {
		name  string
		limit int
		want  []domain.TagScore
	}{
		{
			name:  "ties broken by name",
			limit: 3,
			want:  []domain.TagScore{{Tag: "api", Score: 5}, {Tag: "db", Score: 3}, {Tag: "go", Score: 3}},
		},
		{
			name:  "non-positive scores excluded",
			limit: 10,
			want:  []domain.TagScore{{Tag: "api", Score: 5}, {Tag: "db", Score: 3}, {Tag: "go", Score: 3}, {Tag: "misc", Score: 1}},
		},
		{
			name:  "default limit",
			limit: 0,
			want:  []domain.TagScore{{Tag: "api", Score: 5}, {Tag: "db", Score: 3}, {Tag: "go", Score: 3}, {Tag: "misc", Score: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := query.GetTopTags(ctx, "u1", tt.limit)
			if err != nil {
				t.Fatalf("GetTopTags failed: %v", err)
			}
			if !equalTags(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuery_GetTopTagsEmpty(t *testing.T) {
	_, query, _ := newTestEngine(newMemStore())

	got, err := query.GetTopTags(context.Background(), "nobody", 5)
	if err != nil {
		t.Fatalf("GetTopTags failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tags, got %v", got)
	}
}

func TestQuery_GetCompletionsInRange(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	_, query, _ := newTestEngine(store)
	store.counters[domain.CompletedOnKey("u1", "2025-06-09")] = 2
	store.counters[domain.CompletedOnKey("u1", "2025-06-11")] = -1

	from := time.Date(2025, 6, 8, 23, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 11, 1, 0, 0, 0, time.UTC)
	got, err := query.GetCompletionsInRange(ctx, "u1", from, to)
	if err != nil {
		t.Fatalf("GetCompletionsInRange failed: %v", err)
	}

	want := map[string]int64{"2025-06-08": 0, "2025-06-09": 2, "2025-06-10": 0, "2025-06-11": 0}
	if len(got) != len(want) {
		t.Fatalf("got %d days, want %d: %v", len(got), len(want), got)
	}
	for day, n := range want {
		if got[day] != n {
			t.Errorf("%s = %d, want %d", day, got[day], n)
		}
	}
}

func TestDaysInRange(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		return d
	}

	tests := []struct {
		name    string
		from    time.Time
		to      time.Time
		wantLen int
		wantErr bool
	}{
		{name: "single day", from: day("2025-06-10"), to: day("2025-06-10"), wantLen: 1},
		{name: "across month", from: day("2025-01-30"), to: day("2025-02-02"), wantLen: 4},
		{name: "leap year", from: day("2024-01-01"), to: day("2024-12-31"), wantLen: 366},
		{name: "reversed", from: day("2025-06-10"), to: day("2025-06-09"), wantErr: true},
		{name: "too long", from: day("2024-01-01"), to: day("2025-01-01"), wantErr: true},
		{name: "other zone", from: time.Date(2025, 6, 10, 23, 30, 0, 0, time.FixedZone("X", -2*3600)), to: day("2025-06-11"), wantLen: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := DaysInRange(tt.from, tt.to)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Fatalf("expected ErrInvalidRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DaysInRange failed: %v", err)
			}
			if len(days) != tt.wantLen {
				t.Errorf("got %d days, want %d", len(days), tt.wantLen)
			}
		})
	}
}

func TestQuery_GetProductivitySummary(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	_, query, _ := newTestEngine(store)
	store.counters[domain.ProductivitySumKey("u1")] = 10
	store.counters[domain.ProductivityCountKey("u1")] = 3
	store.hashes[domain.ProductivityKey("u1")] = map[string]int64{
		domain.CreatedOnField("2025-06-10"): 4,
		domain.CreatedOnField("2025-06-09"): 9,
	}

	got, err := query.GetProductivitySummary(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProductivitySummary failed: %v", err)
	}
	want := domain.ProductivitySummary{AvgCompletionMs: 3, CountCompleted: 3, TasksCreatedToday: 4, Date: "2025-06-10"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestQuery_GetProductivitySummaryNoCompletions(t *testing.T) {
	_, query, _ := newTestEngine(newMemStore())

	got, err := query.GetProductivitySummary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetProductivitySummary failed: %v", err)
	}
	if got.AvgCompletionMs != 0 || got.CountCompleted != 0 {
		t.Errorf("expected zero summary, got %+v", got)
	}
}

func TestQuery_GetDashboard(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine, query, _ := newTestEngine(store)

	engine.ApplyCreate(ctx, domain.Task{
		ID: "t1", Creator: "u1", Status: domain.StatusCompleted, Tags: []string{"go"},
		CreatedAt: testNow.Add(-time.Hour), CompletedAt: timePtr(testNow),
	})

	d, err := query.GetDashboard(ctx, "u1", 5, 3)
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if d.Status.Completed != 1 {
		t.Errorf("unexpected status: %+v", d.Status)
	}
	if len(d.TopTags) != 1 || d.TopTags[0].Tag != "go" {
		t.Errorf("unexpected tags: %v", d.TopTags)
	}
	if len(d.Completions) != 3 || d.Completions["2025-06-10"] != 1 || d.Completions["2025-06-08"] != 0 {
		t.Errorf("unexpected completions: %v", d.Completions)
	}
	if d.Productivity.AvgCompletionMs != 3600000 {
		t.Errorf("unexpected productivity: %+v", d.Productivity)
	}
}

func TestQuery_GetDashboardUnavailable(t *testing.T) {
	store := newMemStore()
	store.down = true
	_, query, _ := newTestEngine(store)

	if _, err := query.GetDashboard(context.Background(), "u1", 0, 0); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
	"github.com/emiliopalmerini/taskpulse/internal/ports"
)

// MaxRangeDays bounds GetCompletionsInRange.
const MaxRangeDays = 366

// DefaultTagLimit is used when a non-positive limit is requested.
const DefaultTagLimit = 10

var ErrInvalidRange = errors.New("invalid date range")

// Query is the read-only view over the derived statistics.
type Query struct {
	store  ports.CounterStore
	logger *log.Logger
	cfg    Config
}

func NewQuery(store ports.CounterStore, logger *log.Logger, cfg Config) *Query {
	return &Query{store: store, logger: logger, cfg: cfg.withDefaults()}
}

// GetStatusCounters returns the user's per-status counts. Negative counters,
// left behind by lost events, are reported as zero.
func (q *Query) GetStatusCounters(ctx context.Context, userID string) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	for _, status := range domain.Statuses {
		key := domain.StatusKey(userID, status)
		n, err := q.get(ctx, key)
		if err != nil {
			return domain.StatusCounts{}, fmt.Errorf("failed to get status counter %s: %w", key, err)
		}
		if n < 0 {
			q.logger.Warn("negative status counter, clamping for display", "key", key, "value", n)
			n = 0
		}
		counts.Set(status, n)
	}
	return counts, nil
}

// GetTopTags returns up to limit tags by descending score, ties by tag name.
// Tags whose score dropped to zero or below are left out.
func (q *Query) GetTopTags(ctx context.Context, userID string, limit int) ([]domain.TagScore, error) {
	if limit <= 0 {
		limit = DefaultTagLimit
	}

	callCtx, cancel := context.WithTimeout(ctx, q.cfg.OpTimeout)
	defer cancel()
	scores, err := q.store.TopN(callCtx, domain.TagRankingKey(userID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top tags: %w", unavailable(err))
	}

	out := make([]domain.TagScore, 0, len(scores))
	for _, s := range scores {
		if s.Score > 0 {
			out = append(out, s)
		}
	}
	return out, nil
}

// GetCompletionsInRange returns the completed-task count of every calendar
// day in [from, to], zero for days without completions.
func (q *Query) GetCompletionsInRange(ctx context.Context, userID string, from, to time.Time) (map[string]int64, error) {
	days, err := DaysInRange(from, to)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(days))
	for _, day := range days {
		n, err := q.get(ctx, domain.CompletedOnKey(userID, day))
		if err != nil {
			return nil, fmt.Errorf("failed to get completions for %s: %w", day, err)
		}
		out[day] = max(n, 0)
	}
	return out, nil
}

func (q *Query) GetProductivitySummary(ctx context.Context, userID string) (domain.ProductivitySummary, error) {
	sum, err := q.get(ctx, domain.ProductivitySumKey(userID))
	if err != nil {
		return domain.ProductivitySummary{}, fmt.Errorf("failed to get completion time sum: %w", err)
	}
	count, err := q.get(ctx, domain.ProductivityCountKey(userID))
	if err != nil {
		return domain.ProductivitySummary{}, fmt.Errorf("failed to get completed count: %w", err)
	}

	today := domain.DateOf(q.cfg.Now())
	callCtx, cancel := context.WithTimeout(ctx, q.cfg.OpTimeout)
	defer cancel()
	created, err := q.store.HGet(callCtx, domain.ProductivityKey(userID), domain.CreatedOnField(today))
	if err != nil {
		return domain.ProductivitySummary{}, fmt.Errorf("failed to get tasks created today: %w", unavailable(err))
	}

	p := domain.ProductivityStats{SumCompletionMs: sum, CountCompleted: count}
	return domain.ProductivitySummary{
		AvgCompletionMs:   p.AvgCompletionMs(),
		CountCompleted:    max(count, 0),
		TasksCreatedToday: created,
		Date:              today,
	}, nil
}

// GetDashboard fetches every report for userID concurrently. The completion
// range covers the last days calendar days, today included.
func (q *Query) GetDashboard(ctx context.Context, userID string, tagLimit, days int) (*domain.Dashboard, error) {
	if days <= 0 {
		days = 7
	}
	to := q.cfg.Now().UTC()
	from := to.AddDate(0, 0, -(days - 1))

	d := &domain.Dashboard{UserID: userID}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := q.GetStatusCounters(gctx, userID)
		mu.Lock()
		d.Status = counts
		mu.Unlock()
		return err
	})
	g.Go(func() error {
		tags, err := q.GetTopTags(gctx, userID, tagLimit)
		mu.Lock()
		d.TopTags = tags
		mu.Unlock()
		return err
	})
	g.Go(func() error {
		completions, err := q.GetCompletionsInRange(gctx, userID, from, to)
		mu.Lock()
		d.Completions = completions
		mu.Unlock()
		return err
	})
	g.Go(func() error {
		summary, err := q.GetProductivitySummary(gctx, userID)
		mu.Lock()
		d.Productivity = summary
		mu.Unlock()
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// Ping reports whether the counter store is reachable.
func (q *Query) Ping(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, q.cfg.OpTimeout)
	defer cancel()
	if err := q.store.Ping(callCtx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (q *Query) get(ctx context.Context, key string) (int64, error) {
	callCtx, cancel := context.WithTimeout(ctx, q.cfg.OpTimeout)
	defer cancel()
	n, err := q.store.Get(callCtx, key)
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

// DaysInRange lists the UTC calendar days from from to to, inclusive.
func DaysInRange(from, to time.Time) ([]string, error) {
	start := truncateDay(from)
	end := truncateDay(to)
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, domain.DateOf(start), domain.DateOf(end))
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if len(days) == MaxRangeDays {
			return nil, fmt.Errorf("%w: more than %d days", ErrInvalidRange, MaxRangeDays)
		}
		days = append(days, domain.DateOf(d))
	}
	return days, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func unavailable(err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

package stats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
	"github.com/emiliopalmerini/taskpulse/internal/ports"
)

// ApplyResult summarizes the execution of one op list.
type ApplyResult struct {
	Applied int
	Retries int
	Failed  []domain.OpError
}

// Applier issues ops against the counter store one at a time, from the
// calling goroutine, without any cross-key transaction.
type Applier struct {
	store   ports.CounterStore
	metrics ports.StatsMetrics
	cfg     Config
}

func NewApplier(store ports.CounterStore, metrics ports.StatsMetrics, cfg Config) *Applier {
	return &Applier{store: store, metrics: metrics, cfg: cfg.withDefaults()}
}

// Apply runs every op even after an earlier one failed, so a single store
// hiccup drifts as few counters as possible. The logger is taken from ctx.
func (a *Applier) Apply(ctx context.Context, ops []domain.Op) ApplyResult {
	logger := log.FromContext(ctx)

	var res ApplyResult
	for _, op := range ops {
		retries, err := a.applyWithRetry(ctx, op)
		res.Retries += retries
		if err != nil {
			logger.Error("counter op failed", "op", op.String(), "manager", op.Manager, "user_id", op.UserID, "retries", retries, "err", err)
			a.metrics.RecordOpFailure(ctx, op)
			res.Failed = append(res.Failed, domain.OpError{Op: op, Err: err})
			continue
		}
		res.Applied++
	}
	return res
}

func (a *Applier) applyWithRetry(ctx context.Context, op domain.Op) (int, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.cfg.RetryInterval
	bo.MaxInterval = 20 * a.cfg.RetryInterval

	attempts := 0
	err := backoff.Retry(func() error {
		if attempts > 0 {
			a.metrics.RecordRetry(ctx, op)
		}
		attempts++

		callCtx, cancel := context.WithTimeout(ctx, a.cfg.OpTimeout)
		defer cancel()

		err := a.exec(callCtx, op)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(a.cfg.MaxRetries)), ctx))

	if err != nil {
		return attempts - 1, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return attempts - 1, nil
}

// retryable reports whether err proves the command never reached the store.
// Counter ops are not idempotent, so timeouts and connections lost mid-call
// are not retried: the write may have landed. Failed dials are retried.
func retryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	var netErr net.Error
	return !errors.As(err, &netErr)
}

func (a *Applier) exec(ctx context.Context, op domain.Op) error {
	switch op.Kind {
	case domain.OpIncr:
		_, err := a.store.IncrBy(ctx, op.Key, op.Delta)
		return err
	case domain.OpZIncr:
		_, err := a.store.IncrScore(ctx, op.Key, op.Member, op.Delta)
		return err
	case domain.OpHIncr:
		_, err := a.store.HIncrBy(ctx, op.Key, op.Member, op.Delta)
		return err
	case domain.OpGuardedDecr:
		return a.guardedDecr(ctx, op)
	case domain.OpRecomputeAvg:
		return a.recomputeAvg(ctx, op.UserID)
	default:
		return backoff.Permanent(fmt.Errorf("%w: unknown op kind %q", domain.ErrInvalidDiffState, op.Kind))
	}
}

// guardedDecr reads before decrementing so the counter never goes below zero.
// The read and the write are separate calls; a concurrent decrement in
// between can still take the counter to -1.
func (a *Applier) guardedDecr(ctx context.Context, op domain.Op) error {
	current, err := a.store.Get(ctx, op.Key)
	if err != nil {
		return err
	}
	if current <= 0 {
		log.FromContext(ctx).Debug("guarded decrement skipped, counter already at zero", "key", op.Key, "value", current)
		return nil
	}
	_, err = a.store.IncrBy(ctx, op.Key, -1)
	return err
}

func (a *Applier) recomputeAvg(ctx context.Context, userID string) error {
	sum, err := a.store.Get(ctx, domain.ProductivitySumKey(userID))
	if err != nil {
		return err
	}
	count, err := a.store.Get(ctx, domain.ProductivityCountKey(userID))
	if err != nil {
		return err
	}

	p := domain.ProductivityStats{SumCompletionMs: sum, CountCompleted: count}
	key := domain.ProductivityKey(userID)
	if err := a.store.HSet(ctx, key, domain.FieldAvgCompletionMs, p.AvgCompletionMs()); err != nil {
		return err
	}
	return a.store.HSet(ctx, key, domain.FieldCountCompleted, max(count, 0))
}

// Config tunes how the engine talks to the counter store.
type Config struct {
	OpTimeout     time.Duration
	MaxRetries    int
	RetryInterval time.Duration
	Now           func() time.Time
}

func (c Config) withDefaults() Config {
	if c.OpTimeout <= 0 {
		c.OpTimeout = 500 * time.Millisecond
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 10 * time.Millisecond
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

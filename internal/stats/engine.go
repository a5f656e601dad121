package stats

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
	"github.com/emiliopalmerini/taskpulse/internal/ports"
)

// Outcomes recorded for every applied event.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// Report describes what happened to one lifecycle event. Err is informational:
// the engine never returns it to the caller as a failure.
type Report struct {
	EventID string           `json:"event_id"`
	Kind    domain.EventKind `json:"kind"`
	TaskID  string           `json:"task_id"`
	Outcome string           `json:"outcome"`
	Planned int              `json:"planned"`
	Applied int              `json:"applied"`
	Failed  int              `json:"failed"`
	Retries int              `json:"retries"`
	Error   string           `json:"error,omitempty"`
	Err     error            `json:"-"`
}

// Engine keeps the derived task statistics in step with the primary store.
// It is called after the primary write has committed and is best-effort.
type Engine struct {
	planner *Planner
	applier *Applier
	metrics ports.StatsMetrics
	logger  *log.Logger
}

func NewEngine(store ports.CounterStore, metrics ports.StatsMetrics, logger *log.Logger, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		planner: NewPlanner(cfg.Now),
		applier: NewApplier(store, metrics, cfg),
		metrics: metrics,
		logger:  logger,
	}
}

func (e *Engine) ApplyCreate(ctx context.Context, task domain.Task) Report {
	return e.Apply(ctx, domain.LifecycleEvent{Kind: domain.EventCreated, After: &task})
}

func (e *Engine) ApplyUpdate(ctx context.Context, before, after domain.Task) Report {
	return e.Apply(ctx, domain.LifecycleEvent{Kind: domain.EventUpdated, Before: &before, After: &after})
}

func (e *Engine) ApplyDelete(ctx context.Context, task domain.Task) Report {
	return e.Apply(ctx, domain.LifecycleEvent{Kind: domain.EventDeleted, Before: &task})
}

// Apply plans and applies ev. Statistics failures are logged, counted and
// reported, never propagated.
func (e *Engine) Apply(ctx context.Context, ev domain.LifecycleEvent) Report {
	start := time.Now()
	// Side effects of a committed write are not cancellable by the request.
	ctx = context.WithoutCancel(ctx)

	report := Report{EventID: uuid.NewString(), Kind: ev.Kind, TaskID: ev.TaskID()}
	logger := e.logger.With("event_id", report.EventID, "kind", ev.Kind, "task_id", report.TaskID)
	ctx = log.WithContext(ctx, logger)

	ops, planErr := e.planner.Plan(ev)
	report.Planned = len(ops)
	if planErr != nil && len(ops) == 0 {
		logger.Error("rejected lifecycle event", "err", planErr)
		return e.finish(ctx, report, OutcomeInvalid, planErr, start)
	}
	if planErr != nil {
		logger.Warn("lifecycle event partly invalid, applying the valid ops", "err", planErr)
	}

	res := e.applier.Apply(ctx, ops)
	report.Applied = res.Applied
	report.Failed = len(res.Failed)
	report.Retries = res.Retries

	outcome := OutcomeOK
	var applyErr error
	switch {
	case len(res.Failed) == 0:
	case res.Applied == 0:
		outcome = OutcomeFailed
		errs := make([]error, len(res.Failed))
		for i, f := range res.Failed {
			errs[i] = f
		}
		applyErr = errors.Join(errs...)
		logger.Error("statistics not updated", "failed", len(res.Failed))
	default:
		outcome = OutcomePartial
		applyErr = &domain.PartialApplyError{
			EventID: report.EventID,
			Kind:    ev.Kind,
			Applied: res.Applied,
			Failed:  res.Failed,
		}
		e.metrics.RecordPartialApply(ctx, ev.Kind)
		logger.Warn("statistics partially updated, counters drifted", "err", applyErr)
	}
	if planErr != nil && outcome == OutcomeOK {
		outcome = OutcomePartial
	}

	return e.finish(ctx, report, outcome, errors.Join(planErr, applyErr), start)
}

func (e *Engine) finish(ctx context.Context, r Report, outcome string, err error, start time.Time) Report {
	took := time.Since(start)
	r.Outcome = outcome
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
	e.metrics.RecordEvent(ctx, r.Kind, r.Planned, outcome, took)
	log.FromContext(ctx).Debug("lifecycle event applied", "outcome", outcome, "ops", r.Planned, "applied", r.Applied, "took", took)
	return r
}

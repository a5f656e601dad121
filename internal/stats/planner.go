package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

// Planner turns a lifecycle event into the counter operations that bring the
// derived statistics in line with it. Plan is pure given the clock.
//
// Every participant (creator and collaborators) tracks a task independently
// for status, tags, completions and completion latency. Creations are counted
// for the creator only.
type Planner struct {
	Status       StatusCounters
	Tags         TagRanking
	Timeline     CompletionTimeline
	Productivity ProductivityAggregator

	now func() time.Time
}

func NewPlanner(now func() time.Time) *Planner {
	if now == nil {
		now = time.Now
	}
	return &Planner{now: now}
}

// Plan returns the ops for ev. A non-nil error together with ops means some
// per-user parts were skipped as invalid and the rest can still be applied.
func (p *Planner) Plan(ev domain.LifecycleEvent) ([]domain.Op, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	switch ev.Kind {
	case domain.EventCreated:
		return p.planCreate(ev.After)
	case domain.EventUpdated:
		return p.planUpdate(ev.Before, ev.After)
	default:
		return p.planDelete(ev.Before)
	}
}

func (p *Planner) planCreate(t *domain.Task) ([]domain.Op, error) {
	ops := p.Status.OnTaskCreated(t)
	for _, userID := range t.Participants() {
		ops = append(ops, p.enterDetails(userID, t)...)
	}
	ops = append(ops, p.Productivity.RecordCreation(t.Creator, domain.DateOf(p.now()))...)
	return ops, nil
}

func (p *Planner) planDelete(t *domain.Task) ([]domain.Op, error) {
	ops := p.Status.OnTaskDeleted(t)
	var errs []error
	for _, userID := range t.Participants() {
		userOps, err := p.leaveDetails(userID, t)
		ops = append(ops, userOps...)
		errs = append(errs, err)
	}
	return ops, errors.Join(errs...)
}

func (p *Planner) planUpdate(before, after *domain.Task) ([]domain.Op, error) {
	var ops []domain.Op
	var errs []error

	// Participants removed by the update drop the task entirely.
	for _, userID := range before.Participants() {
		if !after.HasParticipant(userID) {
			userOps, err := p.leave(userID, before)
			ops = append(ops, userOps...)
			errs = append(errs, err)
		}
	}

	for _, userID := range after.Participants() {
		if !before.HasParticipant(userID) {
			ops = append(ops, p.enter(userID, after)...)
			continue
		}

		ops = append(ops, p.Status.OnStatusChanged(userID, before.Status, after.Status)...)
		ops = append(ops, p.Tags.ApplyTagDiff(userID, before.Tags, after.Tags)...)

		userOps, err := p.completionTransition(userID, before, after)
		ops = append(ops, userOps...)
		errs = append(errs, err)
	}

	return ops, errors.Join(errs...)
}

// enter counts t for userID as if the task had just been created.
func (p *Planner) enter(userID string, t *domain.Task) []domain.Op {
	return append([]domain.Op{p.Status.Track(userID, t.Status)}, p.enterDetails(userID, t)...)
}

// enterDetails covers everything enter does except the status counter.
func (p *Planner) enterDetails(userID string, t *domain.Task) []domain.Op {
	ops := p.Tags.ApplyTagDiff(userID, nil, t.Tags)
	if t.Status == domain.StatusCompleted {
		ops = append(ops, p.markCompleted(userID, t)...)
	}
	return ops
}

// leave removes t from userID's statistics as if the task had been deleted.
func (p *Planner) leave(userID string, t *domain.Task) ([]domain.Op, error) {
	ops, err := p.leaveDetails(userID, t)
	return append([]domain.Op{p.Status.Untrack(userID, t.Status)}, ops...), err
}

func (p *Planner) leaveDetails(userID string, t *domain.Task) ([]domain.Op, error) {
	ops := p.Tags.ApplyTagDiff(userID, t.Tags, nil)
	if t.Status != domain.StatusCompleted {
		return ops, nil
	}
	completedOps, err := p.unmarkCompleted(userID, t)
	return append(ops, completedOps...), err
}

func (p *Planner) completionTransition(userID string, before, after *domain.Task) ([]domain.Op, error) {
	wasDone := before.Status == domain.StatusCompleted
	isDone := after.Status == domain.StatusCompleted

	switch {
	case !wasDone && isDone:
		return p.markCompleted(userID, after), nil
	case wasDone && !isDone:
		return p.unmarkCompleted(userID, before)
	case wasDone && isDone && completionChanged(before, after):
		ops, err := p.unmarkCompleted(userID, before)
		return append(ops, p.markCompleted(userID, after)...), err
	}
	return nil, nil
}

func (p *Planner) markCompleted(userID string, t *domain.Task) []domain.Op {
	completedAt := p.now()
	if t.CompletedAt != nil {
		completedAt = *t.CompletedAt
	}
	duration := completedAt.Sub(t.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	ops := []domain.Op{p.Timeline.MarkCompleted(userID, domain.DateOf(completedAt))}
	return append(ops, p.Productivity.RecordCompletion(userID, duration)...)
}

// unmarkCompleted reverses markCompleted using the completion timestamp stored
// on the previous snapshot.
func (p *Planner) unmarkCompleted(userID string, t *domain.Task) ([]domain.Op, error) {
	duration, ok := t.CompletionDuration()
	if !ok {
		return nil, fmt.Errorf("%w: task %s is completed without completed_at, skipping completion reversal for %s",
			domain.ErrInvalidDiffState, t.ID, userID)
	}
	ops := []domain.Op{p.Timeline.UnmarkCompleted(userID, domain.DateOf(*t.CompletedAt))}
	return append(ops, p.Productivity.ReverseCompletion(userID, duration)...), nil
}

// completionChanged reports whether a task that stayed completed had its
// completion re-stamped. A missing timestamp on either side is not a change.
func completionChanged(before, after *domain.Task) bool {
	if before.CompletedAt == nil || after.CompletedAt == nil {
		return false
	}
	return !before.CompletedAt.Equal(*after.CompletedAt) || !before.CreatedAt.Equal(after.CreatedAt)
}

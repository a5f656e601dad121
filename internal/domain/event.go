package domain

import (
	"encoding/json"
	"fmt"
)

// EventKind is the type of mutation committed to the primary task store.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// LifecycleEvent carries the before and after snapshots of one task mutation.
// Before is nil for creations, After is nil for deletions.
type LifecycleEvent struct {
	Kind   EventKind
	Before *Task
	After  *Task
}

// TaskID returns the ID of whichever snapshot is present.
func (e LifecycleEvent) TaskID() string {
	if e.After != nil {
		return e.After.ID
	}
	if e.Before != nil {
		return e.Before.ID
	}
	return ""
}

// Validate checks that the snapshots required by Kind are present and well formed.
func (e LifecycleEvent) Validate() error {
	switch e.Kind {
	case EventCreated:
		if e.After == nil {
			return fmt.Errorf("%w: created event without task", ErrInvalidDiffState)
		}
	case EventUpdated:
		if e.Before == nil || e.After == nil {
			return fmt.Errorf("%w: updated event needs before and after", ErrInvalidDiffState)
		}
	case EventDeleted:
		if e.Before == nil {
			return fmt.Errorf("%w: deleted event without task", ErrInvalidDiffState)
		}
	default:
		return fmt.Errorf("%w: unknown event kind %q", ErrInvalidDiffState, e.Kind)
	}
	for _, t := range []*Task{e.Before, e.After} {
		if t == nil {
			continue
		}
		if t.Creator == "" {
			return fmt.Errorf("%w: task %s has no creator", ErrInvalidDiffState, t.ID)
		}
		if !t.Status.Valid() {
			return fmt.Errorf("%w: task %s has unknown status %q", ErrInvalidDiffState, t.ID, t.Status)
		}
	}
	return nil
}

// eventEnvelope is the wire form read by the apply command.
type eventEnvelope struct {
	Kind   EventKind `json:"kind"`
	Task   *Task     `json:"task,omitempty"`
	Before *Task     `json:"before,omitempty"`
	After  *Task     `json:"after,omitempty"`
}

// ParseLifecycleEvent decodes {"kind": ..., "task"|"before"/"after": ...}.
func ParseLifecycleEvent(data []byte) (LifecycleEvent, error) {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return LifecycleEvent{}, fmt.Errorf("failed to decode lifecycle event: %w", err)
	}

	ev := LifecycleEvent{Kind: env.Kind, Before: env.Before, After: env.After}
	switch env.Kind {
	case EventCreated:
		if ev.After == nil {
			ev.After = env.Task
		}
	case EventDeleted:
		if ev.Before == nil {
			ev.Before = env.Task
		}
	}
	return ev, ev.Validate()
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreUnavailable wraps counter store connection and timeout failures.
	ErrStoreUnavailable = errors.New("counter store unavailable")

	// ErrInvalidDiffState marks malformed status or tag transition input.
	ErrInvalidDiffState = errors.New("invalid diff state")
)

// OpError is a single counter operation that failed after retries.
type OpError struct {
	Op  Op
	Err error
}

func (e OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e OpError) Unwrap() error {
	return e.Err
}

// PartialApplyError reports that some operations of one logical event were
// applied and others were not, leaving the derived counters inconsistent.
type PartialApplyError struct {
	EventID string
	Kind    EventKind
	Applied int
	Failed  []OpError
}

func (e *PartialApplyError) Error() string {
	keys := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		keys[i] = f.Op.Key
	}
	return fmt.Sprintf("partial apply of %s event %s: %d applied, %d failed [%s]",
		e.Kind, e.EventID, e.Applied, len(e.Failed), strings.Join(keys, ", "))
}

func (e *PartialApplyError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}

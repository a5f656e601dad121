package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the lifecycle state of a task. Transitions between any pair are allowed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// statusAliases maps the product vocabulary onto canonical statuses.
var statusAliases = map[string]Status{
	"pending":      StatusPending,
	"pendente":     StatusPending,
	"in_progress":  StatusInProgress,
	"em andamento": StatusInProgress,
	"em_andamento": StatusInProgress,
	"completed":    StatusCompleted,
	"concluida":    StatusCompleted,
	"concluída":    StatusCompleted,
}

// ParseStatus accepts canonical names and the Portuguese labels used by the product.
func ParseStatus(s string) (Status, error) {
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidDiffState, s)
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label returns the product-facing name of the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "pendente"
	case StatusInProgress:
		return "em andamento"
	case StatusCompleted:
		return "concluida"
	default:
		return string(s)
	}
}

func (s Status) String() string {
	return string(s)
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

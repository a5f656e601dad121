package domain

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used in counter keys and reports.
const DateLayout = "2006-01-02"

// Task is a snapshot of a task record as committed to the primary store.
type Task struct {
	ID            string     `json:"id"`
	Creator       string     `json:"creator"`
	Collaborators []string   `json:"collaborators,omitempty"`
	Status        Status     `json:"status"`
	Tags          []string   `json:"tags,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// Participants returns the creator followed by every distinct collaborator
// other than the creator. Blank IDs are skipped.
func (t *Task) Participants() []string {
	seen := make(map[string]struct{}, len(t.Collaborators)+1)
	out := make([]string, 0, len(t.Collaborators)+1)
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	add(t.Creator)
	for _, c := range t.Collaborators {
		add(c)
	}
	return out
}

// HasParticipant reports whether userID is the creator or a collaborator.
func (t *Task) HasParticipant(userID string) bool {
	for _, p := range t.Participants() {
		if p == userID {
			return true
		}
	}
	return false
}

// CompletionDuration returns CompletedAt - CreatedAt in milliseconds, clamped at zero.
// ok is false when the task has no completion timestamp.
func (t *Task) CompletionDuration() (ms int64, ok bool) {
	if t.CompletedAt == nil {
		return 0, false
	}
	d := t.CompletedAt.Sub(t.CreatedAt).Milliseconds()
	if d < 0 {
		d = 0
	}
	return d, true
}

// NormalizeTags trims every tag, drops empties and duplicates, and returns the
// result sorted. Comparison is case-sensitive.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// DateOf returns the UTC calendar day of t.
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

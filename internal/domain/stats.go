package domain

import "math"

// StatusCounts holds a user's task counts per status.
type StatusCounts struct {
	Pending    int64
	InProgress int64
	Completed  int64
}

// Total returns the number of tasks across all statuses.
func (s StatusCounts) Total() int64 {
	return s.Pending + s.InProgress + s.Completed
}

// Get returns the count for status, or 0 for an unknown status.
func (s StatusCounts) Get(status Status) int64 {
	switch status {
	case StatusPending:
		return s.Pending
	case StatusInProgress:
		return s.InProgress
	case StatusCompleted:
		return s.Completed
	}
	return 0
}

// Set stores n as the count for status.
func (s *StatusCounts) Set(status Status, n int64) {
	switch status {
	case StatusPending:
		s.Pending = n
	case StatusInProgress:
		s.InProgress = n
	case StatusCompleted:
		s.Completed = n
	}
}

// TagScore is one entry of a user's tag ranking.
type TagScore struct {
	Tag   string
	Score int64
}

// ProductivityStats holds the running completion-latency aggregate of one user.
type ProductivityStats struct {
	SumCompletionMs int64
	CountCompleted  int64
}

// AvgCompletionMs returns round(sum / count), or 0 when count is not positive.
func (p ProductivityStats) AvgCompletionMs() int64 {
	if p.CountCompleted <= 0 {
		return 0
	}
	return int64(math.Round(float64(p.SumCompletionMs) / float64(p.CountCompleted)))
}

// ProductivitySummary is the reporting view of a user's productivity.
type ProductivitySummary struct {
	AvgCompletionMs   int64
	CountCompleted    int64
	TasksCreatedToday int64
	Date              string
}

// Dashboard aggregates every report for one user.
type Dashboard struct {
	UserID       string
	Status       StatusCounts
	TopTags      []TagScore
	Completions  map[string]int64
	Productivity ProductivitySummary
}

package stats

import "github.com/emiliopalmerini/taskpulse/internal/domain"

// CompletionTimeline owns the user:{id}:tasks:completed:{date} counters.
type CompletionTimeline struct{}

func (CompletionTimeline) MarkCompleted(userID, date string) domain.Op {
	return domain.Op{
		Kind:    domain.OpIncr,
		Manager: domain.ManagerTimeline,
		UserID:  userID,
		Key:     domain.CompletedOnKey(userID, date),
		Delta:   1,
	}
}

// UnmarkCompleted decrements the day's count unless it is already zero.
func (CompletionTimeline) UnmarkCompleted(userID, date string) domain.Op {
	return domain.Op{
		Kind:    domain.OpGuardedDecr,
		Manager: domain.ManagerTimeline,
		UserID:  userID,
		Key:     domain.CompletedOnKey(userID, date),
		Delta:   -1,
	}
}

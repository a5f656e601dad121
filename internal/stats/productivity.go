package stats

import "github.com/emiliopalmerini/taskpulse/internal/domain"

// ProductivityAggregator owns user:{id}:stats:productivity and its sum/count
// companion counters.
type ProductivityAggregator struct{}

// RecordCreation counts one task created by userID on date.
func (ProductivityAggregator) RecordCreation(userID, date string) []domain.Op {
	return []domain.Op{{
		Kind:    domain.OpHIncr,
		Manager: domain.ManagerProductivity,
		UserID:  userID,
		Key:     domain.ProductivityKey(userID),
		Member:  domain.CreatedOnField(date),
		Delta:   1,
	}}
}

func (m ProductivityAggregator) RecordCompletion(userID string, durationMs int64) []domain.Op {
	return []domain.Op{
		m.incr(domain.ProductivitySumKey(userID), userID, durationMs),
		m.incr(domain.ProductivityCountKey(userID), userID, 1),
		m.recompute(userID),
	}
}

// ReverseCompletion is the exact inverse of RecordCompletion, except that the
// completed count never drops below zero.
func (m ProductivityAggregator) ReverseCompletion(userID string, durationMs int64) []domain.Op {
	return []domain.Op{
		m.incr(domain.ProductivitySumKey(userID), userID, -durationMs),
		{
			Kind:    domain.OpGuardedDecr,
			Manager: domain.ManagerProductivity,
			UserID:  userID,
			Key:     domain.ProductivityCountKey(userID),
			Delta:   -1,
		},
		m.recompute(userID),
	}
}

func (ProductivityAggregator) incr(key, userID string, delta int64) domain.Op {
	return domain.Op{
		Kind:    domain.OpIncr,
		Manager: domain.ManagerProductivity,
		UserID:  userID,
		Key:     key,
		Delta:   delta,
	}
}

func (ProductivityAggregator) recompute(userID string) domain.Op {
	return domain.Op{
		Kind:    domain.OpRecomputeAvg,
		Manager: domain.ManagerProductivity,
		UserID:  userID,
		Key:     domain.ProductivityKey(userID),
		Member:  domain.FieldAvgCompletionMs,
	}
}

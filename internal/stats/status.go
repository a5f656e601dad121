package stats

import "github.com/emiliopalmerini/taskpulse/internal/domain"

// StatusCounters owns the user:{id}:tasks:status:{status} namespace.
type StatusCounters struct{}

// OnTaskCreated counts the task once for its creator and once for every
// distinct collaborator.
func (m StatusCounters) OnTaskCreated(task *domain.Task) []domain.Op {
	var ops []domain.Op
	for _, userID := range task.Participants() {
		ops = append(ops, m.Track(userID, task.Status))
	}
	return ops
}

// OnStatusChanged moves one task of userID from one status to another. The
// two ops are applied independently.
func (m StatusCounters) OnStatusChanged(userID string, from, to domain.Status) []domain.Op {
	if from == to {
		return nil
	}
	return []domain.Op{m.Untrack(userID, from), m.Track(userID, to)}
}

// OnTaskDeleted removes the task from every participant's counter.
func (m StatusCounters) OnTaskDeleted(task *domain.Task) []domain.Op {
	var ops []domain.Op
	for _, userID := range task.Participants() {
		ops = append(ops, m.Untrack(userID, task.Status))
	}
	return ops
}

// Track and Untrack are the per-user halves of the task-level methods above.
func (m StatusCounters) Track(userID string, status domain.Status) domain.Op {
	return m.op(userID, status, 1)
}

func (m StatusCounters) Untrack(userID string, status domain.Status) domain.Op {
	return m.op(userID, status, -1)
}

func (StatusCounters) op(userID string, status domain.Status, delta int64) domain.Op {
	return domain.Op{
		Kind:    domain.OpIncr,
		Manager: domain.ManagerStatus,
		UserID:  userID,
		Key:     domain.StatusKey(userID, status),
		Delta:   delta,
	}
}

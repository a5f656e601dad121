package events

import "github.com/emiliopalmerini/taskpulse/internal/domain"

// TaskRequest is the body of created and deleted events.
type TaskRequest struct {
	Task domain.Task `json:"task"`
}

// UpdateRequest is the body of updated events.
type UpdateRequest struct {
	Before domain.Task `json:"before"`
	After  domain.Task `json:"after"`
}

package reports

import (
	"encoding/json"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

// StatusResponse renders status counts under their product labels.
type StatusResponse map[string]int64

func NewStatusResponse(c domain.StatusCounts) StatusResponse {
	out := make(StatusResponse, len(domain.Statuses))
	for _, s := range domain.Statuses {
		out[s.Label()] = c.Get(s)
	}
	return out
}

type TagResponse struct {
	Value string `json:"value"`
	Score int64  `json:"score"`
}

func NewTagsResponse(tags []domain.TagScore) []TagResponse {
	out := make([]TagResponse, len(tags))
	for i, t := range tags {
		out[i] = TagResponse{Value: t.Tag, Score: t.Score}
	}
	return out
}

// ProductivityResponse is keyed by the day it describes:
// {"tempo_medio_conclusao_ms": n, "total_concluidas": n, "tarefas_criadas_<date>": n}.
type ProductivityResponse domain.ProductivitySummary

func (p ProductivityResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int64{
		domain.FieldAvgCompletionMs:   p.AvgCompletionMs,
		domain.FieldCountCompleted:    p.CountCompleted,
		domain.CreatedOnField(p.Date): p.TasksCreatedToday,
	})
}

type DashboardResponse struct {
	UserID       string               `json:"user_id"`
	Status       StatusResponse       `json:"status"`
	TopTags      []TagResponse        `json:"top_tags"`
	Completions  map[string]int64     `json:"completions"`
	Productivity ProductivityResponse `json:"productivity"`
}

func NewDashboardResponse(d *domain.Dashboard) DashboardResponse {
	return DashboardResponse{
		UserID:       d.UserID,
		Status:       NewStatusResponse(d.Status),
		TopTags:      NewTagsResponse(d.TopTags),
		Completions:  d.Completions,
		Productivity: ProductivityResponse(d.Productivity),
	}
}

package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
	"github.com/emiliopalmerini/taskpulse/internal/stats"
)

// DefaultRangeDays is the completion window used when from/to are omitted.
const DefaultRangeDays = 7

// Query is the read side of the statistics engine.
type Query interface {
	GetStatusCounters(ctx context.Context, userID string) (domain.StatusCounts, error)
	GetTopTags(ctx context.Context, userID string, limit int) ([]domain.TagScore, error)
	GetCompletionsInRange(ctx context.Context, userID string, from, to time.Time) (map[string]int64, error)
	GetProductivitySummary(ctx context.Context, userID string) (domain.ProductivitySummary, error)
	GetDashboard(ctx context.Context, userID string, tagLimit, days int) (*domain.Dashboard, error)
}

type Handler struct {
	query  Query
	logger *log.Logger
	now    func() time.Time
}

func NewHandler(query Query, logger *log.Logger, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{query: query, logger: logger, now: now}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "tags", stats.DefaultTagLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	days, err := intParam(r, "days", DefaultRangeDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if days > stats.MaxRangeDays {
		http.Error(w, fmt.Sprintf("days must be at most %d", stats.MaxRangeDays), http.StatusBadRequest)
		return
	}

	d, err := h.query.GetDashboard(r.Context(), chi.URLParam(r, "userID"), limit, days)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, NewDashboardResponse(d))
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	counts, err := h.query.GetStatusCounters(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, NewStatusResponse(counts))
}

func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", stats.DefaultTagLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tags, err := h.query.GetTopTags(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, NewTagsResponse(tags))
}

func (h *Handler) Completions(w http.ResponseWriter, r *http.Request) {
	to := h.now().UTC()
	from := to.AddDate(0, 0, -(DefaultRangeDays - 1))

	var err error
	if from, err = dateParam(r, "from", from); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if to, err = dateParam(r, "to", to); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	completions, err := h.query.GetCompletionsInRange(r.Context(), chi.URLParam(r, "userID"), from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, completions)
}

func (h *Handler) Productivity(w http.ResponseWriter, r *http.Request) {
	summary, err := h.query.GetProductivitySummary(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, ProductivityResponse(summary))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, stats.ErrInvalidRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.Error("statistics read failed", "path", r.URL.Path, "err", err)
		http.Error(w, "statistics temporarily unavailable", http.StatusServiceUnavailable)
	default:
		h.logger.Error("statistics read failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "err", err)
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return n, nil
}

func dateParam(r *http.Request, name string, def time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q, expected YYYY-MM-DD", name, raw)
	}
	return t, nil
}

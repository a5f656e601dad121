package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
	"github.com/emiliopalmerini/taskpulse/internal/stats"
)

const maxBodyBytes = 1 << 20

// Engine applies lifecycle events to the derived statistics.
type Engine interface {
	ApplyCreate(ctx context.Context, task domain.Task) stats.Report
	ApplyUpdate(ctx context.Context, before, after domain.Task) stats.Report
	ApplyDelete(ctx context.Context, task domain.Task) stats.Report
}

// Handler receives lifecycle events from the task CRUD layer after the
// primary write has committed.
type Handler struct {
	engine    Engine
	validator *Validator
	logger    *log.Logger
}

func NewHandler(engine Engine, validator *Validator, logger *log.Logger) *Handler {
	return &Handler{engine: engine, validator: validator, logger: logger}
}

func (h *Handler) Created(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !h.decode(w, r, domain.EventCreated, &req) {
		return
	}
	h.respond(w, h.engine.ApplyCreate(r.Context(), req.Task))
}

func (h *Handler) Updated(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !h.decode(w, r, domain.EventUpdated, &req) {
		return
	}
	h.respond(w, h.engine.ApplyUpdate(r.Context(), req.Before, req.After))
}

func (h *Handler) Deleted(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !h.decode(w, r, domain.EventDeleted, &req) {
		return
	}
	h.respond(w, h.engine.ApplyDelete(r.Context(), req.Task))
}

// decode validates the body against the kind's schema and unmarshals it into
// dst. It writes the error response itself and reports whether to continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, kind domain.EventKind, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return false
	}

	if err := h.validator.Validate(kind, body); err != nil {
		h.logger.Warn("rejected event payload", "kind", kind, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// respond always answers 202: the primary write already succeeded and the
// statistics update is best-effort.
func (h *Handler) respond(w http.ResponseWriter, report stats.Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error("failed to write report", "event_id", report.EventID, "err", err)
	}
}

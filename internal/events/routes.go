package events

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/events", func(r chi.Router) {
		r.Post("/created", h.Created)
		r.Post("/updated", h.Updated)
		r.Post("/deleted", h.Deleted)
	})
}

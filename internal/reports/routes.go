package reports

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/users/{userID}/stats", func(r chi.Router) {
		r.Get("/", h.Dashboard)
		r.Get("/status", h.Status)
		r.Get("/tags", h.Tags)
		r.Get("/completions", h.Completions)
		r.Get("/productivity", h.Productivity)
	})
}

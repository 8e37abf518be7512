package assistant

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Health)
	r.Post("/ask", h.Ask)
	r.Post("/nlu/parse", h.ParseNLU)
	r.Post("/style/reply", h.StyleReply)
}

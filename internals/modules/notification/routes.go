package notification

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{notificationID}", h.Delete)
	r.Post("/{notificationID}/test", h.Test)

	return r
}

package app

import (
	middle "kuma-gateway/internals/middleware"
	"kuma-gateway/internals/modules/monitor"
	"kuma-gateway/internals/modules/notification"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(c *Container) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middle.RequestID)
	r.Use(middle.Logger(c.Logger))
	// bulk loops pace their upstream writes, so the budget is generous
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", c.systemHandler.Health)
	r.Post("/connect", c.systemHandler.Connect)

	// everything below relays over the upstream session
	r.With(c.sessionMW.Handle).Get("/settings", c.systemHandler.Settings)
	r.With(c.sessionMW.Handle).Mount("/monitors", monitor.Routes(c.monitorHandler))
	r.With(c.sessionMW.Handle).Mount("/notifications", notification.Routes(c.notificationHandler))

	return r
}

package app

import (
	"kuma-gateway/config"
	"kuma-gateway/internals/kuma"
	middle "kuma-gateway/internals/middleware"
	"kuma-gateway/internals/modules/monitor"
	"kuma-gateway/internals/modules/notification"
	"kuma-gateway/internals/modules/system"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Container struct {
	Logger *zerolog.Logger
	Kuma   *kuma.Client

	monitorHandler      *monitor.Handler
	notificationHandler *notification.Handler
	systemHandler       *system.Handler
	sessionMW           *middle.SessionMiddleware
}

func NewContainer(cfg *config.Config, logger *zerolog.Logger) *Container {

	kumaClient := kuma.NewClient(cfg.Kuma, logger)

	validate := validator.New()

	monitorSvc := monitor.NewService(kumaClient, cfg.Bulk.Delay, logger)
	notificationSvc := notification.NewService(kumaClient)

	return &Container{
		Logger:              logger,
		Kuma:                kumaClient,
		monitorHandler:      monitor.NewHandler(monitorSvc, validate),
		notificationHandler: notification.NewHandler(notificationSvc),
		systemHandler:       system.NewHandler(kumaClient, logger),
		sessionMW:           middle.NewSessionMiddleware(kumaClient),
	}
}

func (c *Container) Shutdown() error {
	if c.Kuma != nil {
		c.Kuma.Close()
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"kuma-gateway/config"
	"kuma-gateway/internals/app"
	"kuma-gateway/internals/server"
	"kuma-gateway/pkg/logger"
	"log"
	"os/signal"
	"syscall"
)

func main() {
	// Load envs
	cfg, err := config.LoadConfig("env.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Get Context with signals attached -> when ever a signal occurs , then `Done` channel of ctx will get closed
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Base/global logger
	log := logger.Init(cfg)
	log.Info().Msg("logger initialized")

	// Inject Dependencies
	container := app.NewContainer(cfg, log)
	log.Info().Msg("dependencies initialized")

	// Bring up the upstream session. A failure here is not fatal, the
	// relay endpoints answer 401 until POST /connect brings it up.
	if err := container.Kuma.Connect(ctx); err != nil {
		log.Error().Err(err).Msg("initial upstream connect failed")
	}

	// Register Routes
	router := app.RegisterRoutes(container)
	log.Info().Msg("routes registered")

	// Start HTTP Server -> Runs in a seperate goroutine in background and receive requests
	srv := server.New(fmt.Sprintf(":%d", cfg.Port), router, log)
	srv.Start()

	// main goroutine is for gracefull shutdown

	<-ctx.Done() // WAIT FOR SIGNAL (waiting for closure of Done channel, when it closes, it run forward from here)
	log.Info().Msg("shutdown signal received")

	// 1. Stop HTTP server (stop accepting requests)
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// 2. Close the upstream session
	if err := container.Shutdown(); err != nil {
		log.Error().Err(err).Msg("dependecies shutdown failed")
	}

	// Shutdown done
	log.Info().Msg("graceful shutdown complete")
}

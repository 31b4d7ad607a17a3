package main

import (
	"context"

	"commerce-server/internal/bootstrap"
	"commerce-server/internal/config"
	"commerce-server/internal/observability"
	"commerce-server/internal/server"
)

func main() {
	ctx := context.Background()
	logger := observability.NewLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(ctx, "failed to load configuration", err)
	}

	// Initialize dependencies
	deps, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize dependencies", err)
	}

	// Create and set up the server
	srv := server.New(cfg, deps, logger)
	srv.Setup()

	// Start the server
	if err := srv.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start server", err)
	}

	// Wait for shutdown signal and gracefully stop
	if err := srv.WaitForShutdown(ctx); err != nil {
		logger.Fatal(ctx, "server shutdown failed", err)
	}
}

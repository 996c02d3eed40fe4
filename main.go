package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bloom-monitor/app"
	"bloom-monitor/config"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := container.Run(ctx); err != nil {
		container.Logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	container.Logger.Info("Server stopped")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storefront/browser/internal/config"
	"storefront/browser/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting storefront browser...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Info("Configuration loaded successfully")

	// Initialize container with all dependencies
	app, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run the application
	runErr := app.Run(ctx)
	app.Close()
	if runErr != nil {
		log.Fatalf("Application exited with error: %v", runErr)
	}

	log.Info("Application finished successfully")
}

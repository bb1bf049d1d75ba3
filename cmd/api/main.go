// Package main runs the nutrition plan API server
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nutriplan/core/internal/infrastructure/container"
	"go.uber.org/fx"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	app := fx.New(
		fx.NopLogger,
		container.Module(*configPath),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}
}

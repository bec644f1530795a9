package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/speibank/infra"
	"github.com/amirasaad/speibank/infra/initializer"
	"github.com/amirasaad/speibank/pkg/app"
	"github.com/amirasaad/speibank/pkg/config"
	"github.com/amirasaad/speibank/webapi"
	log "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	fiberApp, services, err := build(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	services.Deps.Logger.Info("Starting server", "env", cfg.Env, "address", addr)

	errCh := make(chan error, 1)
	go func() { errCh <- fiberApp.Listen(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		services.Deps.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return fiberApp.ShutdownWithContext(shutdownCtx)
	}
}

// build wires the dependencies, applies migrations when a database is
// configured and returns the HTTP application.
func build(cfg *config.App) (*fiber.App, *app.App, error) {
	if cfg.Server == nil {
		cfg.Server = &config.Server{Host: "0.0.0.0", Port: 3000}
	}
	deps, db, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	if db != nil {
		if err := infra.RunMigrations(db, deps.Logger); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	services := app.New(deps, cfg)
	return webapi.SetupApp(services), services, nil
}

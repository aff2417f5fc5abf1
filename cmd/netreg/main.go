// Netreg - multi-tenant device registry
//
// This is the main entry point for the Netreg API server. Tenants own
// user groups, groups own devices, and every request is resolved to a
// principal whose memberships and capabilities drive the policy checks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/netreg/netreg-core/migrations"

	"github.com/netreg/netreg-core/internal/api"
	"github.com/netreg/netreg-core/internal/auth"
	"github.com/netreg/netreg-core/internal/authz"
	"github.com/netreg/netreg-core/internal/device"
	"github.com/netreg/netreg-core/internal/group"
	"github.com/netreg/netreg-core/internal/infrastructure/config"
	"github.com/netreg/netreg-core/internal/infrastructure/database"
	"github.com/netreg/netreg-core/internal/infrastructure/logging"
	"github.com/netreg/netreg-core/internal/tenant"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Netreg",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	userRepo := auth.NewUserRepository(db.DB)
	tenantRepo := tenant.NewRepository(db.DB)
	groupRepo := group.NewRepository(db.DB)
	deviceRepo := device.NewRepository(db.DB)

	// Seed the initial administrator on an empty user table. The
	// generated password is logged once and never stored in plaintext.
	if password, seedErr := auth.SeedAdmin(ctx, userRepo, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin user: %w", seedErr)
	} else if password != "" {
		log.Warn("initial admin account created; change this password",
			"username", "admin",
			"password", password,
		)
	}

	// Authorization engine and lifecycle services
	engine := authz.NewEngine(groupRepo)
	tenantSvc := tenant.NewService(tenantRepo, engine, log.Logger)
	groupSvc := group.NewService(groupRepo, engine, log.Logger)
	deviceSvc := device.NewService(deviceRepo, tenantRepo, groupRepo, engine, log.Logger)

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Security: cfg.Security,
		Logger:   log,
		Identity: auth.NewIdentity(userRepo, groupRepo),
		Users:    userRepo,
		Tenants:  tenantSvc,
		Groups:   groupSvc,
		Devices:  deviceSvc,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Netreg stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses NETREG_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("NETREG_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/shared"
)

// loadOrCreateConfig reads the config at path, writing the example file first when it is missing.
func (r *Runner) loadOrCreateConfig(path string) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			return shared.DefaultConfig()
		}
		r.logger.Info("config file created", "path", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	return config
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadOrCreateConfig(cmd.String("config"))

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	} else {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	version, ok, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if !ok {
		return r.writePlain("✓ Database %s has no migrations applied\n", config.Database.Path)
	}
	return r.writePlain("✓ Database %s at schema version %d\n", config.Database.Path, version)
}

// SetupConfig writes a configuration file, optionally pointing it at another backend.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	config := r.loadOrCreateConfig(path)

	if apiURL := strings.TrimRight(strings.TrimSpace(cmd.String("api-url")), "/"); apiURL != "" {
		if !strings.HasPrefix(apiURL, "http://") && !strings.HasPrefix(apiURL, "https://") {
			return fmt.Errorf("%w: --api-url must start with http:// or https://", shared.ErrInvalidFlag)
		}
		config.API.BaseURL = apiURL
		if err := shared.SaveConfig(path, config); err != nil {
			return err
		}
	}

	r.writePlain("✓ Configuration at %s\n", path)
	r.writePlain("API:      %s\n", config.API.BaseURL)
	r.writePlain("Database: %s\n", config.Database.Path)
	r.writePlain("Callback: http://%s/auth/callback/<platform>\n", config.Server.Addr())
	return nil
}

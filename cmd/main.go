package main

import (
	"context"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/repositories"
	"github.com/ufukcicekdev/syncx/internal/services"
	"github.com/ufukcicekdev/syncx/internal/session"
	"github.com/ufukcicekdev/syncx/internal/shared"
)

func main() {
	ctx := context.Background()
	logger := shared.NewLogger(nil)
	if os.Getenv("SYNCX_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	shared.LoadEnv(config, ".env")

	runnerOpts := RunnerOpts{Config: config, ConfigPath: configPath, Logger: logger}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		logger.Warn("session database unavailable, run `syncx setup database`", "error", err)
	} else {
		defer db.Close()

		client := services.NewClient(services.ClientOpts{
			BaseURL:    config.API.BaseURL,
			HTTPClient: &http.Client{Timeout: config.API.Timeout()},
			Store:      repositories.NewCredentialRepository(db),
			Navigator:  expiryNotice(os.Stderr),
			Logger:     shared.WithLogger(logger, "component", "client"),
		})

		store, err := session.NewStore(ctx, session.StoreOpts{
			Auth:   services.NewAuthService(client),
			Repo:   repositories.NewSessionRepository(db),
			Logger: shared.WithLogger(logger, "component", "session"),
		})
		if err != nil {
			logger.Fatalf("failed to initialize session: %v", err)
		}
		defer store.Wait()

		runnerOpts.Client = client
		runnerOpts.Session = store
	}

	runner := NewRunner(runnerOpts)

	app := &cli.Command{
		Name:     "syncx",
		Usage:    "Manage your SyncContents social accounts from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"os"

	"github.com/tuniverse/tvx/internal/repositories"
	"github.com/tuniverse/tvx/internal/services"
	"github.com/tuniverse/tvx/internal/shared"
	"github.com/tuniverse/tvx/internal/tokens"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	client := services.NewTuniverseService(config.Backend.BaseURL, nil)
	apiService := services.NewAPIService(config.Backend.BaseURL, nil)

	var store *tokens.Store
	var snapshots *repositories.PassportRepository

	// A missing or unreadable database degrades to a memory-only session
	// rather than blocking commands that never touch storage.
	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		store = tokens.NewStore(repositories.NewTokenRepository(db))
		snapshots = repositories.NewPassportRepository(db)
	} else {
		logger.Warnf("database unavailable, session will not persist: %v", err)
		store = tokens.NewStore(nil)
	}

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Client:    client,
		API:       apiService,
		Store:     store,
		Snapshots: snapshots,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "tvx",
		Usage:    "Turn your Spotify listening into a shareable music passport",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

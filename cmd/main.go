package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/desertthunder/shopx/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	if err := config.Validate(); err != nil {
		logger.Fatalf("configuration error: %v", err)
	}

	var db *sql.DB
	if opened, err := shared.OpenMigrated(config.Database); err == nil {
		db = opened
		defer db.Close()
	} else {
		logger.Warn("database unavailable, session commands disabled", "path", config.Database.Path, "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		DB:         db,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "shopx",
		Usage:    "Manage the video and category catalog of the shop API",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if db != nil {
			db.Close()
		}
		logger.Fatalf("application error: %v", err)
	}
}

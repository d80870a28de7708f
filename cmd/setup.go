package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/ytq/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the template configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	return r.writeJSON(map[string]string{"config": configPath}, true)
}

// SetupDatabase initializes the SQLite database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			r.logger.Warn("failed to load config, using current settings", "error", err)
		} else {
			if err := loaded.ApplyEnv(); err != nil {
				return err
			}
			config = loaded
		}
	}

	if config.Database.IsMongo() {
		return fmt.Errorf("%w: setup database only applies to SQLite, collections and indexes are created on connect", shared.ErrInvalidConfig)
	}

	r.logger.Info("initializing database", "path", config.Database.URI)

	db, err := shared.NewDatabase(config.Database.URI)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.URI)
	return r.writeJSON(map[string]any{"database": config.Database.URI, "applied": nonNilInts(applied)}, true)
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

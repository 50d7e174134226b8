package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbsync/internal/repositories"
	"github.com/desertthunder/lbsync/internal/services"
	"github.com/desertthunder/lbsync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:    "lbsync",
		Usage:   "Keep a Letterboxd list in sync with the films in a folder",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   runner.Before,
		After:    runner.After,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// Before loads the configuration and builds the Letterboxd client and run history database.
//
// A missing config file falls back to the defaults so that setup and env-only usage work.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	configPath := cmd.String("config")
	if err := r.configure(configPath); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// After closes the run history database.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	if err := r.db.Close(); err != nil {
		r.logger.Warn("failed to close database", "error", err)
	}
	r.db, r.runs = nil, nil
	return nil
}

func (r *Runner) configure(configPath string) error {
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		config = loaded
	} else {
		r.logger.Debug("config file not found, using defaults", "path", configPath)
	}
	config.ApplyEnv()

	r.config = config
	r.configPath = configPath

	if config.HasAPIKey() {
		lb := config.Credentials.Letterboxd
		svc, err := services.NewLetterboxdService(services.LetterboxdOpts{
			BaseURL:   lb.BaseURL,
			APIKey:    lb.APIKey,
			APISecret: lb.APISecret,
		})
		if err != nil {
			return err
		}
		r.letterboxd = svc
	}

	// history is recorded only once setup has created the database
	if _, err := os.Stat(config.Database.Path); errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug("run history disabled, database not found", "path", config.Database.Path)
		return nil
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		r.logger.Warn("run history disabled", "error", err)
		return nil
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.runs = repositories.NewSyncRunRepository(db)
	return nil
}

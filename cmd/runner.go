package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbsync/internal/cache"
	"github.com/desertthunder/lbsync/internal/repositories"
	"github.com/desertthunder/lbsync/internal/scanner"
	"github.com/desertthunder/lbsync/internal/services"
	"github.com/desertthunder/lbsync/internal/shared"
	"github.com/desertthunder/lbsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	letterboxd services.Service
	db         *sql.DB
	runs       *repositories.SyncRunRepository
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Letterboxd services.Service
	DB         *sql.DB // Run history is disabled when nil
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var runs *repositories.SyncRunRepository
	if opts.DB != nil {
		runs = repositories.NewSyncRunRepository(opts.DB)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		letterboxd: opts.Letterboxd,
		db:         opts.DB,
		runs:       runs,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, diffCommand, searchCommand, listCommand, cacheCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the logger, e.g. to a file while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// service returns the Letterboxd client or an error explaining why it is missing.
func (r *Runner) service() (services.Service, error) {
	if r.letterboxd == nil {
		return nil, fmt.Errorf("%w: Letterboxd service not initialized (set api_key and api_secret)", shared.ErrServiceUnavailable)
	}
	return r.letterboxd, nil
}

// cacheStore returns the cache file selected by --cache, falling back to the configured path.
func (r *Runner) cacheStore(cmd *cli.Command) *cache.Store {
	path := cmd.String("cache")
	if path == "" {
		path = r.config.Sync.CachePath
	}
	return cache.NewStore(path)
}

// newEngine assembles a [tasks.SyncEngine] for folder.
func (r *Runner) newEngine(svc services.Service, folder, pattern string, store tasks.CacheStore) (*tasks.SyncEngine, error) {
	if pattern == "" {
		pattern = r.config.Sync.Pattern
	}

	source, err := scanner.New(folder, pattern, r.config.Sync.Extensions, r.logger)
	if err != nil {
		return nil, err
	}

	opts := tasks.EngineOpts{
		Lookup:      svc,
		Lists:       svc,
		Store:       store,
		Source:      source,
		Concurrency: r.config.Sync.Concurrency,
		PageSize:    r.config.Sync.PageSize,
		MaxPages:    r.config.Sync.MaxPages,
		Logger:      r.logger,
	}
	if r.runs != nil {
		opts.Recorder = r.runs
	}

	return tasks.NewSyncEngine(opts), nil
}

// login performs the password grant with the configured member credentials.
func (r *Runner) login(ctx context.Context, svc services.Service) error {
	lb := r.config.Credentials.Letterboxd
	r.logger.Debug("authenticating", "username", lb.Username)
	if err := svc.Authenticate(ctx, lb.Username, lb.Password); err != nil {
		return err
	}
	r.logger.Info("authenticated with Letterboxd", "username", lb.Username)
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

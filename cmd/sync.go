package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/lbsync/internal/formatter"
	"github.com/desertthunder/lbsync/internal/shared"
	"github.com/desertthunder/lbsync/internal/tasks"
	"github.com/desertthunder/lbsync/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/lbsync-tui.log"

// Sync reconciles a Letterboxd list against the film names found in a folder.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	return r.runSync(ctx, cmd, cmd.Bool("dry-run"))
}

// Diff previews the changes a sync would make without updating the list or the cache.
func (r *Runner) Diff(ctx context.Context, cmd *cli.Command) error {
	return r.runSync(ctx, cmd, true)
}

func (r *Runner) runSync(ctx context.Context, cmd *cli.Command, dryRun bool) error {
	listID := cmd.StringArg("list-id")
	folder := cmd.StringArg("folder")
	if listID == "" {
		return fmt.Errorf("%w: list ID", shared.ErrMissingArgument)
	}
	if folder == "" {
		return fmt.Errorf("%w: folder", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	svc, err := r.service()
	if err != nil {
		return err
	}

	if err := r.config.Validate(); err != nil {
		if !dryRun {
			return err
		}
		r.logger.Warn("running without member login", "reason", err)
	} else if err := r.login(ctx, svc); err != nil {
		return err
	}

	interactive := cmd.Bool("interactive")
	if interactive {
		restore, err := r.logToFile(tuiLogPath)
		if err != nil {
			return err
		}
		defer restore()
	}

	engine, err := r.newEngine(svc, folder, cmd.String("pattern"), r.cacheStore(cmd))
	if err != nil {
		return err
	}

	opts := tasks.SyncOpts{ListID: listID, Folder: folder, DryRun: dryRun}
	r.logger.Info("starting sync", "list", listID, "folder", folder, "dry_run", dryRun)

	var result *tasks.SyncResult
	if interactive {
		result, err = ui.Run(ctx, engine, opts)
	} else {
		result, err = r.syncPlain(ctx, engine, opts)
	}
	if err != nil {
		return err
	}

	return r.writeReport(result, format, cmd.String("output"))
}

func (r *Runner) syncPlain(ctx context.Context, engine *tasks.SyncEngine, opts tasks.SyncOpts) (*tasks.SyncResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolveNames, tasks.FetchEntries:
				r.logger.Debug(update.Message, "phase", update.Phase)
			default:
				r.logger.Info(update.Message, "phase", update.Phase)
			}
		}
	}()

	result, err := engine.Run(ctx, opts, progressCh)
	close(progressCh)
	<-done

	return result, err
}

// logToFile redirects logs to path while the TUI owns the terminal. The returned func restores the previous logger.
func (r *Runner) logToFile(path string) (func(), error) {
	fileLogger, err := shared.NewFileLogger(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())

	previous := r.logger
	r.SetLogger(fileLogger)
	return func() { r.SetLogger(previous) }, nil
}

func (r *Runner) writeReport(result *tasks.SyncResult, format formatter.Format, output string) error {
	report := result.Report()

	if output != "" {
		if filepath.Ext(output) == "" {
			output = fmt.Sprintf("%s.%s", output, format.Ext())
		}
		path, err := formatter.WriteReport(report, format, output)
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", path)
		return r.writePlain("✓ %s (report saved to %s)\n", formatter.Outcome(report), path)
	}

	data, err := formatter.Render(report, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func syncFlags(withDryRun bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "pattern",
			Usage: "Regular expression whose first capture group is the film name (default: title and year heuristic)",
		},
		&cli.StringFlag{
			Name:  "cache",
			Usage: "Path to the name → film ID cache file (default: sync.cache_path)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Report format: text, json, csv or markdown",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the report to this file instead of stdout",
		},
		&cli.BoolFlag{
			Name:    "interactive",
			Aliases: []string{"i"},
			Usage:   "Show progress in an interactive terminal UI",
		},
	}
	if withDryRun {
		flags = append(flags, &cli.BoolFlag{
			Name:    "dry-run",
			Aliases: []string{"n"},
			Usage:   "Compute the changes without updating the list or the cache",
		})
	}
	return flags
}

func syncArgs() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{Name: "list-id", UsageText: "Letterboxd list ID"},
		&cli.StringArg{Name: "folder", UsageText: "Folder to scan for film files"},
	}
}

// syncCommand reconciles a list with a local folder
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Make a Letterboxd list match the films in a folder",
		ArgsUsage: "<list-id> <folder>",
		Arguments: syncArgs(),
		Flags:     syncFlags(true),
		Action:    r.Sync,
	}
}

// diffCommand is a sync forced into dry-run mode
func diffCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Show what sync would add to and remove from a list",
		ArgsUsage: "<list-id> <folder>",
		Arguments: syncArgs(),
		Flags:     syncFlags(false),
		Action:    r.Diff,
	}
}

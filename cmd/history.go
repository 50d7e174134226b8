package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lbsync/internal/models"
	"github.com/desertthunder/lbsync/internal/shared"
	"github.com/urfave/cli/v3"
)

type historyRow struct {
	ID          string `json:"id"`
	ListID      string `json:"list_id"`
	Folder      string `json:"folder"`
	Status      string `json:"status"`
	Candidates  int    `json:"candidates"`
	Resolved    int    `json:"resolved"`
	Dropped     int    `json:"dropped"`
	Added       int    `json:"added"`
	Removed     int    `json:"removed"`
	CacheHits   int    `json:"cache_hits"`
	Lookups     int    `json:"lookups"`
	Error       string `json:"error,omitempty"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

func toHistoryRow(run *models.SyncRun) historyRow {
	row := historyRow{
		ID:         run.ID(),
		ListID:     run.ListID(),
		Folder:     run.Folder(),
		Status:     string(run.Status()),
		Candidates: run.Candidates(),
		Resolved:   run.Resolved(),
		Dropped:    run.Dropped(),
		Added:      run.Added(),
		Removed:    run.Removed(),
		CacheHits:  run.CacheHits(),
		Lookups:    run.Lookups(),
		Error:      run.ErrorMessage(),
		StartedAt:  run.StartedAt().Format("2006-01-02 15:04:05"),
	}
	if completed := run.CompletedAt(); completed != nil {
		row.CompletedAt = completed.Format("2006-01-02 15:04:05")
	}
	return row
}

// History lists recent sync runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.runs == nil {
		return fmt.Errorf("%w: run history database not available (run 'lbsync setup')", shared.ErrServiceUnavailable)
	}

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if listID := cmd.String("list"); listID != "" {
		criteria["list_id"] = listID
	}
	if status := cmd.String("status"); status != "" {
		if !models.SyncStatus(status).Valid() {
			return fmt.Errorf("%w: status '%s'", shared.ErrInvalidArgument, status)
		}
		criteria["status"] = models.SyncStatus(status)
	}

	runs, err := r.runs.List(criteria)
	if err != nil {
		return err
	}

	rows := make([]historyRow, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, toHistoryRow(run))
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(rows) == 0 {
		return r.writePlain("No sync runs recorded\n")
	}

	r.writePlain("Found %d runs:\n\n", len(rows))
	for _, row := range rows {
		r.writePlain("%s  %-8s  list %s\n", row.StartedAt, row.Status, row.ListID)
		r.writePlain("   Folder: %s\n", row.Folder)
		r.writePlain("   +%d / -%d, %d dropped (%d candidates, %d cached, %d looked up)\n",
			row.Added, row.Removed, row.Dropped, row.Candidates, row.CacheHits, row.Lookups)
		if row.Error != "" {
			r.writePlain("   Error: %s\n", row.Error)
		}
		r.writePlain("\n")
	}

	return nil
}

// historyCommand lists recorded sync runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent sync runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of runs to show",
				Value:   10,
			},
			&cli.StringFlag{
				Name:  "list",
				Usage: "Only show runs for this list ID",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show runs with this status (applied, noop, dry_run, failed)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.History,
	}
}

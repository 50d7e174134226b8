package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/lbsync/internal/models"
	"github.com/desertthunder/lbsync/internal/scanner"
	"github.com/desertthunder/lbsync/internal/shared"
	"github.com/desertthunder/lbsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Search resolves a single name the way a sync would, without reading or writing the cache.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	if cmd.Bool("file") {
		extracted, ok := scanner.TitleAndYear(query)
		if !ok {
			return fmt.Errorf("%w: no title found in '%s'", shared.ErrInvalidInput, query)
		}
		r.logger.Debug("extracted title from file name", "file", query, "title", extracted)
		query = extracted
	}

	svc, err := r.service()
	if err != nil {
		return err
	}

	r.logger.Info("searching Letterboxd", "query", query)

	film, err := svc.SearchFilm(ctx, query)
	if err != nil {
		if shared.KindOf(err) == shared.KindNoMatch {
			return r.writePlain("✗ No match for %q\n", query)
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(film, cmd.Bool("pretty"))
	}

	r.writePlain("✓ %s\n", film.Label())
	return r.writePlain("  ID: %s\n", film.ID)
}

// ListEntries prints every film on a list using the same paginated fetch as sync.
func (r *Runner) ListEntries(ctx context.Context, cmd *cli.Command) error {
	listID := cmd.StringArg("list-id")
	if listID == "" {
		return fmt.Errorf("%w: list ID", shared.ErrMissingArgument)
	}

	svc, err := r.service()
	if err != nil {
		return err
	}

	if err := r.config.Validate(); err == nil {
		if err := r.login(ctx, svc); err != nil {
			return err
		}
	}

	list, err := svc.GetList(ctx, listID)
	if err != nil {
		return err
	}

	fetcher := tasks.NewFetcher(svc, r.config.Sync.PageSize, r.config.Sync.MaxPages)
	entries, err := fetcher.FetchAll(ctx, listID)
	if err != nil {
		return err
	}

	films := entries.Films(entries.IDs())
	if cmd.Bool("json") {
		return r.writeJSON(struct {
			List  *models.List  `json:"list"`
			Films []models.Film `json:"films"`
		}{list, films}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(list.Name)
	if list.OwnerName != "" {
		r.writePlain("Owner: %s\n", list.OwnerName)
	}
	r.writePlain("ID: %s\n", list.ID)
	r.writePlain("Films: %d\n\n", len(films))
	for i, film := range films {
		r.writePlain("%d. %s [%s]\n", i+1, film.Label(), film.ID)
	}

	return nil
}

// searchCommand resolves a single film name
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Look up the film a name resolves to (does not touch the cache)",
		ArgsUsage: "<query>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "file",
				Usage: "Treat the query as a file name and extract the title first",
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
		Action: r.Search,
	}
}

// listCommand handles read-only list operations
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Letterboxd list operations",
		Commands: []*cli.Command{
			{
				Name:      "entries",
				Usage:     "Print every film on a list",
				ArgsUsage: "<list-id>",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "list-id",
					},
				},
				Flags: []cli.Flag{
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
				Action: r.ListEntries,
			},
		},
	}
}

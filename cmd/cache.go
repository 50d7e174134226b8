package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/lbsync/internal/cache"
	"github.com/desertthunder/lbsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheShow prints the persisted name → film ID mapping.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	store := r.cacheStore(cmd)
	entries, err := store.Load()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlain("Cache: %s (%d entries)\n\n", store.Path(), len(entries))

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		r.writePlain("%s → %s\n", name, entries[name])
	}

	return nil
}

// CacheForget removes one name from the cache so the next sync looks it up again.
//
// Only safe between runs: a concurrent sync rewrites the whole file on exit.
func (r *Runner) CacheForget(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: name", shared.ErrMissingArgument)
	}

	store := r.cacheStore(cmd)
	entries, err := store.Load()
	if err != nil {
		return err
	}

	names := cache.NewMap(entries)
	if !names.Forget(name) {
		return r.writePlain("%q is not cached in %s\n", name, store.Path())
	}

	if err := store.Save(names.Snapshot()); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}

	r.logger.Info("forgot cached name", "name", name, "path", store.Path())
	return r.writePlain("✓ Forgot %q (%d entries remain)\n", name, names.Len())
}

func cacheFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "cache",
		Usage: "Path to the cache file (default: sync.cache_path)",
	}
}

// cacheCommand handles offline cache maintenance
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and edit the name → film ID cache",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print every cached name and its film ID",
				Flags: []cli.Flag{
					cacheFlag(),
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
				Action: r.CacheShow,
			},
			{
				Name:      "forget",
				Usage:     "Remove a cached name so it is looked up again",
				ArgsUsage: "<name>",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Flags:  []cli.Flag{cacheFlag()},
				Action: r.CacheForget,
			},
		},
	}
}

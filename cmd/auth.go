package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// AuthCheck performs the password grant with the configured credentials and reports the result.
func (r *Runner) AuthCheck(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service()
	if err != nil {
		return err
	}

	if err := r.config.Validate(); err != nil {
		return err
	}

	r.logger.Info("checking Letterboxd login", "username", r.config.Credentials.Letterboxd.Username)

	if err := r.login(ctx, svc); err != nil {
		return err
	}

	r.writePlain("✓ Authenticated with %s\n", svc.Name())
	return r.writePlain("Username: %s\n", r.config.Credentials.Letterboxd.Username)
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Log in with the configured credentials and report success",
				Action: r.AuthCheck,
			},
		},
	}
}

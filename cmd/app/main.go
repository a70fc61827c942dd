// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/ticketbox/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "ticketbox",
		Usage:   "Encrypted event ticket reservation service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "init-keys",
				Usage: "Provision the key hierarchy (data key, field keypair, password envelope)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Value:   "",
						Usage:   "Admin password (omit to be prompted)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunInitKeys(ctx, cmd.String("password"), commands.DefaultIO())
				},
			},
			{
				Name:  "rotate-password",
				Usage: "Re-wrap the data key under a new admin password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "old-password",
						Aliases: []string{"o"},
						Value:   "",
						Usage:   "Current admin password (omit to be prompted)",
					},
					&cli.StringFlag{
						Name:    "new-password",
						Aliases: []string{"n"},
						Value:   "",
						Usage:   "New admin password (omit to be prompted)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRotatePassword(
						ctx,
						cmd.String("old-password"),
						cmd.String("new-password"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "reclaim-claims",
				Usage: "Release stale reserved payment claims",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunReclaimClaims(ctx, commands.DefaultIO())
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/signum/cmd/app/commands"
	"github.com/allisson/signum/internal/app"
	"github.com/allisson/signum/internal/config"
)

func getTokenCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "sweep-revoked-tokens",
			Usage: "Delete revoked tokens whose expiry has passed",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				sweeper, err := container.RevocationSweeper()
				if err != nil {
					return err
				}

				return commands.RunSweepRevokedTokens(
					ctx,
					sweeper,
					container.Logger(),
					commands.DefaultIO().Writer,
					time.Now().UTC(),
					cmd.String("format"),
				)
			},
		},
	}
}

package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/signum/cmd/app/commands"
	"github.com/allisson/signum/internal/app"
	"github.com/allisson/signum/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-secret-key",
			Usage: "Generate or import the secret key of a key type in the configured key store",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "type",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Key type (AUTH_SECRET_KEY, REFRESH_SECRET_KEY, TEMP_SECRET_KEY, CIPHER_SECRET_KEY)",
				},
				&cli.IntFlag{
					Name:    "size",
					Aliases: []string{"s"},
					Value:   256,
					Usage:   "Key size in bits for generated keys",
				},
				&cli.StringFlag{
					Name:    "material",
					Aliases: []string{"m"},
					Usage:   "Base64 raw key to import instead of generating one",
				},
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

				store, err := container.SecretKeyStore()
				if err != nil {
					return err
				}

				return commands.RunCreateSecretKey(
					ctx,
					store,
					container.Logger(),
					commands.DefaultIO().Writer,
					commands.CreateSecretKeyInput{
						KeyType:     cmd.String("type"),
						KeySizeBits: int(cmd.Int("size")),
						Material:    cmd.String("material"),
						Format:      cmd.String("format"),
					},
				)
			},
		},
	}
}

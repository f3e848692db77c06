package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/vitaldiary/entryvault/cmd/app/commands"
	"github.com/vitaldiary/entryvault/internal/app"
	"github.com/vitaldiary/entryvault/internal/config"
)

func getSystemCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "status",
			Usage: "Show installation state without unlocking the vault",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer commands.CloseContainer(container, container.Logger())

				keyringRepo, err := container.KeyringRepository()
				if err != nil {
					return err
				}
				envelopeRepo, err := container.EnvelopeRepository()
				if err != nil {
					return err
				}
				algorithm, err := app.ParseAlgorithm(cfg.Algorithm)
				if err != nil {
					return err
				}

				return commands.RunStatus(
					ctx,
					keyringRepo,
					envelopeRepo,
					container.Selector(),
					algorithm,
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "audit-tail",
			Usage: "Print the most recent audit events (content-free)",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"n"},
					Value:   20,
					Usage:   "Maximum number of events to print",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer commands.CloseContainer(container, container.Logger())

				eventRepo, err := container.AuditEventRepository()
				if err != nil {
					return err
				}

				return commands.RunAuditTail(
					ctx,
					eventRepo,
					commands.DefaultIO(),
					int(cmd.Int("limit")),
				)
			},
		},
		{
			Name:  "reset",
			Usage: "Destroy the key material and every encrypted entry",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "yes",
					Usage: "Skip the interactive confirmation",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer commands.CloseContainer(container, container.Logger())

				vault, err := container.Vault()
				if err != nil {
					return err
				}

				return commands.RunReset(
					ctx,
					vault,
					container.Logger(),
					commands.DefaultIO(),
					cmd.Bool("yes"),
				)
			},
		},
	}
}

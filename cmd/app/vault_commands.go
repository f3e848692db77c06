package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/vitaldiary/entryvault/cmd/app/commands"
	"github.com/vitaldiary/entryvault/internal/app"
	"github.com/vitaldiary/entryvault/internal/config"
)

func getVaultCommands() []*cli.Command {
	passphraseFlag := &cli.StringFlag{
		Name:    "passphrase",
		Aliases: []string{"p"},
		Usage:   "Vault passphrase (omit to be prompted)",
	}
	recordFlag := &cli.StringFlag{
		Name:     "record",
		Aliases:  []string{"r"},
		Required: true,
		Usage:    "Record id of the entry (e.g., entry-2026-08-30)",
	}

	return []*cli.Command{
		{
			Name:  "init",
			Usage: "Create the vault on first run, or unlock an existing one",
			Flags: []cli.Flag{passphraseFlag},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer commands.CloseContainer(container, container.Logger())

				vault, err := container.Vault()
				if err != nil {
					return err
				}
				keyringRepo, err := container.KeyringRepository()
				if err != nil {
					return err
				}

				return commands.RunInit(
					ctx,
					vault,
					keyringRepo,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("passphrase"),
				)
			},
		},
		{
			Name:  "rotate-passphrase",
			Usage: "Re-wrap the vault key under a new passphrase without re-encrypting entries",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "old",
					Usage: "Current passphrase (omit to be prompted)",
				},
				&cli.StringFlag{
					Name:  "new",
					Usage: "New passphrase (omit to be prompted)",
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

				return commands.RunRotatePassphrase(
					ctx,
					vault,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("old"),
					cmd.String("new"),
				)
			},
		},
		{
			Name:  "encrypt-entry",
			Usage: "Encrypt a JSON entry and store it under a record id",
			Flags: []cli.Flag{
				passphraseFlag,
				recordFlag,
				&cli.StringFlag{
					Name:     "entry",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    `Entry content as a JSON object (e.g., '{"pain":7,"notes":"back"}')`,
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

				return commands.RunEncryptEntry(
					ctx,
					vault,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("passphrase"),
					cmd.String("record"),
					cmd.String("entry"),
				)
			},
		},
		{
			Name:  "decrypt-entry",
			Usage: "Decrypt and print the entry stored under a record id",
			Flags: []cli.Flag{passphraseFlag, recordFlag},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer commands.CloseContainer(container, container.Logger())

				vault, err := container.Vault()
				if err != nil {
					return err
				}

				return commands.RunDecryptEntry(
					ctx,
					vault,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("passphrase"),
					cmd.String("record"),
				)
			},
		},
		{
			Name:  "delete-entry",
			Usage: "Delete the entry stored under a record id",
			Flags: []cli.Flag{recordFlag},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer commands.CloseContainer(container, container.Logger())

				vault, err := container.Vault()
				if err != nil {
					return err
				}

				return commands.RunDeleteEntry(
					ctx,
					vault,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("record"),
				)
			},
		},
	}
}

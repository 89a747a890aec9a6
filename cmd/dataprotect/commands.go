package main

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/dataprotect/cmd/dataprotect/commands"
	"github.com/allisson/dataprotect/internal/dataprotect/config"
)

func getCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "keyring-init",
			Usage: "Create the first key in a fresh key ring",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "encryption-algorithm", Aliases: []string{"enc"}, Value: "AES_256_CBC", Usage: "AES_{128,192,256}_{CBC,GCM}"},
				&cli.StringFlag{Name: "validation-algorithm", Aliases: []string{"mac"}, Value: "HMACSHA512", Usage: "HMACSHA256 or HMACSHA512 (ignored for GCM)"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				return commands.RunKeyringInit(ctx, cfg, logger(cfg), os.Stdout, cmd.String("encryption-algorithm"), cmd.String("validation-algorithm"))
			},
		},
		{
			Name:  "keyring-list",
			Usage: "List every key in the ring, including revoked and expired ones",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				return commands.RunKeyringList(ctx, cfg, logger(cfg), os.Stdout)
			},
		},
		{
			Name:  "keyring-revoke",
			Usage: "Revoke a single key by id",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Required: true, Usage: "Key id (UUID)"},
				&cli.StringFlag{Name: "reason", Value: "", Usage: "Free-text revocation reason"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				return commands.RunKeyringRevoke(ctx, cfg, logger(cfg), os.Stdout, cmd.String("id"), cmd.String("reason"))
			},
		},
		{
			Name:  "keyring-revoke-all",
			Usage: "Revoke every key created on or before a cutoff date",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "before", Required: true, Usage: "Cutoff date, RFC3339"},
				&cli.StringFlag{Name: "reason", Value: "", Usage: "Free-text revocation reason"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				before, err := time.Parse(time.RFC3339, cmd.String("before"))
				if err != nil {
					return err
				}
				return commands.RunKeyringRevokeAll(ctx, cfg, logger(cfg), os.Stdout, before, cmd.String("reason"))
			},
		},
		{
			Name:  "rotate-now",
			Usage: "Force one default-key resolution cycle",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "encryption-algorithm", Aliases: []string{"enc"}, Value: "AES_256_CBC"},
				&cli.StringFlag{Name: "validation-algorithm", Aliases: []string{"mac"}, Value: "HMACSHA512"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				return commands.RunRotateNow(ctx, cfg, logger(cfg), os.Stdout, cmd.String("encryption-algorithm"), cmd.String("validation-algorithm"))
			},
		},
		{
			Name:  "protect",
			Usage: "Encrypt stdin-free plaintext under a purpose chain, print base64",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "purpose", Required: true, Usage: "Purpose chain element, repeatable"},
				&cli.StringFlag{Name: "plaintext", Required: true, Usage: "Plaintext to protect"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				return commands.RunProtect(ctx, cfg, logger(cfg), os.Stdout, cmd.StringSlice("purpose"), []byte(cmd.String("plaintext")))
			},
		},
		{
			Name:  "unprotect",
			Usage: "Decrypt a base64 protected payload under a purpose chain",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "purpose", Required: true, Usage: "Purpose chain element, repeatable"},
				&cli.StringFlag{Name: "payload", Required: true, Usage: "Base64 protected payload"},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				return commands.RunUnprotect(ctx, cfg, logger(cfg), os.Stdout, cmd.StringSlice("purpose"), cmd.String("payload"))
			},
		},
	}
}

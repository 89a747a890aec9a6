// Package main provides the entry point for the dataprotect CLI: key-ring
// inspection and rotation, plus protect/unprotect smoke commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/dataprotect/internal/dataprotect/config"
)

func logger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	cmd := &cli.Command{
		Name:     "dataprotect",
		Usage:    "Key ring management and purpose-scoped data protection",
		Version:  "1.0.0",
		Commands: getCommands(),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("dataprotect: command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

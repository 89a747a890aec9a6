package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/dataprotect/internal/dataprotect/cipherset"
	"github.com/allisson/dataprotect/internal/dataprotect/config"
)

// RunKeyringList performs a full repository scan ("every read is
// a full scan") and prints every key's identity, validity window, and
// revocation state.
func RunKeyringList(ctx context.Context, cfg *config.Config, logger *slog.Logger, writer io.Writer) error {
	// The encryption/validation algorithm pair only matters for keys this
	// invocation creates; listing never creates one, so any valid pair works.
	mgr, closeFn, err := newManager(ctx, cfg, cipherset.AES256CBC, cipherset.HMACSHA512)
	if err != nil {
		return err
	}
	defer closeManager(closeFn, logger)

	keys, err := mgr.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read key ring: %w", err)
	}

	now := time.Now().UTC()
	_, _ = fmt.Fprintf(writer, "%-36s  %-20s  %-20s  %-7s  %-6s\n", "ID", "ACTIVATED", "EXPIRES", "REVOKED", "ACTIVE")
	for _, k := range keys {
		_, _ = fmt.Fprintf(writer, "%-36s  %-20s  %-20s  %-7t  %-6t\n",
			k.ID(),
			k.ActivatedAt().Format(time.RFC3339),
			k.ExpiresAt().Format(time.RFC3339),
			k.Revoked(),
			k.IsActive(now),
		)
	}
	return nil
}

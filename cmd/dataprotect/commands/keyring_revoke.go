package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/dataprotect/internal/dataprotect/cipherset"
	"github.com/allisson/dataprotect/internal/dataprotect/config"
)

// RunKeyringRevoke writes a per-key revocation element.
func RunKeyringRevoke(ctx context.Context, cfg *config.Config, logger *slog.Logger, writer io.Writer, keyIDStr, reason string) error {
	keyID, err := uuid.Parse(keyIDStr)
	if err != nil {
		return fmt.Errorf("invalid key id %q: %w", keyIDStr, err)
	}

	mgr, closeFn, err := newManager(ctx, cfg, cipherset.AES256CBC, cipherset.HMACSHA512)
	if err != nil {
		return err
	}
	defer closeManager(closeFn, logger)

	if err := mgr.RevokeKey(ctx, keyID, reason); err != nil {
		return fmt.Errorf("failed to revoke key: %w", err)
	}

	logger.Info("revoked key", slog.String("key_id", keyID.String()), slog.String("reason", reason))
	_, _ = fmt.Fprintf(writer, "revoked key %s\n", keyID)
	return nil
}

// RunKeyringRevokeAll writes a mass-revocation element covering every key
// created on or before before.
func RunKeyringRevokeAll(ctx context.Context, cfg *config.Config, logger *slog.Logger, writer io.Writer, before time.Time, reason string) error {
	mgr, closeFn, err := newManager(ctx, cfg, cipherset.AES256CBC, cipherset.HMACSHA512)
	if err != nil {
		return err
	}
	defer closeManager(closeFn, logger)

	if err := mgr.RevokeAll(ctx, before, reason); err != nil {
		return fmt.Errorf("failed to mass-revoke keys: %w", err)
	}

	logger.Info("mass-revoked keys", slog.Time("cutoff", before), slog.String("reason", reason))
	_, _ = fmt.Fprintf(writer, "revoked every key created on or before %s\n", before.Format(time.RFC3339))
	return nil
}

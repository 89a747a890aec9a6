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

// RunKeyringInit creates the first key in a fresh repository, using the
// activation-delay/lifetime defaults (2 days / 90 days, both
// overridable via config). It is idempotent only in the sense that running
// it twice creates two keys; callers that only want a key when none exists
// should use RunRotateNow instead, which goes through the resolver.
func RunKeyringInit(ctx context.Context, cfg *config.Config, logger *slog.Logger, writer io.Writer, encAlgStr, macAlgStr string) error {
	encAlg, macAlg, err := parseAlgorithms(encAlgStr, macAlgStr)
	if err != nil {
		return err
	}

	mgr, closeFn, err := newManager(ctx, cfg, encAlg, macAlg)
	if err != nil {
		return err
	}
	defer closeManager(closeFn, logger)

	now := time.Now().UTC()
	activatedAt := now.Add(cfg.KeyActivationDelay)
	expiresAt := activatedAt.Add(cfg.KeyLifetime)

	key, err := mgr.CreateKey(ctx, activatedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create key: %w", err)
	}

	logger.Info("created key",
		slog.String("key_id", key.ID().String()),
		slog.Time("activated_at", activatedAt),
		slog.Time("expires_at", expiresAt),
	)
	_, _ = fmt.Fprintf(writer, "created key %s (activates %s, expires %s)\n",
		key.ID(), activatedAt.Format(time.RFC3339), expiresAt.Format(time.RFC3339))
	return nil
}

// parseAlgorithms validates the CLI's --encryption-algorithm and
// --validation-algorithm flags against the closed algorithm-identifier set.
func parseAlgorithms(encAlgStr, macAlgStr string) (cipherset.EncryptionAlgorithm, cipherset.ValidationAlgorithm, error) {
	encAlg := cipherset.EncryptionAlgorithm(encAlgStr)
	switch encAlg {
	case cipherset.AES128CBC, cipherset.AES192CBC, cipherset.AES256CBC,
		cipherset.AES128GCM, cipherset.AES192GCM, cipherset.AES256GCM:
	default:
		return "", "", fmt.Errorf("invalid encryption algorithm: %s", encAlgStr)
	}

	macAlg := cipherset.ValidationAlgorithm(macAlgStr)
	switch macAlg {
	case cipherset.HMACSHA256, cipherset.HMACSHA512:
	default:
		return "", "", fmt.Errorf("invalid validation algorithm: %s", macAlgStr)
	}

	return encAlg, macAlg, nil
}

func closeManager(closeFn func() error, logger *slog.Logger) {
	if closeFn == nil {
		return
	}
	if err := closeFn(); err != nil {
		logger.Error("failed to close xml codec", slog.Any("error", err))
	}
}

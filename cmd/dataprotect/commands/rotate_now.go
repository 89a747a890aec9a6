package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/dataprotect/internal/dataprotect/config"
)

// RunRotateNow forces one resolver evaluation against the
// repository's current contents, creating a genesis or rollover key if the
// algorithm decides one is due, and reports the resulting default key.
func RunRotateNow(ctx context.Context, cfg *config.Config, logger *slog.Logger, writer io.Writer, encAlgStr, macAlgStr string) error {
	encAlg, macAlg, err := parseAlgorithms(encAlgStr, macAlgStr)
	if err != nil {
		return err
	}

	mgr, closeFn, err := newManager(ctx, cfg, encAlg, macAlg)
	if err != nil {
		return err
	}
	defer closeManager(closeFn, logger)

	ring, err := rebuildRing(ctx, mgr, cfg, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to evaluate key ring: %w", err)
	}

	def, err := ring.DefaultKey()
	if err != nil {
		return fmt.Errorf("failed to resolve default key: %w", err)
	}

	logger.Info("rotation check complete", slog.String("default_key_id", def.ID().String()))
	_, _ = fmt.Fprintf(writer, "default key: %s (expires %s)\n", def.ID(), def.ExpiresAt().Format(time.RFC3339))
	return nil
}

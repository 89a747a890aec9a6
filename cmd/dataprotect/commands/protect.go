package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/dataprotect/internal/dataprotect/cipherset"
	"github.com/allisson/dataprotect/internal/dataprotect/config"
	"github.com/allisson/dataprotect/internal/dataprotect/protector"
	"github.com/allisson/dataprotect/internal/dataprotect/provider"
)

// buildProtector wires a protector.Protector over a fresh provider for a
// single CLI invocation, scoped to purposes (applied in order, outermost
// first).
func buildProtector(ctx context.Context, cfg *config.Config, purposes []string) (*protector.Protector, func() error, error) {
	mgr, closeFn, err := newManager(ctx, cfg, cipherset.AES256CBC, cipherset.HMACSHA512)
	if err != nil {
		return nil, nil, err
	}

	prov := provider.New(newRebuildFunc(mgr, cfg), provider.WithRefreshInterval(cfg.RefreshInterval))
	p := protector.New(prov, protector.WithAllowRevokedKeys(cfg.AllowRevokedKeys))
	for _, purpose := range purposes {
		p = p.CreateProtector(purpose)
	}
	return p, closeFn, nil
}

// RunProtect encrypts plaintext under the given purpose chain and prints
// the base64-encoded protected payload.
func RunProtect(ctx context.Context, cfg *config.Config, logger *slog.Logger, writer io.Writer, purposes []string, plaintext []byte) error {
	p, closeFn, err := buildProtector(ctx, cfg, purposes)
	if err != nil {
		return err
	}
	defer closeManager(closeFn, logger)

	protected, err := p.Protect(ctx, plaintext)
	if err != nil {
		return fmt.Errorf("protect failed: %w", err)
	}

	_, _ = fmt.Fprintln(writer, base64.StdEncoding.EncodeToString(protected))
	return nil
}

// RunUnprotect reverses RunProtect: decodes a base64 protected payload and
// prints the recovered plaintext.
func RunUnprotect(ctx context.Context, cfg *config.Config, logger *slog.Logger, writer io.Writer, purposes []string, protectedBase64 string) error {
	protected, err := base64.StdEncoding.DecodeString(protectedBase64)
	if err != nil {
		return fmt.Errorf("invalid base64 protected payload: %w", err)
	}

	p, closeFn, err := buildProtector(ctx, cfg, purposes)
	if err != nil {
		return err
	}
	defer closeManager(closeFn, logger)

	plaintext, err := p.Unprotect(ctx, protected)
	if err != nil {
		return fmt.Errorf("unprotect failed: %w", err)
	}

	_, _ = writer.Write(plaintext)
	_, _ = fmt.Fprintln(writer)
	return nil
}

// Package commands contains CLI command implementations for the dataprotect
// binary: key-ring inspection/rotation and ad-hoc protect/unprotect smoke
// commands. One exported Run* function per command, plain io.Writer output,
// *slog.Logger for operational logging.
package commands

import (
	"context"
	"fmt"
	"time"

	"gocloud.dev/secrets"

	"github.com/allisson/dataprotect/internal/dataprotect/cipherset"
	"github.com/allisson/dataprotect/internal/dataprotect/config"
	"github.com/allisson/dataprotect/internal/dataprotect/descriptor"
	"github.com/allisson/dataprotect/internal/dataprotect/keyrepo"
	"github.com/allisson/dataprotect/internal/dataprotect/keyring"
	"github.com/allisson/dataprotect/internal/dataprotect/provider"
	"github.com/allisson/dataprotect/internal/dataprotect/resolver"
	"github.com/allisson/dataprotect/internal/dataprotect/xmlenc"
)

// newRepository builds the Repository the CLI's configuration selects
// (the pluggable repository boundary, supplemented with the filesystem and
// in-memory implementations in internal/dataprotect/keyrepo).
func newRepository(cfg *config.Config) (keyrepo.Repository, error) {
	switch cfg.RepositoryDriver {
	case "filesystem":
		return keyrepo.NewFilesystemRepository(cfg.RepositoryPath)
	default:
		return keyrepo.NewMemoryRepository(), nil
	}
}

// newXMLCodec opens the at-rest XML encryptor/decryptor pair. An empty
// KMSKeyURI falls back to the identity NoOp codec: the
// descriptor XML still carries requires-encryption="true", it's simply not
// enforced at rest.
func newXMLCodec(ctx context.Context, cfg *config.Config) (xmlenc.XMLEncryptor, xmlenc.XMLDecryptor, func() error, error) {
	if cfg.KMSKeyURI == "" {
		return xmlenc.NoOpEncryptor{}, xmlenc.NoOpDecryptor{}, func() error { return nil }, nil
	}

	keeper, err := secrets.OpenKeeper(ctx, cfg.KMSKeyURI)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open KMS keeper %q: %w", cfg.KMSKeyURI, err)
	}
	return xmlenc.NewKeeperEncryptor(keeper), xmlenc.NewKeeperDecryptor(keeper), keeper.Close, nil
}

// newManager wires a keyrepo.Manager for a single CLI invocation.
func newManager(ctx context.Context, cfg *config.Config, encAlg cipherset.EncryptionAlgorithm, macAlg cipherset.ValidationAlgorithm) (*keyrepo.Manager, func() error, error) {
	repo, err := newRepository(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open key repository: %w", err)
	}

	enc, dec, closeFn, err := newXMLCodec(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return keyrepo.NewManager(repo, enc, dec, descriptor.NewRegistry(), encAlg, macAlg), closeFn, nil
}

// rebuildRing performs one full lifecycle cycle: scan the
// repository, resolve the default key (creating a genesis or rollover key
// and persisting it if the algorithm demands one), and return the
// resulting KeyRing. It is the RebuildFunc a provider.KeyRingProvider calls
// on every cache miss, and the CLI's own one-shot commands call it directly.
func rebuildRing(ctx context.Context, mgr *keyrepo.Manager, cfg *config.Config, now time.Time) (*keyring.KeyRing, error) {
	keys, err := mgr.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read key ring: %w", err)
	}

	factory := func(activatedAt, expiresAt time.Time) (*keyring.Key, error) {
		return mgr.CreateKey(ctx, activatedAt, expiresAt)
	}

	result, err := resolver.Resolve(now, keys, cfg.KeyLifetime, cfg.PropagationWindow, factory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve default key: %w", err)
	}
	keys = append(keys, result.NewKeys...)

	return keyring.NewKeyRing(keys, result.DefaultKeyID, now)
}

// newRebuildFunc adapts rebuildRing to provider.RebuildFunc.
func newRebuildFunc(mgr *keyrepo.Manager, cfg *config.Config) provider.RebuildFunc {
	return func(ctx context.Context, now time.Time) (*keyring.KeyRing, error) {
		return rebuildRing(ctx, mgr, cfg, now)
	}
}

package protector

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
	"github.com/allisson/dataprotect/internal/dataprotect/keyring"
	"github.com/allisson/dataprotect/internal/dataprotect/provider"
)

// Protector is the module's public entry point: it applies a purpose
// chain, asks a KeyRingProvider for the current ring, picks the default (or,
// on Unprotect, the named) key, and formats the wire payload.
//
// A Protector is safe for concurrent use: Protect/Unprotect only ever read
// the provider's cached snapshot and call into encryptors that hold no
// mutable state of their own.
type Protector struct {
	provider     *provider.KeyRingProvider
	chain        keyring.PurposeChain
	allowRevoked bool
}

// Option configures a root Protector.
type Option func(*Protector)

// WithAllowRevokedKeys lets Unprotect succeed against a revoked key instead
// of failing.
func WithAllowRevokedKeys(allow bool) Option {
	return func(p *Protector) { p.allowRevoked = allow }
}

// New builds a root Protector with an empty purpose chain. The root cannot
// Protect or Unprotect directly; derive a scoped protector from it with
// CreateProtector first.
func New(p *provider.KeyRingProvider, opts ...Option) *Protector {
	protector := &Protector{provider: p}
	for _, opt := range opts {
		opt(protector)
	}
	return protector
}

// CreateProtector returns a child Protector whose chain is the receiver's
// chain with purpose appended. The receiver is left unmodified.
func (p *Protector) CreateProtector(purpose string) *Protector {
	return &Protector{
		provider:     p.provider,
		chain:        p.chain.Append(purpose),
		allowRevoked: p.allowRevoked,
	}
}

// aad computes the additional authenticated data bound into every ciphertext
// produced or consumed under this protector's purpose chain:
// magic_header || key_id || SHA-512(length-prefixed purpose concatenation).
func (p *Protector) aad(keyID uuid.UUID) []byte {
	out := make([]byte, 0, headerLen+sha512Size)
	out = append(out, magicHeader[:]...)
	out = append(out, keyID[:]...)
	out = append(out, p.chain.Digest()...)
	return out
}

// Protect encrypts plaintext under this protector's purpose chain and the
// key ring's current default key. plaintext must not be nil.
func (p *Protector) Protect(ctx context.Context, plaintext []byte) ([]byte, error) {
	if plaintext == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArgument, "protector: plaintext must not be nil")
	}
	if err := p.chain.Validate(); err != nil {
		return nil, err
	}

	ring, err := p.provider.Current(ctx)
	if err != nil {
		return nil, err
	}

	key, err := ring.DefaultKey()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "protector: no default key available")
	}

	enc, err := key.Encryptor()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "protector: failed to build encryptor")
	}

	body, err := enc.Encrypt(plaintext, p.aad(key.ID()))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "protector: encryption failed")
	}

	out := buildHeader(key.ID())
	return append(out, body...), nil
}

// Unprotect reverses Protect: it reads the key id out of the wire header,
// looks the key up in the current ring, and decrypts with the AAD
// recomputed from this protector's own purpose chain. Any failure (unknown
// key, bad tag, truncated payload, or a revoked key without
// WithAllowRevokedKeys) surfaces as the single opaque
// apperrors.ErrCryptographic.
func (p *Protector) Unprotect(ctx context.Context, protectedPayload []byte) ([]byte, error) {
	if protectedPayload == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArgument, "protector: protected payload must not be nil")
	}
	if err := p.chain.Validate(); err != nil {
		return nil, err
	}

	keyID, body, err := parseHeader(protectedPayload)
	if err != nil {
		return nil, err
	}

	ring, err := p.provider.Current(ctx)
	if err != nil {
		return nil, err
	}

	key, ok := ring.Get(keyID)
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "protector: unknown key id")
	}
	if key.Revoked() && !p.allowRevoked {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "protector: key is revoked")
	}

	enc, err := key.Encryptor()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "protector: failed to build encryptor")
	}

	plaintext, err := enc.Decrypt(body, p.aad(keyID))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCryptographic, "protector: decryption failed")
	}
	return plaintext, nil
}

// sha512Size is the length of a purpose digest; kept local to
// size the aad buffer without importing crypto/sha512 just for its Size
// constant.
const sha512Size = 64

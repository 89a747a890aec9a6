// Package secret owns sensitive byte buffers: master keys and other key
// material that must never leak into logs, error messages, or debug output,
// and must be zeroed as soon as they are no longer needed.
package secret

import (
	"crypto/rand"
	"fmt"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
)

// Secret is an opaque, fixed-length buffer of sensitive bytes. The zero value
// is not usable; construct with FromRandom or FromBytes.
//
// Secret has no String/GoString/MarshalJSON method. Its Format method prints
// a fixed placeholder for every fmt verb, so formatting a Secret never
// renders its contents, and encoding/json sees no exported field.
type Secret struct {
	b []byte
}

// Format implements fmt.Formatter, printing a placeholder instead of the
// secret's bytes.
func (Secret) Format(f fmt.State, _ rune) {
	_, _ = fmt.Fprint(f, "secret.Secret(redacted)")
}

// FromRandom allocates a new Secret of n bytes filled from a CSPRNG.
func FromRandom(n int) (*Secret, error) {
	if n < 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArgument, "secret length must be >= 0")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "failed to read random bytes")
	}
	return &Secret{b: b}, nil
}

// FromBytes takes ownership of b and wraps it in a Secret. The caller must
// not retain or mutate b after this call; Release zeroes the same backing
// array.
func FromBytes(b []byte) *Secret {
	return &Secret{b: b}
}

// Len returns the number of bytes in the secret.
func (s *Secret) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// WriteInto copies the secret's bytes into dst. dst must have length exactly
// equal to Len(), otherwise WriteInto fails rather than silently truncating
// or leaving part of dst unwritten.
func (s *Secret) WriteInto(dst []byte) error {
	if len(dst) != s.Len() {
		return apperrors.Wrap(
			apperrors.ErrInvalidArgument,
			fmt.Sprintf("destination buffer length %d does not match secret length %d", len(dst), s.Len()),
		)
	}
	copy(dst, s.b)
	return nil
}

// Release overwrites the secret's backing bytes with zeros. It is idempotent
// and safe to call on an already-released or nil Secret.
func (s *Secret) Release() {
	if s == nil {
		return
	}
	Zero(s.b)
	s.b = nil
}

// Zero overwrites b with zeros in place. Exported so callers who must handle
// raw derived key material outside of a Secret (e.g. sub-keys produced by the
// KDF for the lifetime of a single encrypt/decrypt call) can clear it too.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

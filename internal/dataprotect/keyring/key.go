// Package keyring holds the data-model types shared by the rest of the
// library: a Key and the KeyRing snapshot that groups them, plus the
// PurposeChain used to scope a Protector.
package keyring

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
	"github.com/allisson/dataprotect/internal/dataprotect/cipherset"
	"github.com/allisson/dataprotect/internal/dataprotect/descriptor"
)

// DescriptorThunk lazily produces the descriptor backing a Key. Reading it
// may involve an XML decrypt round-trip, so a Key defers the
// call until an encryptor is actually needed.
type DescriptorThunk func() (descriptor.Descriptor, error)

// Key is a single entry in a KeyRing: identity, validity window, revocation
// state, and a lazily-materialized descriptor/encryptor pair.
//
// Key and KeyRing are immutable after construction except for the revoked
// flag, which transitions false→true at most once.
type Key struct {
	id          uuid.UUID
	createdAt   time.Time
	activatedAt time.Time
	expiresAt   time.Time

	revokedMu sync.Mutex
	revoked   bool

	descriptorOnce  sync.Once
	descriptorThunk DescriptorThunk
	descriptorVal   descriptor.Descriptor
	descriptorErr   error

	encryptorOnce sync.Once
	encryptorVal  cipherset.Encryptor
	encryptorErr  error
}

// NewKey constructs a Key. createdAt, activatedAt and expiresAt are expected
// in UTC; thunk is invoked at most once, the first time Descriptor or
// Encryptor is called.
func NewKey(id uuid.UUID, createdAt, activatedAt, expiresAt time.Time, revoked bool, thunk DescriptorThunk) *Key {
	return &Key{
		id:              id,
		createdAt:       createdAt.UTC(),
		activatedAt:     activatedAt.UTC(),
		expiresAt:       expiresAt.UTC(),
		revoked:         revoked,
		descriptorThunk: thunk,
	}
}

// ID returns the key's 128-bit identifier.
func (k *Key) ID() uuid.UUID { return k.id }

// CreatedAt returns the UTC creation timestamp.
func (k *Key) CreatedAt() time.Time { return k.createdAt }

// ActivatedAt returns the UTC activation timestamp.
func (k *Key) ActivatedAt() time.Time { return k.activatedAt }

// ExpiresAt returns the UTC expiration timestamp.
func (k *Key) ExpiresAt() time.Time { return k.expiresAt }

// Revoked reports the current revocation state.
func (k *Key) Revoked() bool {
	k.revokedMu.Lock()
	defer k.revokedMu.Unlock()
	return k.revoked
}

// SetRevoked transitions the key to revoked. Calling it more than once, or
// on an already-revoked key, is a no-op: the flag is monotonic.
func (k *Key) SetRevoked() {
	k.revokedMu.Lock()
	defer k.revokedMu.Unlock()
	k.revoked = true
}

// IsActive reports whether the key is usable as a default key at instant
// now: activated, not yet expired, and not revoked.
func (k *Key) IsActive(now time.Time) bool {
	now = now.UTC()
	if k.Revoked() {
		return false
	}
	return !now.Before(k.activatedAt) && now.Before(k.expiresAt)
}

// Descriptor materializes and memoizes the key's descriptor, invoking the
// thunk at most once.
func (k *Key) Descriptor() (descriptor.Descriptor, error) {
	k.descriptorOnce.Do(func() {
		k.descriptorVal, k.descriptorErr = k.descriptorThunk()
	})
	return k.descriptorVal, k.descriptorErr
}

// Encryptor builds and memoizes the cipherset.Encryptor described by this
// key's descriptor.
func (k *Key) Encryptor() (cipherset.Encryptor, error) {
	k.encryptorOnce.Do(func() {
		d, err := k.Descriptor()
		if err != nil {
			k.encryptorErr = apperrors.Wrap(err, "keyring: failed to materialize descriptor")
			return
		}
		enc, err := d.NewEncryptor()
		if err != nil {
			k.encryptorErr = apperrors.Wrap(err, "keyring: failed to build encryptor")
			return
		}
		k.encryptorVal = enc
	})
	return k.encryptorVal, k.encryptorErr
}

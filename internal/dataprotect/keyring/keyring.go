package keyring

import (
	"bytes"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
)

// KeyRing is an immutable snapshot of every known key plus the id of the
// key new Protect calls should use. A fresh KeyRing replaces the
// whole snapshot; nothing in it is ever mutated in place, except a Key's
// own revoked flag.
type KeyRing struct {
	keys         []*Key
	defaultKeyID uuid.UUID
	snapshotAt   time.Time
}

// NewKeyRing builds a KeyRing. defaultKeyID must identify a key present in
// keys that is activated, unexpired and unrevoked at snapshotAt, per the
// KeyRing invariant.
func NewKeyRing(keys []*Key, defaultKeyID uuid.UUID, snapshotAt time.Time) (*KeyRing, error) {
	snapshotAt = snapshotAt.UTC()

	ordered := make([]*Key, len(keys))
	copy(ordered, keys)

	ring := &KeyRing{keys: ordered, defaultKeyID: defaultKeyID, snapshotAt: snapshotAt}

	def, ok := ring.Get(defaultKeyID)
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "keyring: default key not present in ring")
	}
	if !def.IsActive(snapshotAt) {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "keyring: default key is not active at snapshot time")
	}

	return ring, nil
}

// Keys returns the ring's keys in the order the ring was built with.
func (r *KeyRing) Keys() []*Key {
	out := make([]*Key, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get looks up a key by id.
func (r *KeyRing) Get(id uuid.UUID) (*Key, bool) {
	for _, k := range r.keys {
		if k.ID() == id {
			return k, true
		}
	}
	return nil, false
}

// DefaultKey returns the ring's designated default key.
func (r *KeyRing) DefaultKey() (*Key, error) {
	k, ok := r.Get(r.defaultKeyID)
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "keyring: default key id not found in ring")
	}
	return k, nil
}

// SnapshotAt returns the instant this ring was built for.
func (r *KeyRing) SnapshotAt() time.Time { return r.snapshotAt }

// CompareIDs orders two ids lexicographically over their 16-byte
// big-endian form, the tie-break used when keys share an activation
// timestamp.
func CompareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

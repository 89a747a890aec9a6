package keyring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
	"github.com/allisson/dataprotect/internal/dataprotect/descriptor"
)

func noopThunk() (descriptor.Descriptor, error) { return nil, nil }

func TestNewKeyRingRequiresActiveDefault(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	k := NewKey(id, now.Add(-time.Hour), now.Add(-time.Minute), now.Add(time.Hour), false, noopThunk)

	ring, err := NewKeyRing([]*Key{k}, id, now)
	require.NoError(t, err)
	assert.Equal(t, now, ring.SnapshotAt())

	def, err := ring.DefaultKey()
	require.NoError(t, err)
	assert.Equal(t, id, def.ID())
}

func TestNewKeyRingRejectsMissingDefault(t *testing.T) {
	now := time.Now().UTC()
	k := NewKey(uuid.New(), now.Add(-time.Hour), now.Add(-time.Minute), now.Add(time.Hour), false, noopThunk)

	_, err := NewKeyRing([]*Key{k}, uuid.New(), now)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestNewKeyRingRejectsInactiveDefault(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	k := NewKey(id, now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour), false, noopThunk)

	_, err := NewKeyRing([]*Key{k}, id, now)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestNewKeyRingRejectsRevokedDefault(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	k := NewKey(id, now.Add(-time.Hour), now.Add(-time.Minute), now.Add(time.Hour), true, noopThunk)

	_, err := NewKeyRing([]*Key{k}, id, now)
	require.Error(t, err)
}

func TestKeyRingGet(t *testing.T) {
	now := time.Now().UTC()
	id1, id2 := uuid.New(), uuid.New()
	k1 := NewKey(id1, now.Add(-time.Hour), now.Add(-time.Minute), now.Add(time.Hour), false, noopThunk)
	k2 := NewKey(id2, now.Add(-time.Hour), now.Add(-time.Minute), now.Add(time.Hour), false, noopThunk)

	ring, err := NewKeyRing([]*Key{k1, k2}, id1, now)
	require.NoError(t, err)

	got, ok := ring.Get(id2)
	require.True(t, ok)
	assert.Equal(t, id2, got.ID())

	_, ok = ring.Get(uuid.New())
	assert.False(t, ok)
}

func TestCompareIDs(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	assert.Negative(t, CompareIDs(a, b))
	assert.Positive(t, CompareIDs(b, a))
	assert.Zero(t, CompareIDs(a, a))
}

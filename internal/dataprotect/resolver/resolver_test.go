package resolver

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/dataprotect/internal/dataprotect/descriptor"
	"github.com/allisson/dataprotect/internal/dataprotect/keyring"
)

func noopThunk() (descriptor.Descriptor, error) { return nil, nil }

func keyAt(created, activated, expires time.Time, revoked bool) *keyring.Key {
	return keyring.NewKey(uuid.New(), created, activated, expires, revoked, noopThunk)
}

func failingFactory(t *testing.T) KeyFactory {
	t.Helper()
	return func(activatedAt, expiresAt time.Time) (*keyring.Key, error) {
		t.Fatal("key factory should not have been called")
		return nil, nil
	}
}

func TestResolveCreatesGenesisWhenNoActiveKeys(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	var created *keyring.Key

	factory := func(activatedAt, expiresAt time.Time) (*keyring.Key, error) {
		created = keyAt(activatedAt, activatedAt, expiresAt, false)
		return created, nil
	}

	result, err := Resolve(epoch, nil, 90*24*time.Hour, 0, factory)
	require.NoError(t, err)
	require.Len(t, result.NewKeys, 1)
	assert.Equal(t, created.ID(), result.DefaultKeyID)
	assert.Equal(t, epoch, created.ActivatedAt())
}

func TestResolveS5PicksMostRecentlyActivated(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	now := epoch.Add(25 * time.Second)

	revoked := keyAt(epoch, epoch, epoch.Add(100*time.Second), true)
	early := keyAt(epoch, epoch.Add(10*time.Second), epoch.Add(100*time.Second), false)
	late := keyAt(epoch, epoch.Add(20*time.Second), epoch.Add(100*time.Second), false)

	result, err := Resolve(now, []*keyring.Key{revoked, early, late}, time.Hour, time.Second, failingFactory(t))
	require.NoError(t, err)
	assert.Equal(t, late.ID(), result.DefaultKeyID)
	assert.Empty(t, result.NewKeys)
}

func TestResolveTieBreaksByID(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	now := epoch.Add(time.Minute)

	a := keyring.NewKey(uuid.MustParse("00000000-0000-0000-0000-000000000001"), epoch, epoch, epoch.Add(time.Hour), false, noopThunk)
	b := keyring.NewKey(uuid.MustParse("00000000-0000-0000-0000-000000000002"), epoch, epoch, epoch.Add(time.Hour), false, noopThunk)

	result, err := Resolve(now, []*keyring.Key{a, b}, time.Hour, time.Minute, failingFactory(t))
	require.NoError(t, err)
	assert.Equal(t, b.ID(), result.DefaultKeyID)
}

func TestResolveCreatesRolloverNearExpiration(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	def := keyAt(epoch, epoch, epoch.Add(time.Hour), false)
	now := def.ExpiresAt().Add(-10 * time.Minute)

	var rollover *keyring.Key
	factory := func(activatedAt, expiresAt time.Time) (*keyring.Key, error) {
		rollover = keyAt(activatedAt, activatedAt, expiresAt, false)
		return rollover, nil
	}

	result, err := Resolve(now, []*keyring.Key{def}, time.Hour, 30*time.Minute, factory)
	require.NoError(t, err)
	assert.Equal(t, def.ID(), result.DefaultKeyID, "current default stays in force during rollover")
	require.Len(t, result.NewKeys, 1)
	assert.Equal(t, def.ExpiresAt(), rollover.ActivatedAt())
}

func TestResolveSkipsRolloverWhenSuccessorAlreadyExists(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	def := keyAt(epoch, epoch, epoch.Add(time.Hour), false)
	successor := keyAt(epoch, def.ExpiresAt(), def.ExpiresAt().Add(time.Hour), false)
	now := def.ExpiresAt().Add(-10 * time.Minute)

	result, err := Resolve(now, []*keyring.Key{def, successor}, time.Hour, 30*time.Minute, failingFactory(t))
	require.NoError(t, err)
	assert.Equal(t, def.ID(), result.DefaultKeyID)
	assert.Empty(t, result.NewKeys)
}

func TestResolveIsDeterministic(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	now := epoch.Add(time.Minute)
	a := keyAt(epoch, epoch, epoch.Add(time.Hour), false)
	b := keyAt(epoch, epoch.Add(30*time.Second), epoch.Add(time.Hour), false)

	r1, err := Resolve(now, []*keyring.Key{a, b}, time.Hour, time.Minute, failingFactory(t))
	require.NoError(t, err)
	r2, err := Resolve(now, []*keyring.Key{a, b}, time.Hour, time.Minute, failingFactory(t))
	require.NoError(t, err)

	assert.Equal(t, r1.DefaultKeyID, r2.DefaultKeyID)
}

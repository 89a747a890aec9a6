// Package resolver implements the deterministic default-key selection
// algorithm: given "now" and a set of candidate keys, it picks
// the key new Protect calls should use, creating a genesis or rollover key
// when the active set demands one.
package resolver

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/dataprotect/internal/dataprotect/keyring"
)

// DefaultPropagationWindow is the fallback propagation window.
const DefaultPropagationWindow = 2 * 24 * time.Hour

// KeyFactory creates a brand-new key with the given activation/expiration
// window. The resolver calls it for both the implicit genesis event and for
// rollover keys; it never guesses at descriptor contents itself.
type KeyFactory func(activatedAt, expiresAt time.Time) (*keyring.Key, error)

// Result is the outcome of resolving a default key: the key id that should
// be used, plus any newly created keys that must be persisted and folded
// into the next snapshot.
type Result struct {
	DefaultKeyID uuid.UUID
	NewKeys      []*keyring.Key
}

// Resolve runs the algorithm against keys as observed at now.
// keyLifetime is the validity duration given to any key the resolver
// creates; propagationWindow is the rollover lead time (0 selects
// DefaultPropagationWindow).
func Resolve(now time.Time, keys []*keyring.Key, keyLifetime, propagationWindow time.Duration, newKey KeyFactory) (*Result, error) {
	now = now.UTC()
	if propagationWindow <= 0 {
		propagationWindow = DefaultPropagationWindow
	}

	active := activeKeys(now, keys)

	if len(active) == 0 {
		genesis, err := newKey(now, now.Add(keyLifetime))
		if err != nil {
			return nil, err
		}
		return &Result{DefaultKeyID: genesis.ID(), NewKeys: []*keyring.Key{genesis}}, nil
	}

	def := mostRecentlyActivated(active)
	result := &Result{DefaultKeyID: def.ID()}

	if def.ExpiresAt().Sub(now) < propagationWindow && !hasSuccessor(keys, def, propagationWindow) {
		rollover, err := newKey(def.ExpiresAt(), def.ExpiresAt().Add(keyLifetime))
		if err != nil {
			return nil, err
		}
		result.NewKeys = append(result.NewKeys, rollover)
	}

	return result, nil
}

// activeKeys returns the non-revoked keys whose validity window covers now.
func activeKeys(now time.Time, keys []*keyring.Key) []*keyring.Key {
	var out []*keyring.Key
	for _, k := range keys {
		if k.IsActive(now) {
			out = append(out, k)
		}
	}
	return out
}

// mostRecentlyActivated picks argmax activation, breaking ties by id.
func mostRecentlyActivated(active []*keyring.Key) *keyring.Key {
	best := active[0]
	for _, k := range active[1:] {
		switch {
		case k.ActivatedAt().After(best.ActivatedAt()):
			best = k
		case k.ActivatedAt().Equal(best.ActivatedAt()) && keyring.CompareIDs(k.ID(), best.ID()) > 0:
			best = k
		}
	}
	return best
}

// hasSuccessor reports whether some newer key already activates at or
// before default.expiration + propagation_window, making a rollover key
// redundant.
func hasSuccessor(keys []*keyring.Key, def *keyring.Key, propagationWindow time.Duration) bool {
	deadline := def.ExpiresAt().Add(propagationWindow)
	for _, k := range keys {
		if k.ID() == def.ID() {
			continue
		}
		newer := k.ActivatedAt().After(def.ActivatedAt()) ||
			(k.ActivatedAt().Equal(def.ActivatedAt()) && keyring.CompareIDs(k.ID(), def.ID()) > 0)
		if newer && !k.ActivatedAt().After(deadline) {
			return true
		}
	}
	return false
}

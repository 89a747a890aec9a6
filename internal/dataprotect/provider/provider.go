// Package provider implements the key-ring provider: a cached,
// auto-refreshing KeyRing snapshot with single-flight rebuilds and
// serve-stale-on-error semantics.
package provider

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
	"github.com/allisson/dataprotect/internal/dataprotect/keyring"
)

// RebuildFunc scans the repository, resolves the default key (creating a
// genesis or rollover key if needed) and returns a freshly built KeyRing.
// It must be safe to call from multiple goroutines, though the provider
// never calls it concurrently with itself.
type RebuildFunc func(ctx context.Context, now time.Time) (*keyring.KeyRing, error)

// Clock returns the current instant; overridable in tests.
type Clock func() time.Time

// MetricsRecorder observes rebuild outcomes and the state of the most
// recently published ring. github.com/allisson/dataprotect/internal/dataprotect/metrics.Recorder
// satisfies this interface; it is defined here, not imported, so this
// package never depends on a concrete metrics backend.
type MetricsRecorder interface {
	RecordRebuild(seconds float64, err error)
	RecordRingState(activeKeys int, defaultKeyExpiryUnix float64)
}

const defaultRefreshInterval = 24 * time.Hour

type snapshot struct {
	ring            *keyring.KeyRing
	refreshDeadline time.Time
}

// KeyRingProvider serves a cached KeyRing, rebuilding it on expiration with
// single-flight, serve-stale-on-error, publish-atomically semantics.
type KeyRingProvider struct {
	rebuild         RebuildFunc
	refreshInterval time.Duration
	clock           Clock
	logger          *slog.Logger
	metrics         MetricsRecorder

	current   atomic.Pointer[snapshot]
	invalid   atomic.Bool
	rebuildSF singleflight.Group
	limiter   *rate.Limiter
}

// Option configures a KeyRingProvider.
type Option func(*KeyRingProvider)

// WithRefreshInterval overrides the default 24-hour refresh interval.
func WithRefreshInterval(d time.Duration) Option {
	return func(p *KeyRingProvider) { p.refreshInterval = d }
}

// WithClock overrides the provider's notion of "now"; used in tests.
func WithClock(c Clock) Option {
	return func(p *KeyRingProvider) { p.clock = c }
}

// WithLogger overrides the provider's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *KeyRingProvider) { p.logger = l }
}

// WithMetrics attaches a MetricsRecorder that observes every rebuild
// attempt and the state of each newly published ring.
func WithMetrics(m MetricsRecorder) Option {
	return func(p *KeyRingProvider) { p.metrics = m }
}

// WithRebuildRateLimit bounds how often the provider will attempt a rebuild,
// regardless of how often Invalidate is called. A caller stuck in a retry
// loop that calls Invalidate before every Current can otherwise turn one
// misbehaving goroutine into a rebuild storm against the key repository;
// once the limit is hit, Current serves the last good snapshot instead of
// attempting another rebuild, same as a failed rebuild would.
func WithRebuildRateLimit(r rate.Limit, burst int) Option {
	return func(p *KeyRingProvider) { p.limiter = rate.NewLimiter(r, burst) }
}

// New builds a KeyRingProvider. No rebuild happens until the first Current
// call.
func New(rebuild RebuildFunc, opts ...Option) *KeyRingProvider {
	p := &KeyRingProvider{
		rebuild:         rebuild,
		refreshInterval: defaultRefreshInterval,
		clock:           time.Now,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Invalidate forces the next Current call to rebuild, regardless of the
// embedded refresh deadline.
func (p *KeyRingProvider) Invalidate() {
	p.invalid.Store(true)
}

// Current returns a non-expired KeyRing snapshot, rebuilding it if the
// refresh deadline has passed or Invalidate was called since the last
// snapshot was produced.
func (p *KeyRingProvider) Current(ctx context.Context) (*keyring.KeyRing, error) {
	now := p.clock().UTC()

	snap := p.current.Load()
	if snap != nil && !p.invalid.Load() && now.Before(snap.refreshDeadline) {
		return snap.ring, nil
	}

	if snap != nil && p.limiter != nil && !p.limiter.Allow() {
		return snap.ring, nil
	}

	result, err, _ := p.rebuildSF.Do("rebuild", func() (any, error) {
		return p.doRebuild(ctx, p.clock().UTC())
	})

	if err != nil {
		if snap != nil {
			p.logger.Error("dataprotect: key ring rebuild failed, serving stale snapshot", slog.Any("err", err))
			return snap.ring, nil
		}
		return nil, apperrors.Wrap(err, "dataprotect: key ring rebuild failed and no snapshot is available")
	}

	return result.(*snapshot).ring, nil
}

func (p *KeyRingProvider) doRebuild(ctx context.Context, now time.Time) (*snapshot, error) {
	start := p.clock()
	ring, err := p.rebuild(ctx, now)
	if p.metrics != nil {
		p.metrics.RecordRebuild(p.clock().Sub(start).Seconds(), err)
	}
	if err != nil {
		return nil, err
	}

	deadline := now.Add(p.refreshInterval)
	if def, derr := ring.DefaultKey(); derr == nil && def.ExpiresAt().Before(deadline) {
		deadline = def.ExpiresAt()
	}

	if p.metrics != nil {
		p.metrics.RecordRingState(len(activeKeysAt(ring, now)), float64(ringDefaultExpiry(ring)))
	}

	snap := &snapshot{ring: ring, refreshDeadline: deadline}
	p.current.Store(snap)
	p.invalid.Store(false)
	return snap, nil
}

// activeKeysAt returns the keys in ring that are usable as a default at now,
// for the MetricsRecorder's active-key gauge.
func activeKeysAt(ring *keyring.KeyRing, now time.Time) []*keyring.Key {
	var out []*keyring.Key
	for _, k := range ring.Keys() {
		if k.IsActive(now) {
			out = append(out, k)
		}
	}
	return out
}

// ringDefaultExpiry returns the default key's expiration as a Unix
// timestamp, or 0 if the ring has no resolvable default.
func ringDefaultExpiry(ring *keyring.KeyRing) int64 {
	def, err := ring.DefaultKey()
	if err != nil {
		return 0
	}
	return def.ExpiresAt().Unix()
}

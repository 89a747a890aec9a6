// Package metrics instruments the key-ring provider's rebuild cycle with
// Prometheus counters/histograms/gauges, since the serve-stale-on-error
// contract is otherwise unobservable from outside the provider package.
// Uses github.com/prometheus/client_golang directly rather than an OTel
// meter-provider layer: a handful of instruments with one consumer don't
// warrant the indirection, and the host application owns the registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder records key-ring provider rebuild outcomes. A nil *Recorder is
// safe to call methods on: every method no-ops, so wiring metrics is
// optional for callers of provider.New.
type Recorder struct {
	rebuildsTotal    *prometheus.CounterVec
	rebuildDuration  prometheus.Histogram
	activeKeysGauge  prometheus.Gauge
	defaultKeyExpiry prometheus.Gauge
}

// NewRecorder registers the dataprotect provider's instruments against reg.
// Pass prometheus.DefaultRegisterer to expose them on the process-wide
// /metrics handler, or a dedicated *prometheus.Registry for isolation in
// tests.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		rebuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dataprotect",
			Subsystem: "keyring",
			Name:      "rebuilds_total",
			Help:      "Total number of key ring rebuild attempts, labeled by outcome.",
		}, []string{"outcome"}),
		rebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dataprotect",
			Subsystem: "keyring",
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of key ring rebuild calls, successful or not.",
			Buckets:   prometheus.DefBuckets,
		}),
		activeKeysGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dataprotect",
			Subsystem: "keyring",
			Name:      "active_keys",
			Help:      "Number of non-revoked, currently-active keys in the last published ring.",
		}),
		defaultKeyExpiry: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dataprotect",
			Subsystem: "keyring",
			Name:      "default_key_expiry_unixtime",
			Help:      "Unix timestamp at which the current default key expires.",
		}),
	}

	for _, c := range []prometheus.Collector{r.rebuildsTotal, r.rebuildDuration, r.activeKeysGauge, r.defaultKeyExpiry} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RecordRebuild records one rebuild attempt's outcome and wall-clock cost.
func (r *Recorder) RecordRebuild(seconds float64, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.rebuildsTotal.WithLabelValues(outcome).Inc()
	r.rebuildDuration.Observe(seconds)
}

// RecordRingState updates the gauges describing the most recently published
// ring: how many keys are active "now", and when the default key expires.
func (r *Recorder) RecordRingState(activeKeys int, defaultKeyExpiryUnix float64) {
	if r == nil {
		return
	}
	r.activeKeysGauge.Set(float64(activeKeys))
	r.defaultKeyExpiry.Set(defaultKeyExpiryUnix)
}

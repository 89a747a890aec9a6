package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecorderRegistersInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)
	require.NotNil(t, r)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["dataprotect_keyring_rebuild_duration_seconds"])
	assert.True(t, names["dataprotect_keyring_active_keys"])
	assert.True(t, names["dataprotect_keyring_default_key_expiry_unixtime"])
}

func TestRecordRebuildTracksOutcomeLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.RecordRebuild(0.01, nil)
	r.RecordRebuild(0.02, errors.New("boom"))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "dataprotect_keyring_rebuilds_total" {
			continue
		}
		assert.Len(t, mf.GetMetric(), 2)
	}
}

func TestRecordRingState(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.RecordRingState(3, 1700000000)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "dataprotect_keyring_active_keys" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, float64(3), mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found)
}

func TestNilRecorderMethodsAreNoOps(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordRebuild(1, nil)
		r.RecordRingState(1, 1)
	})
}

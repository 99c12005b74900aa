package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-data-processor/internal/model"
	"go-data-processor/internal/store"
)

func TestMetricsRecordJobTotals(t *testing.T) {
	registry := store.NewJobRegistry()
	m := NewMetrics(registry, time.Hour)

	m.RecordJob(100*time.Millisecond, 10, true)
	m.RecordJob(300*time.Millisecond, 20, true)
	m.RecordJob(0, 0, false)

	snap := m.Snapshot()
	assert.Equal(t, uint64(30), snap.TotalRecordsProcessed)
	// The mean runs over the two completed jobs, the error rate over all
	// three finished ones.
	assert.InDelta(t, 200.0, snap.AverageProcessingTimeMs, 0.001)
	assert.InDelta(t, 1.0/3.0, snap.ErrorRate, 0.001)
}

func TestMetricsFailuresDoNotDiluteAverage(t *testing.T) {
	registry := store.NewJobRegistry()
	m := NewMetrics(registry, time.Hour)

	m.RecordJob(100*time.Millisecond, 5, true)
	m.RecordJob(0, 0, false)
	assert.InDelta(t, 100.0, m.Snapshot().AverageProcessingTimeMs, 0.001)

	// A failure before any completion leaves the mean at zero.
	m2 := NewMetrics(registry, time.Hour)
	m2.RecordJob(0, 0, false)
	assert.Zero(t, m2.Snapshot().AverageProcessingTimeMs)
}

func TestMetricsSnapshotIsCopy(t *testing.T) {
	registry := store.NewJobRegistry()
	m := NewMetrics(registry, time.Hour)

	before := m.Snapshot()
	m.RecordJob(time.Second, 100, true)
	assert.Equal(t, uint64(0), before.TotalRecordsProcessed)

	after := m.Snapshot()
	assert.Equal(t, uint64(100), after.TotalRecordsProcessed)
}

func TestMetricsTracksActiveJobs(t *testing.T) {
	registry := store.NewJobRegistry()
	m := NewMetrics(registry, time.Hour)

	_, err := registry.Submit("a", model.ProcessingConfig{})
	require.NoError(t, err)
	m.RecordJob(0, 0, true)

	assert.Equal(t, 1, m.Snapshot().ActiveJobs)
}

func TestMetricsStartStop(t *testing.T) {
	registry := store.NewJobRegistry()
	m := NewMetrics(registry, 10*time.Millisecond)

	m.Start()
	time.Sleep(30 * time.Millisecond)
	m.Stop()

	// The refresh loop has run at least once and Stop leaves the
	// snapshot readable.
	assert.Less(t, m.Snapshot().UptimeSeconds, uint64(5))
}

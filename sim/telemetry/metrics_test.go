package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/occupancy-sim/sim"
)

func findFamily(t *testing.T, families []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func TestRunMetrics_Observe(t *testing.T) {
	m := NewRunMetrics()
	m.Observe(sim.Summary{Samples: 1000, MaxObserved: 7, Mean: 2.5}, 2.4, 30*time.Millisecond)
	m.Observe(sim.Summary{Samples: 500, MaxObserved: -1}, 0, 10*time.Millisecond)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.runs))
	assert.Equal(t, 1500.0, promtest.ToFloat64(m.samples))
	assert.Equal(t, 0.0, promtest.ToFloat64(m.meanOcc), "gauge holds the latest run")
	assert.Equal(t, 0.0, promtest.ToFloat64(m.maxOcc), "empty run reports zero, not -1")

	assert.Equal(t, 1, promtest.CollectAndCount(m.runDuration))
	families, err := m.registry.Gather()
	require.NoError(t, err)
	hist := findFamily(t, families, "occupancy_sim_run_duration_seconds")
	require.Len(t, hist.GetMetric(), 1)
	assert.Equal(t, uint64(2), hist.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.04, hist.GetMetric()[0].GetHistogram().GetSampleSum(), 1e-9)
}

func TestRunMetrics_WriteTextfile(t *testing.T) {
	m := NewRunMetrics()
	m.Observe(sim.Summary{Samples: 10, MaxObserved: 3, Mean: 1.5}, 1.5, time.Millisecond)

	path := filepath.Join(t.TempDir(), "occupancy.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "occupancy_sim_runs_total 1")
	assert.Contains(t, out, "occupancy_sim_max_occupancy 3")
	assert.Contains(t, out, "occupancy_sim_expected_mean_occupancy 1.5")

	err = m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "occupancy.prom"))
	assert.Error(t, err)
}

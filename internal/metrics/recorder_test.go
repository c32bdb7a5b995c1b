package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("pages/render", 150*time.Millisecond)
	pr.ObserveStageMemory("pages/render", 4096)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("pages/render", ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeSuccess)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"sitegen_stage_duration_seconds",
		"sitegen_stage_memory_delta_bytes",
		"sitegen_build_duration_seconds",
		"sitegen_stage_results_total",
		"sitegen_build_outcomes_total",
	} {
		require.True(t, names[want], "missing metric family %s", want)
	}
}

func TestPrometheusRecorderNilRegistry(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	// Must not panic against its private registry.
	pr.IncBuildOutcome(BuildOutcomeFailed)
	pr.IncStageResult("content/load", ResultFatal)
}

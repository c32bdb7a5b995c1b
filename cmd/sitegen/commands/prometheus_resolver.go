//go:build prometheus

package commands

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

var buildRegistry = prom.NewRegistry()

// resolveRecorder returns the Prometheus-backed metrics recorder compiled in
// with the prometheus tag. One registry per process, one recorder per registry.
func resolveRecorder() metrics.Recorder { return metrics.NewPrometheusRecorder(buildRegistry) }

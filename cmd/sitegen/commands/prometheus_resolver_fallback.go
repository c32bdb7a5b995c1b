//go:build !prometheus

package commands

import "git.home.luguber.info/inful/sitegen/internal/metrics"

// resolveRecorder returns the noop recorder when the prometheus tag is not set.
func resolveRecorder() metrics.Recorder { return metrics.NoopRecorder{} }

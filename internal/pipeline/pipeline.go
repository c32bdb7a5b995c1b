// Package pipeline turns a content tree into a rendered output tree through
// a fixed sequence of stages sharing one build state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// Stage is a discrete unit of work over the shared build state. Stages are
// declared in a static ordered registry; a stage sees every write made by
// its predecessors and must not assume anything about its successors.
type Stage interface {
	Name() string
	// Init prepares the stage for this run. An Init error aborts the build.
	Init(s *State) error
	// CanProcess reports whether the stage participates in this run.
	// Ineligible stages are never executed and contribute no metrics entry.
	CanProcess(s *State) bool
	Process(ctx context.Context, s *State) error
}

// StageError is a failure attributed to a named stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// Pipeline executes the declared stages in order against one State.
type Pipeline struct {
	state    *State
	stages   []Stage
	recorder metrics.Recorder
}

// New constructs a pipeline over workDir with the default stage registry.
func New(cfg *config.Config, workDir string, opts build.Options) *Pipeline {
	return newWithStages(cfg, workDir, opts, defaultStages())
}

func newWithStages(cfg *config.Config, workDir string, opts build.Options, stages []Stage) *Pipeline {
	outputDir := cfg.Output.Directory
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(workDir, outputDir)
	}
	return &Pipeline{
		state: &State{
			Options:   opts,
			Config:    cfg,
			WorkDir:   workDir,
			OutputDir: outputDir,
		},
		stages:   stages,
		recorder: metrics.NoopRecorder{},
	}
}

// WithRecorder swaps the metrics recorder (defaults to noop).
func (p *Pipeline) WithRecorder(r metrics.Recorder) *Pipeline {
	p.recorder = r
	return p
}

// Run executes the pipeline: init every stage, drop ineligible ones, then
// execute the remainder strictly in declaration order. The first failure
// aborts the run; partial output already on disk is left in place.
func (p *Pipeline) Run(ctx context.Context) (*Metrics, error) {
	m := newMetrics()

	if p.state.Options.ClearCache {
		if err := p.clearCache(); err != nil {
			return m, fmt.Errorf("clear cache: %w", err)
		}
	}

	if p.state.Config.Output.Clean && !p.state.Options.DryRun {
		if err := os.RemoveAll(p.state.OutputDir); err != nil {
			return m, fmt.Errorf("clean output dir: %w", err)
		}
	}

	eligible := make([]Stage, 0, len(p.stages))
	for _, st := range p.stages {
		if err := st.Init(p.state); err != nil {
			return m, newStageError(st.Name(), err)
		}
		if !st.CanProcess(p.state) {
			slog.Debug("Stage skipped", "stage", st.Name())
			p.recorder.IncStageResult(st.Name(), metrics.ResultSkipped)
			continue
		}
		eligible = append(eligible, st)
	}

	var ms runtime.MemStats
	for _, st := range eligible {
		select {
		case <-ctx.Done():
			return m, newStageError(st.Name(), ctx.Err())
		default:
		}
		runtime.ReadMemStats(&ms)
		heapBefore := int64(ms.HeapAlloc)
		t0 := time.Now()
		err := st.Process(ctx, p.state)
		dur := time.Since(t0)
		runtime.ReadMemStats(&ms)
		delta := int64(ms.HeapAlloc) - heapBefore

		if err != nil {
			p.recorder.IncStageResult(st.Name(), metrics.ResultFatal)
			return m, newStageError(st.Name(), err)
		}
		m.addStage(st.Name(), dur, delta)
		p.recorder.ObserveStageDuration(st.Name(), dur)
		p.recorder.ObserveStageMemory(st.Name(), delta)
		p.recorder.IncStageResult(st.Name(), metrics.ResultSuccess)
		slog.Debug("Stage completed", "stage", st.Name(), "duration", dur)
	}

	m.finish()
	p.recorder.ObserveBuildDuration(m.Duration)
	return m, nil
}

// clearCache removes cache entries matching the configured pattern, or the
// whole cache directory when no pattern is given.
func (p *Pipeline) clearCache() error {
	dir := p.state.Config.Cache.Directory
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.state.WorkDir, dir)
	}
	return clearCacheDir(dir, p.state.Options.ClearCachePattern)
}

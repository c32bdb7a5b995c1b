package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/pipeline"
	"git.home.luguber.info/inful/sitegen/internal/serve"
)

// BuildCmd runs the pipeline once in the current process.
type BuildCmd struct {
	Path              string   `arg:"" optional:"" default:"." help:"Site directory."`
	Config            []string `short:"c" name:"config" help:"Extra configuration files merged over sitegen.yaml."`
	Drafts            bool     `short:"d" help:"Include draft pages."`
	DryRun            bool     `name:"dry-run" help:"Run every stage but write nothing."`
	Page              string   `name:"page" help:"Build a single page, given as its path under the pages directory."`
	Optimize          bool     `name:"optimize" help:"Run the optimization stages."`
	OptimizeMode      string   `name:"optimize-mode" enum:",html,css,js" default:"" help:"Restrict optimization to one asset class."`
	ClearCache        bool     `name:"clear-cache" help:"Drop the build cache before running."`
	ClearCachePattern string   `name:"clear-cache-pattern" help:"Only drop cache entries matching this glob."`
}

func (b *BuildCmd) Run(g *Global) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	workDir, err := filepath.Abs(b.Path)
	if err != nil {
		return fmt.Errorf("resolve site directory: %w", err)
	}
	cfg, err := config.Load(workDir, b.Config...)
	if err != nil {
		return err
	}

	if os.Getenv(serve.ChildEnvFlag) == "" {
		startupSelfCheck(workDir, cfg, g.Version)
	}

	opts := build.Options{
		Drafts:            b.Drafts,
		DryRun:            b.DryRun,
		Page:              b.Page,
		Optimize:          b.Optimize || b.OptimizeMode != "",
		OptimizeMode:      b.OptimizeMode,
		ClearCache:        b.ClearCache || b.ClearCachePattern != "",
		ClearCachePattern: b.ClearCachePattern,
		Verbose:           g.Verbose,
	}

	rec := resolveRecorder()
	p := pipeline.New(cfg, workDir, opts).WithRecorder(rec)
	report, err := p.Run(ctx)
	if err != nil {
		rec.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return fmt.Errorf("%w: %w", build.ErrBuild, err)
	}
	rec.IncBuildOutcome(metrics.BuildOutcomeSuccess)

	for _, st := range report.Stages {
		slog.Debug("Stage", "name", st.Name, "duration", st.Duration, "memory_delta", st.MemoryDelta)
	}
	slog.Info("Build complete", "duration", report.Duration, "stages", len(report.Stages))
	return nil
}

// startupSelfCheck warns about a suspicious site layout. Suppressed in build
// children spawned by serve, which already ran it once in the parent.
func startupSelfCheck(workDir string, cfg *config.Config, version string) {
	slog.Debug("sitegen", "version", version)
	pagesDir := filepath.Join(workDir, cfg.Pages.Directory)
	if _, err := os.Stat(pagesDir); err != nil {
		slog.Warn("Pages directory not found; the site will have no content", "path", pagesDir)
	}
}

package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/serve"
)

// ServeCmd builds the site, serves it locally through a server child and
// rebuilds whenever the source tree changes.
type ServeCmd struct {
	Path              string   `arg:"" optional:"" default:"." help:"Site directory."`
	Config            []string `short:"c" name:"config" help:"Extra configuration files merged over sitegen.yaml."`
	Drafts            bool     `short:"d" help:"Include draft pages."`
	Page              string   `name:"page" help:"Build a single page, given as its path under the pages directory."`
	Open              bool     `short:"o" help:"Open the site in the default browser."`
	Host              string   `name:"host" help:"Server host (defaults to configuration)."`
	Port              int      `name:"port" help:"Server port (defaults to configuration)."`
	Optimize          bool     `name:"optimize" help:"Run the optimization stages on every build."`
	OptimizeMode      string   `name:"optimize-mode" enum:",html,css,js" default:"" help:"Restrict optimization to one asset class."`
	ClearCache        bool     `name:"clear-cache" help:"Drop the build cache before every build."`
	ClearCachePattern string   `name:"clear-cache-pattern" help:"Only drop cache entries matching this glob."`
	NoIgnoreVCS       bool     `name:"no-ignore-vcs" help:"Also watch paths ignored by version control."`
	Timeout           int      `name:"timeout" default:"120" help:"Build child timeout in seconds."`
	RebuildEvery      duration `name:"rebuild-every" default:"0" help:"Force a full rebuild at this interval (0 disables)."`
}

type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	if string(text) == "0" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

func (s *ServeCmd) Run(g *Global) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	workDir, err := filepath.Abs(s.Path)
	if err != nil {
		return fmt.Errorf("%w: resolve site directory: %v", build.ErrSetup, err)
	}
	cfg, err := config.Load(workDir, s.Config...)
	if err != nil {
		return fmt.Errorf("%w: %v", build.ErrSetup, err)
	}

	host := cfg.Server.Host
	if s.Host != "" {
		host = s.Host
	}
	port := cfg.Server.Port
	if s.Port != 0 {
		port = s.Port
	}

	loop := &serve.Loop{
		Config:      cfg,
		WorkDir:     workDir,
		ConfigPaths: s.Config,
		Options: build.Options{
			Drafts:            s.Drafts,
			Page:              s.Page,
			Optimize:          s.Optimize || s.OptimizeMode != "",
			OptimizeMode:      s.OptimizeMode,
			ClearCache:        s.ClearCache || s.ClearCachePattern != "",
			ClearCachePattern: s.ClearCachePattern,
			Verbose:           g.Verbose,
		},
		Host:         host,
		Port:         port,
		Timeout:      time.Duration(s.Timeout) * time.Second,
		OpenBrowser:  s.Open,
		NoIgnoreVCS:  s.NoIgnoreVCS,
		RebuildEvery: time.Duration(s.RebuildEvery),
	}
	return loop.Run(ctx)
}

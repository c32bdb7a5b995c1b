package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Global carries state shared by all subcommands: the version resolved once
// during process initialization and the verbosity of the run.
type Global struct {
	Version string
	Verbose bool
}

// CLI is the root command definition.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Build the site once"`
	Serve  ServeCmd  `cmd:"" help:"Build, serve locally and rebuild on change"`
	Router RouterCmd `cmd:"" hidden:"" help:"Internal: static server child spawned by serve"`
}

// AfterApply runs after flag parsing; sets up logging once and loads an
// optional .env file.
func (c *CLI) AfterApply() error {
	_ = godotenv.Load()
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

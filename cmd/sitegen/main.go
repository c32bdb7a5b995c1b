package main

import (
	"runtime/debug"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitegen/cmd/sitegen/commands"
)

func main() {
	version := resolveVersion()
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("sitegen"),
		kong.Description("Static site generator with a local rebuild-and-serve loop."),
		kong.Vars{"version": version},
	)
	err := ctx.Run(&commands.Global{Version: version, Verbose: cli.Verbose})
	ctx.FatalIfErrorf(err)
}

// resolveVersion reads the module version once at startup; components that
// need it receive it explicitly.
func resolveVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "devel"
	}
	return info.Main.Version
}

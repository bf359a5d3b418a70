package main

import (
	"github.com/alecthomas/kong"

	"github.com/scribe-press/scribe/cmd/scribe/commands"
)

const version = "scribe 0.4.0"

func main() {
	var cli commands.CLI
	g := &commands.Global{}

	ctx := kong.Parse(&cli,
		kong.Name("scribe"),
		kong.Description("Build and preview XML-authored document projects."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Bind(g, &cli),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

package commands

import (
	"context"
	"os"

	"github.com/scribe-press/scribe/internal/builder"
	"github.com/scribe-press/scribe/internal/buildlog"
	"github.com/scribe-press/scribe/internal/project"
)

// BuildCmd builds one target: the named manifest target merged with any
// supplied flags, or a purely flag-defined target when no manifest exists.
type BuildCmd struct {
	Target      string            `arg:"" optional:"" help:"Alias of the manifest target to build (defaults to the first target)."`
	Format      *string           `short:"f" help:"Output format (html, latex, pdf, ...)."`
	Input       *string           `short:"i" name:"input" help:"Path to the main source file."`
	Output      *string           `short:"o" help:"Directory to build files into."`
	Publication *string           `short:"p" help:"Path to the publication file."`
	XSL         *string           `short:"x" name:"xsl" help:"Path to a custom XSL transform."`
	StringParam map[string]string `name:"stringparam" help:"String parameters passed to the engine (key=value, repeatable)."`
	Clean       bool              `help:"Remove the output directory before building."`
}

func (b *BuildCmd) Run(g *Global, _ *CLI) error {
	ov := project.Overrides{
		Format:       b.Format,
		Source:       b.Input,
		Output:       b.Output,
		Publication:  b.Publication,
		XSL:          b.XSL,
		StringParams: b.StringParam,
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	proj, err := project.Open(cwd, g.Logger)
	if err != nil {
		g.Logger.Error("Failed to load project manifest", "error", err)
		return err
	}

	var target project.Target
	var store *buildlog.Store
	if !proj.HasManifest() {
		g.Logger.Warn("No project manifest was found; run `scribe init` to generate one")
		g.Logger.Warn("Continuing using command-line arguments")
		target = project.ResolveCommandLine(ov)
	} else {
		g.Logger.Info("Project found", "root", proj.Root())
		if b.Target == "" {
			g.Logger.Info("No build target was supplied; the first target of the manifest will be built")
		}
		target, err = proj.Target(b.Target, ov)
		if err != nil {
			g.Logger.Error("Build target could not be resolved", "error", err)
			return err
		}
		target = proj.AbsTarget(target)

		store, err = buildlog.OpenProject(proj.Root())
		if err != nil {
			g.Logger.Warn("Build log unavailable; continuing without it", "error", err)
		} else {
			defer store.Close()
		}
	}

	command := proj.Manifest().Scalar("project/engine/command", g.Config.Engine.Command)
	engine := builder.NewEngine(command, store, g.Logger)
	return engine.Build(context.Background(), target, b.Clean)
}

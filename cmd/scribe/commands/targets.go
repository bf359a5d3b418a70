package commands

import (
	"fmt"
	"os"

	"github.com/scribe-press/scribe/internal/project"
)

// TargetsCmd lists the build targets declared in the project manifest.
type TargetsCmd struct{}

func (t *TargetsCmd) Run(g *Global, _ *CLI) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	proj, err := project.Open(cwd, g.Logger)
	if err != nil {
		g.Logger.Error("Failed to load project manifest", "error", err)
		return err
	}
	if !proj.HasManifest() {
		g.Logger.Info("No project manifest found; run `scribe init` to generate one")
		return nil
	}
	names := proj.TargetNames()
	if len(names) == 0 {
		g.Logger.Info("Project manifest declares no targets")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

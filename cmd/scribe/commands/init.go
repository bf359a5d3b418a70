package commands

import (
	"os"

	"github.com/scribe-press/scribe/internal/scaffold"
)

// InitCmd generates a manifest and starter files for a new project in the
// current directory, mainly intended for adopting existing documents.
type InitCmd struct {
	Force bool `short:"f" help:"Initialize even when a project already exists; colliding files get timestamped names."`
}

func (i *InitCmd) Run(g *Global, _ *CLI) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	return scaffold.Init(cwd, i.Force, g.Logger)
}

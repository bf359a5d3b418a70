package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/scribe-press/scribe/internal/builder"
	"github.com/scribe-press/scribe/internal/buildlog"
	"github.com/scribe-press/scribe/internal/preview"
	"github.com/scribe-press/scribe/internal/project"
)

// ViewCmd serves built output on a local HTTP server, optionally watching
// the target's source tree and rebuilding on change.
type ViewCmd struct {
	Target string  `arg:"" optional:"" help:"Alias of the manifest target to preview (defaults to the first target)."`
	Access *string `short:"a" help:"private serves loopback only; public serves all interfaces."`
	Port   *int    `short:"p" help:"Port for the local server."`
	Dir    *string `short:"d" name:"dir" help:"Serve files from this directory instead of a resolved target."`
	Watch  bool    `short:"w" help:"Watch the target's source tree and rebuild on changes (html targets only)."`
	Build  bool    `short:"b" help:"Run a build before starting the server."`
}

func (v *ViewCmd) Run(g *Global, _ *CLI) error {
	sigctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	access := g.Config.Preview.Access
	if v.Access != nil {
		access = *v.Access
	}
	policy, err := preview.ParseBindPolicy(access)
	if err != nil {
		g.Logger.Error("Invalid access policy", "error", err)
		return err
	}
	port := g.Config.Preview.Port
	if v.Port != nil {
		port = *v.Port
	}

	// Explicit directory mode bypasses target resolution entirely.
	if v.Dir != nil {
		server := preview.NewServer(*v.Dir, policy, port, g.Logger)
		return preview.NewSession(server, nil, g.Logger).Run(sigctx)
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
	target, err := proj.Target(v.Target, project.Overrides{})
	if err != nil {
		g.Logger.Error("Target could not be found", "target", v.Target, "error", err)
		return err
	}
	target = proj.AbsTarget(target)

	var store *buildlog.Store
	if proj.HasManifest() {
		if store, err = buildlog.OpenProject(proj.Root()); err != nil {
			g.Logger.Warn("Build log unavailable; continuing without it", "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	command := proj.Manifest().Scalar("project/engine/command", g.Config.Engine.Command)
	engine := builder.NewEngine(command, store, g.Logger)

	if v.Build || v.Watch {
		if err := engine.Build(sigctx, target, false); err != nil {
			g.Logger.Error("Initial build failed; serving existing output", "error", err)
		}
	}

	server := preview.NewServer(target.OutputDir, policy, port, g.Logger)
	if store != nil {
		server.SetHistory(store)
	}

	var watcher *preview.Watcher
	if v.Watch {
		if target.Format != project.FormatHTML {
			g.Logger.Warn("Watch mode only supports html targets; continuing without watch", "format", target.Format)
		} else {
			watcher, err = newRebuildWatcher(g, engine, server.Metrics(), target)
			if err != nil {
				g.Logger.Error("Failed to set up source watcher", "error", err)
				return err
			}
		}
	}

	return preview.NewSession(server, watcher, g.Logger).Run(sigctx)
}

// newRebuildWatcher binds a watcher to the directory containing the target's
// source file. Every event rebuilds the target's HTML output with the
// publication file's absolute path injected under the "publisher" key.
func newRebuildWatcher(g *Global, engine *builder.Engine, metrics *preview.Metrics, target project.Target) (*preview.Watcher, error) {
	params := make(map[string]string, len(target.StringParams)+1)
	for k, val := range target.StringParams {
		params[k] = val
	}
	pubAbs, err := filepath.Abs(target.Publication)
	if err != nil {
		return nil, err
	}
	params["publisher"] = pubAbs

	rebuild := func() {
		g.Logger.Info("Changes to source found, rebuilding target", "target", target.Name)
		metrics.RebuildStarted()
		if err := engine.BuildHTML(context.Background(), target.Name, target.Source, target.OutputDir, params); err != nil {
			metrics.RebuildFailed()
		}
	}
	return preview.NewWatcher(filepath.Dir(target.Source), rebuild, g.Logger)
}

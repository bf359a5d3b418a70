// Package commands defines the scribe CLI surface.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/scribe-press/scribe/internal/config"
)

// Global carries state shared by all subcommands.
type Global struct {
	Config *config.Config
	Logger *slog.Logger
}

// CLI is the root command definition with global flags.
type CLI struct {
	Config  string           `short:"c" help:"Tool configuration file path." default:"scribe.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging."`
	Version kong.VersionFlag `name:"version" help:"Show version and exit."`

	Build   BuildCmd   `cmd:"" help:"Build a target from the project manifest (or from flags alone)."`
	View    ViewCmd    `cmd:"" help:"Preview built output locally, optionally rebuilding on source changes."`
	Targets TargetsCmd `cmd:"" help:"List build targets declared in the project manifest."`
	Init    InitCmd    `cmd:"" help:"Generate a project manifest and starter files in the current directory."`
	History HistoryCmd `cmd:"" help:"Show recent builds recorded for this project."`
}

// AfterApply runs after flag parsing: set up logging once, load tool config.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	g.Logger = logger

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	g.Config = cfg
	return nil
}

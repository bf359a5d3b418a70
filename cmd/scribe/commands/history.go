package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/scribe-press/scribe/internal/buildlog"
	"github.com/scribe-press/scribe/internal/project"
)

// HistoryCmd prints recent builds recorded in the project's build log.
type HistoryCmd struct {
	Limit int `short:"n" name:"limit" default:"10" help:"Number of builds to show."`
}

func (h *HistoryCmd) Run(g *Global, _ *CLI) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	root, ok := project.Locate(cwd)
	if !ok {
		g.Logger.Error("No project manifest found; build history is kept per project")
		return fmt.Errorf("no project manifest found")
	}

	store, err := buildlog.OpenProject(root)
	if err != nil {
		g.Logger.Error("Failed to open build log", "error", err)
		return err
	}
	defer store.Close()

	records, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		g.Logger.Error("Failed to read build history", "error", err)
		return err
	}
	if len(records) == 0 {
		g.Logger.Info("No builds recorded yet")
		return nil
	}

	fmt.Printf("%-25s %-12s %-8s %-10s %s\n", "STARTED", "TARGET", "FORMAT", "DURATION", "RESULT")
	for _, r := range records {
		result := "ok"
		if !r.Success {
			result = "failed: " + r.Error
		}
		fmt.Printf("%-25s %-12s %-8s %-10s %s\n",
			r.Started.Format(time.RFC3339), r.Target, r.Format, r.Duration.Round(time.Millisecond), result)
	}
	return nil
}

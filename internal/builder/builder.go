// Package builder invokes the external document-conversion engine. The
// engine is an opaque collaborator: Scribe hands it a resolved target and
// only observes success or failure.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scribe-press/scribe/internal/buildlog"
	"github.com/scribe-press/scribe/internal/project"
)

// Builder is the narrow interface the rest of the tool builds through.
type Builder interface {
	// Build runs a full build of one resolved target.
	Build(ctx context.Context, target project.Target, clean bool) error
	// BuildHTML performs the watch-triggered HTML rebuild path for the
	// named target with an explicit source, output directory, and
	// string-parameter mapping.
	BuildHTML(ctx context.Context, target, source, outputDir string, params map[string]string) error
}

// ErrNoEngine indicates no conversion engine command is configured.
var ErrNoEngine = errors.New("no conversion engine command configured")

// Engine runs the configured external engine command. When a build log store
// is attached, every attempt is recorded there under a fresh build ID.
type Engine struct {
	command string
	log     *buildlog.Store // optional
	logger  *slog.Logger
}

// NewEngine creates an Engine for the given command. store may be nil
// (manifest-less builds have no project directory to keep a log in).
func NewEngine(command string, store *buildlog.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{command: command, log: store, logger: logger}
}

// Build runs a full build for target. With clean set, the output directory is
// removed first — unless it overlaps the source tree, in which case cleaning
// is refused with a warning and the build proceeds.
func (e *Engine) Build(ctx context.Context, target project.Target, clean bool) error {
	if e.command == "" {
		return ErrNoEngine
	}
	if clean {
		e.cleanOutput(target)
	}
	args := buildArgs(target)
	return e.run(ctx, target.Name, target.Format, target.Source, args)
}

// BuildHTML rebuilds target's HTML output from source into outputDir with
// the given string parameters. Used by the preview watcher; target carries
// through to the build log so live rebuilds show up under their name.
func (e *Engine) BuildHTML(ctx context.Context, target, source, outputDir string, params map[string]string) error {
	if e.command == "" {
		return ErrNoEngine
	}
	args := []string{"--format", project.FormatHTML, "--source", source, "--output", outputDir}
	args = append(args, paramArgs(params)...)
	return e.run(ctx, target, project.FormatHTML, source, args)
}

func (e *Engine) run(ctx context.Context, targetName, format, source string, args []string) error {
	buildID := uuid.NewString()
	started := time.Now()
	e.logger.Info("Starting build", "build_id", buildID, "target", targetName, "format", format)

	cmd := exec.CommandContext(ctx, e.command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	duration := time.Since(started)

	rec := buildlog.Record{
		ID:       buildID,
		Target:   targetName,
		Format:   format,
		Source:   source,
		Started:  started,
		Duration: duration,
		Success:  err == nil,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	e.record(ctx, rec)

	if err != nil {
		e.logger.Error("Build failed", "build_id", buildID, "target", targetName, "duration", duration, "error", err)
		return fmt.Errorf("engine build: %w", err)
	}
	e.logger.Info("Build finished", "build_id", buildID, "target", targetName, "duration", duration)
	return nil
}

func (e *Engine) record(ctx context.Context, rec buildlog.Record) {
	if e.log == nil {
		return
	}
	if err := e.log.Append(ctx, rec); err != nil {
		e.logger.Warn("Failed to record build in build log", "build_id", rec.ID, "error", err)
	}
}

// cleanOutput removes the output directory unless it contains (or is
// contained by) the source file's directory.
func (e *Engine) cleanOutput(target project.Target) {
	out, err1 := filepath.Abs(target.OutputDir)
	src, err2 := filepath.Abs(filepath.Dir(target.Source))
	if err1 != nil || err2 != nil || pathsOverlap(out, src) {
		e.logger.Warn("Refusing to clean output directory that overlaps the source tree", "output", target.OutputDir)
		return
	}
	if err := os.RemoveAll(out); err != nil {
		e.logger.Warn("Failed to clean output directory", "output", out, "error", err)
		return
	}
	e.logger.Info("Cleaned output directory", "output", out)
}

func pathsOverlap(a, b string) bool {
	return a == b || isUnder(a, b) || isUnder(b, a)
}

func isUnder(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// buildArgs assembles engine arguments for a full target build.
func buildArgs(target project.Target) []string {
	args := []string{
		"--format", target.Format,
		"--source", target.Source,
		"--output", target.OutputDir,
	}
	if target.Publication != "" {
		args = append(args, "--publication", target.Publication)
	}
	if target.XSL != "" {
		args = append(args, "--xsl", target.XSL)
	}
	args = append(args, paramArgs(target.StringParams)...)
	return args
}

// paramArgs renders string parameters as repeatable --param flags, in sorted
// key order for stable invocations.
func paramArgs(params map[string]string) []string {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, "--param", k+"="+params[k])
	}
	return args
}

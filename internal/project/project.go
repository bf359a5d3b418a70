package project

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Project is one document project: a root directory (where the manifest
// lives) plus its resolved manifest. The root, once located, is stable for
// the process lifetime.
type Project struct {
	root     string
	manifest *Manifest
	logger   *slog.Logger
}

// Open locates and parses the project containing startDir. When no manifest
// exists anywhere up the tree, the returned Project carries a synthetic empty
// manifest and HasManifest reports false — this is not an error. A manifest
// that exists but cannot be parsed is an error.
func Open(startDir string, logger *slog.Logger) (*Project, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, ok := Locate(startDir)
	if !ok {
		return &Project{manifest: EmptyManifest(logger), logger: logger}, nil
	}
	m, err := LoadManifest(root, logger)
	if err != nil {
		return nil, err
	}
	return &Project{root: root, manifest: m, logger: logger}, nil
}

// Root returns the project root directory, empty when no manifest was found.
func (p *Project) Root() string { return p.root }

// HasManifest reports whether a manifest file was located on disk.
func (p *Project) HasManifest() bool { return !p.manifest.Synthetic() }

// Manifest returns the parsed (possibly synthetic) manifest.
func (p *Project) Manifest() *Manifest { return p.manifest }

// TargetNames lists the aliases declared in the manifest, in document order.
func (p *Project) TargetNames() []string { return p.manifest.TargetNames() }

// Target resolves a build target by alias, merged with overrides. An empty
// alias selects the first target in the manifest. Returns ErrTargetNotFound
// when the alias is absent, or when the default target is requested from a
// manifest with zero targets.
func (p *Project) Target(alias string, ov Overrides) (Target, error) {
	el := p.manifest.TargetElement(alias)
	if el == nil {
		if alias == "" {
			return Target{}, fmt.Errorf("%w: manifest declares no targets", ErrTargetNotFound)
		}
		return Target{}, fmt.Errorf("%w: %q", ErrTargetNotFound, alias)
	}
	return Resolve(el, ov), nil
}

// Abs resolves a project-relative path against the project root. Paths are
// returned as-is when already absolute or when no root is known.
func (p *Project) Abs(path string) string {
	if path == "" || filepath.IsAbs(path) || p.root == "" {
		return path
	}
	return filepath.Join(p.root, path)
}

// AbsTarget returns a copy of t with its path fields resolved against the
// project root, so builds behave the same from any working directory.
func (p *Project) AbsTarget(t Target) Target {
	t.Source = p.Abs(t.Source)
	t.OutputDir = p.Abs(t.OutputDir)
	t.Publication = p.Abs(t.Publication)
	t.XSL = p.Abs(t.XSL)
	return t
}

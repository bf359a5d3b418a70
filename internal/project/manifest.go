// Package project implements manifest location, parsing, and build-target
// resolution for Scribe projects.
//
// A project is identified by a project.xml manifest at its root. The manifest
// declares zero or more named build targets:
//
//	<project>
//	  <targets>
//	    <target>
//	      <alias>web</alias>
//	      <format>html</format>
//	      <source>source/main.xml</source>
//	      <output-dir>output/web</output-dir>
//	      <publication>publication/publication.xml</publication>
//	      <stringparam name="theme" value="default"/>
//	    </target>
//	  </targets>
//	</project>
//
// Schema validation is out of scope here; this package only performs
// structural child/text lookups and tolerates missing optional children.
package project

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// ErrManifestMalformed indicates the manifest file exists but could not be
// parsed. This is fatal for the invocation, unlike a missing manifest.
var ErrManifestMalformed = errors.New("project manifest is not well-formed XML")

// Manifest is the parsed project manifest. A Manifest is always usable: when
// no manifest file exists, EmptyManifest returns a synthetic empty document
// so callers have a single code path.
type Manifest struct {
	doc    *etree.Document
	root   string // project root directory, empty for a synthetic manifest
	logger *slog.Logger
}

// LoadManifest parses the manifest file inside rootDir.
func LoadManifest(rootDir string, logger *slog.Logger) (*Manifest, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path := filepath.Join(rootDir, ManifestFilename)
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestMalformed, path, err)
	}
	if doc.SelectElement("project") == nil {
		return nil, fmt.Errorf("%w: %s: missing <project> root element", ErrManifestMalformed, path)
	}
	return &Manifest{doc: doc, root: rootDir, logger: logger}, nil
}

// EmptyManifest returns a synthetic manifest with a project element and no
// targets, used for manifest-less ad hoc builds.
func EmptyManifest(logger *slog.Logger) *Manifest {
	if logger == nil {
		logger = slog.Default()
	}
	doc := etree.NewDocument()
	doc.CreateElement("project")
	return &Manifest{doc: doc, logger: logger}
}

// Root returns the project root directory, or "" for a synthetic manifest.
func (m *Manifest) Root() string { return m.root }

// Synthetic reports whether this manifest was fabricated in lieu of a file.
func (m *Manifest) Synthetic() bool { return m.root == "" }

// TargetElement finds the manifest element for a build target. With an empty
// alias it returns the first target in document order, the conventional
// default. A lookup miss returns nil after an informational log line; it is
// never an error at this layer.
func (m *Manifest) TargetElement(alias string) *etree.Element {
	targets := m.doc.FindElements("project/targets/target")
	if alias == "" {
		if len(targets) == 0 {
			return nil
		}
		return targets[0]
	}
	for _, t := range targets {
		a := t.SelectElement("alias")
		if a != nil && strings.TrimSpace(a.Text()) == alias {
			return t
		}
	}
	m.logger.Info("No target with this alias found in project manifest", "alias", alias, "manifest", ManifestFilename)
	return nil
}

// TargetNames returns the aliases of all targets in document order. Targets
// without an alias are skipped.
func (m *Manifest) TargetNames() []string {
	var names []string
	for _, t := range m.doc.FindElements("project/targets/target") {
		if a := t.SelectElement("alias"); a != nil {
			if name := strings.TrimSpace(a.Text()); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// Scalar returns the trimmed text at an element path relative to the document
// root, or def when the path does not resolve. Used for manifest-wide
// settings outside the target list.
func (m *Manifest) Scalar(path, def string) string {
	el := m.doc.FindElement(path)
	if el == nil {
		return def
	}
	return strings.TrimSpace(el.Text())
}

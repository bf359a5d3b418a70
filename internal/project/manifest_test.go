package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleManifest = `<?xml version="1.0" encoding="utf-8"?>
<project>
  <engine>
    <command> scribe-engine </command>
  </engine>
  <targets>
    <target>
      <alias>intro</alias>
      <format>html</format>
      <source>source/main.xml</source>
      <output-dir>output/intro</output-dir>
      <publication>publication/publication.xml</publication>
      <stringparam name="a" value="1"/>
      <stringparam name="b" value="2"/>
    </target>
    <target>
      <alias>exercises</alias>
      <format>pdf</format>
      <source>source/exercises.xml</source>
    </target>
  </targets>
</project>
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ManifestFilename), []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return dir
}

func TestLoadManifestTargets(t *testing.T) {
	dir := writeManifest(t, sampleManifest)
	m, err := LoadManifest(dir, nil)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	// Default target is the first in document order.
	first := m.TargetElement("")
	if first == nil {
		t.Fatal("expected a default target")
	}
	if got := childText(first, "alias"); got != "intro" {
		t.Errorf("expected default target intro, got %q", got)
	}

	byAlias := m.TargetElement("exercises")
	if byAlias == nil {
		t.Fatal("expected exercises target")
	}
	if got := childText(byAlias, "format"); got != "pdf" {
		t.Errorf("expected format pdf, got %q", got)
	}

	if m.TargetElement("nope") != nil {
		t.Error("missing alias must yield explicit absence, not a default target")
	}

	names := m.TargetNames()
	if len(names) != 2 || names[0] != "intro" || names[1] != "exercises" {
		t.Errorf("unexpected target names: %v", names)
	}
}

func TestManifestScalar(t *testing.T) {
	dir := writeManifest(t, sampleManifest)
	m, err := LoadManifest(dir, nil)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if got := m.Scalar("project/engine/command", "fallback"); got != "scribe-engine" {
		t.Errorf("expected trimmed scalar, got %q", got)
	}
	if got := m.Scalar("project/engine/missing", "fallback"); got != "fallback" {
		t.Errorf("expected default for missing path, got %q", got)
	}
}

func TestLoadManifestMalformed(t *testing.T) {
	dir := writeManifest(t, "<project><targets>")
	_, err := LoadManifest(dir, nil)
	if !errors.Is(err, ErrManifestMalformed) {
		t.Fatalf("expected ErrManifestMalformed, got %v", err)
	}
	if !strings.Contains(err.Error(), ManifestFilename) {
		t.Errorf("error should name the manifest file: %v", err)
	}
}

func TestEmptyManifest(t *testing.T) {
	m := EmptyManifest(nil)
	if !m.Synthetic() {
		t.Error("expected synthetic manifest")
	}
	if m.TargetElement("") != nil {
		t.Error("synthetic manifest has no default target")
	}
	if got := m.Scalar("project/engine/command", "def"); got != "def" {
		t.Errorf("expected default, got %q", got)
	}
	if names := m.TargetNames(); len(names) != 0 {
		t.Errorf("expected no target names, got %v", names)
	}
}

package builder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scribe-press/scribe/internal/buildlog"
	"github.com/scribe-press/scribe/internal/project"
)

func TestBuildArgs(t *testing.T) {
	target := project.Target{
		Name:        "web",
		Format:      "html",
		Source:      "source/main.xml",
		OutputDir:   "output/web",
		Publication: "publication/publication.xml",
		XSL:         "custom.xsl",
		StringParams: map[string]string{
			"b": "2",
			"a": "1",
		},
	}

	got := buildArgs(target)
	want := []string{
		"--format", "html",
		"--source", "source/main.xml",
		"--output", "output/web",
		"--publication", "publication/publication.xml",
		"--xsl", "custom.xsl",
		"--param", "a=1",
		"--param", "b=2",
	}
	require.Equal(t, want, got)
}

func TestBuildArgsOmitsEmptyFields(t *testing.T) {
	target := project.Target{Format: "latex", Source: "main.xml", OutputDir: "out"}
	got := buildArgs(target)
	require.NotContains(t, got, "--publication")
	require.NotContains(t, got, "--xsl")
	require.NotContains(t, got, "--param")
}

func TestBuildWithoutEngine(t *testing.T) {
	e := NewEngine("", nil, nil)
	err := e.Build(context.Background(), project.Target{}, false)
	require.ErrorIs(t, err, ErrNoEngine)

	err = e.BuildHTML(context.Background(), "web", "main.xml", "out", nil)
	require.ErrorIs(t, err, ErrNoEngine)
}

func TestBuildHTMLRecordsTargetName(t *testing.T) {
	store, err := buildlog.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	e := NewEngine("true", store, nil)
	require.NoError(t, e.BuildHTML(context.Background(), "web", "source/main.xml", "out", nil))

	recent, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "web", recent[0].Target)
	require.Equal(t, "html", recent[0].Format)
	require.True(t, recent[0].Success)
}

func TestPathsOverlap(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "output")
	src := filepath.Join(root, "source")

	require.False(t, pathsOverlap(out, src))
	require.True(t, pathsOverlap(root, src))
	require.True(t, pathsOverlap(out, out))
	require.True(t, pathsOverlap(filepath.Join(src, "deep"), src))
}

package project

import (
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
)

func targetElement(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("parse target element: %v", err)
	}
	return doc.SelectElement("target")
}

func strptr(s string) *string { return &s }

func TestResolveOverridePrecedence(t *testing.T) {
	el := targetElement(t, `<target>
		<alias>web</alias>
		<format>html</format>
		<source>main.xml</source>
	</target>`)

	got := Resolve(el, Overrides{Format: strptr("pdf")})

	if got.Format != "pdf" {
		t.Errorf("override must win on supplied field, got format %q", got.Format)
	}
	if got.Source != "main.xml" {
		t.Errorf("unsupplied override must not erase manifest value, got source %q", got.Source)
	}
	if got.Name != "web" {
		t.Errorf("expected name web, got %q", got.Name)
	}
	if got.Element != el {
		t.Error("resolved target must retain its raw manifest element")
	}
}

func TestResolveExplicitlyEmptyOverride(t *testing.T) {
	el := targetElement(t, `<target><alias>web</alias><xsl>custom.xsl</xsl></target>`)

	// An explicitly empty value is a real override, unlike a nil pointer.
	got := Resolve(el, Overrides{XSL: strptr("")})
	if got.XSL != "" {
		t.Errorf("explicitly empty override must erase manifest value, got %q", got.XSL)
	}

	kept := Resolve(el, Overrides{})
	if kept.XSL != "custom.xsl" {
		t.Errorf("absent override must keep manifest value, got %q", kept.XSL)
	}
}

func TestResolveDefaults(t *testing.T) {
	el := targetElement(t, `<target><alias>web</alias></target>`)
	got := Resolve(el, Overrides{})

	if got.Format != FormatHTML {
		t.Errorf("expected default format html, got %q", got.Format)
	}
	if got.Source != DefaultSource {
		t.Errorf("expected default source, got %q", got.Source)
	}
	if got.Publication != DefaultPublication {
		t.Errorf("expected default publication, got %q", got.Publication)
	}
	if want := filepath.Join("output", "web"); got.OutputDir != want {
		t.Errorf("expected output dir %q, got %q", want, got.OutputDir)
	}
	if got.XSL != "" {
		t.Errorf("expected no xsl by default, got %q", got.XSL)
	}
}

func TestResolveStringParamsMergeKeyWise(t *testing.T) {
	el := targetElement(t, `<target>
		<alias>web</alias>
		<stringparam name="a" value="1"/>
		<stringparam name="b" value="2"/>
	</target>`)

	got := Resolve(el, Overrides{StringParams: map[string]string{"b": "3", "c": "4"}})

	want := map[string]string{"a": "1", "b": "3", "c": "4"}
	if len(got.StringParams) != len(want) {
		t.Fatalf("expected %d params, got %v", len(want), got.StringParams)
	}
	for k, v := range want {
		if got.StringParams[k] != v {
			t.Errorf("param %s: expected %q, got %q", k, v, got.StringParams[k])
		}
	}
}

func TestResolveCommandLine(t *testing.T) {
	got := ResolveCommandLine(Overrides{
		Format:       strptr("latex"),
		Source:       strptr("book.xml"),
		StringParams: map[string]string{"k": "v"},
	})

	if got.Name != "latex" {
		t.Errorf("format doubles as synthetic name, got %q", got.Name)
	}
	if got.Source != "book.xml" {
		t.Errorf("expected source book.xml, got %q", got.Source)
	}
	if want := filepath.Join("output", "latex"); got.OutputDir != want {
		t.Errorf("expected output dir %q, got %q", want, got.OutputDir)
	}
	if got.StringParams["k"] != "v" {
		t.Errorf("expected params carried through, got %v", got.StringParams)
	}
	if got.Element != nil {
		t.Error("command-line target has no manifest element")
	}
}

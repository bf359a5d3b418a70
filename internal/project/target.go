package project

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// ErrTargetNotFound indicates that a requested build target could not be
// resolved: either a named target is absent from the manifest, or the default
// target was requested and the manifest declares no targets at all. Distinct
// from "no manifest", which enables the command-line fallback instead.
var ErrTargetNotFound = errors.New("build target not found in project manifest")

// Well-known output formats. The format field is open-ended; these constants
// cover the common cases.
const (
	FormatHTML  = "html"
	FormatLaTeX = "latex"
	FormatPDF   = "pdf"
)

// Defaults applied when neither the manifest nor an override supplies a field.
const (
	DefaultSource      = "source/main.xml"
	DefaultPublication = "publication/publication.xml"
	defaultOutputBase  = "output"
)

// Target is one fully resolved, named build configuration. Immutable after
// construction; never written back to the manifest.
type Target struct {
	Name         string
	Format       string
	Source       string
	OutputDir    string
	Publication  string
	XSL          string
	StringParams map[string]string

	// Element is the raw manifest sub-document for fields not modeled
	// explicitly. Nil for targets built purely from command-line arguments.
	Element *etree.Element
}

// Overrides carries command-line values for target fields. Pointer fields
// distinguish "not provided" (nil) from "explicitly empty" (pointer to "");
// only provided fields take precedence over manifest values.
type Overrides struct {
	Format       *string
	Source       *string
	Output       *string
	Publication  *string
	XSL          *string
	StringParams map[string]string
}

// Resolve merges a manifest target element with command-line overrides,
// field by field, override winning only where supplied. String parameters
// merge key-wise with override entries winning per key.
func Resolve(el *etree.Element, ov Overrides) Target {
	name := childText(el, "alias")
	t := Target{
		Name:        name,
		Format:      pick(ov.Format, childText(el, "format"), FormatHTML),
		Source:      pick(ov.Source, childText(el, "source"), DefaultSource),
		Publication: pick(ov.Publication, childText(el, "publication"), DefaultPublication),
		XSL:         pick(ov.XSL, childText(el, "xsl"), ""),
		Element:     el,
	}
	t.OutputDir = pick(ov.Output, childText(el, "output-dir"), filepath.Join(defaultOutputBase, defaultName(name, t.Format)))
	t.StringParams = mergeParams(elementParams(el), ov.StringParams)
	return t
}

// ResolveCommandLine builds a synthetic target purely from command-line
// overrides, for projects without a manifest. The format doubles as the
// target name.
func ResolveCommandLine(ov Overrides) Target {
	format := pick(ov.Format, "", FormatHTML)
	t := Target{
		Name:         format,
		Format:       format,
		Source:       pick(ov.Source, "", DefaultSource),
		OutputDir:    pick(ov.Output, "", filepath.Join(defaultOutputBase, format)),
		Publication:  pick(ov.Publication, "", DefaultPublication),
		XSL:          pick(ov.XSL, "", ""),
		StringParams: mergeParams(nil, ov.StringParams),
	}
	return t
}

// pick returns the override when explicitly provided, else the manifest
// value, else the default.
func pick(override *string, manifest, def string) string {
	if override != nil {
		return *override
	}
	if manifest != "" {
		return manifest
	}
	return def
}

func defaultName(name, format string) string {
	if name != "" {
		return name
	}
	return format
}

func childText(el *etree.Element, tag string) string {
	if el == nil {
		return ""
	}
	c := el.SelectElement(tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

// elementParams collects <stringparam name="..." value="..."/> children.
func elementParams(el *etree.Element) map[string]string {
	if el == nil {
		return nil
	}
	var params map[string]string
	for _, sp := range el.SelectElements("stringparam") {
		name := strings.TrimSpace(sp.SelectAttrValue("name", ""))
		if name == "" {
			continue
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[name] = sp.SelectAttrValue("value", "")
	}
	return params
}

// mergeParams merges key-wise; override entries win per key. Returns nil when
// both sides are empty so zero targets stay zero.
func mergeParams(manifest, override map[string]string) map[string]string {
	if len(manifest) == 0 && len(override) == 0 {
		return nil
	}
	merged := make(map[string]string, len(manifest)+len(override))
	for k, v := range manifest {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

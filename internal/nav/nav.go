// Package nav maps between the browser URL and the state of the
// documentation shell.
//
// A pattern names one variant of one component: "accordion" is the base
// variant of the accordion, "accordion:outline" its outline variant and
// "forms/radio" the base variant of the grouped radio component. Every view
// the shell can show is a pure function of the pattern query parameter, so
// initial loads, navigation clicks and history traversal all resolve through
// Resolve.
package nav

import (
	"net/url"
	"strings"

	"github.com/conneroisu/patterns/internal/registry"
)

// QueryParam is the query parameter carrying the pattern.
const QueryParam = "pattern"

// View is what the main area shows.
type View string

const (
	ViewRoot    View = "root"
	ViewPattern View = "pattern"
)

// Layout is the arrangement of the main area.
type Layout string

const (
	LayoutPattern    Layout = "pattern"
	LayoutReadmeOnly Layout = "readme-only"
)

// State is the resolved UI state for one URL.
type State struct {
	View   View   `json:"view" yaml:"view"`
	Layout Layout `json:"layout" yaml:"layout"`
	// Pattern is the canonical pattern of the shown variant.
	Pattern     string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	ComponentID string `json:"component,omitempty" yaml:"component,omitempty"`
	Variant     string `json:"variant,omitempty" yaml:"variant,omitempty"`
	Fragment    string `json:"fragment,omitempty" yaml:"fragment,omitempty"`
	Readme      string `json:"readme,omitempty" yaml:"readme,omitempty"`
	// Requested is the raw query value when it did not resolve.
	Requested string `json:"requested,omitempty" yaml:"requested,omitempty"`
	Fallback  bool   `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Codec formats and parses patterns. The default variant is left out of
// formatted patterns.
type Codec struct {
	DefaultVariant string
}

func NewCodec(defaultVariant string) Codec {
	if defaultVariant == "" {
		defaultVariant = "base"
	}
	return Codec{DefaultVariant: defaultVariant}
}

// Format returns componentID for the default variant and
// componentID:variant otherwise.
func (c Codec) Format(componentID, variant string) string {
	if variant == c.DefaultVariant {
		return componentID
	}
	return componentID + ":" + variant
}

// Parse splits a pattern at its colons and keeps the first two fields, so
// accordion:outline:extra names accordion:outline. A pattern without a colon
// names the default variant; a trailing colon names the empty variant, which
// never exists.
func (c Codec) Parse(pattern string) (componentID, variant string) {
	fields := strings.SplitN(pattern, ":", 3)
	if len(fields) == 1 {
		return fields[0], c.DefaultVariant
	}
	return fields[0], fields[1]
}

// Lookup finds the variant a pattern names.
func (c Codec) Lookup(catalog *registry.Catalog, pattern string) (*registry.Component, registry.Variant, bool) {
	id, variant := c.Parse(pattern)
	comp, ok := catalog.Get(id)
	if !ok {
		return nil, registry.Variant{}, false
	}
	v, ok := comp.Variant(variant)
	if !ok {
		return nil, registry.Variant{}, false
	}
	return comp, v, true
}

// Resolve computes the state for a URL query. An absent or empty pattern
// shows the root README. A pattern that does not resolve falls back to the
// first variant of the first component, or to the root view when the catalog
// is empty.
func (c Codec) Resolve(catalog *registry.Catalog, query url.Values) State {
	pattern := query.Get(QueryParam)
	if pattern == "" {
		return Root()
	}

	if comp, v, ok := c.Lookup(catalog, pattern); ok {
		return c.patternState(comp, v)
	}

	comp, v, ok := catalog.First()
	if !ok {
		state := Root()
		state.Requested = pattern
		state.Fallback = true
		return state
	}

	state := c.patternState(comp, v)
	state.Requested = pattern
	state.Fallback = true
	return state
}

// ResolvePattern resolves a bare pattern string.
func (c Codec) ResolvePattern(catalog *registry.Catalog, pattern string) State {
	return c.Resolve(catalog, url.Values{QueryParam: []string{pattern}})
}

// Root is the state for the root README.
func Root() State {
	return State{View: ViewRoot, Layout: LayoutReadmeOnly}
}

func (c Codec) patternState(comp *registry.Component, v registry.Variant) State {
	return State{
		View:        ViewPattern,
		Layout:      LayoutPattern,
		Pattern:     c.Format(comp.ID, v.Name),
		ComponentID: comp.ID,
		Variant:     v.Name,
		Fragment:    v.Path,
		Readme:      registry.ReadmePath(v.Path),
	}
}

// Href returns the shell URL for a pattern below base. The empty pattern
// links to the root view.
func Href(base, pattern string) string {
	if pattern == "" {
		return base
	}
	return base + "?" + url.Values{QueryParam: []string{pattern}}.Encode()
}

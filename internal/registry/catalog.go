package registry

import (
	"encoding/json"
	"path"
	"strings"
)

// ComponentsDir is the directory every fragment path starts with.
const ComponentsDir = "components"

// ReadmeFile is the name of a variant's documentation file.
const ReadmeFile = "README.md"

// Variant is one demo of a component, backed by an index.html fragment.
type Variant struct {
	Name string `json:"name"`
	// Path is relative to the source root and slash separated,
	// e.g. components/accordion/base/index.html.
	Path string `json:"path"`
}

// Component is a pattern with one or more variants.
type Component struct {
	// ID is the component name, prefixed with its group when it has one.
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Group    string    `json:"group,omitempty"`
	Variants []Variant `json:"variants"`
}

// Variant looks up a variant by name.
func (c *Component) Variant(name string) (Variant, bool) {
	for _, v := range c.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// addVariant appends v, or replaces the existing variant with the same name.
func (c *Component) addVariant(v Variant) {
	for i := range c.Variants {
		if c.Variants[i].Name == v.Name {
			c.Variants[i] = v
			return
		}
	}
	c.Variants = append(c.Variants, v)
}

// Group organises components in the navigation menu.
type Group struct {
	Name       string
	Components []*Component
}

// Manifest is the result of a discovery pass: every fragment path and every
// README path, relative to the source root.
type Manifest struct {
	Fragments []string
	Readmes   []string
}

// Catalog is the immutable component model built from a manifest.
type Catalog struct {
	components []*Component
	groups     []*Group
	ungrouped  []*Component
	byID       map[string]*Component
	readmes    map[string]bool
	skipped    []string
}

// ParseFragmentPath classifies a fragment path. Paths below components/ with
// two segments before index.html are ungrouped, three segments are grouped;
// anything else is rejected.
func ParseFragmentPath(fragment string) (group, component, variant string, ok bool) {
	rest, found := strings.CutPrefix(fragment, ComponentsDir+"/")
	if !found {
		return "", "", "", false
	}
	rest, found = strings.CutSuffix(rest, "/index.html")
	if !found {
		return "", "", "", false
	}

	parts := strings.Split(rest, "/")
	for _, part := range parts {
		if part == "" {
			return "", "", "", false
		}
	}

	switch len(parts) {
	case 2:
		return "", parts[0], parts[1], true
	case 3:
		return parts[0], parts[1], parts[2], true
	default:
		return "", "", "", false
	}
}

// ReadmePath returns the README that documents a fragment: the README.md in
// the fragment's own directory.
func ReadmePath(fragment string) string {
	return path.Join(path.Dir(fragment), ReadmeFile)
}

// Build turns a manifest into a catalog. Components keep the order in which
// the manifest first mentions them and groups keep first-seen order.
func Build(manifest Manifest) *Catalog {
	c := &Catalog{
		byID:    make(map[string]*Component),
		readmes: make(map[string]bool, len(manifest.Readmes)),
	}

	for _, readme := range manifest.Readmes {
		c.readmes[readme] = true
	}

	groups := make(map[string]*Group)

	for _, fragment := range manifest.Fragments {
		groupName, name, variant, ok := ParseFragmentPath(fragment)
		if !ok {
			c.skipped = append(c.skipped, fragment)
			continue
		}

		id := name
		if groupName != "" {
			id = groupName + "/" + name
		}

		comp, exists := c.byID[id]
		if !exists {
			comp = &Component{ID: id, Name: name, Group: groupName}
			c.byID[id] = comp
			c.components = append(c.components, comp)

			if groupName == "" {
				c.ungrouped = append(c.ungrouped, comp)
			} else {
				g, seen := groups[groupName]
				if !seen {
					g = &Group{Name: groupName}
					groups[groupName] = g
					c.groups = append(c.groups, g)
				}
				g.Components = append(g.Components, comp)
			}
		}

		comp.addVariant(Variant{Name: variant, Path: fragment})
	}

	return c
}

// Components returns every component in manifest order.
func (c *Catalog) Components() []*Component {
	return c.components
}

// Groups returns the named groups in first-seen order.
func (c *Catalog) Groups() []*Group {
	return c.groups
}

// Ungrouped returns the components that sit directly under components/.
func (c *Catalog) Ungrouped() []*Component {
	return c.ungrouped
}

// Skipped lists manifest paths that did not classify as fragments.
func (c *Catalog) Skipped() []string {
	return c.skipped
}

func (c *Catalog) Get(id string) (*Component, bool) {
	comp, ok := c.byID[id]
	return comp, ok
}

func (c *Catalog) Len() int {
	return len(c.components)
}

// First returns the first component and its first variant.
func (c *Catalog) First() (*Component, Variant, bool) {
	if len(c.components) == 0 || len(c.components[0].Variants) == 0 {
		return nil, Variant{}, false
	}
	comp := c.components[0]
	return comp, comp.Variants[0], true
}

// HasReadme reports whether discovery found the README at p.
func (c *Catalog) HasReadme(p string) bool {
	return c.readmes[p]
}

// Fragment reports whether p is the path of a known variant.
func (c *Catalog) Fragment(p string) (*Component, Variant, bool) {
	groupName, name, variant, ok := ParseFragmentPath(p)
	if !ok {
		return nil, Variant{}, false
	}
	id := name
	if groupName != "" {
		id = groupName + "/" + name
	}
	comp, ok := c.byID[id]
	if !ok {
		return nil, Variant{}, false
	}
	v, ok := comp.Variant(variant)
	return comp, v, ok
}

type catalogJSON struct {
	Components []*Component `json:"components"`
	Groups     []groupJSON  `json:"groups"`
	Ungrouped  []string     `json:"ungrouped"`
}

type groupJSON struct {
	Name       string   `json:"name"`
	Components []string `json:"components"`
}

// MarshalJSON encodes the catalog with groups referring to components by ID.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	out := catalogJSON{
		Components: c.components,
		Groups:     make([]groupJSON, 0, len(c.groups)),
		Ungrouped:  make([]string, 0, len(c.ungrouped)),
	}
	if out.Components == nil {
		out.Components = []*Component{}
	}
	for _, g := range c.groups {
		ids := make([]string, 0, len(g.Components))
		for _, comp := range g.Components {
			ids = append(ids, comp.ID)
		}
		out.Groups = append(out.Groups, groupJSON{Name: g.Name, Components: ids})
	}
	for _, comp := range c.ungrouped {
		out.Ungrouped = append(out.Ungrouped, comp.ID)
	}
	return json.Marshal(out)
}

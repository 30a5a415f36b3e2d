package nav

import (
	"strings"

	"github.com/conneroisu/patterns/internal/registry"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Menu is the navigation tree: groups first, then ungrouped components.
type Menu struct {
	Groups     []MenuGroup
	Components []MenuComponent
}

type MenuGroup struct {
	Name       string
	Label      string
	Components []MenuComponent
}

// MenuComponent renders as a collapsible list of variants when Collapsible,
// otherwise as its single entry.
type MenuComponent struct {
	ID          string
	Label       string
	Collapsible bool
	Open        bool
	Entries     []MenuEntry
}

type MenuEntry struct {
	Label    string
	Pattern  string
	Href     string
	Fragment string
	Active   bool
}

// MenuOptions controls labels and links.
type MenuOptions struct {
	Base      string
	TitleCase bool
}

// BuildMenu lays out the catalog for the navigation sidebar, marking the
// entry and component that state points at.
func (c Codec) BuildMenu(catalog *registry.Catalog, state State, opts MenuOptions) Menu {
	labeler := newLabeler(opts.TitleCase)

	var menu Menu
	for _, group := range catalog.Groups() {
		mg := MenuGroup{Name: group.Name, Label: labeler.label(group.Name)}
		for _, comp := range group.Components {
			mg.Components = append(mg.Components, c.menuComponent(comp, state, opts.Base, labeler))
		}
		menu.Groups = append(menu.Groups, mg)
	}
	for _, comp := range catalog.Ungrouped() {
		menu.Components = append(menu.Components, c.menuComponent(comp, state, opts.Base, labeler))
	}
	return menu
}

func (c Codec) menuComponent(comp *registry.Component, state State, base string, labeler labeler) MenuComponent {
	mc := MenuComponent{
		ID:          comp.ID,
		Label:       labeler.label(comp.Name),
		Collapsible: len(comp.Variants) > 1,
		Open:        state.View == ViewPattern && state.ComponentID == comp.ID,
	}

	for _, v := range comp.Variants {
		pattern := c.Format(comp.ID, v.Name)
		label := mc.Label
		if mc.Collapsible {
			label = labeler.label(v.Name)
		}
		mc.Entries = append(mc.Entries, MenuEntry{
			Label:    label,
			Pattern:  pattern,
			Href:     Href(base, pattern),
			Fragment: v.Path,
			Active:   state.View == ViewPattern && state.Pattern == pattern,
		})
	}
	return mc
}

type labeler struct {
	caser *cases.Caser
}

func newLabeler(titleCase bool) labeler {
	if !titleCase {
		return labeler{}
	}
	caser := cases.Title(language.English)
	return labeler{caser: &caser}
}

// label returns name unchanged, or with separators spaced and words
// title-cased when title casing is on.
func (l labeler) label(name string) string {
	if l.caser == nil {
		return name
	}
	spaced := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return l.caser.String(spaced)
}

// Package shell renders the documentation shell page: the navigation
// sidebar, the preview frame, the splitter and the README pane.
//
// Components are built on the templ runtime so the server can stream them
// with templ.Handler and compose them like generated components. The small
// script in assets/ takes over after the first paint and asks the server for
// every later state.
package shell

import (
	"context"
	"embed"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/conneroisu/patterns/internal/config"
	"github.com/conneroisu/patterns/internal/docs"
	"github.com/conneroisu/patterns/internal/nav"
)

//go:embed assets
var assets embed.FS

// Assets returns the embedded shell.js and shell.css.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page is everything the shell needs for one render.
type Page struct {
	Title     string
	Base      string
	Menu      nav.Menu
	State     nav.State
	FrameURL  string
	Readme    docs.Document
	Themes    []config.ThemeConfig
	GridRows  string
	HotReload bool

	// MinPaneHeight bounds both panes while dragging the splitter.
	MinPaneHeight int
}

// writer remembers the first write error so components can write freely
// and report once.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) attr(name, value string) {
	w.raw(" " + name + "=\"" + templ.EscapeString(value) + "\"")
}

func (w *writer) url(name, value string) {
	w.attr(name, string(templ.URL(value)))
}

func (w *writer) component(ctx context.Context, c templ.Component) {
	if w.err != nil {
		return
	}
	w.err = c.Render(ctx, w.w)
}

// Shell is the full HTML document.
func Shell(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		title := p.Title
		if title == "" {
			title = "Patterns"
		}

		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw("<title>")
		w.text(title)
		w.raw("</title><link rel=\"icon\"")
		w.url("href", p.Base+"icon.svg")
		w.raw("><link rel=\"stylesheet\"")
		w.url("href", p.Base+"assets/shell.css")
		w.raw("></head><body")
		w.attr("data-base", p.Base)
		if p.HotReload {
			w.attr("data-hot-reload", "true")
		}
		if p.MinPaneHeight > 0 {
			w.attr("data-min-pane", strconv.Itoa(p.MinPaneHeight))
		}
		w.raw(">")

		w.component(ctx, Nav(p.Menu))
		w.component(ctx, Main(p))

		w.raw("<script defer")
		w.url("src", p.Base+"assets/shell.js")
		w.raw("></script></body></html>")
		return w.err
	})
}

// Nav is the sidebar: groups first, then ungrouped components.
func Nav(menu nav.Menu) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<nav id="pattern-nav">`)
		for _, group := range menu.Groups {
			w.raw(`<div class="pattern-group"><div class="pattern-group-title">`)
			w.text(group.Label)
			w.raw(`</div><div class="pattern-group-content">`)
			for _, comp := range group.Components {
				writeMenuComponent(w, comp)
			}
			w.raw(`</div></div>`)
		}
		for _, comp := range menu.Components {
			writeMenuComponent(w, comp)
		}
		w.raw(`</nav>`)
		return w.err
	})
}

func writeMenuComponent(w *writer, comp nav.MenuComponent) {
	if !comp.Collapsible {
		for _, entry := range comp.Entries {
			writeEntry(w, comp.ID, entry)
		}
		return
	}

	w.raw(`<details class="pattern-details"`)
	w.attr("data-component", comp.ID)
	if comp.Open {
		w.raw(" open")
	}
	w.raw(`><summary class="pattern-summary">`)
	w.text(comp.Label)
	w.raw(`</summary><div class="pattern-details-content">`)
	for _, entry := range comp.Entries {
		writeEntry(w, comp.ID, entry)
	}
	w.raw(`</div></details>`)
}

func writeEntry(w *writer, componentID string, entry nav.MenuEntry) {
	class := "pattern-btn"
	if entry.Active {
		class += " active"
	}
	w.raw("<a")
	w.attr("class", class)
	w.url("href", entry.Href)
	w.attr("data-pattern", entry.Pattern)
	w.attr("data-component", componentID)
	w.raw(">")
	w.text(entry.Label)
	w.raw("</a>")
}

// Main is the content grid holding the viewer, splitter and README pane.
func Main(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}

		class := "content"
		if p.State.Layout == nav.LayoutReadmeOnly {
			class += " readme-only"
		}
		w.raw("<main")
		w.attr("class", class)
		if p.GridRows != "" && p.State.Layout != nav.LayoutReadmeOnly {
			w.attr("style", "grid-template-rows: "+p.GridRows)
		}
		if p.GridRows != "" {
			w.attr("data-saved-rows", p.GridRows)
		}
		w.raw(">")

		w.raw(`<section class="viewer-pane" aria-label="Pattern preview"><iframe id="pattern-viewer" title="Pattern preview"`)
		if p.FrameURL != "" {
			w.url("src", p.FrameURL)
		}
		w.raw(`></iframe></section>`)
		w.raw(`<div class="content-splitter" role="separator" aria-orientation="horizontal"></div>`)

		w.component(ctx, ReadmePane(p.Readme, p.Themes))
		w.raw("</main>")
		return w.err
	})
}

// ReadmePane is the toolbar with the theme selector and source link, and
// the rendered README.
func ReadmePane(doc docs.Document, themes []config.ThemeConfig) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<section class="readme-pane" aria-label="Documentation"><header class="readme-toolbar">`)
		w.component(ctx, ThemeSelect(themes))
		w.raw("<a")
		w.attr("class", "readme-link")
		if doc.SourceURL != "" {
			w.url("href", doc.SourceURL)
		} else {
			w.raw(" hidden")
		}
		w.raw(` target="_blank" rel="noreferrer">README on GitHub</a></header>`)
		w.component(ctx, ReadmeContent(doc))
		w.raw(`</section>`)
		return w.err
	})
}

// ReadmeContent is the article holding rendered README HTML. The HTML comes
// from repository files and is written unescaped.
func ReadmeContent(doc docs.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		class := "readme-content"
		if doc.Empty {
			class += " readme-empty"
		}
		w.raw("<article")
		w.attr("class", class)
		w.raw(">")
		w.component(ctx, templ.Raw(doc.HTML))
		w.raw("</article>")
		return w.err
	})
}

// ThemeSelect lists the themes in configured order.
func ThemeSelect(themes []config.ThemeConfig) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<div class="readme-theme"><label for="theme-select">Theme</label><select id="theme-select">`)
		for _, theme := range themes {
			w.raw("<option")
			w.attr("value", theme.Value)
			w.raw(">")
			w.text(theme.Name)
			w.raw("</option>")
		}
		w.raw(`</select></div>`)
		return w.err
	})
}

// Render renders a component to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

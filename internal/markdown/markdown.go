// Package markdown renders README files into HTML for the documentation
// pane.
//
// Two engines are available. The light engine is a line-oriented renderer
// for the small subset pattern READMEs use; it never fails and keeps at most
// one block construct open at a time. The goldmark engine handles full
// GitHub-flavoured markdown with syntax highlighting for projects whose
// READMEs outgrow the light syntax.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	EngineLight    = "light"
	EngineGoldmark = "goldmark"
)

// Engine converts a markdown document into an HTML fragment.
type Engine interface {
	Name() string
	Render(markdown string) (string, error)
}

// New returns the engine registered under name.
func New(name string) (Engine, error) {
	switch name {
	case "", EngineLight:
		return Light{}, nil
	case EngineGoldmark:
		return NewGoldmark(), nil
	default:
		return nil, fmt.Errorf("unknown markdown engine %q", name)
	}
}

// Light wraps Render.
type Light struct{}

func (Light) Name() string { return EngineLight }

func (Light) Render(markdown string) (string, error) {
	return Render(markdown), nil
}

type Goldmark struct {
	md goldmark.Markdown
}

func NewGoldmark() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

func (g *Goldmark) Name() string { return EngineGoldmark }

func (g *Goldmark) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

// Package docs loads README files for the documentation pane and renders
// them with the configured markdown engine. Loading never fails: a missing
// or unreadable README produces the placeholder document.
package docs

import (
	"context"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/conneroisu/patterns/internal/config"
	"github.com/conneroisu/patterns/internal/errors"
	"github.com/conneroisu/patterns/internal/logging"
	"github.com/conneroisu/patterns/internal/markdown"
	"github.com/conneroisu/patterns/internal/registry"
)

var libraryLink = regexp.MustCompile(`(?m)^\s*<a\s+[^>]*>View the Pattern Library</a>\s*$`)

// Document is a rendered README.
type Document struct {
	HTML string `json:"html" yaml:"html"`
	// Empty marks the placeholder document.
	Empty bool `json:"empty" yaml:"empty"`
	// SourceURL links to the README in the repository. It is only set
	// when the README rendered.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

type Loader struct {
	fsys          fs.FS
	engine        markdown.Engine
	rootReadme    string
	repositoryURL string
	sourcePrefix  string
	basePath      string
	placeholder   string
	logger        logging.Logger
}

// NewLoader creates a loader reading component READMEs from fsys, which is
// rooted at the components root.
func NewLoader(fsys fs.FS, engine markdown.Engine, cfg *config.Config, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Discard()
	}
	placeholder := cfg.Docs.Placeholder
	if placeholder == "" {
		placeholder = config.NoDocumentation
	}
	return &Loader{
		fsys:          fsys,
		engine:        engine,
		rootReadme:    cfg.Docs.RootReadme,
		repositoryURL: strings.TrimSuffix(cfg.Docs.RepositoryURL, "/"),
		sourcePrefix:  path.Clean(strings.TrimPrefix(cfg.Components.Root, "./")),
		basePath:      cfg.Server.BasePath,
		placeholder:   placeholder,
		logger:        logger.WithComponent("docs"),
	}
}

// Placeholder returns the document shown when nothing could be loaded.
func (l *Loader) Placeholder() Document {
	return Document{HTML: "<p>" + markdown.Escape(l.placeholder) + "</p>", Empty: true}
}

// Pattern loads the README documenting a fragment.
func (l *Loader) Pattern(ctx context.Context, catalog *registry.Catalog, fragment string) Document {
	readme := registry.ReadmePath(fragment)
	if path.Dir(fragment) == "." || !catalog.HasReadme(readme) {
		return l.Placeholder()
	}

	data, err := fs.ReadFile(l.fsys, readme)
	if err != nil {
		l.logger.Warn(ctx, errors.WrapIO(err, errors.ErrCodeReadmeNotFound, "reading README").WithFile(readme),
			"README could not be read")
		return l.Placeholder()
	}

	doc, ok := l.render(ctx, string(data), readme)
	if !ok {
		return l.Placeholder()
	}
	doc.SourceURL = l.SourceURL(fragment)
	return doc
}

// Root loads the project README shown when no pattern is selected.
func (l *Loader) Root(ctx context.Context) Document {
	data, err := os.ReadFile(l.rootReadme)
	if err != nil {
		l.logger.Warn(ctx, errors.WrapIO(err, errors.ErrCodeReadmeNotFound, "reading root README").WithFile(l.rootReadme),
			"Root README could not be read")
		return l.Placeholder()
	}

	doc, ok := l.render(ctx, NormalizeRootReadme(string(data), l.basePath), l.rootReadme)
	if !ok {
		return l.Placeholder()
	}
	if l.repositoryURL != "" {
		doc.SourceURL = l.repositoryURL + "/" + path.Base(l.rootReadme)
	}
	return doc
}

func (l *Loader) render(ctx context.Context, source, file string) (Document, bool) {
	html, err := l.engine.Render(source)
	if err != nil {
		l.logger.Warn(ctx, err, "README could not be rendered", "file", file, "engine", l.engine.Name())
		return Document{}, false
	}
	return Document{HTML: html, Path: file}, true
}

// SourceURL is the repository link for the README next to a fragment.
func (l *Loader) SourceURL(fragment string) string {
	if l.repositoryURL == "" {
		return ""
	}
	return l.repositoryURL + "/" + path.Join(l.sourcePrefix, path.Dir(fragment), registry.ReadmeFile)
}

// NormalizeRootReadme rewrites the project README for display inside the
// shell: the icon is served from the public directory under base, and the
// link back to the pattern library is dropped.
func NormalizeRootReadme(source, base string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	source = strings.ReplaceAll(source, "public/icon.svg", base+"icon.svg")
	return libraryLink.ReplaceAllString(source, "")
}

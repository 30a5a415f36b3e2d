// Package scanner discovers demo fragments and README files for the pattern
// library.
//
// Discovery runs the configured doublestar globs against the components root,
// drops excluded paths, and turns the sorted result into a manifest. The
// manifest is built into a catalog and published to the component registry so
// watchers (the development server, the websocket hub) see what changed.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/conneroisu/patterns/internal/config"
	"github.com/conneroisu/patterns/internal/errors"
	"github.com/conneroisu/patterns/internal/logging"
	"github.com/conneroisu/patterns/internal/registry"
)

// ComponentScanner finds fragments below a root and publishes them to a
// registry.
type ComponentScanner struct {
	root       string
	fsys       fs.FS
	glob       string
	readmeGlob string
	exclude    []string
	registry   *registry.ComponentRegistry
	logger     logging.Logger
}

// NewComponentScanner creates a scanner over the directory named by
// cfg.Root.
func NewComponentScanner(cfg config.ComponentsConfig, reg *registry.ComponentRegistry, logger logging.Logger) (*ComponentScanner, error) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeScanFailed, "components root is not readable").
			WithFile(cfg.Root)
	}
	if !info.IsDir() {
		return nil, errors.NewIOError(errors.ErrCodeScanFailed, "components root is not a directory", nil).
			WithFile(cfg.Root)
	}

	return NewFSScanner(cfg.Root, os.DirFS(cfg.Root), cfg, reg, logger), nil
}

// NewFSScanner creates a scanner over an arbitrary file system. root is only
// used in log output.
func NewFSScanner(root string, fsys fs.FS, cfg config.ComponentsConfig, reg *registry.ComponentRegistry, logger logging.Logger) *ComponentScanner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ComponentScanner{
		root:       root,
		fsys:       fsys,
		glob:       cfg.Glob,
		readmeGlob: cfg.ReadmeGlob,
		exclude:    cfg.Exclude,
		registry:   reg,
		logger:     logger.WithComponent("scanner"),
	}
}

func (s *ComponentScanner) GetRegistry() *registry.ComponentRegistry {
	return s.registry
}

// FS returns the file system fragments and READMEs are read from.
func (s *ComponentScanner) FS() fs.FS {
	return s.fsys
}

func (s *ComponentScanner) Root() string {
	return s.root
}

// Discover runs both globs and returns the manifest without publishing it.
func (s *ComponentScanner) Discover(ctx context.Context) (registry.Manifest, error) {
	fragments, err := s.match(ctx, s.glob)
	if err != nil {
		return registry.Manifest{}, err
	}

	readmes, err := s.match(ctx, s.readmeGlob)
	if err != nil {
		return registry.Manifest{}, err
	}

	return registry.Manifest{Fragments: fragments, Readmes: readmes}, nil
}

// Scan discovers fragments, builds a catalog and publishes it.
func (s *ComponentScanner) Scan(ctx context.Context) (*registry.Catalog, error) {
	op := logging.StartOperation(s.logger, "scan")

	manifest, err := s.Discover(ctx)
	if err != nil {
		op.EndWithError(ctx, err)
		return nil, err
	}

	catalog := registry.Build(manifest)
	for _, skipped := range catalog.Skipped() {
		s.logger.Debug(ctx, "Ignoring fragment outside the menu layout", "path", skipped)
	}

	events := 0
	if s.registry != nil {
		events = s.registry.Publish(catalog)
	}

	op.End(ctx,
		"root", s.root,
		"components", catalog.Len(),
		"readmes", len(manifest.Readmes),
		"changes", events)

	return catalog, nil
}

func (s *ComponentScanner) match(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err := doublestar.Glob(s.fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeScanFailed, "glob failed").
			WithContext("glob", pattern)
	}

	result := make([]string, 0, len(matches))
	for _, match := range matches {
		if s.excluded(match) {
			continue
		}
		result = append(result, match)
	}

	sort.Strings(result)
	return result, nil
}

func (s *ComponentScanner) excluded(p string) bool {
	for _, pattern := range s.exclude {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// CleanRelative normalises a request path into a slash-separated path
// relative to the root. Absolute paths and paths that escape the root are
// rejected.
func CleanRelative(p string) (string, error) {
	if p == "" {
		return "", errors.ErrInvalidPath(p)
	}

	slashed := filepath.ToSlash(p)
	if strings.HasPrefix(slashed, "/") {
		return "", errors.ErrPathTraversal(p)
	}
	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return "", errors.ErrPathTraversal(p)
		}
	}

	cleaned := path.Clean(slashed)
	if cleaned == "." || !fs.ValidPath(cleaned) {
		return "", errors.ErrInvalidPath(p)
	}
	return cleaned, nil
}

// ReadFile reads a root-relative file after validating its path.
func (s *ComponentScanner) ReadFile(p string) ([]byte, error) {
	cleaned, err := CleanRelative(p)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, cleaned)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cleaned, err)
	}
	return data, nil
}

// Package server serves the documentation shell, its JSON state API, the demo
// fragments and the hot-reload websocket.
//
// Every navigation in the browser ends in a request for the state of the
// current URL, so the server is the single place where a pattern query is
// resolved. File changes below the components root trigger a rescan; the
// registry's change events and the changed paths are turned into reload
// messages for connected browsers.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/conneroisu/patterns/internal/config"
	"github.com/conneroisu/patterns/internal/docs"
	"github.com/conneroisu/patterns/internal/errors"
	"github.com/conneroisu/patterns/internal/logging"
	"github.com/conneroisu/patterns/internal/markdown"
	"github.com/conneroisu/patterns/internal/monitoring"
	"github.com/conneroisu/patterns/internal/nav"
	"github.com/conneroisu/patterns/internal/registry"
	"github.com/conneroisu/patterns/internal/scanner"
	"github.com/conneroisu/patterns/internal/theme"
	"github.com/conneroisu/patterns/internal/validation"
	"github.com/conneroisu/patterns/internal/watcher"
	"github.com/conneroisu/patterns/internal/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	debounceDelay   = 300 * time.Millisecond
	themeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// PreviewServer serves the pattern library shell
type PreviewServer struct {
	config   *config.Config
	logger   logging.Logger
	registry *registry.ComponentRegistry
	scanner  *scanner.ComponentScanner
	docs     *docs.Loader
	themes   *theme.Fetcher
	codec    nav.Codec
	ws       *websocket.WebSocketManager
	watcher  *watcher.FileWatcher
	health   *monitoring.HealthMonitor
	router   http.Handler

	httpServer  *http.Server
	listener    net.Listener
	serverMutex sync.RWMutex

	shutdownOnce sync.Once
}

// New creates a preview server. Discovery does not run until Start or Scan.
func New(cfg *config.Config, logger logging.Logger) (*PreviewServer, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.WithComponent("server")

	reg := registry.NewComponentRegistry()
	componentScanner, err := scanner.NewComponentScanner(cfg.Components, reg, logger)
	if err != nil {
		return nil, err
	}

	engine, err := markdown.New(cfg.Docs.Engine)
	if err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "unknown markdown engine")
	}

	s := &PreviewServer{
		config:   cfg,
		logger:   logger,
		registry: reg,
		scanner:  componentScanner,
		docs:     docs.NewLoader(componentScanner.FS(), engine, cfg, logger),
		themes:   theme.NewFetcher(cfg.Themes, &http.Client{Timeout: themeTimeout}, logger),
		codec:    nav.NewCodec(cfg.Components.DefaultVariant),
	}

	if cfg.Development.HotReload {
		s.ws = websocket.NewWebSocketManager(websocket.AllowedOrigins(cfg.Server.AllowedOrigins), logger)
	}

	s.health = s.newHealthMonitor()
	s.router = s.buildRouter()
	return s, nil
}

// Router returns the HTTP handler with every route and middleware applied.
func (s *PreviewServer) Router() http.Handler {
	return s.router
}

// Registry returns the component registry the server publishes to.
func (s *PreviewServer) Registry() *registry.ComponentRegistry {
	return s.registry
}

// Scan rediscovers fragments and READMEs and publishes the new catalog.
func (s *PreviewServer) Scan(ctx context.Context) error {
	_, err := s.scanner.Scan(ctx)
	return err
}

// Start scans, starts hot reload when enabled, and serves until ctx is
// cancelled or the server fails.
func (s *PreviewServer) Start(ctx context.Context) error {
	if err := s.Scan(ctx); err != nil {
		return err
	}
	s.logger.Info(ctx, "Discovered components", "count", s.registry.Count(), "root", s.config.Components.Root)

	if s.ws != nil {
		if err := s.setupFileWatcher(ctx); err != nil {
			s.logger.Warn(ctx, err, "Hot reload disabled, file watcher could not start")
		} else {
			go s.forwardRegistryEvents(ctx)
		}
	}

	addr := net.JoinHostPort(s.config.Server.Host, fmt.Sprint(s.config.Server.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewNetworkError(errors.ErrCodeListenFailed, "cannot listen on "+addr, err)
	}

	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.serverMutex.Lock()
	s.httpServer = httpServer
	s.listener = listener
	s.serverMutex.Unlock()

	pageURL := s.URL()
	s.logger.Info(ctx, "Serving pattern library", "url", pageURL)
	if s.config.Server.Open {
		go s.openBrowser(ctx, pageURL)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// URL is the address of the shell page, available once Start is listening.
func (s *PreviewServer) URL() string {
	s.serverMutex.RLock()
	defer s.serverMutex.RUnlock()

	if s.listener == nil {
		return ""
	}
	host := s.config.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	_, port, _ := net.SplitHostPort(s.listener.Addr().String())
	return "http://" + net.JoinHostPort(host, port) + s.config.Server.BasePath
}

func (s *PreviewServer) setupFileWatcher(ctx context.Context) error {
	fileWatcher, err := watcher.NewFileWatcher(debounceDelay, s.logger)
	if err != nil {
		return err
	}

	fileWatcher.AddFilter(watcher.PatternFilter)
	fileWatcher.AddFilter(watcher.NoGitFilter)
	fileWatcher.AddFilter(watcher.NoNodeModulesFilter)
	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		return s.handleFileChange(ctx, events)
	})

	if err := fileWatcher.AddRecursive(s.config.Components.Root); err != nil {
		_ = fileWatcher.Stop()
		return err
	}
	if dir := filepath.Dir(s.config.Docs.RootReadme); dir != "" {
		if err := fileWatcher.AddPath(dir); err != nil {
			s.logger.Warn(ctx, err, "Root README will not hot reload", "path", s.config.Docs.RootReadme)
		}
	}

	if err := fileWatcher.Start(ctx); err != nil {
		_ = fileWatcher.Stop()
		return err
	}
	s.watcher = fileWatcher
	return nil
}

// handleFileChange rescans and tells browsers what to reload. Structural
// changes (components or variants added or removed) arrive separately as
// registry events.
func (s *PreviewServer) handleFileChange(ctx context.Context, events []watcher.ChangeEvent) error {
	for _, event := range events {
		s.logger.Debug(ctx, "File changed", "path", event.Path, "type", event.Type.String())
	}

	if err := s.Scan(ctx); err != nil {
		return err
	}
	if s.ws == nil {
		return nil
	}

	for _, msg := range s.classifyChanges(events) {
		s.ws.BroadcastMessage(msg)
	}
	return nil
}

// classifyChanges maps changed files to reload messages. A stylesheet change
// reloads everything since any fragment may link to it.
func (s *PreviewServer) classifyChanges(events []watcher.ChangeEvent) []websocket.UpdateMessage {
	catalog := s.registry.Catalog()
	rootReadme, _ := filepath.Abs(s.config.Docs.RootReadme)

	var messages []websocket.UpdateMessage
	readme := false
	seen := map[string]bool{}

	for _, event := range events {
		if abs, err := filepath.Abs(event.Path); err == nil && abs == rootReadme {
			readme = true
			continue
		}

		rel, ok := s.relative(event.Path)
		if !ok {
			continue
		}

		switch {
		case watcher.StyleFilter(rel):
			return []websocket.UpdateMessage{{Type: websocket.MessageFullReload}}
		case watcher.MarkdownFilter(rel):
			readme = true
		case watcher.FragmentFilter(rel):
			if _, _, known := catalog.Fragment(rel); known && !seen[rel] {
				seen[rel] = true
				messages = append(messages, websocket.UpdateMessage{
					Type:   websocket.MessageFragmentChanged,
					Target: rel,
				})
			}
		}
	}

	if readme {
		messages = append(messages, websocket.UpdateMessage{Type: websocket.MessageReadmeChanged})
	}
	return messages
}

// relative converts a watcher path into a slash-separated path below the
// components root.
func (s *PreviewServer) relative(p string) (string, bool) {
	root, err := filepath.Abs(s.config.Components.Root)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", false
	}
	cleaned, err := scanner.CleanRelative(rel)
	if err != nil {
		return "", false
	}
	return cleaned, true
}

// forwardRegistryEvents turns catalog changes into a single full reload per
// burst of events.
func (s *PreviewServer) forwardRegistryEvents(ctx context.Context) {
	events := s.registry.Watch()
	defer s.registry.UnWatch(events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.logger.Info(ctx, "Component "+event.Type.String(), "component", event.Component.ID)

		drain:
			for {
				select {
				case more := <-events:
					s.logger.Info(ctx, "Component "+more.Type.String(), "component", more.Component.ID)
				default:
					break drain
				}
			}

			s.ws.BroadcastMessage(websocket.UpdateMessage{Type: websocket.MessageFullReload})
		}
	}
}

func (s *PreviewServer) openBrowser(ctx context.Context, target string) {
	time.Sleep(100 * time.Millisecond)

	if err := validation.ValidateBrowserURL(target); err != nil {
		s.logger.Warn(ctx, err, "Refusing to open browser for invalid URL", "url", target)
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	case "darwin":
		cmd = exec.Command("open", target)
	default:
		s.logger.Warn(ctx, nil, "Cannot open a browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		s.logger.Warn(ctx, err, "Failed to open browser", "url", target)
	}
}

// Shutdown stops the watcher, closes websocket clients and drains HTTP
// connections.
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop file watcher")
			}
		}
		if s.ws != nil {
			_ = s.ws.Shutdown(ctx)
		}

		s.serverMutex.RLock()
		httpServer := s.httpServer
		s.serverMutex.RUnlock()

		if httpServer != nil {
			shutdownErr = httpServer.Shutdown(ctx)
		}
	})

	return shutdownErr
}

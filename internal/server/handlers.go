package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/a-h/templ"
	"github.com/conneroisu/patterns/internal/docs"
	"github.com/conneroisu/patterns/internal/errors"
	"github.com/conneroisu/patterns/internal/layout"
	"github.com/conneroisu/patterns/internal/monitoring"
	"github.com/conneroisu/patterns/internal/nav"
	"github.com/conneroisu/patterns/internal/scanner"
	"github.com/conneroisu/patterns/internal/shell"
	"github.com/conneroisu/patterns/internal/version"
	"github.com/go-chi/chi/v5"
)

// StateResponse is the JSON answer of the state endpoint: the resolved
// navigation state plus what the browser needs to apply it.
type StateResponse struct {
	nav.State
	FrameURL string        `json:"frame_url,omitempty"`
	Readme   docs.Document `json:"readme"`
}

func (s *PreviewServer) base() string {
	return s.config.Server.BasePath
}

func (s *PreviewServer) frameURL(fragment string) string {
	if fragment == "" {
		return ""
	}
	return s.base() + "src/" + fragment
}

// resolve answers every navigation: initial load, clicks and history
// traversal all come down to the query string.
func (s *PreviewServer) resolve(r *http.Request) StateResponse {
	catalog := s.registry.Catalog()
	state := s.codec.Resolve(catalog, r.URL.Query())

	if state.Fallback {
		s.requestLog(r).Debug(r.Context(), "Pattern did not resolve, showing fallback",
			"requested", state.Requested,
			"pattern", state.Pattern)
	}

	resp := StateResponse{State: state}
	if state.View == nav.ViewPattern {
		resp.FrameURL = s.frameURL(state.Fragment)
		resp.Readme = s.docs.Pattern(r.Context(), catalog, state.Fragment)
	} else {
		resp.Readme = s.docs.Root(r.Context())
	}
	return resp
}

func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	resp := s.resolve(r)

	page := shell.Page{
		Title: "Patterns",
		Base:  s.base(),
		Menu: s.codec.BuildMenu(s.registry.Catalog(), resp.State, nav.MenuOptions{
			Base:      s.base(),
			TitleCase: s.config.Navigation.TitleCase,
		}),
		State:         resp.State,
		FrameURL:      resp.FrameURL,
		Readme:        resp.Readme,
		Themes:        s.themes.Themes(),
		GridRows:      s.savedSplit(r),
		HotReload:     s.ws != nil,
		MinPaneHeight: s.config.Layout.MinPaneHeight,
	}

	templ.Handler(shell.Shell(page),
		templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
			s.handleError(r, errors.WrapInternal(err, errors.ErrCodeInternalError, "rendering shell"))
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			})
		}),
	).ServeHTTP(w, r)
}

// savedSplit restores the split the script stored in its cookie, re-clamped
// to the configured minimums.
func (s *PreviewServer) savedSplit(r *http.Request) string {
	if !s.config.Development.StatePreservation {
		return ""
	}
	cookie, err := r.Cookie(layout.CookieName)
	if err != nil {
		return ""
	}
	saved, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}

	rows, err := layout.Restore(saved, 0,
		float64(s.config.Layout.SplitterHeight),
		float64(s.config.Layout.MinPaneHeight))
	if err != nil {
		s.requestLog(r).Debug(r.Context(), "Ignoring malformed split cookie", "value", saved)
		return ""
	}
	return rows.GridTemplate()
}

func (s *PreviewServer) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.resolve(r))
}

func (s *PreviewServer) handleComponents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Catalog())
}

// handleReadme returns the README next to a fragment, or the root README
// when no path is given. Unreadable READMEs come back as the placeholder.
func (s *PreviewServer) handleReadme(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		writeJSON(w, http.StatusOK, s.docs.Root(r.Context()))
		return
	}

	cleaned, err := scanner.CleanRelative(p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.docs.Pattern(r.Context(), s.registry.Catalog(), cleaned))
}

// handleFragment serves a demo fragment, with the theme from ?theme=
// injected. Other files below the root (stylesheets, images) are served as
// is so fragments can link to them; unknown HTML files are not served.
func (s *PreviewServer) handleFragment(w http.ResponseWriter, r *http.Request) {
	p, err := scanner.CleanRelative(chi.URLParam(r, "*"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, _, ok := s.registry.Catalog().Fragment(p); !ok {
		if path.Ext(p) == ".html" {
			s.writeError(w, r, errors.ErrFragmentNotFound(p))
			return
		}
		if _, err := fs.Stat(s.scanner.FS(), p); err != nil {
			s.writeError(w, r, errors.ErrFragmentNotFound(p))
			return
		}
		http.ServeFileFS(w, r, s.scanner.FS(), p)
		return
	}

	data, err := s.scanner.ReadFile(p)
	if err != nil {
		s.writeError(w, r, errors.WrapIO(err, errors.ErrCodeFileNotFound, "reading fragment").WithFile(p))
		return
	}

	if value := r.URL.Query().Get("theme"); value != "" {
		themed, err := s.themes.Apply(r.Context(), data, value)
		if err != nil {
			// Served unstyled
			s.handleError(r, err)
		}
		data = themed
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}

// newHealthMonitor registers the checks /health reports.
func (s *PreviewServer) newHealthMonitor() *monitoring.HealthMonitor {
	hm := monitoring.NewHealthMonitor(version.GetShortVersion(), s.logger)

	hm.RegisterCheck(monitoring.DirectoryHealthChecker("components_root", s.config.Components.Root, true))
	hm.RegisterCheck(monitoring.GoroutineHealthChecker())

	hm.RegisterCheck(monitoring.NewHealthCheckFunc("registry", false, func(ctx context.Context) monitoring.HealthCheck {
		count := s.registry.Count()
		check := monitoring.HealthCheck{
			Status:   monitoring.HealthStatusHealthy,
			Message:  fmt.Sprintf("%d components discovered", count),
			Metadata: map[string]interface{}{"components": count},
		}
		if count == 0 {
			check.Status = monitoring.HealthStatusDegraded
			check.Message = "No components discovered"
		}
		return check
	}))

	hm.RegisterCheck(monitoring.NewHealthCheckFunc("hot_reload", false, func(ctx context.Context) monitoring.HealthCheck {
		if s.ws == nil {
			return monitoring.HealthCheck{
				Status:   monitoring.HealthStatusHealthy,
				Message:  "Hot reload disabled",
				Metadata: map[string]interface{}{"enabled": false},
			}
		}
		return monitoring.HealthCheck{
			Status:  monitoring.HealthStatusHealthy,
			Message: "Hot reload enabled",
			Metadata: map[string]interface{}{
				"enabled": true,
				"clients": s.ws.GetConnectedClients(),
			},
		}
	}))

	return hm
}

// publicHandler serves the public directory below base, or nothing when the
// directory does not exist.
func (s *PreviewServer) publicHandler() http.Handler {
	dir := s.config.Server.PublicDir
	if info, err := os.Stat(dir); dir == "" || err != nil || !info.IsDir() {
		return http.NotFoundHandler()
	}
	return http.StripPrefix(strings.TrimSuffix(s.base(), "/"), http.FileServer(http.Dir(dir)))
}

func (s *PreviewServer) assetsHandler() http.Handler {
	return http.StripPrefix(s.base()+"assets", http.FileServerFS(shell.Assets()))
}

// handleError logs err through the request's logger.
func (s *PreviewServer) handleError(r *http.Request, err error) {
	errors.NewErrorHandler(s.requestLog(r)).Handle(r.Context(), err)
}

// writeError maps a PatternError to a status code and logs it.
func (s *PreviewServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.handleError(r, err)

	status := http.StatusInternalServerError
	switch {
	case errors.IsSecurityError(err), errors.HasErrorType(err, errors.ErrorTypeValidation):
		status = http.StatusBadRequest
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	}
	http.Error(w, http.StatusText(status), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

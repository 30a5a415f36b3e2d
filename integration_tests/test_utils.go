//go:build integration
// +build integration

package integration_tests

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conneroisu/patterns/internal/config"
	"github.com/conneroisu/patterns/internal/server"
	"github.com/stretchr/testify/require"
)

// writeTree creates files below dir from a map of slash separated paths to
// contents.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		writeFile(t, dir, name, content)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// patternTree is a small library with one grouped and one ungrouped component.
func patternTree() map[string]string {
	return map[string]string{
		"src/components/accordion/base/index.html":   "<details>base</details>",
		"src/components/accordion/base/README.md":    "# Accordion",
		"src/components/accordion/outline/index.html": "<details class=outline></details>",
		"src/components/forms/radio/base/index.html":  "<input type=radio>",
		"README.md": "# Patterns",
	}
}

// projectConfig returns a configuration rooted at dir with hot reload on and
// the server bound to a random loopback port.
func projectConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.Open = false
	cfg.Components.Root = filepath.Join(dir, "src")
	cfg.Docs.RootReadme = filepath.Join(dir, "README.md")
	cfg.Themes = []config.ThemeConfig{{Value: "", Name: "Browser Default"}}
	return cfg
}

// startServer runs the server until the test ends and returns its URL once
// it answers health checks.
func startServer(t *testing.T, cfg *config.Config) (*server.PreviewServer, string) {
	t.Helper()

	srv, err := server.New(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	var url string
	require.Eventually(t, func() bool {
		url = srv.URL()
		if url == "" {
			return false
		}
		resp, err := http.Get(url + "health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	return srv, url
}

func removeAll(dir, name string) error {
	return os.RemoveAll(filepath.Join(dir, filepath.FromSlash(name)))
}

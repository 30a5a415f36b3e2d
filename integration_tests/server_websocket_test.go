//go:build integration
// +build integration

package integration_tests

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	ws "github.com/conneroisu/patterns/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectShell(t *testing.T, baseURL string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := strings.Replace(baseURL, "http://", "ws://", 1) + "ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

// nextMessage reads until a message of type want arrives.
func nextMessage(t *testing.T, conn *websocket.Conn, want string) ws.UpdateMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err, "waiting for %s", want)

		var msg ws.UpdateMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == want {
			return msg
		}
	}
}

func TestIntegration_Server_StateAndFragment(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, patternTree())
	_, baseURL := startServer(t, projectConfig(dir))

	resp, err := http.Get(baseURL + "api/state?pattern=forms/radio")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, "forms/radio", state["pattern"])
	assert.Equal(t, "/src/components/forms/radio/base/index.html", state["frame_url"])

	resp, err = http.Get(baseURL + "src/components/forms/radio/base/index.html")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "<input type=radio>", string(body))
}

func TestIntegration_Server_HotReload(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, patternTree())
	_, baseURL := startServer(t, projectConfig(dir))

	conn := connectShell(t, baseURL)
	// The hub registers clients asynchronously.
	time.Sleep(100 * time.Millisecond)

	t.Run("fragment edit", func(t *testing.T) {
		writeFile(t, dir, "src/components/accordion/outline/index.html", "<details class=outline open></details>")

		msg := nextMessage(t, conn, ws.MessageFragmentChanged)
		assert.Equal(t, "components/accordion/outline/index.html", msg.Target)
	})

	t.Run("readme edit", func(t *testing.T) {
		writeFile(t, dir, "src/components/accordion/base/README.md", "# Accordion\n\nUpdated.")
		nextMessage(t, conn, ws.MessageReadmeChanged)
	})

	t.Run("root readme edit", func(t *testing.T) {
		writeFile(t, dir, "README.md", "# Patterns\n\nUpdated.")
		nextMessage(t, conn, ws.MessageReadmeChanged)
	})

	t.Run("component removed", func(t *testing.T) {
		require.NoError(t, removeAll(dir, "src/components/forms"))
		nextMessage(t, conn, ws.MessageFullReload)
	})
}

func TestIntegration_Server_Health(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, patternTree())
	_, baseURL := startServer(t, projectConfig(dir))

	resp, err := http.Get(baseURL + "health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health struct {
		Status string                            `json:"status"`
		Checks map[string]map[string]interface{} `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)

	hotReload := health.Checks["hot_reload"]["metadata"].(map[string]interface{})
	assert.Equal(t, true, hotReload["enabled"])
}

package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/conneroisu/patterns/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestManager(t *testing.T, validator OriginValidator) (*WebSocketManager, *httptest.Server) {
	t.Helper()

	manager := NewWebSocketManager(validator, nil)
	server := httptest.NewServer(http.HandlerFunc(manager.HandleWebSocket))
	t.Cleanup(func() {
		_ = manager.Shutdown(context.Background())
		server.Close()
	})
	return manager, server
}

func dial(t *testing.T, server *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	opts := &websocket.DialOptions{HTTPHeader: http.Header{}}
	if origin != "" {
		opts.HTTPHeader.Set("Origin", origin)
	}
	return websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), opts)
}

func TestBroadcastMessage(t *testing.T) {
	manager, server := setupTestManager(t, nil)

	conn, _, err := dial(t, server, "")
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 1
	}, 2*time.Second, 10*time.Millisecond)

	manager.BroadcastMessage(UpdateMessage{
		Type:   MessageFragmentChanged,
		Target: "components/accordion/base/index.html",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg UpdateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageFragmentChanged, msg.Type)
	assert.Equal(t, "components/accordion/base/index.html", msg.Target)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestFullReloadOmitsTarget(t *testing.T) {
	data, err := json.Marshal(UpdateMessage{Type: MessageFullReload, Timestamp: time.Unix(0, 0).UTC()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"full_reload","timestamp":"1970-01-01T00:00:00Z"}`, string(data))
}

func TestOriginValidation(t *testing.T) {
	_, server := setupTestManager(t, AllowedOrigins{"http://docs.example.com"})

	conn, _, err := dial(t, server, server.URL)
	require.NoError(t, err, "same origin is always allowed")
	conn.Close(websocket.StatusNormalClosure, "")

	conn, _, err = dial(t, server, "http://docs.example.com")
	require.NoError(t, err)
	conn.Close(websocket.StatusNormalClosure, "")

	_, resp, err := dial(t, server, "http://evil.example.com")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRejectedOriginLogged(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelWarn, Format: "json", Output: buf})
	manager := NewWebSocketManager(AllowedOrigins{"http://docs.example.com"}, logger)
	t.Cleanup(func() { _ = manager.Shutdown(context.Background()) })

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec := httptest.NewRecorder()
	manager.HandleWebSocket(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	entry := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WebSocket connection rejected", entry["msg"])
	assert.Equal(t, "websocket", entry["component"])
	assert.Contains(t, entry["error"], "ERR_INVALID_ORIGIN")
	assert.Contains(t, entry["error"], "http://evil.example.com")
}

func TestAllowedOrigins(t *testing.T) {
	tests := []struct {
		name    string
		allowed AllowedOrigins
		origin  string
		want    bool
	}{
		{"empty list", nil, "http://localhost:3000", false},
		{"exact", AllowedOrigins{"http://localhost:3000"}, "http://localhost:3000", true},
		{"trailing slash", AllowedOrigins{"http://localhost:3000/"}, "http://localhost:3000", true},
		{"case", AllowedOrigins{"HTTP://LOCALHOST:3000"}, "http://localhost:3000", true},
		{"wildcard", AllowedOrigins{"*"}, "https://anything.dev", true},
		{"other port", AllowedOrigins{"http://localhost:3000"}, "http://localhost:3001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.allowed.IsAllowedOrigin(tt.origin))
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", clientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", clientIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", clientIP(req))
}

func TestShutdown(t *testing.T) {
	manager, server := setupTestManager(t, nil)

	conn, _, err := dial(t, server, "")
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, manager.Shutdown(context.Background()))
	assert.True(t, manager.IsShutdown())
	assert.Equal(t, 0, manager.GetConnectedClients())

	// Safe after shutdown
	manager.BroadcastMessage(UpdateMessage{Type: MessageFullReload})
	require.NoError(t, manager.Shutdown(context.Background()))

	_, resp, err := dial(t, server, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	manager, server := setupTestManager(t, nil)

	conn, _, err := dial(t, server, "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))

	require.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

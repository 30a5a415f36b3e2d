// Package websocket pushes hot-reload notifications to open shell pages.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/conneroisu/patterns/internal/errors"
	"github.com/conneroisu/patterns/internal/logging"
	"golang.org/x/time/rate"
)

const (
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second

	// Browsers never talk back beyond control frames, so a small budget is
	// enough to spot a misbehaving client.
	clientMessageRate  = rate.Limit(10)
	clientMessageBurst = 20
)

// WebSocketManager handles connection management and broadcasting.
//
// A single hub goroutine owns registration, unregistration and fan-out. The
// clients map is guarded by clientsMutex for the read-only accessors.
type WebSocketManager struct {
	clients      map[*websocket.Conn]*Client
	clientsMutex sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *websocket.Conn

	originValidator OriginValidator
	logger          logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isShutdown   bool
}

// NewWebSocketManager creates a manager and starts its hub. A nil validator
// only admits same-origin connections; a nil logger discards output.
func NewWebSocketManager(originValidator OriginValidator, logger logging.Logger) *WebSocketManager {
	if originValidator == nil {
		originValidator = AllowedOrigins(nil)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())

	manager := &WebSocketManager{
		clients:         make(map[*websocket.Conn]*Client),
		broadcast:       make(chan []byte, 256),
		register:        make(chan *Client, 32),
		unregister:      make(chan *websocket.Conn, 32),
		originValidator: originValidator,
		logger:          logger.WithComponent("websocket"),
		ctx:             ctx,
		cancel:          cancel,
	}

	go manager.runHub()

	return manager
}

// HandleWebSocket upgrades the request and registers the client.
//
// Responses before the upgrade:
//   - 503 once the manager is shut down
//   - 403 for a cross-origin request from an origin that is not allowed
func (wm *WebSocketManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if wm.IsShutdown() {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	if !wm.validateWebSocketRequest(r) {
		origin := r.Header.Get("Origin")
		wm.logger.Warn(r.Context(), errors.ErrInvalidOrigin(origin), "WebSocket connection rejected",
			"origin", origin,
			"remote", r.RemoteAddr)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// Origins were checked above.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
		CompressionMode:    websocket.CompressionDisabled,
	})
	if err != nil {
		wm.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	client := &Client{
		conn:         conn,
		send:         make(chan []byte, 256),
		remote:       clientIP(r),
		lastActivity: time.Now(),
		limiter:      rate.NewLimiter(clientMessageRate, clientMessageBurst),
	}

	select {
	case wm.register <- client:
	case <-wm.ctx.Done():
		_ = conn.Close(websocket.StatusServiceRestart, "Server shutting down")
		return
	default:
		_ = conn.Close(websocket.StatusTryAgainLater, "Server busy")
		return
	}

	go wm.handleClient(client)
}

// validateWebSocketRequest admits requests without an Origin header,
// same-origin requests and origins accepted by the validator.
func (wm *WebSocketManager) validateWebSocketRequest(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return wm.originValidator.IsAllowedOrigin(origin)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (wm *WebSocketManager) runHub() {
	for {
		select {
		case client := <-wm.register:
			wm.registerClient(client)

		case conn := <-wm.unregister:
			wm.unregisterClient(conn)

		case message := <-wm.broadcast:
			wm.broadcastToClients(message)

		case <-wm.ctx.Done():
			return
		}
	}
}

func (wm *WebSocketManager) registerClient(client *Client) {
	wm.clientsMutex.Lock()
	wm.clients[client.conn] = client
	total := len(wm.clients)
	wm.clientsMutex.Unlock()

	wm.logger.Debug(wm.ctx, "WebSocket client connected", "remote", client.remote, "clients", total)
}

func (wm *WebSocketManager) unregisterClient(conn *websocket.Conn) {
	wm.clientsMutex.Lock()
	client, exists := wm.clients[conn]
	if exists {
		delete(wm.clients, conn)
		close(client.send)
	}
	total := len(wm.clients)
	wm.clientsMutex.Unlock()

	if exists {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		wm.logger.Debug(wm.ctx, "WebSocket client disconnected", "remote", client.remote, "clients", total)
	}
}

func (wm *WebSocketManager) broadcastToClients(message []byte) {
	wm.clientsMutex.RLock()
	defer wm.clientsMutex.RUnlock()

	for _, client := range wm.clients {
		select {
		case client.send <- message:
		default:
			// Slow consumer
			go wm.drop(client.conn)
		}
	}
}

func (wm *WebSocketManager) drop(conn *websocket.Conn) {
	select {
	case wm.unregister <- conn:
	case <-wm.ctx.Done():
	}
}

func (wm *WebSocketManager) handleClient(client *Client) {
	defer wm.drop(client.conn)

	go wm.writeToClient(client)
	wm.readFromClient(client)
}

func (wm *WebSocketManager) readFromClient(client *Client) {
	for {
		// A read deadline would close idle connections; dead peers are found
		// by the ping loop instead.
		_, _, err := client.conn.Read(wm.ctx)

		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && wm.ctx.Err() == nil {
				wm.logger.Debug(wm.ctx, "WebSocket read ended", "remote", client.remote, "error", err.Error())
			}
			return
		}

		client.lastActivity = time.Now()
		if !client.limiter.Allow() {
			wm.logger.Warn(wm.ctx, nil, "WebSocket client exceeded message rate", "remote", client.remote)
			_ = client.conn.Close(websocket.StatusPolicyViolation, "rate limit exceeded")
			return
		}
	}
}

func (wm *WebSocketManager) writeToClient(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}

			ctx, cancel := context.WithTimeout(wm.ctx, writeTimeout)
			err := client.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				wm.logger.Debug(wm.ctx, "WebSocket write failed", "remote", client.remote, "error", err.Error())
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(wm.ctx, writeTimeout)
			err := client.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-wm.ctx.Done():
			return
		}
	}
}

// BroadcastMessage sends a message to all connected clients. Messages are
// dropped when the manager is shut down or the broadcast queue is full.
func (wm *WebSocketManager) BroadcastMessage(message UpdateMessage) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	data, err := json.Marshal(message)
	if err != nil {
		wm.logger.Error(wm.ctx, err, "Failed to marshal broadcast message")
		return
	}

	wm.mu.RLock()
	defer wm.mu.RUnlock()
	if wm.isShutdown {
		return
	}

	select {
	case wm.broadcast <- data:
	default:
		wm.logger.Warn(wm.ctx, nil, "Broadcast channel full, dropping message", "type", message.Type)
	}
}

// GetConnectedClients returns the number of connected clients
func (wm *WebSocketManager) GetConnectedClients() int {
	wm.clientsMutex.RLock()
	defer wm.clientsMutex.RUnlock()
	return len(wm.clients)
}

// Shutdown closes every client connection and stops the hub.
func (wm *WebSocketManager) Shutdown(ctx context.Context) error {
	wm.shutdownOnce.Do(func() {
		wm.mu.Lock()
		wm.isShutdown = true
		wm.mu.Unlock()

		wm.cancel()

		wm.clientsMutex.Lock()
		for conn, client := range wm.clients {
			close(client.send)
			_ = conn.Close(websocket.StatusGoingAway, "Server shutdown")
		}
		wm.clients = make(map[*websocket.Conn]*Client)
		wm.clientsMutex.Unlock()

		wm.logger.Info(ctx, "WebSocket manager shut down")
	})

	return nil
}

// IsShutdown returns whether the WebSocket manager has been shut down
func (wm *WebSocketManager) IsShutdown() bool {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.isShutdown
}

// AllowedOrigins accepts origins listed verbatim. "*" accepts any origin.
type AllowedOrigins []string

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	for _, allowed := range a {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	return false
}

package websocket

import (
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"
)

// Message types understood by the shell script.
const (
	// MessageFullReload asks the browser to reload the whole shell, used when
	// the set of components changed.
	MessageFullReload = "full_reload"
	// MessageFragmentChanged carries the root-relative fragment path in
	// Target. Browsers showing that fragment reload the preview frame.
	MessageFragmentChanged = "fragment_changed"
	// MessageReadmeChanged asks the browser to re-sync the README pane.
	MessageReadmeChanged = "readme_changed"
)

// Client represents a WebSocket client connection
type Client struct {
	conn         *websocket.Conn
	send         chan []byte
	remote       string
	lastActivity time.Time
	limiter      *rate.Limiter
}

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OriginValidator decides whether a cross-origin upgrade is allowed.
type OriginValidator interface {
	IsAllowedOrigin(origin string) bool
}

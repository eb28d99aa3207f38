// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	applog "waveglow/internal/log"

	"github.com/gorilla/websocket"
)

// WebSocketTransport implements the Transport interface for WebSocket connections.
// It broadcasts JSON messages to every connected client with rate limiting to
// prevent overwhelming clients or the network.
//
// Thread Safety:
// - Uses mutex for client map access
// - Send serialises synchronously, so callers may reuse their buffers
// - A single goroutine writes to clients
type WebSocketTransport struct {
	addr      string
	path      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan []byte
	done      chan struct{}
	closeOnce sync.Once
	server    *http.Server
	listener  net.Listener

	limitMu         sync.Mutex
	lastSend        time.Time     // Last accepted send for rate limiting
	minSendInterval time.Duration // Minimum time between sends (prevents flooding)
}

// NewWebSocketTransport creates a new WebSocketTransport instance. Clients
// connect on path; the HTTP server is only started by Start, so tests can
// mount Handler on their own server instead.
func NewWebSocketTransport(addr, path string, minInterval time.Duration) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		path: path,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Viewers may be served from anywhere
			},
		},
		clients:         make(map[*websocket.Conn]bool),
		broadcast:       make(chan []byte, 16),
		done:            make(chan struct{}),
		minSendInterval: minInterval,
	}

	go wst.handleBroadcasts()
	return wst
}

// Handler returns the HTTP handler that upgrades connections on the
// configured path.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(wst.path, wst.handleWebSocket)
	return mux
}

// Start listens on the configured address and serves in the background.
func (wst *WebSocketTransport) Start() error {
	ln, err := net.Listen("tcp", wst.addr)
	if err != nil {
		return fmt.Errorf("websocket listen on %s: %w", wst.addr, err)
	}
	wst.listener = ln
	wst.server = &http.Server{
		Handler:           wst.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		applog.Infof("WebSocketTransport: Serving on ws://%s%s", ln.Addr(), wst.path)
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Errorf("WebSocketTransport: Server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address once Start has succeeded.
func (wst *WebSocketTransport) Addr() string {
	if wst.listener == nil {
		return wst.addr
	}
	return wst.listener.Addr().String()
}

// Clients returns the number of connected clients.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	// Register client
	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocketTransport: Client connected, total: %d", total)

	// Clients only listen; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.removeClient(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) removeClient(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	if _, ok := wst.clients[conn]; ok {
		delete(wst.clients, conn)
		conn.Close()
	}
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocketTransport: Client disconnected, total: %d", total)
}

// handleBroadcasts sends messages to all connected clients
func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case msg := <-wst.broadcast:
			wst.clientsMu.Lock()
			for client := range wst.clients {
				_ = client.SetWriteDeadline(time.Now().Add(time.Second))
				if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
					applog.Warnf("WebSocketTransport: Error sending to client: %v", err)
					client.Close()
					delete(wst.clients, client)
				}
			}
			wst.clientsMu.Unlock()
		case <-wst.done:
			return
		}
	}
}

// allow reports whether a send at now passes the rate limiter.
func (wst *WebSocketTransport) allow(now time.Time) bool {
	wst.limitMu.Lock()
	defer wst.limitMu.Unlock()
	if !wst.lastSend.IsZero() && now.Sub(wst.lastSend) < wst.minSendInterval {
		return false
	}
	wst.lastSend = now
	return true
}

// Send serialises data to JSON and queues it for every client. Sends
// inside the minimum interval, or while the queue is full, are dropped.
func (wst *WebSocketTransport) Send(data any) error {
	select {
	case <-wst.done:
		return errors.New("websocket transport is closed")
	default:
	}

	if !wst.allow(time.Now()) {
		return nil // Skip this update
	}

	msg, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("websocket encode: %w", err)
	}

	select {
	case wst.broadcast <- msg:
	default:
		// Channel full, drop message
	}
	return nil
}

// Close shuts down the WebSocket server
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		applog.Infof("WebSocketTransport: Closing server")
		close(wst.done)

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		wst.clientsMu.Unlock()

		if wst.server != nil {
			err = wst.server.Close()
		}
	})
	return err
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)

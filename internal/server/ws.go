// Package server provides the HTTP server for the Kuchipudi gesture recognition system.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arvind/mudra/internal/handinput"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LandmarksHandler broadcasts raw hand landmark samples via WebSocket,
// for operators tuning gesture thresholds live against the actual feed.
// It has no goroutine of its own and pulls no samples itself: the app's
// single executor is the only consumer of a handinput.Source (spec §5),
// so samples reach here through Publish after each detector tick.
type LandmarksHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	log     zerolog.Logger
}

// NewLandmarksHandler creates an empty LandmarksHandler.
func NewLandmarksHandler() *LandmarksHandler {
	return &LandmarksHandler{
		clients: make(map[*websocket.Conn]bool),
		log:     log.Logger.With().Str("component", "landmarks_ws").Logger(),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish fans a landmark sample out to every connected client.
func (h *LandmarksHandler) Publish(sample handinput.Sample) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(map[string]any{
		"sample":    sample,
		"timestamp": time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug().Err(err).Msg("dropping slow or disconnected landmarks client")
		}
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arvind/mudra/internal/customgesture"
	"github.com/arvind/mudra/internal/scene/core"
)

// SceneHandler fans out the scene core's output event bus (spec §6:
// mode_changed, grab_edge, pointer_updated, selection_changed) to every
// connected WebSocket subscriber. The orchestrator that produces events
// runs on the app's single executor goroutine; Publish is the only entry
// point into this handler from that goroutine, so no locking is needed
// beyond guarding the client set itself.
type SceneHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	log     zerolog.Logger
}

// NewSceneHandler creates an empty SceneHandler.
func NewSceneHandler() *SceneHandler {
	return &SceneHandler{
		clients: make(map[*websocket.Conn]bool),
		log:     log.Logger.With().Str("component", "scene_ws").Logger(),
	}
}

// ServeHTTP handles the WebSocket upgrade for /api/scene.
func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("scene websocket upgrade failed")
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

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish broadcasts a batch of orchestrator events to every connected
// subscriber. A slow or dead client is dropped rather than blocking the
// caller's tick.
func (h *SceneHandler) Publish(events []core.Event) {
	if len(events) == 0 {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	for _, ev := range events {
		data, err := ev.MarshalJSON()
		if err != nil {
			h.log.Warn().Err(err).Msg("failed to encode scene event")
			continue
		}
		for conn := range h.clients {
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.log.Debug().Err(err).Msg("dropping slow or disconnected scene client")
			}
		}
	}
}

// customGestureMatchedWire is the tagged-variant wire shape for a custom
// static-gesture match, broadcast alongside the core event bus on the
// same /api/scene feed (spec §4 "publish a custom_gesture_matched event
// alongside the spec.md §6 event bus").
type customGestureMatchedWire struct {
	Kind  string  `json:"kind"`
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// PublishCustomMatch broadcasts a custom_gesture_matched frame to every
// connected /api/scene subscriber, the same client set Publish fans out
// to. Called from the app's single executor goroutine via
// App.OnCustomGestureMatch, same threading contract as Publish.
func (h *SceneHandler) PublishCustomMatch(m customgesture.Match) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(customGestureMatchedWire{
		Kind:  "custom_gesture_matched",
		ID:    m.Template.ID,
		Name:  m.Template.Name,
		Score: m.Score,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to encode custom gesture match")
		return
	}

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug().Err(err).Msg("dropping slow or disconnected scene client")
		}
	}
}

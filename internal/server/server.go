// Package server provides the HTTP server for the Kuchipudi gesture recognition system.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arvind/mudra/internal/capture"
	"github.com/arvind/mudra/internal/server/api"
	"github.com/arvind/mudra/internal/store"
)

// Config holds the server configuration. Camera, Landmarks, and Scene are
// optional: each corresponding route is only registered when its
// collaborator is non-nil, so the server degrades gracefully in tests and
// headless deployments.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera
	Landmarks *LandmarksHandler
	Scene     *SceneHandler

	// OnGestureTrained, if set, is called with a gesture ID every time a
	// POST to /api/gestures/{id}/samples successfully trains a new
	// landmark template, so the running app can reload its matcher
	// without a restart.
	OnGestureTrained func(gestureID string)
}

// Server represents the HTTP server for the Kuchipudi application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    zerolog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    log.Logger.With().Str("component", "server").Logger(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register gesture API handler if Store is configured
	if s.config.Store != nil {
		gestureHandler := api.NewGestureHandler(s.config.Store)
		samplesHandler := api.NewSamplesHandler(s.config.Store, s.config.OnGestureTrained)
		actionsHandler := api.NewActionHandler(s.config.Store)
		presetsHandler := api.NewPresetsHandler(s.config.Store)

		// Use a wrapper to route between gestures and samples handlers
		gestureRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check if this is a samples request: /api/gestures/{id}/samples
			if strings.HasSuffix(r.URL.Path, "/samples") {
				samplesHandler.ServeHTTP(w, r)
				return
			}
			gestureHandler.ServeHTTP(w, r)
		})

		s.mux.Handle("/api/gestures", gestureRouter)
		s.mux.Handle("/api/gestures/", gestureRouter)
		s.mux.Handle("/api/actions", actionsHandler)
		s.mux.Handle("/api/actions/", actionsHandler)
		s.mux.Handle("/api/presets", presetsHandler)
		s.mux.Handle("/api/presets/", presetsHandler)
	}

	// Register camera stream endpoint if Camera is configured
	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
	}

	// Register the raw-landmark debug WebSocket if configured
	if s.config.Landmarks != nil {
		s.mux.Handle("/api/landmarks", s.config.Landmarks)
	}

	// Register the scene output-event WebSocket if configured
	if s.config.Scene != nil {
		s.mux.Handle("/api/scene", s.config.Scene)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.log.Warn().Err(err).Msg("failed to encode health response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, s)
}

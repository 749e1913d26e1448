package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arvind/mudra/internal/app"
	"github.com/arvind/mudra/internal/scene/core"
	"github.com/arvind/mudra/internal/server"
	"github.com/arvind/mudra/internal/store"
	"github.com/arvind/mudra/internal/tray"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get home directory")
	}

	dataDir := filepath.Join(homeDir, ".kuchipudi")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("failed to create data directory")
	}

	st, err := store.New(filepath.Join(dataDir, "kuchipudi.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer st.Close()

	pluginDir := filepath.Join(dataDir, "plugins")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("failed to create plugin directory")
	}

	cfg := app.DefaultConfig()
	cfg.Store = st
	cfg.PluginDir = pluginDir
	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("hand-landmark detector unavailable")
	}

	if err := application.LoadGestures(); err != nil {
		log.Error().Err(err).Msg("failed to load custom gestures")
	}
	if err := application.DiscoverPlugins(); err != nil {
		log.Error().Err(err).Msg("failed to discover plugins")
	}

	landmarksHandler := server.NewLandmarksHandler()
	sceneHandler := server.NewSceneHandler()
	trayApp := tray.New()

	application.OnLandmarkSample(landmarksHandler.Publish)
	application.OnSceneEvent(func(events []core.Event) {
		sceneHandler.Publish(events)
		for _, ev := range events {
			switch ev.Kind {
			case core.EventModeChanged:
				trayApp.SetMode(ev.Mode.String())
			case core.EventGrabEdge:
				trayApp.SetGrab(ev.Grab)
			}
		}
	})
	application.OnCustomGestureMatch(sceneHandler.PublishCustomMatch)

	trayApp.OnToggle(application.SetEnabled)
	trayApp.OnQuit(func() {
		application.Stop()
		os.Exit(0)
	})

	webDir := findWebDir()
	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Camera:    application.Camera(),
		Landmarks: landmarksHandler,
		Scene:     sceneHandler,
		OnGestureTrained: func(gestureID string) {
			if err := application.ReloadGesture(gestureID); err != nil {
				log.Warn().Str("gesture", gestureID).Err(err).Msg("failed to reload trained gesture")
			}
		},
	})

	addr := ":8080"
	go func() {
		log.Info().Str("addr", addr).Msg("starting http server")
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	application.SetEnabled(true)
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start detection pipeline")
	}
	defer application.Stop()

	trayApp.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.kuchipudi/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".kuchipudi", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

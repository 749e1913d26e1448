// Package app wires the scene core, the hand-landmark source, the
// custom-gesture extensibility layer, and plugin execution into a single
// running application, the same way the teacher's App orchestrated
// camera, detector, and matchers.
package app

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arvind/mudra/internal/capture"
	"github.com/arvind/mudra/internal/customgesture"
	"github.com/arvind/mudra/internal/handinput"
	"github.com/arvind/mudra/internal/plugin"
	"github.com/arvind/mudra/internal/scene/core"
	"github.com/arvind/mudra/internal/scene/gesture"
	"github.com/arvind/mudra/internal/store"
)

// Config holds every tunable for the running application: the scene
// core's own config (spec §6) plus the ambient capture/plugin/detector
// settings the teacher's App carried.
type Config struct {
	Store     *store.Store
	PluginDir string
	CameraID  int

	// MotionThresh is the percentage of changed pixels that promotes the
	// capture cadence from idle to active.
	MotionThresh float64
	// IdleIntervalMs is how often the idle-cadence motion probe runs.
	IdleIntervalMs int
	// DetectorMinIntervalMs throttles the active-cadence pull from the
	// landmark Source (spec §5 "Detector throttle" — nominally ~32ms).
	DetectorMinIntervalMs int
	// IdleTimeoutMs is how long without motion before falling back to
	// idle cadence.
	IdleTimeoutMs int
	// RenderIntervalMs paces the render-tick clock (spec §4.7).
	RenderIntervalMs int
	// PluginTimeoutMs bounds custom-gesture plugin execution.
	PluginTimeoutMs int

	Core core.Config
}

// DefaultConfig returns the spec's calibrated defaults for every
// tunable, with no photos registered.
func DefaultConfig() Config {
	return Config{
		CameraID:              0,
		MotionThresh:          1.0,
		IdleIntervalMs:        200,
		DetectorMinIntervalMs: 32,
		IdleTimeoutMs:         2000,
		RenderIntervalMs:      16,
		PluginTimeoutMs:       5000,
		Core:                  core.DefaultConfig(),
	}
}

// App is the running application: it owns the camera, the landmark
// source, the scene core orchestrator, and the custom-gesture layer, and
// serializes every call into them onto a single executor goroutine
// (spec §5 "Scheduling model").
type App struct {
	config Config
	log    zerolog.Logger

	camera capture.Camera
	motion *capture.MotionDetector
	source handinput.Source

	orchestrator *core.Orchestrator
	customMatch  *customgesture.Matcher
	pluginMgr    *plugin.Manager
	pluginExec   *plugin.Executor

	onScene       func([]core.Event)
	onLandmark    func(handinput.Sample)
	onCustomMatch func(customgesture.Match)

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
}

// New creates a new App. The landmark source is a MediaPipe subprocess
// adapter bound to a fresh camera; if that adapter cannot be constructed
// (script missing, no venv), New returns a non-nil App alongside a
// non-nil error — spec §7 treats a wholly absent detector as fatal to
// the end-user experience, so the caller (cmd/kuchipudi/main.go) is
// expected to surface the failure rather than silently run on fake
// data. Callers that want a mock source on purpose (tests, headless
// environments) ignore the error and call SetSource(handinput.NewMockSource())
// themselves.
func New(config Config) (*App, error) {
	logger := log.Logger.With().Str("component", "app").Logger()

	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0
	}

	a := &App{
		config:       config,
		log:          logger,
		camera:       capture.NewCamera(config.CameraID),
		motion:       capture.NewMotionDetector(motionThreshold),
		orchestrator: core.New(config.Core),
		customMatch:  customgesture.New(),
		pluginMgr:    plugin.NewManager(config.PluginDir),
		pluginExec:   plugin.NewExecutor(config.PluginTimeoutMs),
		enabled:      false,
	}

	mp, err := handinput.NewMediaPipeSource(a.camera, handinput.DefaultConfig())
	if err != nil {
		logger.Error().Err(err).Msg("mediapipe hand-landmark source unavailable")
		return a, err
	}
	a.source = mp
	logger.Info().Msg("using mediapipe hand-landmark source")
	return a, nil
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetSource overrides the hand-landmark source, primarily for tests.
func (a *App) SetSource(s handinput.Source) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = s
}

// Source returns the current hand-landmark source.
func (a *App) Source() handinput.Source {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.source
}

// OnSceneEvent registers a callback invoked with the batch of events
// produced by every detector and render tick (spec §6 output event
// bus). Used to wire the HTTP/WebSocket control plane without app
// depending on internal/server.
func (a *App) OnSceneEvent(fn func([]core.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onScene = fn
}

// OnLandmarkSample registers a callback invoked with every raw sample
// pulled from the Source, for the debug landmark WebSocket feed.
func (a *App) OnLandmarkSample(fn func(handinput.Sample)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onLandmark = fn
}

// OnCustomGestureMatch registers a callback invoked whenever a
// registered static pose matches, after its bound plugin (if any) has
// been dispatched.
func (a *App) OnCustomGestureMatch(fn func(customgesture.Match)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onCustomMatch = fn
}

func (a *App) sceneCallback() func([]core.Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.onScene
}

func (a *App) landmarkCallback() func(handinput.Sample) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.onLandmark
}

func (a *App) customMatchCallback() func(customgesture.Match) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.onCustomMatch
}

// Orchestrator returns the scene core orchestrator.
func (a *App) Orchestrator() *core.Orchestrator { return a.orchestrator }

// CustomMatcher returns the custom-gesture matcher.
func (a *App) CustomMatcher() *customgesture.Matcher { return a.customMatch }

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager { return a.pluginMgr }

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera { return a.camera }

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector { return a.motion }

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// LoadGestures loads every static gesture template (with its recorded
// landmarks) from the store into the custom-gesture matcher. Dynamic
// gestures are never written by current code (spec's custom-gesture
// layer is static-only) but a legacy row is skipped rather than
// rejected, in case one survives from an older database.
func (a *App) LoadGestures() error {
	if a.config.Store == nil {
		return nil
	}

	gestures, err := a.config.Store.Gestures().List()
	if err != nil {
		return err
	}

	loaded := 0
	for _, g := range gestures {
		if g.Type != store.GestureTypeStatic {
			continue
		}
		if err := a.loadGestureTemplate(g); err != nil {
			a.log.Warn().Str("gesture", g.Name).Err(err).Msg("failed to load landmarks")
			continue
		}
		loaded++
	}

	a.log.Info().Int("count", loaded).Msg("loaded static gestures")
	return nil
}

// ReloadGesture reloads a single static gesture's landmark template into
// the custom-gesture matcher, replacing any previously loaded template
// for the same ID. Called after the samples endpoint trains a new pose,
// so a freshly recorded gesture is matchable without restarting the app.
func (a *App) ReloadGesture(gestureID string) error {
	if a.config.Store == nil {
		return nil
	}

	g, err := a.config.Store.Gestures().GetByID(gestureID)
	if err != nil {
		return err
	}
	if g.Type != store.GestureTypeStatic {
		return nil
	}

	return a.loadGestureTemplate(g)
}

// loadGestureTemplate loads g's recorded landmarks, normalizes them, and
// upserts the resulting template into the custom-gesture matcher.
func (a *App) loadGestureTemplate(g *store.Gesture) error {
	landmarks, err := a.config.Store.Landmarks().GetByGestureID(g.ID)
	if err != nil {
		return err
	}

	normalized := handinput.Sample{Present: true, Points: landmarks}.Normalize()
	a.customMatch.RemoveTemplate(g.ID)
	a.customMatch.AddTemplate(&customgesture.Template{
		ID:        g.ID,
		Name:      g.Name,
		Landmarks: normalized.Points,
		Tolerance: g.Tolerance,
	})
	return nil
}

// Start opens the camera and begins the two-clock pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.stopCh = make(chan struct{})
	go a.runPipeline()

	a.log.Info().Msg("pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		a.log.Warn().Err(err).Msg("error closing camera")
	}
	a.motion.Close()

	if a.source != nil {
		if err := a.source.Close(); err != nil {
			a.log.Warn().Err(err).Msg("error closing landmark source")
		}
	}

	a.log.Info().Msg("pipeline stopped")
}

// executeAction looks up the action bound to gestureID and runs its
// effect: ActionKindPlugin dispatches a plugin in the background,
// ActionKindPreset applies a named Config preset to the orchestrator
// synchronously. A gesture with no bound action, or a disabled one, is
// silently skipped — spec §4 "Custom static-gesture extensibility
// layer" treats binding as opt-in per gesture.
func (a *App) executeAction(gestureID, gestureName string) {
	if a.config.Store == nil {
		return
	}

	action, err := a.config.Store.Actions().GetByGestureID(gestureID)
	if err != nil {
		a.log.Warn().Str("gesture", gestureName).Err(err).Msg("failed to look up action")
		return
	}
	if action == nil || !action.Enabled {
		return
	}

	switch action.Kind {
	case store.ActionKindPreset:
		a.applyPreset(gestureName, action.PresetName)
	default:
		a.executePlugin(gestureName, action)
	}
}

// executePlugin dispatches action's bound plugin in the background.
func (a *App) executePlugin(gestureName string, action *store.Action) {
	p, err := a.pluginMgr.Get(action.PluginName)
	if err != nil {
		a.log.Warn().Str("plugin", action.PluginName).Err(err).Msg("plugin not found")
		return
	}

	req := &plugin.Request{
		Action:  action.ActionName,
		Gesture: gestureName,
		Config:  action.Config,
	}

	go func() {
		resp, err := a.pluginExec.Execute(p, req)
		if err != nil {
			a.log.Warn().Str("plugin", action.PluginName).Err(err).Msg("plugin execution failed")
			return
		}
		if !resp.Success {
			a.log.Warn().Str("plugin", action.PluginName).Str("error", resp.Error).Msg("plugin reported failure")
		}
	}()
}

// gesturePreset is the wire shape of a stored Config preset applied by
// an ActionKindPreset binding — the gesture classifier's own tunables
// (spec §6), the same shape internal/server/api.PresetsHandler
// reads/writes verbatim as JSON under a preset name.
type gesturePreset struct {
	PinchEnter  float64 `json:"pinch_enter"`
	PinchExit   float64 `json:"pinch_exit"`
	MirrorInput bool    `json:"mirror_input"`
}

// applyPreset loads presetName from the settings store and applies it to
// the orchestrator's gesture classifier. Runs on the single executor
// goroutine (called from dispatch), so it never races a Tick.
func (a *App) applyPreset(gestureName, presetName string) {
	var preset gesturePreset
	if err := a.config.Store.Settings().GetPreset(presetName, &preset); err != nil {
		a.log.Warn().Str("gesture", gestureName).Str("preset", presetName).Err(err).Msg("failed to load tuning preset")
		return
	}

	a.orchestrator.SetGestureConfig(gesture.Config{
		PinchEnter:  preset.PinchEnter,
		PinchExit:   preset.PinchExit,
		MirrorInput: preset.MirrorInput,
	})
	a.log.Info().Str("gesture", gestureName).Str("preset", presetName).Msg("applied tuning preset")
}

// recordMatch advances the gesture's match_count/last_matched_at so
// /api/gestures can surface which recorded poses are actually firing.
// Failure here never blocks the action the match triggered.
func (a *App) recordMatch(gestureID string) {
	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Gestures().RecordMatch(gestureID); err != nil {
		a.log.Warn().Str("gesture", gestureID).Err(err).Msg("failed to record gesture match")
	}
}

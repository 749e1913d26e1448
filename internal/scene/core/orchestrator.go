// Package core implements the Core Orchestrator described in spec §4.7
// and §5: it wires the gesture classifier, mode state machine, pointer
// smoother, morph controller, camera controller, and pick resolver into
// the two-clock frame pipeline (a detector tick driven by landmark
// samples, a render tick driven by the display loop) and publishes the
// spec §6 output event bus. The orchestrator itself holds no concurrency
// primitives; its caller (internal/app) serializes every call onto a
// single executor, per spec §5 "Scheduling model".
package core

import (
	"encoding/json"
	"time"

	"github.com/golang/geo/r3"
	"github.com/rs/zerolog"

	"github.com/arvind/mudra/internal/handinput"
	"github.com/arvind/mudra/internal/scene/camera"
	"github.com/arvind/mudra/internal/scene/gesture"
	"github.com/arvind/mudra/internal/scene/mode"
	"github.com/arvind/mudra/internal/scene/morph"
	"github.com/arvind/mudra/internal/scene/pick"
	"github.com/arvind/mudra/internal/scene/pointer"
)

// Config aggregates every scene-core subsystem's tunables (spec §6).
type Config struct {
	Gesture    gesture.Config
	Mode       mode.Config
	Pointer    pointer.Config
	Formation  morph.FormationConfig
	Camera     camera.Config
	PhotoCount int
}

// DefaultConfig returns the spec's calibrated defaults for every
// subsystem, with no photos registered.
func DefaultConfig() Config {
	return Config{
		Gesture:   gesture.DefaultConfig(),
		Mode:      mode.DefaultConfig(),
		Pointer:   pointer.DefaultConfig(),
		Formation: morph.DefaultFormationConfig(),
		Camera:    camera.DefaultConfig(),
	}
}

// EventKind tags the closed set of output events the orchestrator
// publishes (spec §6 "Output event bus").
type EventKind int

const (
	EventPointerUpdated EventKind = iota
	EventModeChanged
	EventGrabEdge
	EventSelectionChanged
)

func (k EventKind) String() string {
	switch k {
	case EventModeChanged:
		return "mode_changed"
	case EventGrabEdge:
		return "grab_edge"
	case EventSelectionChanged:
		return "selection_changed"
	default:
		return "pointer_updated"
	}
}

// Event is one published occurrence on the output event bus. Only the
// fields relevant to Kind are meaningful; this mirrors the spec's tagged
// variants (spec §9 "Dynamic duck typing → tagged variants").
type Event struct {
	Kind EventKind

	Mode mode.Mode

	Grab bool

	Pointer pointer.Point
	Visible bool

	Selection    int
	HasSelection bool
}

// MarshalJSON encodes Event as a tagged variant over the wire — the
// literal wire format spec §6's output event bus leaves unspecified,
// used by the "/api/scene" WebSocket feed for external renderers.
func (e Event) MarshalJSON() ([]byte, error) {
	wire := struct {
		Kind         string  `json:"kind"`
		Mode         string  `json:"mode,omitempty"`
		Grab         bool    `json:"grab,omitempty"`
		PointerX     float64 `json:"pointer_x,omitempty"`
		PointerY     float64 `json:"pointer_y,omitempty"`
		PointerZ     float64 `json:"pointer_z,omitempty"`
		Visible      bool    `json:"visible,omitempty"`
		Selection    int     `json:"selection,omitempty"`
		HasSelection bool    `json:"has_selection,omitempty"`
	}{
		Kind:         e.Kind.String(),
		Mode:         e.Mode.String(),
		Grab:         e.Grab,
		PointerX:     e.Pointer.X,
		PointerY:     e.Pointer.Y,
		PointerZ:     e.Pointer.Z,
		Visible:      e.Visible,
		Selection:    e.Selection,
		HasSelection: e.HasSelection,
	}
	return json.Marshal(wire)
}

// PhotoSlot is one arena entry: a photo bound to a particle index for
// positioning in TREE/SCATTERED, with lazily-loaded pick-proxy extents
// (spec §3 "Photo slot", §9 "Global photo refs array → arena+index").
type PhotoSlot struct {
	ParticleIndex int
	Aspect        float64
	Loaded        bool
	TextureHandle string
}

// Orchestrator owns every piece of mutable scene-core state (mode,
// pointer, morph parameter, selection, the photo arena) and is the only
// writer of any of it (spec §5 "Shared-resource policy"). It is not safe
// for concurrent use; the caller is responsible for serializing Tick and
// Render calls onto one executor.
type Orchestrator struct {
	cfg Config
	log zerolog.Logger

	classifier *gesture.Classifier
	machine    *mode.Machine
	smoother   *pointer.Smoother
	morphCtl   *morph.Controller
	cameraCtl  *camera.Controller
	picker     *pick.Resolver

	photos []PhotoSlot

	lastHandPresent bool
	lastRawPointer  gesture.Pointer

	malformedSamples int
}

// New creates an Orchestrator with formations built from cfg.Formation
// and a photo arena of cfg.PhotoCount empty (unloaded) slots, each bound
// to the particle at its own index. Logs are discarded unless overridden
// with SetLogger.
func New(cfg Config) *Orchestrator {
	tree := morph.BuildTree(cfg.Formation)
	scatter := morph.BuildScatter(cfg.Formation)

	o := &Orchestrator{
		cfg:        cfg,
		log:        zerolog.Nop(),
		classifier: gesture.New(cfg.Gesture),
		machine:    mode.New(cfg.Mode),
		smoother:   pointer.New(cfg.Pointer),
		morphCtl:   morph.New(tree, scatter),
		cameraCtl:  camera.New(cfg.Camera),
		picker:     pick.New(),
	}

	o.photos = make([]PhotoSlot, cfg.PhotoCount)
	for i := range o.photos {
		o.photos[i] = PhotoSlot{ParticleIndex: i}
	}
	return o
}

// SetLogger overrides the orchestrator's diagnostic logger (spec §7:
// malformed-sample counters at Debug, impossible-state coercions at
// Warn).
func (o *Orchestrator) SetLogger(l zerolog.Logger) { o.log = l }

// SetGestureConfig replaces the gesture classifier's tunable thresholds
// at runtime, e.g. when a preset-kind custom-gesture action applies a
// named tuning preset (store.ActionKindPreset). The mode machine,
// pointer smoother, and every other collaborator are untouched.
func (o *Orchestrator) SetGestureConfig(cfg gesture.Config) {
	o.classifier.SetConfig(cfg)
}

// SetPhotoLoaded marks slot i's texture ready with the given aspect
// ratio, making it eligible as a pick target. Before this call the slot
// contributes no pick proxy and no rendered quad (spec §7 "Texture load
// failure for a photo").
func (o *Orchestrator) SetPhotoLoaded(i int, aspect float64, handle string) {
	if i < 0 || i >= len(o.photos) {
		return
	}
	o.photos[i].Loaded = true
	o.photos[i].Aspect = aspect
	o.photos[i].TextureHandle = handle
}

// PhotoCount returns the size of the photo arena.
func (o *Orchestrator) PhotoCount() int { return len(o.photos) }

// MalformedSampleCount returns the running count of malformed samples
// seen by Tick (spec §7 "logged as a debug counter").
func (o *Orchestrator) MalformedSampleCount() int { return o.malformedSamples }

// Mode returns the current mode.
func (o *Orchestrator) Mode() mode.Mode { return o.machine.Mode() }

// Selection returns the current photo selection, if any.
func (o *Orchestrator) Selection() (int, bool) { return o.machine.Selection() }

// CameraPose returns the current eased camera pose.
func (o *Orchestrator) CameraPose() camera.Pose { return o.cameraCtl.Pose() }

// MorphParameter returns the current morph scalar m.
func (o *Orchestrator) MorphParameter() float64 { return o.morphCtl.M() }

// ParticleCount returns N, the number of particles in each formation.
func (o *Orchestrator) ParticleCount() int { return o.cfg.Formation.ParticleCount }

// ParticleTransform returns particle i's fully-derived render transform
// for the current tick (spec §4.4).
func (o *Orchestrator) ParticleTransform(i int) morph.Transform {
	return o.morphCtl.ParticleTransform(i, o.machine.Mode())
}

// PhotoTransform returns slot i's current transform: the bound
// particle's transform in TREE/SCATTERED, or a camera-locked override
// when slot i is the active PHOTO_VIEW selection (spec §3 "in PHOTO_VIEW
// the selected slot overrides its transform with a camera-locked
// pose"). Only the Mode State Machine's selection and the Morph
// Controller's particle transforms feed this; nothing else writes a
// photo transform (spec §9 "owner-writer discipline").
func (o *Orchestrator) PhotoTransform(i int) morph.Transform {
	if i < 0 || i >= len(o.photos) {
		return morph.Transform{}
	}
	if sel, ok := o.machine.Selection(); ok && o.machine.Mode() == mode.PhotoView && sel == i {
		return o.photoViewOverride()
	}
	return o.morphCtl.ParticleTransform(o.photos[i].ParticleIndex, o.machine.Mode())
}

// photoViewOverride holds the selected photo steady in front of the
// camera, per spec §3's camera-locked PHOTO_VIEW pose.
func (o *Orchestrator) photoViewOverride() morph.Transform {
	const holdDistance = 3.0
	pose := o.cameraCtl.Pose()
	forward := pose.LookAt.Sub(pose.Position).Normalize()
	pos := pose.Position.Add(forward.Mul(holdDistance))
	return morph.Transform{
		Position: morph.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z},
		Scale:    1.5,
		Color:    morph.Color{R: 1, G: 1, B: 1},
	}
}

// Tick advances the detector clock by one landmark sample: classifies
// the gesture, steps the mode state machine, and resolves a pick on a
// rising grab edge in SCATTERED (spec §4.7 "Detector tick"). It does not
// enforce the detector throttle itself — the caller decides when to pull
// the next sample from the Source (spec §5 "Detector throttle").
func (o *Orchestrator) Tick(sample handinput.Sample, now time.Time) []Event {
	if sample.Present && !sample.Valid() {
		o.malformedSamples++
		o.log.Debug().Int("count", o.malformedSamples).Msg("malformed landmark sample")
	}

	result := o.classifier.Classify(sample)
	o.lastHandPresent = result.HandPresent
	o.lastRawPointer = result.RawPointer

	var picker mode.Picker
	if len(o.photos) > 0 {
		picker = pickerFunc(o.resolvePick)
	}

	ev := o.machine.Step(result.Symbol, result.PinchLatch, picker, now)

	var events []Event
	if ev.ModeChanged {
		events = append(events, Event{Kind: EventModeChanged, Mode: ev.Mode})
	}
	if ev.GrabEdgeChanged {
		events = append(events, Event{Kind: EventGrabEdge, Grab: ev.Grab})
	}
	if ev.SelectionChanged {
		events = append(events, Event{Kind: EventSelectionChanged, Selection: ev.Selection, HasSelection: ev.HasSelection})
	}
	return events
}

// pickerFunc adapts a plain function to mode.Picker.
type pickerFunc func() (int, bool)

func (f pickerFunc) Resolve() (int, bool) { return f() }

// resolvePick projects the smoothed pointer (the one actually driving
// the on-screen cursor) into world space through the current camera
// pose and tests it against every loaded photo slot's current position
// (spec §4.6). Open question resolved here: the ray is built from the
// smoothed pointer, not the per-sample raw one, because that is what
// the user sees aimed at the photo when the pinch closes.
func (o *Orchestrator) resolvePick() (int, bool) {
	pose := o.cameraCtl.Pose()
	smoothed := o.smoother.State()

	slots := make([]pick.Slot, len(o.photos))
	for i, ps := range o.photos {
		if !ps.Loaded {
			continue
		}
		t := o.morphCtl.ParticleTransform(ps.ParticleIndex, o.machine.Mode())
		slots[i] = pick.Slot{
			Position: r3.Vector{X: t.Position.X, Y: t.Position.Y, Z: t.Position.Z},
			Aspect:   ps.Aspect,
			Loaded:   true,
		}
	}
	return o.picker.Resolve(smoothed.X, smoothed.Y, pose, slots)
}

// Render advances the render clock by dt seconds: smooths the pointer,
// advances the morph parameter and camera pose, and publishes a
// pointer_updated event (spec §4.7 "Render tick", §6).
func (o *Orchestrator) Render(dt float64) []Event {
	raw := pointer.Point{X: o.lastRawPointer.X, Y: o.lastRawPointer.Y, Z: o.lastRawPointer.Z}
	smoothed := o.smoother.Update(raw, o.lastHandPresent, dt)
	visible := o.smoother.Visible()

	currentMode := o.machine.Mode()
	o.morphCtl.Advance(currentMode, dt)
	o.cameraCtl.Advance(currentMode, smoothed.X, smoothed.Y, smoothed.Z, dt)

	return []Event{{
		Kind:    EventPointerUpdated,
		Mode:    currentMode,
		Pointer: smoothed,
		Visible: visible,
	}}
}

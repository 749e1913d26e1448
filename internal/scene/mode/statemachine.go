// Package mode implements the core orchestrator's finite state machine:
// TREE, SCATTERED, and PHOTO_VIEW, driven one gesture symbol at a time.
// Transitions are atomic; observers never see an intermediate state, and
// grab edges fire at most once per rising or falling transition (spec
// §4.3, §5).
package mode

import (
	"time"

	"github.com/arvind/mudra/internal/scene/gesture"
)

// Mode is the closed set of application modes.
type Mode int

const (
	Tree Mode = iota
	Scattered
	PhotoView
)

func (m Mode) String() string {
	switch m {
	case Scattered:
		return "SCATTERED"
	case PhotoView:
		return "PHOTO_VIEW"
	default:
		return "TREE"
	}
}

// Picker resolves a rising grab edge to a photo slot index, if any. The
// Mode State Machine calls it at most once per rising edge, in SCATTERED
// mode only (spec §4.6 "Policy").
type Picker interface {
	Resolve() (index int, ok bool)
}

// Config holds the state machine's tunables (spec §6).
type Config struct {
	PhotoViewGrace time.Duration
}

// DefaultConfig returns the spec's calibrated defaults.
func DefaultConfig() Config {
	return Config{PhotoViewGrace: 1000 * time.Millisecond}
}

// Event is one outcome of a Step call: at most one mode change and one
// grab edge, each reported as "occurred" only when it actually fired
// this tick (spec §5 "Grab edges are emitted exactly once per
// transition").
type Event struct {
	Mode             Mode
	ModeChanged      bool
	Grab             bool
	GrabEdgeChanged  bool
	Selection        int
	HasSelection     bool
	SelectionChanged bool
}

// Machine is the mode state machine. It is not safe for concurrent use;
// the core orchestrator serializes all calls onto its single executor
// (spec §5).
type Machine struct {
	cfg Config

	mode         Mode
	grab         bool
	selection    int
	hasSelection bool

	noneSince time.Time
	inNoneRun bool
}

// New creates a Machine starting in TREE with grab false and no
// selection.
func New(cfg Config) *Machine {
	return &Machine{cfg: cfg, mode: Tree}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Grab returns the current grab state.
func (m *Machine) Grab() bool { return m.grab }

// Selection returns the current photo selection, if any.
func (m *Machine) Selection() (int, bool) { return m.selection, m.hasSelection }

// Step advances the state machine by one detector tick given the
// classified gesture symbol, the current pinch latch, a resolver for
// rising grab edges, and the tick's timestamp (used for the PHOTO_VIEW
// no-hand grace period). It implements the transition table in spec
// §4.3 exactly.
func (m *Machine) Step(symbol gesture.Symbol, pinchLatch bool, pick Picker, now time.Time) Event {
	prevGrab := m.grab
	prevMode := m.mode
	prevSelection, prevHasSelection := m.selection, m.hasSelection

	if symbol != gesture.None {
		m.inNoneRun = false
	}

	switch m.mode {
	case Tree:
		m.stepTree(symbol)
	case Scattered:
		m.stepScattered(symbol, pinchLatch, pick)
	case PhotoView:
		m.stepPhotoView(symbol, now)
	default:
		// Impossible mode value: coerce to TREE (spec §7).
		m.mode = Tree
		m.grab = false
	}

	ev := Event{
		Mode:             m.mode,
		ModeChanged:      m.mode != prevMode,
		Grab:             m.grab,
		GrabEdgeChanged:  m.grab != prevGrab,
		Selection:        m.selection,
		HasSelection:     m.hasSelection,
		SelectionChanged: m.hasSelection != prevHasSelection || (m.hasSelection && m.selection != prevSelection),
	}
	return ev
}

func (m *Machine) stepTree(symbol gesture.Symbol) {
	switch symbol {
	case gesture.Fist:
		m.grab = false
	case gesture.Open, gesture.Pinch:
		m.grab = symbol == gesture.Pinch
		m.mode = Scattered
	case gesture.None:
		m.grab = false
	}
}

func (m *Machine) stepScattered(symbol gesture.Symbol, pinchLatch bool, pick Picker) {
	switch symbol {
	case gesture.Fist:
		m.grab = false
		m.clearSelection()
		m.mode = Tree
	case gesture.Pinch:
		risingEdge := !m.grab && pinchLatch
		m.grab = true
		if risingEdge && pick != nil {
			if idx, ok := pick.Resolve(); ok {
				m.selection = idx
				m.hasSelection = true
				m.mode = PhotoView
			}
		}
	case gesture.Open, gesture.None:
		m.grab = false
	}
}

func (m *Machine) stepPhotoView(symbol gesture.Symbol, now time.Time) {
	switch symbol {
	case gesture.Pinch:
		m.grab = true
		m.inNoneRun = false
	case gesture.Open:
		m.grab = false
		m.clearSelection()
		m.mode = Scattered
		m.inNoneRun = false
	case gesture.Fist:
		m.grab = false
		m.clearSelection()
		m.mode = Scattered
		m.inNoneRun = false
	case gesture.None:
		m.grab = false
		if !m.inNoneRun {
			m.inNoneRun = true
			m.noneSince = now
		} else if now.Sub(m.noneSince) > m.cfg.PhotoViewGrace {
			m.clearSelection()
			m.mode = Scattered
			m.inNoneRun = false
		}
	}
}

func (m *Machine) clearSelection() {
	m.selection = 0
	m.hasSelection = false
}

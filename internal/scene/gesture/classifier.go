// Package gesture turns raw hand-landmark samples into the closed set of
// symbols the mode state machine consumes, plus the derived raw pointer.
// The classifier is a pure function per sample: no retries, no
// exceptions, deterministic given the same inputs (spec §4.2, §8).
package gesture

import (
	"math"

	"github.com/arvind/mudra/internal/handinput"
)

// Symbol is the closed set of gesture symbols the classifier emits.
type Symbol int

const (
	None Symbol = iota
	Open
	Fist
	Pinch
)

func (s Symbol) String() string {
	switch s {
	case Open:
		return "OPEN"
	case Fist:
		return "FIST"
	case Pinch:
		return "PINCH"
	default:
		return "NONE"
	}
}

// Pointer is the raw, per-sample derived continuous control: x,y in
// [-1,1], z (zoom factor) in [0,1].
type Pointer struct {
	X, Y, Z float64
}

// Config holds the classifier's tunable thresholds (spec §6).
type Config struct {
	PinchEnter  float64
	PinchExit   float64
	MirrorInput bool
}

// DefaultConfig returns the spec's calibrated defaults.
func DefaultConfig() Config {
	return Config{
		PinchEnter:  0.06,
		PinchExit:   0.10,
		MirrorInput: true,
	}
}

// curlTipMCP holds the tip/MCP landmark pairs the curl test compares
// wrist-relative distances for (spec §4.2).
var curlTipMCP = [4][2]int{
	{handinput.IndexTip, handinput.IndexMCP},
	{handinput.MiddleTip, handinput.MiddleMCP},
	{handinput.RingTip, handinput.RingMCP},
	{handinput.PinkyTip, handinput.PinkyMCP},
}

// Classifier holds the pinch latch's hysteresis state between samples.
// Everything else about classification is a pure function of the current
// sample; the latch is the only carried state (spec §3 "Pinch latch").
type Classifier struct {
	cfg   Config
	latch bool
}

// New creates a Classifier with the given config. The pinch latch starts
// false.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// SetConfig replaces the classifier's tunable thresholds without
// resetting the pinch latch, so applying a tuning preset mid-session
// doesn't cause a spurious latch edge on the next sample.
func (c *Classifier) SetConfig(cfg Config) {
	c.cfg = cfg
}

// Result is the per-sample classifier output.
type Result struct {
	Symbol      Symbol
	PinchLatch  bool
	RawPointer  Pointer
	HandPresent bool
}

// Classify processes one landmark sample and returns the gesture symbol,
// the (possibly updated) pinch latch, and the raw pointer. Malformed
// samples (fewer than 21 points, NaN coordinates) and absent samples are
// both treated as NONE; the pointer and latch are left untouched so the
// pointer smoother can decay naturally on its own timeout (spec §4.2
// "Failure semantics").
func (c *Classifier) Classify(s handinput.Sample) Result {
	if !s.Valid() {
		return Result{Symbol: None, PinchLatch: c.latch}
	}

	raw := c.derivePointer(s)

	curled := 0
	for _, pair := range curlTipMCP {
		tip := s.Points[pair[0]]
		mcp := s.Points[pair[1]]
		wrist := s.Points[handinput.Wrist]
		if sqDist(tip, wrist) < sqDist(mcp, wrist) {
			curled++
		}
	}
	allCurled := curled == len(curlTipMCP)

	d := dist(s.Points[handinput.ThumbTip], s.Points[handinput.IndexTip])
	if !c.latch && d < c.cfg.PinchEnter {
		c.latch = true
	} else if c.latch && d > c.cfg.PinchExit {
		c.latch = false
	}

	var symbol Symbol
	switch {
	case allCurled:
		symbol = Fist
		c.latch = false // a fist is never a pinch
	case c.latch:
		symbol = Pinch
	default:
		symbol = Open
	}

	return Result{
		Symbol:      symbol,
		PinchLatch:  c.latch,
		RawPointer:  raw,
		HandPresent: true,
	}
}

// derivePointer computes the raw pointer from palm center (midpoint of
// wrist and middle-MCP), per spec §4.2.
func (c *Classifier) derivePointer(s handinput.Sample) Pointer {
	wrist := s.Points[handinput.Wrist]
	middleMCP := s.Points[handinput.MiddleMCP]
	cx := (wrist.X + middleMCP.X) / 2
	cy := (wrist.Y + middleMCP.Y) / 2

	var x float64
	if c.cfg.MirrorInput {
		x = (0.5 - cx) * 2
	} else {
		x = (cx - 0.5) * 2
	}
	y := (0.5 - cy) * 2

	palmSize := dist(wrist, middleMCP)
	z := clamp((palmSize-0.10)*3.33, 0, 1)

	return Pointer{X: x, Y: y, Z: z}
}

func dist(a, b handinput.Point3D) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func sqDist(a, b handinput.Point3D) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

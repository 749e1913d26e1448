// Package pointer implements the render-rate exponential smoother that
// turns the classifier's raw per-sample pointer into the cursor position
// downstream consumers actually draw (spec §4.1).
package pointer

import "math"

// Visibility epsilon: a pointer with both |x| and |y| below this is
// considered invisible (spec §4.1).
const visibilityEpsilon = 1e-3

// Point is a smoothed pointer sample.
type Point struct {
	X, Y, Z float64
}

// Config holds the smoother's tunables (spec §6).
type Config struct {
	// Alpha60Hz is the per-frame convergence factor calibrated at 60 Hz.
	Alpha60Hz float64
	// NoHandOriginDecay is how long landmarks may be absent before the
	// raw input target collapses to the origin.
	NoHandOriginDecay float64 // seconds
}

// DefaultConfig returns the spec's calibrated defaults.
func DefaultConfig() Config {
	return Config{Alpha60Hz: 0.15, NoHandOriginDecay: 0.200}
}

// Smoother holds the exponential smoother's running state between render
// ticks.
type Smoother struct {
	cfg Config

	state          Point
	lastSeenRaw    Point
	timeSinceInput float64 // seconds since the last Update call that had input present
}

// New creates a Smoother with state at the origin.
func New(cfg Config) *Smoother {
	return &Smoother{cfg: cfg}
}

// Update advances the smoother by dt seconds toward raw, or toward the
// origin if present is false or landmarks have been absent for longer
// than NoHandOriginDecay. alpha is rescaled from the 60 Hz calibration
// to whatever dt implies, per spec §4.1's rate-invariance formula.
func (sm *Smoother) Update(raw Point, present bool, dt float64) Point {
	if dt < 0 {
		dt = 0 // clock regression: clamp dt to zero, do not advance (spec §7)
	}

	if present {
		sm.timeSinceInput = 0
		sm.lastSeenRaw = raw
	} else {
		sm.timeSinceInput += dt
	}

	target := raw
	if !present {
		target = sm.lastSeenRaw
		if sm.timeSinceInput >= sm.cfg.NoHandOriginDecay {
			target = Point{}
		}
	}

	alpha := rateScaledAlpha(sm.cfg.Alpha60Hz, dt)
	sm.state.X += alpha * (target.X - sm.state.X)
	sm.state.Y += alpha * (target.Y - sm.state.Y)
	sm.state.Z += alpha * (target.Z - sm.state.Z)

	return sm.state
}

// Visible reports whether the current smoothed state is far enough from
// the origin to be considered visible (spec §4.1).
func (sm *Smoother) Visible() bool {
	return math.Abs(sm.state.X) > visibilityEpsilon || math.Abs(sm.state.Y) > visibilityEpsilon
}

// State returns the current smoothed pointer without advancing it.
func (sm *Smoother) State() Point { return sm.state }

// rateScaledAlpha rescales a 60 Hz-calibrated alpha so the smoother's
// time constant is invariant under dt, per spec §4.1:
// 1 - (1-alpha)^(rate/60), where rate = 1/dt.
func rateScaledAlpha(alpha60 float64, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	rate := 1.0 / dt
	return 1 - math.Pow(1-alpha60, rate/60.0)
}

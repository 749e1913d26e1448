// Package morph implements the formation generation and per-particle
// transform interpolation described in spec §4.4: a single scalar morph
// parameter m eases between an immutable tree formation and an immutable
// scatter formation.
package morph

import (
	"math"

	"github.com/arvind/mudra/internal/scene/mode"
)

// convergenceRate is k in "m ← m + clamp(dt·k, 0, 1)·(m* − m)" (spec
// §4.4).
const convergenceRate = 2.0

// Controller advances and reports the morph parameter and derives
// per-particle transforms from the immutable tree/scatter formations.
type Controller struct {
	tree    Formation
	scatter Formation

	m float64 // current morph parameter, in [0,1]
	t float64 // elapsed seconds, used for idle-float/spin/pulsation
}

// New creates a Controller over the given formations, starting at m=0
// (fully TREE).
func New(tree, scatter Formation) *Controller {
	return &Controller{tree: tree, scatter: scatter}
}

// M returns the current morph parameter.
func (c *Controller) M() float64 { return c.m }

// Advance steps the morph parameter toward the mode-dependent target and
// accumulates elapsed time, per spec §4.4 "Advance".
func (c *Controller) Advance(currentMode mode.Mode, dt float64) {
	if dt < 0 {
		dt = 0
	}
	target := 0.0
	if currentMode != mode.Tree {
		target = 1.0
	}
	step := clamp01(dt * convergenceRate)
	c.m += step * (target - c.m)
	c.t += dt
}

// Transform is a particle's fully-derived render transform for the
// current tick.
type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    float64
	Color    Color
}

// ParticleTransform computes particle i's transform for the current
// morph parameter and mode, per spec §4.4 "Per-particle transform".
// i must be in [0, N).
func (c *Controller) ParticleTransform(i int, currentMode mode.Mode) Transform {
	tp := c.tree.Particles[i]
	sp := c.scatter.Particles[i]
	m := c.m
	t := c.t

	pos := Vec3{
		X: lerp(tp.Position.X, sp.Position.X, m),
		Y: lerp(tp.Position.Y, sp.Position.Y, m),
		Z: lerp(tp.Position.Z, sp.Position.Z, m),
	}
	if m > 0.5 {
		fi := float64(i)
		pos.X += math.Cos(t*0.5+fi) * 0.02
		pos.Y += math.Sin(t+fi) * 0.02
	}

	rot := Vec3{
		X: (1-m)*tp.Rotation.X + m*sp.Rotation.X,
		Y: (1-m)*tp.Rotation.Y + m*sp.Rotation.Y + t*0.1,
		Z: (1-m)*tp.Rotation.Z + m*sp.Rotation.Z,
	}

	scaleMul := 1.0
	if currentMode != mode.Tree {
		scaleMul = 1.5
	}
	scale := tp.Scale * scaleMul

	pulsation := 1 + 0.5*math.Sin(2*t+13*float64(i)) + 0.5
	color := Color{
		R: tp.Color.R * pulsation,
		G: tp.Color.G * pulsation,
		B: tp.Color.B * pulsation,
	}

	return Transform{Position: pos, Rotation: rot, Scale: scale, Color: color}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

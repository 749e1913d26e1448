// Package camera implements the mode-dependent spherical orbit camera
// described in spec §4.5: an eased pose that targets different poses
// depending on the current mode and the smoothed pointer.
package camera

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/arvind/mudra/internal/scene/mode"
)

// Pose is the camera's position and look-at target.
type Pose struct {
	Position r3.Vector
	LookAt   r3.Vector
}

// Config holds the camera's tunables (spec §6).
type Config struct {
	CameraZ float64
}

// DefaultConfig returns the spec's calibrated default.
func DefaultConfig() Config {
	return Config{CameraZ: 15.0}
}

// easeRate constants per mode (spec §4.5 "Easing").
const (
	easeTreeAndPhotoView = 2.0
	easeScattered        = 0.8
)

// Controller owns the current camera pose and eases it toward a
// mode-dependent target every render tick. No other component writes
// camera pose (spec §9 "owner-writer discipline").
type Controller struct {
	cfg  Config
	pose Pose
}

// New creates a Controller with the pose already at the TREE target
// (spec's implicit initial mode is TREE).
func New(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	c.pose = Pose{Position: r3.Vector{Z: cfg.CameraZ}, LookAt: r3.Vector{}}
	return c
}

// Pose returns the current eased camera pose.
func (c *Controller) Pose() Pose { return c.pose }

// Advance eases the camera pose toward the target implied by currentMode
// and the smoothed pointer (x, y, z each in their spec-defined ranges),
// per spec §4.5.
func (c *Controller) Advance(currentMode mode.Mode, pointerX, pointerY, pointerZ, dt float64) {
	if dt < 0 {
		dt = 0
	}

	target := c.target(currentMode, pointerX, pointerY, pointerZ)

	rate := easeTreeAndPhotoView
	if currentMode == mode.Scattered {
		rate = easeScattered
	}
	k := clamp01(dt * rate)

	c.pose.Position = c.pose.Position.Add(target.Position.Sub(c.pose.Position).Mul(k))
	c.pose.LookAt = target.LookAt
}

func (c *Controller) target(currentMode mode.Mode, x, y, z float64) Pose {
	if currentMode == mode.Tree {
		return Pose{Position: r3.Vector{X: 0, Y: 0, Z: c.cfg.CameraZ}, LookAt: r3.Vector{}}
	}

	// SCATTERED and PHOTO_VIEW share the spherical-orbit target (spec
	// §4.5 "PHOTO_VIEW inherits SCATTERED's target").
	theta := x * 0.15 * math.Pi
	phi := math.Pi/2 - y*math.Pi/12
	phi = clampRange(phi, 1e-4, math.Pi-1e-4)
	r := c.cfg.CameraZ - z*5

	pos := r3.Vector{
		X: r * math.Sin(phi) * math.Sin(theta),
		Y: r * math.Cos(phi),
		Z: r * math.Sin(phi) * math.Cos(theta),
	}
	return Pose{Position: pos, LookAt: r3.Vector{}}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package pick implements the ray-sphere pick resolver described in
// spec §4.6: given the smoothed pointer in NDC space and the current
// camera pose, find the nearest photo slot the pointer is aimed at.
package pick

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/arvind/mudra/internal/scene/camera"
)

// Slot is one photo's world placement and pick-proxy extents.
type Slot struct {
	// Position is the photo's world-space center.
	Position r3.Vector
	// Aspect is image_w/image_h; the pick proxy's radius derives from
	// the aspect-adjusted plane extents (spec §4.6 "Photo proxy").
	Aspect float64
	// Loaded is false while the photo's texture has not finished
	// loading; an unloaded slot contributes no pick proxy (spec §7).
	Loaded bool
}

func (s Slot) radius() float64 {
	width, height := s.Aspect, 1.0
	if width <= 0 {
		width = 1
	}
	return math.Max(width, height) * 0.7
}

// Resolver holds no state; resolution is a pure function of the current
// pointer, camera pose, and slot array (spec §4.6 "Contract").
type Resolver struct{}

// New creates a Resolver.
func New() *Resolver { return &Resolver{} }

// Resolve finds the nearest photo slot the pointer (in NDC, x,y in
// [-1,1]) is aimed at from the given camera pose, returning the winning
// slot's index or false if nothing was hit. Ties are broken by slot
// index ascending because slots are scanned in order and only a
// strictly smaller t replaces the current best (spec §4.6 "Policy").
func (r *Resolver) Resolve(ndcX, ndcY float64, pose camera.Pose, slots []Slot) (int, bool) {
	origin, dir := unprojectRay(ndcX, ndcY, pose)

	bestT := math.Inf(1)
	bestIdx := -1
	for i, slot := range slots {
		if !slot.Loaded {
			continue
		}
		t, hit := raySphereIntersect(origin, dir, slot.Position, slot.radius())
		if hit && t > 0 && t < bestT {
			bestT = t
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}

// unprojectRay builds a ray from the camera position through the
// near-plane NDC point (x, y, -1), per spec §4.6 "Ray construction".
func unprojectRay(x, y float64, pose camera.Pose) (origin, dir r3.Vector) {
	forward := pose.LookAt.Sub(pose.Position).Normalize()
	worldUp := r3.Vector{Y: 1}
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward).Normalize()

	// Near-plane point at NDC (x, y, -1): offset from the camera position
	// along right/up by the NDC coordinates, and forward by one unit
	// (z=-1 maps to "one unit toward the look-at direction" in this
	// simplified, FOV-agnostic projection).
	point := pose.Position.
		Add(forward).
		Add(right.Mul(x)).
		Add(up.Mul(y))

	dir = point.Sub(pose.Position).Normalize()
	return pose.Position, dir
}

// raySphereIntersect solves for the nearest positive t where
// origin + t*dir intersects the sphere centered at center with radius
// radius.
func raySphereIntersect(origin, dir, center r3.Vector, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(disc)
	t0 := -b - sqrtDisc
	t1 := -b + sqrtDisc
	if t0 > 0 {
		return t0, true
	}
	if t1 > 0 {
		return t1, true
	}
	return 0, false
}

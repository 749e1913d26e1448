// Package handinput defines the landmark sample types and the Source
// interface consumed by the scene core. The detector that actually
// produces these samples (MediaPipe, a replay fixture, a future native
// model) is an external collaborator; this package only names the
// contract and the canonical MediaPipe hand-landmark layout.
package handinput

import "math"

// Canonical hand landmark indices, MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist     = 0
	ThumbCMC  = 1
	ThumbMCP  = 2
	ThumbIP   = 3
	ThumbTip  = 4
	IndexMCP  = 5
	IndexPIP  = 6
	IndexDIP  = 7
	IndexTip  = 8
	MiddleMCP = 9
	MiddlePIP = 10
	MiddleDIP = 11
	MiddleTip = 12
	RingMCP   = 13
	RingPIP   = 14
	RingDIP   = 15
	RingTip   = 16
	PinkyMCP  = 17
	PinkyPIP  = 18
	PinkyDIP  = 19
	PinkyTip  = 20

	NumLandmarks = 21
)

// Point3D is a normalized image-space landmark: x,y in [0,1] with origin
// top-left, z a unitless relative depth hint (smaller = closer).
type Point3D struct {
	X float64
	Y float64
	Z float64
}

// Sample is one detector frame: either exactly one hand's 21 landmarks,
// or no hand at all (Present=false). The core assumes zero or one hand
// per sample; multi-hand detectors must collapse to this before handing
// samples to the scene core.
type Sample struct {
	TimestampMs int64
	Present     bool
	Points      [NumLandmarks]Point3D
	Handedness  string // "Left" or "Right"; accepted but unused by the core.
}

// Valid reports whether the sample has a plausible hand payload. A
// malformed sample (Present but fewer than NumLandmarks meaningful
// points, or any NaN coordinate) is treated as absent by the classifier.
func (s Sample) Valid() bool {
	if !s.Present {
		return false
	}
	for _, p := range s.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			return false
		}
	}
	return true
}

// distance3D is the Euclidean distance between two landmark points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalized is a hand pose translated so the wrist sits at the origin
// and scaled so the wrist-to-middle-MCP distance is 1.0. Used by the
// custom static-gesture matcher for template comparisons; the core
// classifier works directly on raw Points instead.
type Normalized struct {
	Points [NumLandmarks]Point3D
}

// Normalize returns the wrist-relative, scale-normalized form of a
// sample's landmarks. Returns the zero value if the sample is absent.
func (s Sample) Normalize() Normalized {
	var n Normalized
	if !s.Present {
		return n
	}

	wrist := s.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		n.Points[i] = Point3D{
			X: s.Points[i].X - wrist.X,
			Y: s.Points[i].Y - wrist.Y,
			Z: s.Points[i].Z - wrist.Z,
		}
	}

	scale := distance3D(Point3D{}, n.Points[MiddleMCP])
	if scale < 1e-10 {
		return n
	}
	for i := 0; i < NumLandmarks; i++ {
		n.Points[i].X /= scale
		n.Points[i].Y /= scale
		n.Points[i].Z /= scale
	}
	return n
}

// Package customgesture lets the outer shell register additional static
// hand poses beyond the core symbols (FIST/OPEN/PINCH) — e.g. a
// thumbs-up to trigger an app-specific action. It operates entirely
// downstream of the core classifier and never feeds the mode state
// machine: static pose matches surface as their own named events so the
// core's closed symbol set (spec §8 "Dynamic duck typing → tagged
// variants") stays untouched. Only static poses are supported; temporal
// or path-based gestures are explicitly out of scope.
package customgesture

import (
	"math"
	"sort"

	"github.com/arvind/mudra/internal/handinput"
)

// Template is a named static hand pose, stored as wrist-relative,
// scale-normalized landmarks so it can be compared against any sample
// regardless of the hand's position or distance from the camera.
type Template struct {
	ID        string
	Name      string
	Landmarks [handinput.NumLandmarks]handinput.Point3D
	Tolerance float64
}

// Match is one template that matched within its tolerance.
type Match struct {
	Template *Template
	Score    float64 // 1 / (1 + Distance); higher is better
	Distance float64
}

// Matcher holds the set of registered static templates.
type Matcher struct {
	templates []*Template
}

// New creates an empty Matcher.
func New() *Matcher {
	return &Matcher{}
}

// AddTemplate registers a template. A nil template is ignored.
func (m *Matcher) AddTemplate(t *Template) {
	if t == nil {
		return
	}
	m.templates = append(m.templates, t)
}

// RemoveTemplate removes a template by ID, if present.
func (m *Matcher) RemoveTemplate(id string) {
	for i, t := range m.templates {
		if t.ID == id {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return
		}
	}
}

// Match finds every registered template within tolerance of the given
// sample, sorted by score descending. Returns nil for an invalid
// sample.
func (m *Matcher) Match(s handinput.Sample) []Match {
	if !s.Valid() {
		return nil
	}
	normalized := s.Normalize()

	var matches []Match
	for _, t := range m.templates {
		distance := pointSetDistance(normalized.Points[:], t.Landmarks[:])
		if distance <= t.Tolerance {
			matches = append(matches, Match{
				Template: t,
				Score:    1.0 / (1.0 + distance),
				Distance: distance,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func pointSetDistance(a, b []handinput.Point3D) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var total float64
	for i := 0; i < n; i++ {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		dz := a[i].Z - b[i].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}

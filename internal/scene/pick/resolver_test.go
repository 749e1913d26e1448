package pick

import (
	"testing"

	"github.com/golang/geo/r3"

	"github.com/arvind/mudra/internal/scene/camera"
)

func TestResolver_HitsCenteredPhoto(t *testing.T) {
	r := New()
	pose := camera.Pose{Position: r3.Vector{Z: 15}, LookAt: r3.Vector{}}
	slots := []Slot{{Position: r3.Vector{}, Aspect: 1.0, Loaded: true}}

	idx, ok := r.Resolve(0, 0, pose, slots)
	if !ok || idx != 0 {
		t.Fatalf("expected hit on slot 0, got idx=%d ok=%v", idx, ok)
	}
}

func TestResolver_MissesWhenPointerOffAxis(t *testing.T) {
	r := New()
	pose := camera.Pose{Position: r3.Vector{Z: 15}, LookAt: r3.Vector{}}
	slots := []Slot{{Position: r3.Vector{}, Aspect: 0.5, Loaded: true}}

	idx, ok := r.Resolve(0.99, 0.99, pose, slots)
	if ok {
		t.Errorf("expected a miss far off axis, got hit on slot %d", idx)
	}
}

func TestResolver_NearestWins(t *testing.T) {
	r := New()
	pose := camera.Pose{Position: r3.Vector{Z: 15}, LookAt: r3.Vector{}}
	slots := []Slot{
		{Position: r3.Vector{Z: 5}, Aspect: 1.0, Loaded: true},  // farther from camera along the ray
		{Position: r3.Vector{Z: 10}, Aspect: 1.0, Loaded: true}, // nearer
	}

	idx, ok := r.Resolve(0, 0, pose, slots)
	if !ok || idx != 1 {
		t.Fatalf("expected nearest slot (1) to win, got idx=%d ok=%v", idx, ok)
	}
}

func TestResolver_UnloadedSlotContributesNoProxy(t *testing.T) {
	r := New()
	pose := camera.Pose{Position: r3.Vector{Z: 15}, LookAt: r3.Vector{}}
	slots := []Slot{{Position: r3.Vector{}, Aspect: 1.0, Loaded: false}}

	_, ok := r.Resolve(0, 0, pose, slots)
	if ok {
		t.Error("expected no hit on an unloaded slot")
	}
}

func TestResolver_TieBrokenByIndexAscending(t *testing.T) {
	r := New()
	pose := camera.Pose{Position: r3.Vector{Z: 15}, LookAt: r3.Vector{}}
	// Two coincident slots: only a strictly smaller t replaces the
	// current best, so the first-scanned (lowest index) wins a tie.
	slots := []Slot{
		{Position: r3.Vector{}, Aspect: 1.0, Loaded: true},
		{Position: r3.Vector{}, Aspect: 1.0, Loaded: true},
	}

	idx, ok := r.Resolve(0, 0, pose, slots)
	if !ok || idx != 0 {
		t.Fatalf("expected tie broken toward index 0, got idx=%d ok=%v", idx, ok)
	}
}

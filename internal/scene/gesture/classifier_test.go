package gesture

import (
	"math"
	"testing"

	"github.com/arvind/mudra/internal/handinput"
)

func TestClassifier_FistAlwaysClearsLatch(t *testing.T) {
	c := New(DefaultConfig())

	r := c.Classify(handinput.PinchSample(0, 0.03))
	if r.Symbol != Pinch {
		t.Fatalf("expected PINCH, got %v", r.Symbol)
	}

	r = c.Classify(handinput.FistSample(16))
	if r.Symbol != Fist {
		t.Fatalf("expected FIST, got %v", r.Symbol)
	}
	if r.PinchLatch {
		t.Error("expected latch cleared on FIST")
	}
}

func TestClassifier_OpenHandIsOpen(t *testing.T) {
	c := New(DefaultConfig())
	r := c.Classify(handinput.OpenSample(0))
	if r.Symbol != Open {
		t.Fatalf("expected OPEN, got %v", r.Symbol)
	}
	if !r.HandPresent {
		t.Error("expected HandPresent true")
	}
}

func TestClassifier_NoneLeavesLatchAndSymbolUntouched(t *testing.T) {
	c := New(DefaultConfig())
	c.Classify(handinput.PinchSample(0, 0.03))

	r := c.Classify(handinput.NoHandSample(16))
	if r.Symbol != None {
		t.Fatalf("expected NONE, got %v", r.Symbol)
	}
	if !r.PinchLatch {
		t.Error("expected latch preserved across a NONE sample")
	}
}

func TestClassifier_PinchHysteresis(t *testing.T) {
	cfg := DefaultConfig()
	c := New(cfg)

	tests := []struct {
		dist      float64
		wantLatch bool
	}{
		{0.15, false},
		{0.06, false}, // exactly PINCH_ENTER: strict inequality, does not trip
		{0.059, true},
		{0.08, true}, // inside the gap, latch holds
		{0.10, true}, // exactly PINCH_EXIT: strict inequality, does not release
		{0.101, false},
	}

	for i, tt := range tests {
		r := c.Classify(handinput.PinchSample(int64(i), tt.dist))
		if r.PinchLatch != tt.wantLatch {
			t.Errorf("step %d dist=%v: latch = %v, want %v", i, tt.dist, r.PinchLatch, tt.wantLatch)
		}
	}
}

func TestClassifier_HysteresisStability(t *testing.T) {
	c := New(DefaultConfig())
	c.Classify(handinput.PinchSample(0, 0.055))

	edges := 0
	prev := true
	for i := 1; i < 100; i++ {
		dist := 0.055
		if i%2 == 1 {
			dist = 0.065
		}
		r := c.Classify(handinput.PinchSample(int64(i), dist))
		if r.PinchLatch != prev {
			edges++
		}
		prev = r.PinchLatch
	}
	if edges != 0 {
		t.Errorf("expected zero further edges alternating within the gap, got %d", edges)
	}
}

func TestClassifier_MirrorParity(t *testing.T) {
	mirrored := New(Config{PinchEnter: 0.06, PinchExit: 0.10, MirrorInput: true})
	unmirrored := New(Config{PinchEnter: 0.06, PinchExit: 0.10, MirrorInput: false})

	s := handinput.OpenSample(0)
	// place wrist/middleMCP midpoint at image x=0.25 by construction.
	s.Points[handinput.Wrist] = handinput.Point3D{X: 0.2, Y: 0.8, Z: 0}
	s.Points[handinput.MiddleMCP] = handinput.Point3D{X: 0.3, Y: 0.66, Z: 0}

	rm := mirrored.Classify(s)
	ru := unmirrored.Classify(s)

	if math.Abs(rm.RawPointer.X-0.5) > 1e-9 {
		t.Errorf("mirrored: expected pointer.x = 0.5, got %v", rm.RawPointer.X)
	}
	if math.Abs(ru.RawPointer.X-(-0.5)) > 1e-9 {
		t.Errorf("unmirrored: expected pointer.x = -0.5, got %v", ru.RawPointer.X)
	}
}

func TestClassifier_MalformedSampleIsNone(t *testing.T) {
	c := New(DefaultConfig())
	s := handinput.OpenSample(0)
	s.Points[handinput.ThumbTip].X = math.NaN()

	r := c.Classify(s)
	if r.Symbol != None {
		t.Fatalf("expected NONE for malformed sample, got %v", r.Symbol)
	}
}

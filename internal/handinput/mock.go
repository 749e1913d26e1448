package handinput

import "sync"

// MockSource is a test Source with a queue of preconfigured samples. Once
// the queue is drained it keeps returning the last sample (or an absent
// sample if none were ever queued), which makes it convenient for tests
// that hold a gesture steady for many ticks.
type MockSource struct {
	mu      sync.Mutex
	queue   []Sample
	last    Sample
	haveErr bool
	err     error
}

// NewMockSource creates a new MockSource instance.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// Enqueue appends samples to be returned by successive Next calls.
func (m *MockSource) Enqueue(samples ...Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, samples...)
}

// SetError makes every subsequent Next call return err.
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.haveErr = true
	m.err = err
}

// Next returns the next queued sample, or the last sample returned if the
// queue is empty.
func (m *MockSource) Next() (Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.haveErr {
		return Sample{}, m.err
	}
	if len(m.queue) == 0 {
		return m.last, nil
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	m.last = next
	return next, nil
}

// Close is a no-op for MockSource.
func (m *MockSource) Close() error { return nil }

// FistSample returns a preset Sample with all four fingers curled and the
// thumb clear of the index fingertip (no pinch).
func FistSample(timestampMs int64) Sample {
	s := Sample{TimestampMs: timestampMs, Present: true, Handedness: "Right"}

	s.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	s.Points[ThumbCMC] = Point3D{X: 0.52, Y: 0.76, Z: 0.0}
	s.Points[ThumbMCP] = Point3D{X: 0.53, Y: 0.72, Z: 0.0}
	s.Points[ThumbIP] = Point3D{X: 0.52, Y: 0.70, Z: 0.0}
	s.Points[ThumbTip] = Point3D{X: 0.50, Y: 0.69, Z: 0.0}

	s.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	s.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	s.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	s.Points[IndexTip] = Point3D{X: 0.51, Y: 0.72, Z: -0.02}

	s.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	s.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	s.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	s.Points[MiddleTip] = Point3D{X: 0.48, Y: 0.70, Z: -0.02}

	s.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	s.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	s.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	s.Points[RingTip] = Point3D{X: 0.44, Y: 0.72, Z: -0.02}

	s.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	s.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	s.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	s.Points[PinkyTip] = Point3D{X: 0.39, Y: 0.74, Z: -0.02}

	return s
}

// OpenSample returns a preset Sample with all five digits extended and
// the thumb clear of the index fingertip (no pinch).
func OpenSample(timestampMs int64) Sample {
	s := Sample{TimestampMs: timestampMs, Present: true, Handedness: "Right"}

	s.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	s.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	s.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	s.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	s.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	s.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	s.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	s.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	s.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	s.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	s.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	s.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	s.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	s.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	s.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	s.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	s.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	s.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	s.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	s.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	s.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return s
}

// PinchSample returns OpenSample with the thumb tip drawn in close to the
// index fingertip, at the given thumb-index distance (approximately;
// the exact Euclidean distance depends on both points).
func PinchSample(timestampMs int64, thumbIndexDistance float64) Sample {
	s := OpenSample(timestampMs)
	index := s.Points[IndexTip]
	// Place the thumb tip along -Y from the index tip at the requested
	// distance; this keeps other finger-curl geometry (index etc.)
	// untouched so PINCH vs FIST is purely a function of distance here.
	s.Points[ThumbTip] = Point3D{X: index.X, Y: index.Y - thumbIndexDistance, Z: index.Z}
	return s
}

// NoHandSample returns a Sample with no hand present.
func NoHandSample(timestampMs int64) Sample {
	return Sample{TimestampMs: timestampMs, Present: false}
}

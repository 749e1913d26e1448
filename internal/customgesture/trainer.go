package customgesture

import (
	"encoding/json"
	"fmt"

	"github.com/arvind/mudra/internal/handinput"
)

// Trainer reduces a batch of recorded static-pose samples into a single
// landmark template. Grounded on the teacher's gesture.Trainer.TrainStatic
// (average landmarks across samples), but static-only: this layer never
// recognizes paths, so the teacher's TrainDynamic/resamplePath have no
// counterpart here.
type Trainer struct{}

// NewTrainer creates a Trainer.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// recordedSample is the wire shape POSTed to the samples endpoint: a raw
// handinput.Sample captured by the client while the operator holds a
// pose.
type recordedSample struct {
	Present bool                                      `json:"Present"`
	Points  [handinput.NumLandmarks]handinput.Point3D `json:"Points"`
}

// TrainStatic averages a batch of recorded static-pose samples,
// landmark-by-landmark, into a single template suitable for
// LandmarkRepository.Replace. It rejects batches containing a
// not-present sample, since averaging a missing hand into a pose makes
// the template meaningless.
func (t *Trainer) TrainStatic(samples []json.RawMessage) ([handinput.NumLandmarks]handinput.Point3D, error) {
	var averaged [handinput.NumLandmarks]handinput.Point3D

	if len(samples) == 0 {
		return averaged, fmt.Errorf("no samples provided")
	}

	var sums [handinput.NumLandmarks]handinput.Point3D
	for i, raw := range samples {
		var s recordedSample
		if err := json.Unmarshal(raw, &s); err != nil {
			return averaged, fmt.Errorf("sample %d: %w", i, err)
		}
		if !s.Present {
			return averaged, fmt.Errorf("sample %d has no hand present", i)
		}
		for j, p := range s.Points {
			sums[j].X += p.X
			sums[j].Y += p.Y
			sums[j].Z += p.Z
		}
	}

	n := float64(len(samples))
	for j := range averaged {
		averaged[j] = handinput.Point3D{
			X: sums[j].X / n,
			Y: sums[j].Y / n,
			Z: sums[j].Z / n,
		}
	}

	return averaged, nil
}

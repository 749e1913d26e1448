package store

import (
	"testing"

	"github.com/arvind/mudra/internal/handinput"
)

func TestLandmarkRepository_ReplaceAndGet(t *testing.T) {
	s := newTestStore(t)

	gesture := &Gesture{ID: "gesture-1", Name: "thumbs_up", Type: GestureTypeStatic, Tolerance: 0.15}
	if err := s.Gestures().Create(gesture); err != nil {
		t.Fatalf("failed to create gesture: %v", err)
	}

	var points [handinput.NumLandmarks]handinput.Point3D
	for i := range points {
		points[i] = handinput.Point3D{X: float64(i) * 0.01, Y: float64(i) * 0.02, Z: 0.001}
	}

	repo := s.Landmarks()
	if err := repo.Replace(gesture.ID, points); err != nil {
		t.Fatalf("failed to replace landmarks: %v", err)
	}

	got, err := repo.GetByGestureID(gesture.ID)
	if err != nil {
		t.Fatalf("failed to get landmarks: %v", err)
	}
	if got != points {
		t.Errorf("landmarks round-trip mismatch: got %+v, want %+v", got, points)
	}
}

func TestLandmarkRepository_ReplaceOverwrites(t *testing.T) {
	s := newTestStore(t)
	gesture := &Gesture{ID: "gesture-1", Name: "peace", Type: GestureTypeStatic, Tolerance: 0.15}
	if err := s.Gestures().Create(gesture); err != nil {
		t.Fatalf("failed to create gesture: %v", err)
	}

	repo := s.Landmarks()
	var first [handinput.NumLandmarks]handinput.Point3D
	first[0] = handinput.Point3D{X: 1, Y: 1, Z: 1}
	if err := repo.Replace(gesture.ID, first); err != nil {
		t.Fatalf("first replace failed: %v", err)
	}

	var second [handinput.NumLandmarks]handinput.Point3D
	second[0] = handinput.Point3D{X: 2, Y: 2, Z: 2}
	if err := repo.Replace(gesture.ID, second); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}

	got, err := repo.GetByGestureID(gesture.ID)
	if err != nil {
		t.Fatalf("failed to get landmarks: %v", err)
	}
	if got != second {
		t.Errorf("expected the second replace to win, got %+v", got)
	}
}

func TestLandmarkRepository_GetByGestureID_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Landmarks().GetByGestureID("no-such-gesture")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestLandmarkRepository_DeleteByGestureID(t *testing.T) {
	s := newTestStore(t)
	gesture := &Gesture{ID: "gesture-1", Name: "peace", Type: GestureTypeStatic, Tolerance: 0.15}
	if err := s.Gestures().Create(gesture); err != nil {
		t.Fatalf("failed to create gesture: %v", err)
	}

	repo := s.Landmarks()
	var points [handinput.NumLandmarks]handinput.Point3D
	if err := repo.Replace(gesture.ID, points); err != nil {
		t.Fatalf("failed to replace landmarks: %v", err)
	}
	if err := repo.DeleteByGestureID(gesture.ID); err != nil {
		t.Fatalf("failed to delete landmarks: %v", err)
	}
	if _, err := repo.GetByGestureID(gesture.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}
}

func TestLandmarkRepository_CascadeOnGestureDelete(t *testing.T) {
	s := newTestStore(t)
	gesture := &Gesture{ID: "gesture-1", Name: "peace", Type: GestureTypeStatic, Tolerance: 0.15}
	if err := s.Gestures().Create(gesture); err != nil {
		t.Fatalf("failed to create gesture: %v", err)
	}

	var points [handinput.NumLandmarks]handinput.Point3D
	if err := s.Landmarks().Replace(gesture.ID, points); err != nil {
		t.Fatalf("failed to replace landmarks: %v", err)
	}
	if err := s.Gestures().Delete(gesture.ID); err != nil {
		t.Fatalf("failed to delete gesture: %v", err)
	}
	if _, err := s.Landmarks().GetByGestureID(gesture.ID); err != ErrNotFound {
		t.Errorf("expected landmarks to cascade-delete with their gesture, got: %v", err)
	}
}

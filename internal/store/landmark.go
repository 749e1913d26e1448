package store

import (
	"database/sql"

	"github.com/arvind/mudra/internal/handinput"
)

// LandmarkRepository provides CRUD operations for a static gesture's
// stored hand pose (internal/customgesture Template.Landmarks).
type LandmarkRepository struct {
	db *sql.DB
}

// Landmarks returns the landmark repository for this store.
func (s *Store) Landmarks() *LandmarkRepository {
	return &LandmarkRepository{db: s.db}
}

// Replace overwrites the stored landmark set for a gesture with points,
// which must be indexed by handinput landmark index.
func (r *LandmarkRepository) Replace(gestureID string, points [handinput.NumLandmarks]handinput.Point3D) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM gesture_landmarks WHERE gesture_id = ?`, gestureID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO gesture_landmarks (gesture_id, landmark_index, x, y, z) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range points {
		if _, err := stmt.Exec(gestureID, i, p.X, p.Y, p.Z); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByGestureID loads the stored landmark set for a gesture. It returns
// ErrNotFound if no landmarks have been recorded.
func (r *LandmarkRepository) GetByGestureID(gestureID string) ([handinput.NumLandmarks]handinput.Point3D, error) {
	var points [handinput.NumLandmarks]handinput.Point3D

	rows, err := r.db.Query(
		`SELECT landmark_index, x, y, z FROM gesture_landmarks WHERE gesture_id = ? ORDER BY landmark_index`,
		gestureID,
	)
	if err != nil {
		return points, err
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var idx int
		var p handinput.Point3D
		if err := rows.Scan(&idx, &p.X, &p.Y, &p.Z); err != nil {
			return points, err
		}
		if idx < 0 || idx >= handinput.NumLandmarks {
			continue
		}
		points[idx] = p
		found = true
	}
	if err := rows.Err(); err != nil {
		return points, err
	}
	if !found {
		return points, ErrNotFound
	}

	return points, nil
}

// DeleteByGestureID removes the stored landmark set for a gesture.
func (r *LandmarkRepository) DeleteByGestureID(gestureID string) error {
	_, err := r.db.Exec(`DELETE FROM gesture_landmarks WHERE gesture_id = ?`, gestureID)
	return err
}

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
)

// SettingsRepository provides key-value storage for application settings,
// including named tuning presets of the scene core's Config tunables
// (e.g. "sensitive pinch" vs "relaxed pinch").
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get retrieves a raw setting value by key. It returns ErrNotFound if the
// key is not set.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set upserts a raw setting value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes a setting.
func (r *SettingsRepository) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// List retrieves every stored key.
func (r *SettingsRepository) List() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

const presetKeyPrefix = "preset:"

// SetPreset stores a named preset of the scene core's Config tunables as
// JSON, keyed under a "preset:" namespace so it can't collide with plain
// settings keys.
func (r *SettingsRepository) SetPreset(name string, tunables any) error {
	data, err := json.Marshal(tunables)
	if err != nil {
		return err
	}
	return r.Set(presetKeyPrefix+name, string(data))
}

// GetPreset loads a named preset and unmarshals it into out, which must
// be a pointer.
func (r *SettingsRepository) GetPreset(name string, out any) error {
	value, err := r.Get(presetKeyPrefix + name)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(value), out)
}

// DeletePreset removes a named preset.
func (r *SettingsRepository) DeletePreset(name string) error {
	return r.Delete(presetKeyPrefix + name)
}

// ListPresets returns the names of every stored preset.
func (r *SettingsRepository) ListPresets() ([]string, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for k := range all {
		if len(k) > len(presetKeyPrefix) && k[:len(presetKeyPrefix)] == presetKeyPrefix {
			names = append(names, k[len(presetKeyPrefix):])
		}
	}
	return names, nil
}

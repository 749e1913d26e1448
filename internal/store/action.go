package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ActionKind distinguishes what firing an action actually does.
type ActionKind string

const (
	// ActionKindPlugin dispatches PluginName/ActionName/Config to an
	// external plugin binary through plugin.Executor — the teacher's
	// original gesture-to-plugin binding.
	ActionKindPlugin ActionKind = "plugin"
	// ActionKindPreset applies a named Config preset (see
	// SettingsRepository.SetPreset) to the running scene core instead of
	// executing a plugin — e.g. binding a "relaxed pinch" pose to switch
	// the classifier to its relaxed-pinch tuning preset live.
	ActionKindPreset ActionKind = "preset"
)

// Action represents a gesture-to-effect binding stored in the database.
// Exactly one of the two effect shapes is populated depending on Kind:
// PluginName/ActionName/Config for ActionKindPlugin, PresetName for
// ActionKindPreset.
type Action struct {
	ID         string
	GestureID  string
	Kind       ActionKind
	PluginName string
	ActionName string
	PresetName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// ActionRepository provides CRUD operations for actions.
type ActionRepository struct {
	db *sql.DB
}

// Actions returns the action repository for this store.
func (s *Store) Actions() *ActionRepository {
	return &ActionRepository{db: s.db}
}

// validateActionKind enforces the fields each Kind requires. A zero Kind
// is treated as ActionKindPlugin so existing plugin-only callers don't
// need to set it explicitly.
func validateActionKind(a *Action) error {
	if a.Kind == "" {
		a.Kind = ActionKindPlugin
	}

	switch a.Kind {
	case ActionKindPlugin:
		if a.PluginName == "" || a.ActionName == "" {
			return fmt.Errorf("plugin action requires plugin_name and action_name")
		}
	case ActionKindPreset:
		if a.PresetName == "" {
			return fmt.Errorf("preset action requires preset_name")
		}
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	return nil
}

// Create inserts a new action into the database.
func (r *ActionRepository) Create(a *Action) error {
	if err := validateActionKind(a); err != nil {
		return err
	}
	a.CreatedAt = time.Now()

	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO actions (id, gesture_id, kind, plugin_name, action_name, preset_name, config, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.GestureID, string(a.Kind), a.PluginName, a.ActionName, a.PresetName, string(config), a.Enabled, a.CreatedAt,
	)
	return err
}

func scanAction(scan func(dest ...interface{}) error) (*Action, error) {
	a := &Action{}
	var kind, config string
	var enabled int

	if err := scan(&a.ID, &a.GestureID, &kind, &a.PluginName, &a.ActionName, &a.PresetName, &config, &enabled, &a.CreatedAt); err != nil {
		return nil, err
	}

	a.Kind = ActionKind(kind)
	a.Config = json.RawMessage(config)
	a.Enabled = enabled != 0
	return a, nil
}

const actionColumns = `id, gesture_id, kind, plugin_name, action_name, preset_name, config, enabled, created_at`

// GetByID retrieves an action by its ID.
func (r *ActionRepository) GetByID(id string) (*Action, error) {
	row := r.db.QueryRow(`SELECT `+actionColumns+` FROM actions WHERE id = ?`, id)
	a, err := scanAction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetByGestureID retrieves an action by its gesture ID.
// Returns nil, nil if no action is bound to the gesture.
func (r *ActionRepository) GetByGestureID(gestureID string) (*Action, error) {
	row := r.db.QueryRow(`SELECT `+actionColumns+` FROM actions WHERE gesture_id = ?`, gestureID)
	a, err := scanAction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Silent skip - no action bound
		}
		return nil, err
	}
	return a, nil
}

// List retrieves all actions from the database.
func (r *ActionRepository) List() ([]*Action, error) {
	rows, err := r.db.Query(`SELECT ` + actionColumns + ` FROM actions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []*Action
	for rows.Next() {
		a, err := scanAction(rows.Scan)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return actions, nil
}

// Update updates an existing action in the database.
func (r *ActionRepository) Update(a *Action) error {
	if err := validateActionKind(a); err != nil {
		return err
	}

	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	enabled := 0
	if a.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE actions SET gesture_id = ?, kind = ?, plugin_name = ?, action_name = ?, preset_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		a.GestureID, string(a.Kind), a.PluginName, a.ActionName, a.PresetName, string(config), enabled, a.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an action from the database by its ID.
func (r *ActionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM actions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

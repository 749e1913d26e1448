package store

import "testing"

func createTestGestureForAction(t *testing.T, s *Store, id string) {
	t.Helper()
	g := &Gesture{ID: id, Name: id, Type: GestureTypeStatic, Tolerance: 0.15}
	if err := s.Gestures().Create(g); err != nil {
		t.Fatalf("failed to create gesture: %v", err)
	}
}

func TestActionRepository_Create_PluginKind(t *testing.T) {
	s := newTestStore(t)
	createTestGestureForAction(t, s, "fist")

	a := &Action{
		ID:         "action-1",
		GestureID:  "fist",
		Kind:       ActionKindPlugin,
		PluginName: "notifier",
		ActionName: "ping",
	}
	if err := s.Actions().Create(a); err != nil {
		t.Fatalf("failed to create plugin action: %v", err)
	}

	retrieved, err := s.Actions().GetByID("action-1")
	if err != nil {
		t.Fatalf("failed to get action: %v", err)
	}
	if retrieved.Kind != ActionKindPlugin {
		t.Errorf("expected kind %q, got %q", ActionKindPlugin, retrieved.Kind)
	}
}

func TestActionRepository_Create_DefaultsEmptyKindToPlugin(t *testing.T) {
	s := newTestStore(t)
	createTestGestureForAction(t, s, "fist")

	// Callers built before ActionKind existed construct Action without
	// setting Kind at all; Create must still treat that as a plugin
	// action rather than rejecting it.
	a := &Action{
		ID:         "action-1",
		GestureID:  "fist",
		PluginName: "notifier",
		ActionName: "ping",
	}
	if err := s.Actions().Create(a); err != nil {
		t.Fatalf("failed to create action with empty kind: %v", err)
	}
	if a.Kind != ActionKindPlugin {
		t.Errorf("expected empty kind to default to %q, got %q", ActionKindPlugin, a.Kind)
	}
}

func TestActionRepository_Create_PluginKindRequiresFields(t *testing.T) {
	s := newTestStore(t)
	createTestGestureForAction(t, s, "fist")

	a := &Action{ID: "action-1", GestureID: "fist", Kind: ActionKindPlugin}
	if err := s.Actions().Create(a); err == nil {
		t.Error("expected error creating plugin action without plugin_name/action_name")
	}
}

func TestActionRepository_Create_PresetKind(t *testing.T) {
	s := newTestStore(t)
	createTestGestureForAction(t, s, "fist")

	a := &Action{
		ID:         "action-1",
		GestureID:  "fist",
		Kind:       ActionKindPreset,
		PresetName: "relaxed-pinch",
	}
	if err := s.Actions().Create(a); err != nil {
		t.Fatalf("failed to create preset action: %v", err)
	}

	retrieved, err := s.Actions().GetByID("action-1")
	if err != nil {
		t.Fatalf("failed to get action: %v", err)
	}
	if retrieved.Kind != ActionKindPreset {
		t.Errorf("expected kind %q, got %q", ActionKindPreset, retrieved.Kind)
	}
	if retrieved.PresetName != "relaxed-pinch" {
		t.Errorf("expected preset_name %q, got %q", "relaxed-pinch", retrieved.PresetName)
	}
}

func TestActionRepository_Create_PresetKindRequiresPresetName(t *testing.T) {
	s := newTestStore(t)
	createTestGestureForAction(t, s, "fist")

	a := &Action{ID: "action-1", GestureID: "fist", Kind: ActionKindPreset}
	if err := s.Actions().Create(a); err == nil {
		t.Error("expected error creating preset action without preset_name")
	}
}

func TestActionRepository_Create_UnknownKind(t *testing.T) {
	s := newTestStore(t)
	createTestGestureForAction(t, s, "fist")

	a := &Action{ID: "action-1", GestureID: "fist", Kind: ActionKind("bogus")}
	if err := s.Actions().Create(a); err == nil {
		t.Error("expected error creating action with unknown kind")
	}
}

func TestActionRepository_Update_SwitchKind(t *testing.T) {
	s := newTestStore(t)
	createTestGestureForAction(t, s, "fist")

	a := &Action{
		ID:         "action-1",
		GestureID:  "fist",
		Kind:       ActionKindPlugin,
		PluginName: "notifier",
		ActionName: "ping",
	}
	if err := s.Actions().Create(a); err != nil {
		t.Fatalf("failed to create action: %v", err)
	}

	a.Kind = ActionKindPreset
	a.PresetName = "sensitive-pinch"
	if err := s.Actions().Update(a); err != nil {
		t.Fatalf("failed to switch action kind: %v", err)
	}

	retrieved, err := s.Actions().GetByID("action-1")
	if err != nil {
		t.Fatalf("failed to get action: %v", err)
	}
	if retrieved.Kind != ActionKindPreset || retrieved.PresetName != "sensitive-pinch" {
		t.Errorf("expected action to switch to preset %q, got kind %q preset %q",
			"sensitive-pinch", retrieved.Kind, retrieved.PresetName)
	}
}

func TestActionRepository_GetByGestureID_NoAction(t *testing.T) {
	s := newTestStore(t)
	createTestGestureForAction(t, s, "fist")

	a, err := s.Actions().GetByGestureID("fist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != nil {
		t.Errorf("expected nil action for gesture with no binding, got %+v", a)
	}
}

func TestActionRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	createTestGestureForAction(t, s, "fist")

	a := &Action{
		ID:         "action-1",
		GestureID:  "fist",
		Kind:       ActionKindPlugin,
		PluginName: "notifier",
		ActionName: "ping",
	}
	if err := s.Actions().Create(a); err != nil {
		t.Fatalf("failed to create action: %v", err)
	}

	if err := s.Actions().Delete("action-1"); err != nil {
		t.Fatalf("failed to delete action: %v", err)
	}

	if _, err := s.Actions().GetByID("action-1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arvind/mudra/internal/store"
)

func TestActionHandler_Create_PluginKind(t *testing.T) {
	s := newTestStore(t)
	createTestGesture(t, s, "fist", store.GestureTypeStatic)
	handler := NewActionHandler(s)

	body, _ := json.Marshal(createActionRequest{
		GestureID:  "fist",
		PluginName: "notifier",
		ActionName: "ping",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/actions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp actionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Kind != string(store.ActionKindPlugin) {
		t.Errorf("expected kind %q to default when omitted, got %q", store.ActionKindPlugin, resp.Kind)
	}
}

func TestActionHandler_Create_PresetKind(t *testing.T) {
	s := newTestStore(t)
	createTestGesture(t, s, "fist", store.GestureTypeStatic)
	handler := NewActionHandler(s)

	body, _ := json.Marshal(createActionRequest{
		GestureID:  "fist",
		Kind:       string(store.ActionKindPreset),
		PresetName: "relaxed-pinch",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/actions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp actionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Kind != string(store.ActionKindPreset) || resp.PresetName != "relaxed-pinch" {
		t.Errorf("expected preset action with preset_name relaxed-pinch, got %+v", resp)
	}
}

func TestActionHandler_Create_PresetKindMissingPresetName(t *testing.T) {
	s := newTestStore(t)
	createTestGesture(t, s, "fist", store.GestureTypeStatic)
	handler := NewActionHandler(s)

	body, _ := json.Marshal(createActionRequest{
		GestureID: "fist",
		Kind:      string(store.ActionKindPreset),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/actions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestActionHandler_Update_SwitchToPreset(t *testing.T) {
	s := newTestStore(t)
	createTestGesture(t, s, "fist", store.GestureTypeStatic)

	action := &store.Action{
		ID:         "action-1",
		GestureID:  "fist",
		Kind:       store.ActionKindPlugin,
		PluginName: "notifier",
		ActionName: "ping",
		Enabled:    true,
	}
	if err := s.Actions().Create(action); err != nil {
		t.Fatalf("failed to seed action: %v", err)
	}

	handler := NewActionHandler(s)
	body, _ := json.Marshal(updateActionRequest{
		Kind:       string(store.ActionKindPreset),
		PresetName: "sensitive-pinch",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/actions/action-1", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp actionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Kind != string(store.ActionKindPreset) || resp.PresetName != "sensitive-pinch" {
		t.Errorf("expected action switched to preset sensitive-pinch, got %+v", resp)
	}
}

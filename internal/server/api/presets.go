package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/arvind/mudra/internal/store"
)

// PresetsHandler handles HTTP requests for named tuning presets of the
// scene core's Config tunables (e.g. "sensitive pinch" vs. "relaxed
// pinch"), backed by store.SettingsRepository.
type PresetsHandler struct {
	store *store.Store
}

// NewPresetsHandler creates a new PresetsHandler with the given store.
func NewPresetsHandler(s *store.Store) *PresetsHandler {
	return &PresetsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
// Expected paths: /api/presets or /api/presets/{name}
func (h *PresetsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/presets")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	name := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, name)
	case http.MethodPut:
		h.set(w, r, name)
	case http.MethodDelete:
		h.delete(w, r, name)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type listPresetsResponse struct {
	Presets []string `json:"presets"`
}

// list handles GET /api/presets and returns every stored preset name.
func (h *PresetsHandler) list(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.Settings().ListPresets()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list presets")
		return
	}

	writeJSON(w, http.StatusOK, listPresetsResponse{Presets: names})
}

// get handles GET /api/presets/{name} and returns the raw tunables JSON
// for a single preset.
func (h *PresetsHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	var raw json.RawMessage
	if err := h.store.Settings().GetPreset(name, &raw); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// set handles PUT /api/presets/{name} and stores the request body verbatim
// as the named preset's tunables.
func (h *PresetsHandler) set(w http.ResponseWriter, r *http.Request, name string) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.store.Settings().SetPreset(name, raw); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save preset")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// delete handles DELETE /api/presets/{name} and removes a stored preset.
func (h *PresetsHandler) delete(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.store.Settings().DeletePreset(name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete preset")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

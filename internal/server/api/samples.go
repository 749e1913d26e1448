package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/arvind/mudra/internal/customgesture"
	"github.com/arvind/mudra/internal/store"
)

// SamplesHandler handles HTTP requests for gesture sample resources. A
// POST also trains the samples into a landmark template (see
// internal/customgesture.Trainer) and persists it via
// store.Landmarks().Replace, so the recorded pose is immediately usable
// by the custom-gesture matcher once onTrained reloads it.
type SamplesHandler struct {
	store     *store.Store
	trainer   *customgesture.Trainer
	onTrained func(gestureID string)
}

// NewSamplesHandler creates a new SamplesHandler with the given store.
// onTrained, if non-nil, is called with the gesture ID after every
// successful training pass, so the running app can reload its matcher
// template without waiting for a restart.
func NewSamplesHandler(s *store.Store, onTrained func(gestureID string)) *SamplesHandler {
	return &SamplesHandler{store: s, trainer: customgesture.NewTrainer(), onTrained: onTrained}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/gestures/{id}/samples
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Parse gesture ID from path: /api/gestures/{id}/samples
	path := strings.TrimPrefix(r.URL.Path, "/api/gestures/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "samples" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	gestureID := parts[0]

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, gestureID)
	case http.MethodPost:
		h.create(w, r, gestureID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request types

type createSamplesRequest struct {
	Samples []json.RawMessage `json:"samples"`
}

// Response types

type sampleResponse struct {
	ID          int64           `json:"id"`
	GestureID   string          `json:"gesture_id"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   string          `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

// list handles GET /api/gestures/{id}/samples
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, gestureID string) {
	samples, err := h.store.Samples().GetByGestureID(gestureID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{
		Samples: make([]sampleResponse, 0, len(samples)),
	}

	for _, s := range samples {
		response.Samples = append(response.Samples, sampleResponse{
			ID:          s.ID,
			GestureID:   s.GestureID,
			SampleIndex: s.SampleIndex,
			Data:        s.Data,
			CreatedAt:   s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/gestures/{id}/samples. For a static gesture,
// every sample recorded for it so far (this batch plus whatever earlier
// calls already stored, per SampleRepository.Create's accumulation) is
// averaged into a landmark template and persisted, so a pose recorded
// across several short bursts keeps improving instead of each call
// clobbering the last one's template — the teacher's
// gesture.Trainer.TrainStatic did the same averaging step for its own
// record-then-train flow, just over a single in-memory batch.
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, gestureID string) {
	gesture, err := h.store.Gestures().GetByID(gestureID)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "Gesture not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify gesture")
		return
	}

	var req createSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sample is required")
		return
	}

	if err := h.store.Samples().Create(gestureID, req.Samples); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save samples")
		return
	}

	if gesture.Type == store.GestureTypeStatic {
		if err := h.train(gestureID); err != nil {
			log.Warn().Str("gesture", gestureID).Err(err).Msg("failed to train static pose from samples")
			writeJSON(w, http.StatusCreated, map[string]string{"status": "ok", "trained": "false"})
			return
		}
		if h.onTrained != nil {
			h.onTrained(gestureID)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok", "trained": "true"})
}

// train averages every sample recorded so far for gestureID into a
// landmark template and replaces the gesture's stored pose.
func (h *SamplesHandler) train(gestureID string) error {
	recorded, err := h.store.Samples().GetByGestureID(gestureID)
	if err != nil {
		return err
	}

	raw := make([]json.RawMessage, len(recorded))
	for i, s := range recorded {
		raw[i] = s.Data
	}

	averaged, err := h.trainer.TrainStatic(raw)
	if err != nil {
		return err
	}
	return h.store.Landmarks().Replace(gestureID, averaged)
}

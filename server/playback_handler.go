package server

import (
	"encoding/json"
	"net/http"

	"github.com/jeromej12/mixos/model"
)

type toggleRequest struct {
	Track model.Track `json:"track"`
}

type toggleResponse struct {
	State   interface{} `json:"state"`
	Changed bool        `json:"changed"`
}

// ToggleHandler plays or pauses a track. Tracks without a resolvable
// audio source leave the state untouched.
func (h *APIHandler) ToggleHandler(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Track.Title == "" {
		writeError(w, http.StatusBadRequest, "track title is required")
		return
	}

	// Fill in a resolved preview for AI-suggested tracks first.
	enriched := h.resolver.EnrichTracks([]model.Track{req.Track})

	state, changed := h.coordinator.PlayPause(enriched[0])
	writeJSON(w, http.StatusOK, toggleResponse{State: state, Changed: changed})
}

type progressRequest struct {
	Progress float64 `json:"progress"`
}

// ProgressHandler records playback progress reported by the client.
func (h *APIHandler) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.coordinator.SetProgress(req.Progress))
}

// FinishedHandler handles natural end-of-audio.
func (h *APIHandler) FinishedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coordinator.Finished())
}

// PlaybackStateHandler returns the now-playing snapshot.
func (h *APIHandler) PlaybackStateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coordinator.State())
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jeromej12/mixos/core/identity"
	"github.com/jeromej12/mixos/core/setlist"
	"github.com/jeromej12/mixos/model"
)

// setlistResponse pairs the setlist with its derived statistics.
type setlistResponse struct {
	Setlist       *model.Setlist `json:"setlist"`
	AverageBPM    int            `json:"averageBpm"`
	AverageEnergy float64        `json:"averageEnergy"`
	DurationLabel string         `json:"durationLabel"`
}

func buildSetlistResponse(s *model.Setlist) setlistResponse {
	return setlistResponse{
		Setlist:       s,
		AverageBPM:    identity.AverageBPM(s.Tracks),
		AverageEnergy: identity.AverageEnergy(s.Tracks),
		DurationLabel: identity.FormatDuration(s.TotalDuration),
	}
}

// GetSetlistHandler returns the active setlist with statistics.
func (h *APIHandler) GetSetlistHandler(w http.ResponseWriter, r *http.Request) {
	current := h.setlists.Current()
	if current == nil {
		writeError(w, http.StatusNotFound, "no active setlist")
		return
	}
	writeJSON(w, http.StatusOK, buildSetlistResponse(current))
}

type createSetlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateSetlistHandler replaces the active setlist with a fresh one.
func (h *APIHandler) CreateSetlistHandler(w http.ResponseWriter, r *http.Request) {
	var req createSetlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		req.Name = "My Setlist"
	}

	created, err := h.setlists.CreateNew(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, buildSetlistResponse(created))
}

type addTracksRequest struct {
	Tracks []model.Track `json:"tracks"`
}

// AddTracksHandler appends tracks to the setlist as one batch.
func (h *APIHandler) AddTracksHandler(w http.ResponseWriter, r *http.Request) {
	var req addTracksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Tracks) == 0 {
		writeError(w, http.StatusBadRequest, "no tracks given")
		return
	}

	updated, err := h.setlists.AddTracks(r.Context(), req.Tracks)
	if err != nil {
		if errors.Is(err, setlist.ErrNoSetlist) {
			writeError(w, http.StatusConflict, "no active setlist")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, buildSetlistResponse(updated))
}

// RemoveTrackHandler removes tracks by exact ID.
func (h *APIHandler) RemoveTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	updated, err := h.setlists.RemoveByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, setlist.ErrNoSetlist) {
			writeError(w, http.StatusConflict, "no active setlist")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, buildSetlistResponse(updated))
}

type reorderRequest struct {
	TrackIDs []string `json:"trackIds"`
}

// ReorderHandler rearranges the setlist to match the given ID order.
func (h *APIHandler) ReorderHandler(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.setlists.Reorder(r.Context(), req.TrackIDs)
	if err != nil {
		if errors.Is(err, setlist.ErrNoSetlist) {
			writeError(w, http.StatusConflict, "no active setlist")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, buildSetlistResponse(updated))
}

// ClearSetlistHandler empties the setlist but keeps its identity.
func (h *APIHandler) ClearSetlistHandler(w http.ResponseWriter, r *http.Request) {
	updated, err := h.setlists.Clear(r.Context())
	if err != nil {
		if errors.Is(err, setlist.ErrNoSetlist) {
			writeError(w, http.StatusConflict, "no active setlist")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, buildSetlistResponse(updated))
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jeromej12/mixos/core/history"
	"github.com/jeromej12/mixos/core/identity"
	"github.com/jeromej12/mixos/logger"
	"github.com/jeromej12/mixos/model"
)

// GenerateHandler seeds a fresh AI playlist session from a vibe brief.
func (h *APIHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playlists, err := h.session.Generate(r.Context(), req.Prompt, req.Count, req.TargetDurationMinutes)
	if err != nil {
		if errors.Is(err, history.ErrRefineBusy) {
			writeError(w, http.StatusConflict, "a generation is already in progress")
			return
		}
		logger.Error("generation failed", logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if playlists == nil {
		writeError(w, http.StatusBadRequest, "prompt must not be empty")
		return
	}

	h.resolver.Resolve(context.Background(), playlists)
	writeJSON(w, http.StatusOK, model.AIResponse{Playlists: playlists})
}

// RefineHandler applies an instruction on top of the current version.
func (h *APIHandler) RefineHandler(w http.ResponseWriter, r *http.Request) {
	var req model.RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playlists, err := h.session.Refine(r.Context(), req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, history.ErrRefineBusy):
			writeError(w, http.StatusConflict, "a refinement is already in progress")
		case errors.Is(err, history.ErrNoHistory):
			writeError(w, http.StatusBadRequest, "generate a setlist first")
		default:
			logger.Error("refinement failed", logger.ErrorField(err))
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	h.resolver.Resolve(context.Background(), playlists)
	writeJSON(w, http.StatusOK, model.AIResponse{Playlists: playlists})
}

// VersionsHandler lists the refinement history and the cursor into it.
func (h *APIHandler) VersionsHandler(w http.ResponseWriter, r *http.Request) {
	versions, current := h.session.Versions()
	writeJSON(w, http.StatusOK, model.VersionsResponse{Versions: versions, Current: current})
}

// GoToVersionHandler moves the cursor to a stored version.
func (h *APIHandler) GoToVersionHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid version index")
		return
	}

	playlists, err := h.session.GoTo(index)
	if err != nil {
		switch {
		case errors.Is(err, history.ErrVersionOutOfRange), errors.Is(err, history.ErrNoHistory):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.resolver.Resolve(context.Background(), playlists)
	writeJSON(w, http.StatusOK, model.AIResponse{Playlists: playlists})
}

type addSuggestionRequest struct {
	Suggestion model.AITrackSuggestion `json:"suggestion"`
}

type addSuggestionResponse struct {
	Added   bool           `json:"added"`
	Track   *model.Track   `json:"track,omitempty"`
	Setlist *model.Setlist `json:"setlist,omitempty"`
}

// AddSuggestionHandler converts an AI suggestion into a track and adds
// it to the setlist, unless a track with the same identity is already
// there.
func (h *APIHandler) AddSuggestionHandler(w http.ResponseWriter, r *http.Request) {
	var req addSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Suggestion.Title == "" {
		writeError(w, http.StatusBadRequest, "suggestion title is required")
		return
	}

	track := identity.ConvertSuggestion(req.Suggestion)

	current := h.setlists.Current()
	if current == nil {
		writeError(w, http.StatusConflict, "no active setlist")
		return
	}
	if identity.IsPresentIn(current.Tracks, &track) {
		writeJSON(w, http.StatusOK, addSuggestionResponse{Added: false})
		return
	}

	enriched := h.resolver.EnrichTracks([]model.Track{track})
	updated, err := h.setlists.AddTrack(r.Context(), enriched[0])
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, addSuggestionResponse{Added: true, Track: &enriched[0], Setlist: updated})
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jeromej12/mixos/core/library"
	"github.com/jeromej12/mixos/logger"
	"github.com/jeromej12/mixos/model"
)

// SearchHandler proxies catalog search.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}

	tracks, err := h.catalog.SearchTracks(r.Context(), query)
	if err != nil {
		logger.Error("search failed", logger.String("query", query), logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, model.SearchResult{Tracks: tracks, Total: len(tracks)})
}

type addSearchedRequest struct {
	Track model.Track `json:"track"`
}

// AddSearchedHandler analyzes a searched track and adds it to the
// setlist. Analysis failure degrades to adding the unanalyzed track.
func (h *APIHandler) AddSearchedHandler(w http.ResponseWriter, r *http.Request) {
	var req addSearchedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Track.ID == "" || req.Track.Title == "" {
		writeError(w, http.StatusBadRequest, "track id and title are required")
		return
	}

	track := req.Track
	if analyzed, err := h.analyzer.Analyze(r.Context(), track); err != nil {
		logger.Warn("analysis failed, adding unanalyzed track",
			logger.String("title", track.Title),
			logger.ErrorField(err))
	} else {
		track = analyzed
	}

	updated, err := h.setlists.AddTrack(r.Context(), track)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, buildSetlistResponse(updated))
}

// UploadTrackHandler accepts a multipart audio upload into the library.
// Expected form field: trackFile.
func (h *APIHandler) UploadTrackHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("trackFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'trackFile' in form")
		return
	}
	defer file.Close()

	track, err := h.library.Upload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, library.ErrUnsupportedFormat) {
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		logger.Error("upload failed", logger.String("filename", header.Filename), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	writeJSON(w, http.StatusCreated, track)
}

// LibraryHandler lists the local track library.
func (h *APIHandler) LibraryHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.library.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.SearchResult{Tracks: tracks, Total: len(tracks)})
}

// DeleteTrackHandler removes a track from the library.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.library.Delete(r.Context(), id); err != nil {
		if errors.Is(err, library.ErrTrackNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// TrackAudioHandler streams a library track's audio file.
func (h *APIHandler) TrackAudioHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	path, err := h.library.AudioPath(r.Context(), id)
	if err != nil {
		if errors.Is(err, library.ErrTrackNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.ServeFile(w, r, path)
}

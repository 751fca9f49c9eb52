package server

import (
	"encoding/json"
	"net/http"

	"github.com/jeromej12/mixos/config"
	"github.com/jeromej12/mixos/core/analyze"
	"github.com/jeromej12/mixos/core/catalog"
	"github.com/jeromej12/mixos/core/history"
	"github.com/jeromej12/mixos/core/library"
	"github.com/jeromej12/mixos/core/playback"
	"github.com/jeromej12/mixos/core/preview"
	"github.com/jeromej12/mixos/core/setlist"
	"github.com/jeromej12/mixos/logger"
)

// APIHandler carries the shared state every endpoint works against.
type APIHandler struct {
	setlists    *setlist.Store
	session     *history.Session
	resolver    *preview.Resolver
	coordinator *playback.Coordinator
	catalog     *catalog.Client
	library     *library.Library
	analyzer    *analyze.Analyzer
	cfg         *config.Config
}

func NewAPIHandler(
	setlists *setlist.Store,
	session *history.Session,
	resolver *preview.Resolver,
	coordinator *playback.Coordinator,
	catalogClient *catalog.Client,
	lib *library.Library,
	analyzer *analyze.Analyzer,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		setlists:    setlists,
		session:     session,
		resolver:    resolver,
		coordinator: coordinator,
		catalog:     catalogClient,
		library:     lib,
		analyzer:    analyzer,
		cfg:         cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// HealthHandler reports liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

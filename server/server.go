package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/jeromej12/mixos/config"
	"github.com/jeromej12/mixos/core/agent"
	"github.com/jeromej12/mixos/core/analyze"
	"github.com/jeromej12/mixos/core/catalog"
	"github.com/jeromej12/mixos/core/history"
	"github.com/jeromej12/mixos/core/library"
	"github.com/jeromej12/mixos/core/playback"
	"github.com/jeromej12/mixos/core/preview"
	"github.com/jeromej12/mixos/core/setlist"
	"github.com/jeromej12/mixos/db"
	"github.com/jeromej12/mixos/logger"
	"github.com/jeromej12/mixos/repository"
)

// Start wires up every component and runs the HTTP server until it
// receives an interrupt.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()
	logger.Info("connected to Redis", logger.String("addr", cfg.RedisAddr))

	trackRepo := repository.NewRedisTrackRepository(db.RedisClient)
	analyzer := analyze.NewAnalyzer(cfg.SpotifyClientID, cfg.SpotifyClientSecret)

	lib, err := library.NewLibrary(cfg.LibraryDir, trackRepo, analyzer)
	if err != nil {
		logger.Fatal("failed to initialize library", logger.ErrorField(err))
	}

	setlists := setlist.NewStore(setlist.NewRedisSnapshotter(db.RedisClient))
	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	loaded, err := setlists.Load(startCtx)
	if err != nil {
		cancelStart()
		logger.Fatal("failed to load setlist", logger.ErrorField(err))
	}
	if !loaded {
		if _, err := setlists.CreateNew(startCtx, "My Setlist", ""); err != nil {
			cancelStart()
			logger.Fatal("failed to create setlist", logger.ErrorField(err))
		}
	}
	cancelStart()

	setlistAgent := agent.NewSetlistAgent(&agent.SetlistAgentConfig{
		APIBaseURL:  cfg.AIBaseURL,
		APIKey:      cfg.AIAPIKey,
		Model:       cfg.AIModel,
		MaxTokens:   cfg.AIMaxTokens,
		Temperature: cfg.AITemperature,
	})
	session := history.NewSession(setlistAgent)

	catalogClient := catalog.NewClient(cfg.ITunesBaseURL)
	resolver := preview.NewResolver(catalogClient, time.Duration(cfg.PreviewDelayMs)*time.Millisecond)
	coordinator := playback.NewCoordinator()

	apiHandler := NewAPIHandler(setlists, session, resolver, coordinator, catalogClient, lib, analyzer, cfg)

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if cfg.WatchDir != "" {
		watcher, err := library.NewWatcher(cfg.WatchDir, lib)
		if err != nil {
			logger.Error("failed to start watch folder", logger.ErrorField(err))
		} else {
			go watcher.Run(watchCtx)
		}
	}

	router := newRouter(apiHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// newRouter registers every API route on a fresh router.
func newRouter(apiHandler *APIHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// AI generation and version history
	router.HandleFunc("/api/ai/generate", apiHandler.GenerateHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/ai/refine", apiHandler.RefineHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/ai/versions", apiHandler.VersionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/ai/versions/{index}", apiHandler.GoToVersionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/ai/suggestions/add", apiHandler.AddSuggestionHandler).Methods(http.MethodPost)

	// Setlist
	router.HandleFunc("/api/setlist", apiHandler.GetSetlistHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/setlist", apiHandler.CreateSetlistHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/setlist/tracks", apiHandler.AddTracksHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/setlist/tracks/{id}", apiHandler.RemoveTrackHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/setlist/reorder", apiHandler.ReorderHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/setlist/clear", apiHandler.ClearSetlistHandler).Methods(http.MethodPost)

	// Search and library
	router.HandleFunc("/api/search", apiHandler.SearchHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/search/add", apiHandler.AddSearchedHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/upload", apiHandler.UploadTrackHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/library", apiHandler.LibraryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", apiHandler.DeleteTrackHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks/{id}/audio", apiHandler.TrackAudioHandler).Methods(http.MethodGet)

	// Playback
	router.HandleFunc("/api/playback/toggle", apiHandler.ToggleHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playback/progress", apiHandler.ProgressHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playback/finished", apiHandler.FinishedHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playback", apiHandler.PlaybackStateHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playback/ws", apiHandler.PlaybackWSHandler)

	router.HandleFunc("/api/health", apiHandler.HealthHandler).Methods(http.MethodGet)

	return router
}

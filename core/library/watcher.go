package library

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeromej12/mixos/logger"
)

// settleDelay gives the writer time to finish before a new file is read.
const settleDelay = 2 * time.Second

// Watcher imports audio files dropped into a watch folder.
type Watcher struct {
	dir     string
	library *Library
	fsw     *fsnotify.Watcher
}

func NewWatcher(dir string, library *Library) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{dir: dir, library: library, fsw: fsw}, nil
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	logger.Info("watching folder for audio files", logger.String("dir", w.dir))
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			ext := strings.ToLower(filepath.Ext(event.Name))
			if !allowedExtensions[ext] {
				continue
			}
			go w.importLater(ctx, event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch folder error", logger.ErrorField(err))
		}
	}
}

func (w *Watcher) importLater(ctx context.Context, path string) {
	select {
	case <-time.After(settleDelay):
	case <-ctx.Done():
		return
	}

	track, err := w.library.ImportFile(ctx, path)
	if err != nil {
		logger.Warn("failed to import watched file",
			logger.String("path", path),
			logger.ErrorField(err))
		return
	}
	logger.Info("imported watched file",
		logger.String("path", path),
		logger.String("id", track.ID))
}

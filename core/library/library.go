package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/google/uuid"

	"github.com/jeromej12/mixos/core/analyze"
	"github.com/jeromej12/mixos/logger"
	"github.com/jeromej12/mixos/model"
	"github.com/jeromej12/mixos/repository"
)

// MaxUploadSize caps accepted audio files at 50 MB.
const MaxUploadSize = 50 << 20

// ErrTrackNotFound is returned for lookups of unknown track IDs.
var ErrTrackNotFound = errors.New("track not found in library")

// ErrUnsupportedFormat is returned for files that are not mp3, wav or flac.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

var allowedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
}

// Library manages the user's uploaded audio files and their metadata.
// Audio bytes live on disk, metadata lives in the track repository.
type Library struct {
	dir      string
	repo     repository.TrackRepository
	analyzer *analyze.Analyzer
}

func NewLibrary(dir string, repo repository.TrackRepository, analyzer *analyze.Analyzer) (*Library, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create library dir: %w", err)
	}
	return &Library{dir: dir, repo: repo, analyzer: analyzer}, nil
}

// Upload stores the audio file, extracts its metadata and registers the
// track. Analysis failures degrade to an unanalyzed track rather than
// rejecting the upload.
func (l *Library) Upload(ctx context.Context, filename string, r io.Reader) (*model.Track, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	id := uuid.NewString()
	dest := filepath.Join(l.dir, id+ext)

	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("failed to write audio file: %w", err)
	}
	if written > MaxUploadSize {
		os.Remove(dest)
		return nil, fmt.Errorf("file exceeds %d MB limit", MaxUploadSize>>20)
	}

	track := l.buildTrack(id, filename, dest)

	if analyzed, err := l.analyzer.Analyze(ctx, *track); err != nil {
		logger.Warn("track analysis failed, keeping unanalyzed track",
			logger.String("title", track.Title),
			logger.ErrorField(err))
	} else {
		*track = analyzed
	}

	if err := l.repo.Save(ctx, track); err != nil {
		os.Remove(dest)
		return nil, err
	}

	logger.Info("track uploaded",
		logger.String("id", track.ID),
		logger.String("title", track.Title),
		logger.String("artist", track.Artist),
		logger.Int64("bytes", written))
	return track, nil
}

// ImportFile registers an audio file that already exists on disk, used
// by the watch folder. The file is copied into the library dir.
func (l *Library) ImportFile(ctx context.Context, path string) (*model.Track, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()
	return l.Upload(ctx, filepath.Base(path), src)
}

// buildTrack reads embedded tags, falling back to filename parsing.
func (l *Library) buildTrack(id, filename, path string) *model.Track {
	track := &model.Track{
		ID:       id,
		Source:   model.SourceLocal,
		FilePath: path,
	}

	if f, err := os.Open(path); err == nil {
		if m, err := tag.ReadFrom(f); err == nil {
			track.Title = strings.TrimSpace(m.Title())
			track.Artist = strings.TrimSpace(m.Artist())
			track.Album = strings.TrimSpace(m.Album())
			track.Genre = strings.TrimSpace(m.Genre())
		}
		f.Close()
	}

	if track.Title == "" || track.Artist == "" {
		artist, title := ParseFilename(filename)
		if track.Title == "" {
			track.Title = title
		}
		if track.Artist == "" {
			track.Artist = artist
		}
	}
	return track
}

// List returns every track in the library.
func (l *Library) List(ctx context.Context) ([]model.Track, error) {
	return l.repo.GetAll(ctx)
}

// Get returns one track by ID, or ErrTrackNotFound.
func (l *Library) Get(ctx context.Context, id string) (*model.Track, error) {
	track, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, ErrTrackNotFound
	}
	return track, nil
}

// Delete removes a track's metadata and its audio file.
func (l *Library) Delete(ctx context.Context, id string) error {
	track, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := l.repo.Delete(ctx, id); err != nil {
		return err
	}
	if track.FilePath != "" {
		if err := os.Remove(track.FilePath); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove audio file",
				logger.String("path", track.FilePath),
				logger.ErrorField(err))
		}
	}
	return nil
}

// AudioPath returns the on-disk path for a track's audio.
func (l *Library) AudioPath(ctx context.Context, id string) (string, error) {
	track, err := l.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if track.FilePath == "" {
		return "", fmt.Errorf("track %s has no audio file", id)
	}
	return track.FilePath, nil
}

package library

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jeromej12/mixos/core/analyze"
	"github.com/jeromej12/mixos/model"
)

// memoryRepo is an in-memory TrackRepository for tests.
type memoryRepo struct {
	mu     sync.Mutex
	tracks map[string]model.Track
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tracks: make(map[string]model.Track)}
}

func (r *memoryRepo) Save(ctx context.Context, track *model.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracks[track.ID] = *track
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id string) (*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tracks[id]; ok {
		cp := t
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryRepo) GetAll(ctx context.Context) ([]model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Track, 0, len(r.tracks))
	for _, t := range r.tracks {
		out = append(out, t)
	}
	return out, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tracks, id)
	return nil
}

func newTestLibrary(t *testing.T) (*Library, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	lib, err := NewLibrary(t.TempDir(), repo, analyze.NewAnalyzer("", ""))
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	return lib, repo
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		in         string
		wantArtist string
		wantTitle  string
	}{
		{"deadmau5 - Strobe.mp3", "deadmau5", "Strobe"},
		{"Eric Prydz - Opus [Official Video].mp3", "Eric Prydz", "Opus"},
		{"Artist - Title (Official Audio).flac", "Artist", "Title"},
		{"Artist - Title [HQ] (Remaster).wav", "Artist", "Title"},
		{"justafile.mp3", "Unknown Artist", "justafile"},
		{"/some/dir/A - B.mp3", "A", "B"},
	}
	for _, tt := range tests {
		artist, title := ParseFilename(tt.in)
		if artist != tt.wantArtist || title != tt.wantTitle {
			t.Errorf("ParseFilename(%q) = (%q, %q), want (%q, %q)",
				tt.in, artist, title, tt.wantArtist, tt.wantTitle)
		}
	}
}

func TestUploadRegistersTrack(t *testing.T) {
	lib, repo := newTestLibrary(t)
	ctx := context.Background()

	// Not a real mp3; tag reading fails and filename parsing takes over.
	track, err := lib.Upload(ctx, "deadmau5 - Strobe.mp3", strings.NewReader("fake audio bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if track.Artist != "deadmau5" || track.Title != "Strobe" {
		t.Errorf("track = %+v", track)
	}
	if track.Source != model.SourceLocal {
		t.Errorf("source = %q", track.Source)
	}
	if track.FilePath == "" {
		t.Error("expected a file path")
	}

	saved, err := repo.GetByID(ctx, track.ID)
	if err != nil || saved == nil {
		t.Fatalf("track not persisted: %v", err)
	}

	path, err := lib.AudioPath(ctx, track.ID)
	if err != nil || path != track.FilePath {
		t.Errorf("AudioPath = %q, %v", path, err)
	}
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	lib, _ := newTestLibrary(t)
	_, err := lib.Upload(context.Background(), "notes.txt", strings.NewReader("hello"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDeleteRemovesTrack(t *testing.T) {
	lib, _ := newTestLibrary(t)
	ctx := context.Background()

	track, err := lib.Upload(ctx, "A - B.mp3", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := lib.Delete(ctx, track.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := lib.Get(ctx, track.ID); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("expected ErrTrackNotFound, got %v", err)
	}

	if err := lib.Delete(ctx, "missing"); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("deleting unknown id: expected ErrTrackNotFound, got %v", err)
	}
}

func TestListLibrary(t *testing.T) {
	lib, _ := newTestLibrary(t)
	ctx := context.Background()

	for _, name := range []string{"A - One.mp3", "B - Two.wav", "C - Three.flac"} {
		if _, err := lib.Upload(ctx, name, strings.NewReader("x")); err != nil {
			t.Fatalf("Upload(%s): %v", name, err)
		}
	}

	tracks, err := lib.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tracks) != 3 {
		t.Errorf("len = %d, want 3", len(tracks))
	}
}

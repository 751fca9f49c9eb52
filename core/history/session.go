package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jeromej12/mixos/logger"
	"github.com/jeromej12/mixos/model"
)

var (
	// ErrRefineBusy is returned while another refine or generate call
	// is still in flight.
	ErrRefineBusy = errors.New("a refinement is already in progress")

	// ErrNoHistory is returned when refine or goTo is called before a
	// generation has seeded the history.
	ErrNoHistory = errors.New("no playlist history")

	// ErrVersionOutOfRange is returned by GoTo for an invalid index.
	ErrVersionOutOfRange = errors.New("version index out of range")
)

// OriginalLabel marks the seed version produced by the first generation.
const OriginalLabel = "Original"

// Refiner is the AI capability the session drives.
type Refiner interface {
	GenerateSetlist(ctx context.Context, query string, count, targetDurationMinutes int) ([]model.AIPlaylist, error)
	RefineSetlist(ctx context.Context, instruction string, current []model.AIPlaylist) ([]model.AIPlaylist, error)
}

// Session holds the linear, branch-on-refine history of AI playlist
// versions. Refining from a past version truncates everything after it
// before appending, so there is no redo once a branch is taken.
type Session struct {
	mu       sync.Mutex
	refiner  Refiner
	versions []model.PlaylistVersion
	current  int
	busy     bool
}

func NewSession(refiner Refiner) *Session {
	return &Session{refiner: refiner}
}

// Generate seeds a fresh history from a natural-language query. Any
// previous history is replaced.
func (s *Session) Generate(ctx context.Context, query string, count, targetDurationMinutes int) ([]model.AIPlaylist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrRefineBusy
	}
	s.busy = true
	s.mu.Unlock()

	playlists, err := s.refiner.GenerateSetlist(ctx, query, count, targetDurationMinutes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	s.versions = []model.PlaylistVersion{{Playlists: playlists, Label: OriginalLabel}}
	s.current = 0
	logger.Info("seeded playlist history",
		logger.String("query", query),
		logger.Int("playlists", len(playlists)))
	return copyPlaylists(playlists), nil
}

// Refine applies an instruction on top of the current version. On
// success the history is truncated at the current version and the new
// result appended; on failure nothing changes. An empty instruction is
// ignored and returns the current playlists untouched.
func (s *Session) Refine(ctx context.Context, instruction string) ([]model.AIPlaylist, error) {
	instruction = strings.TrimSpace(instruction)

	s.mu.Lock()
	if len(s.versions) == 0 {
		s.mu.Unlock()
		return nil, ErrNoHistory
	}
	if instruction == "" {
		current := copyPlaylists(s.versions[s.current].Playlists)
		s.mu.Unlock()
		return current, nil
	}
	if s.busy {
		s.mu.Unlock()
		return nil, ErrRefineBusy
	}
	s.busy = true
	base := copyPlaylists(s.versions[s.current].Playlists)
	s.mu.Unlock()

	playlists, err := s.refiner.RefineSetlist(ctx, instruction, base)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if err != nil {
		return nil, fmt.Errorf("refinement failed: %w", err)
	}

	s.versions = append(s.versions[:s.current+1], model.PlaylistVersion{
		Playlists: playlists,
		Label:     instruction,
	})
	s.current = len(s.versions) - 1
	logger.Info("appended playlist version",
		logger.String("label", instruction),
		logger.Int("version", s.current))
	return copyPlaylists(playlists), nil
}

// GoTo moves the cursor to an existing version and returns its
// playlists. Moving to the current version is a no-op.
func (s *Session) GoTo(index int) ([]model.AIPlaylist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.versions) == 0 {
		return nil, ErrNoHistory
	}
	if index < 0 || index >= len(s.versions) {
		return nil, fmt.Errorf("%w: %d of %d", ErrVersionOutOfRange, index, len(s.versions))
	}
	s.current = index
	return copyPlaylists(s.versions[index].Playlists), nil
}

// Versions returns a copy of the history and the cursor into it.
func (s *Session) Versions() ([]model.PlaylistVersion, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PlaylistVersion, len(s.versions))
	for i, v := range s.versions {
		out[i] = model.PlaylistVersion{Playlists: copyPlaylists(v.Playlists), Label: v.Label}
	}
	return out, s.current
}

// CurrentPlaylists returns the playlists of the current version, or nil
// before any generation.
func (s *Session) CurrentPlaylists() []model.AIPlaylist {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.versions) == 0 {
		return nil
	}
	return copyPlaylists(s.versions[s.current].Playlists)
}

// Busy reports whether a generate or refine call is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func copyPlaylists(in []model.AIPlaylist) []model.AIPlaylist {
	out := make([]model.AIPlaylist, len(in))
	for i, p := range in {
		cp := p
		cp.Tracks = make([]model.AITrackSuggestion, len(p.Tracks))
		copy(cp.Tracks, p.Tracks)
		out[i] = cp
	}
	return out
}

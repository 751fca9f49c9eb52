package setlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeromej12/mixos/core/identity"
	"github.com/jeromej12/mixos/logger"
	"github.com/jeromej12/mixos/model"
)

// ErrNoSetlist is returned by mutating operations before a setlist has
// been created or loaded.
var ErrNoSetlist = errors.New("no active setlist")

// Snapshotter persists the active setlist between runs.
type Snapshotter interface {
	Load(ctx context.Context) (*model.Setlist, error)
	Save(ctx context.Context, s *model.Setlist) error
}

// Store holds the single active setlist. All mutations go through the
// store so that totalDuration stays derived and every change is
// snapshotted. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	current *model.Setlist
	snap    Snapshotter
}

// NewStore builds a store with no active setlist. Call Load or
// CreateNew before mutating.
func NewStore(snap Snapshotter) *Store {
	return &Store{snap: snap}
}

// Load restores the persisted setlist if one exists. Returns false when
// no snapshot was found; the caller decides whether to CreateNew.
func (s *Store) Load(ctx context.Context) (bool, error) {
	loaded, err := s.snap.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load setlist snapshot: %w", err)
	}
	if loaded == nil {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loaded.TotalDuration = identity.TotalDuration(loaded.Tracks)
	s.current = loaded
	return true, nil
}

// CreateNew replaces the current setlist with a fresh empty one.
func (s *Store) CreateNew(ctx context.Context, name, description string) (*model.Setlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &model.Setlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Tracks:      []model.Track{},
		CreatedAt:   time.Now(),
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return s.copyCurrent(), nil
}

// Current returns a copy of the active setlist, or nil if none exists.
func (s *Store) Current() *model.Setlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.copyCurrent()
}

// AddTrack appends one track and recomputes totals.
func (s *Store) AddTrack(ctx context.Context, track model.Track) (*model.Setlist, error) {
	return s.AddTracks(ctx, []model.Track{track})
}

// AddTracks appends all tracks in order as one transition. Callers see
// either the state before the batch or after it, never in between.
func (s *Store) AddTracks(ctx context.Context, tracks []model.Track) (*model.Setlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSetlist
	}

	s.current.Tracks = append(s.current.Tracks, tracks...)
	s.current.TotalDuration = identity.TotalDuration(s.current.Tracks)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return s.copyCurrent(), nil
}

// RemoveByID removes every track whose ID matches exactly. Removal is
// by ID, not normalized key, so two same-named tracks from different
// sources stay independent.
func (s *Store) RemoveByID(ctx context.Context, id string) (*model.Setlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSetlist
	}

	kept := s.current.Tracks[:0]
	for _, t := range s.current.Tracks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.current.Tracks = kept
	s.current.TotalDuration = identity.TotalDuration(s.current.Tracks)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return s.copyCurrent(), nil
}

// Reorder rearranges tracks to match the given ID order. IDs not in the
// setlist are ignored; tracks missing from the list keep their relative
// order at the end.
func (s *Store) Reorder(ctx context.Context, ids []string) (*model.Setlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSetlist
	}

	byID := make(map[string]model.Track, len(s.current.Tracks))
	for _, t := range s.current.Tracks {
		byID[t.ID] = t
	}

	reordered := make([]model.Track, 0, len(s.current.Tracks))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok && !seen[id] {
			reordered = append(reordered, t)
			seen[id] = true
		}
	}
	for _, t := range s.current.Tracks {
		if !seen[t.ID] {
			reordered = append(reordered, t)
		}
	}

	s.current.Tracks = reordered
	s.current.TotalDuration = identity.TotalDuration(s.current.Tracks)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return s.copyCurrent(), nil
}

// Clear removes all tracks from the active setlist.
func (s *Store) Clear(ctx context.Context) (*model.Setlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoSetlist
	}

	s.current.Tracks = []model.Track{}
	s.current.TotalDuration = 0
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return s.copyCurrent(), nil
}

// persist writes the current setlist through the snapshotter.
// Caller must hold the lock.
func (s *Store) persist(ctx context.Context) error {
	if err := s.snap.Save(ctx, s.current); err != nil {
		logger.Error("failed to persist setlist", logger.ErrorField(err))
		return fmt.Errorf("failed to persist setlist: %w", err)
	}
	return nil
}

// copyCurrent returns a defensive copy. Caller must hold the lock.
func (s *Store) copyCurrent() *model.Setlist {
	cp := *s.current
	cp.Tracks = make([]model.Track, len(s.current.Tracks))
	copy(cp.Tracks, s.current.Tracks)
	return &cp
}

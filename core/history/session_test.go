package history

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/jeromej12/mixos/model"
)

// stubRefiner returns canned playlists and records calls.
type stubRefiner struct {
	mu        sync.Mutex
	nextName  string
	err       error
	refineIn  []model.AIPlaylist
	block     chan struct{}
}

func (r *stubRefiner) GenerateSetlist(ctx context.Context, query string, count, target int) ([]model.AIPlaylist, error) {
	return r.result()
}

func (r *stubRefiner) RefineSetlist(ctx context.Context, instruction string, current []model.AIPlaylist) ([]model.AIPlaylist, error) {
	r.mu.Lock()
	r.refineIn = current
	r.mu.Unlock()
	return r.result()
}

func (r *stubRefiner) result() ([]model.AIPlaylist, error) {
	if r.block != nil {
		<-r.block
	}
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	name := r.nextName
	r.mu.Unlock()
	return []model.AIPlaylist{{Name: name, Tracks: []model.AITrackSuggestion{{Title: name, Artist: "x"}}}}, nil
}

func (r *stubRefiner) setNext(name string) {
	r.mu.Lock()
	r.nextName = name
	r.mu.Unlock()
}

func seed(t *testing.T, name string) (*Session, *stubRefiner) {
	t.Helper()
	r := &stubRefiner{nextName: name}
	s := NewSession(r)
	if _, err := s.Generate(context.Background(), "peak time techno", 1, 60); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return s, r
}

func TestGenerateSeedsHistory(t *testing.T) {
	s, _ := seed(t, "Original Set")

	versions, current := s.Versions()
	if len(versions) != 1 || current != 0 {
		t.Fatalf("history = %d versions, current %d; want 1, 0", len(versions), current)
	}
	if versions[0].Label != OriginalLabel {
		t.Errorf("label = %q, want %q", versions[0].Label, OriginalLabel)
	}
}

func TestGenerateEmptyQueryIsIgnored(t *testing.T) {
	s := NewSession(&stubRefiner{nextName: "x"})
	got, err := s.Generate(context.Background(), "   ", 1, 0)
	if err != nil || got != nil {
		t.Fatalf("empty query should be a no-op, got %v, %v", got, err)
	}
	if versions, _ := s.Versions(); len(versions) != 0 {
		t.Error("history should stay empty")
	}
}

func TestRefineAppends(t *testing.T) {
	s, r := seed(t, "v0")

	r.setNext("v1")
	if _, err := s.Refine(context.Background(), "make it shorter"); err != nil {
		t.Fatalf("Refine: %v", err)
	}

	versions, current := s.Versions()
	if len(versions) != 2 || current != 1 {
		t.Fatalf("history = %d versions, current %d; want 2, 1", len(versions), current)
	}
	if versions[1].Label != "make it shorter" {
		t.Errorf("label = %q, want the instruction text", versions[1].Label)
	}
	if r.refineIn[0].Name != "v0" {
		t.Errorf("refine should operate on the current version, got %q", r.refineIn[0].Name)
	}
}

func TestRefineFromPastVersionDiscardsForward(t *testing.T) {
	s, r := seed(t, "v0")

	r.setNext("v1")
	if _, err := s.Refine(context.Background(), "make it shorter"); err != nil {
		t.Fatalf("Refine: %v", err)
	}

	if _, err := s.GoTo(0); err != nil {
		t.Fatalf("GoTo: %v", err)
	}

	r.setNext("v2")
	if _, err := s.Refine(context.Background(), "add more energy"); err != nil {
		t.Fatalf("Refine: %v", err)
	}

	versions, current := s.Versions()
	if len(versions) != 2 || current != 1 {
		t.Fatalf("history = %d versions, current %d; want 2, 1", len(versions), current)
	}
	if versions[1].Label != "add more energy" {
		t.Errorf("label = %q; the shorter branch should be gone", versions[1].Label)
	}
	if r.refineIn[0].Name != "v0" {
		t.Errorf("second refine should start from version 0, got %q", r.refineIn[0].Name)
	}
}

func TestRefineFailureLeavesHistoryUntouched(t *testing.T) {
	s, r := seed(t, "v0")

	r.err = fmt.Errorf("backend down")
	if _, err := s.Refine(context.Background(), "more bass"); err == nil {
		t.Fatal("expected an error")
	}

	versions, current := s.Versions()
	if len(versions) != 1 || current != 0 {
		t.Errorf("history changed on failure: %d versions, current %d", len(versions), current)
	}
	if s.Busy() {
		t.Error("busy flag stuck after failure")
	}
}

func TestRefineEmptyInstructionIsIgnored(t *testing.T) {
	s, _ := seed(t, "v0")

	got, err := s.Refine(context.Background(), "  ")
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if len(got) != 1 || got[0].Name != "v0" {
		t.Error("empty instruction should return the current version unchanged")
	}
	if versions, _ := s.Versions(); len(versions) != 1 {
		t.Error("history should be unchanged")
	}
}

func TestRefineBusyGuard(t *testing.T) {
	s, r := seed(t, "v0")

	r.block = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := s.Refine(context.Background(), "slow one")
		done <- err
	}()

	for !s.Busy() {
		runtime.Gosched()
	}

	if _, err := s.Refine(context.Background(), "overlapping"); !errors.Is(err, ErrRefineBusy) {
		t.Errorf("expected ErrRefineBusy, got %v", err)
	}

	close(r.block)
	if err := <-done; err != nil {
		t.Fatalf("first refine failed: %v", err)
	}

	versions, _ := s.Versions()
	if len(versions) != 2 {
		t.Errorf("history = %d versions, want 2", len(versions))
	}
}

func TestGoTo(t *testing.T) {
	s, r := seed(t, "v0")
	r.setNext("v1")
	if _, err := s.Refine(context.Background(), "tweak"); err != nil {
		t.Fatalf("Refine: %v", err)
	}

	got, err := s.GoTo(0)
	if err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if got[0].Name != "v0" {
		t.Errorf("GoTo(0) returned %q, want v0", got[0].Name)
	}
	if _, current := s.Versions(); current != 0 {
		t.Errorf("current = %d, want 0", current)
	}

	// Same index again is a harmless no-op.
	if _, err := s.GoTo(0); err != nil {
		t.Fatalf("GoTo same index: %v", err)
	}

	if _, err := s.GoTo(5); !errors.Is(err, ErrVersionOutOfRange) {
		t.Errorf("expected ErrVersionOutOfRange, got %v", err)
	}
	if _, err := s.GoTo(-1); !errors.Is(err, ErrVersionOutOfRange) {
		t.Errorf("expected ErrVersionOutOfRange, got %v", err)
	}
}

func TestRefineBeforeGenerate(t *testing.T) {
	s := NewSession(&stubRefiner{nextName: "x"})
	if _, err := s.Refine(context.Background(), "anything"); !errors.Is(err, ErrNoHistory) {
		t.Errorf("expected ErrNoHistory, got %v", err)
	}
}

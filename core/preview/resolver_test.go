package preview

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jeromej12/mixos/model"
)

// stubSearcher returns canned results per query and counts lookups.
type stubSearcher struct {
	mu      sync.Mutex
	results map[string][]model.Track
	errs    map[string]error
	calls   []string
}

func (s *stubSearcher) SearchTracks(ctx context.Context, query string) ([]model.Track, error) {
	s.mu.Lock()
	s.calls = append(s.calls, query)
	s.mu.Unlock()
	if err, ok := s.errs[query]; ok {
		return nil, err
	}
	return s.results[query], nil
}

func (s *stubSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func suggestion(title, artist string) model.AITrackSuggestion {
	return model.AITrackSuggestion{Title: title, Artist: artist}
}

func playlist(tracks ...model.AITrackSuggestion) model.AIPlaylist {
	return model.AIPlaylist{Name: "set", Tracks: tracks}
}

// run drives a batch synchronously so tests do not race the worker.
func run(r *Resolver, playlists ...model.AIPlaylist) {
	token, items := r.beginBatch(playlists)
	r.runBatch(context.Background(), token, items)
}

func TestResolveCachesBestMatch(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]model.Track{
		"Strobe deadmau5": {
			{Title: "Strobe (Radio Edit)", Artist: "deadmau5", PreviewURL: "https://p/strobe", AlbumArt: "https://a/strobe", Duration: 30},
		},
	}}
	r := NewResolver(searcher, 0)

	run(r, playlist(suggestion("Strobe", "deadmau5")))

	e, ok := r.Lookup("strobe|deadmau5")
	if !ok {
		t.Fatal("expected a cache entry")
	}
	if e.PreviewURL != "https://p/strobe" || e.Duration != 30 {
		t.Errorf("entry = %+v", e)
	}
	if r.IsPending("strobe|deadmau5") {
		t.Error("pending flag not cleared")
	}
}

func TestBatchDeduplicatesAcrossPlaylists(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]model.Track{
		"Opus Eric Prydz": {{Title: "Opus", Artist: "Eric Prydz", PreviewURL: "u"}},
	}}
	r := NewResolver(searcher, 0)

	run(r,
		playlist(suggestion("Opus", "Eric Prydz")),
		playlist(suggestion("opus", "eric prydz")),
	)

	if got := searcher.callCount(); got != 1 {
		t.Errorf("lookups = %d, want 1", got)
	}
}

func TestCachedKeysAreNotLookedUpAgain(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]model.Track{
		"Opus Eric Prydz": {{Title: "Opus", PreviewURL: "u"}},
	}}
	r := NewResolver(searcher, 0)

	run(r, playlist(suggestion("Opus", "Eric Prydz")))
	run(r, playlist(suggestion("Opus", "Eric Prydz")))

	if got := searcher.callCount(); got != 1 {
		t.Errorf("lookups = %d, want 1", got)
	}
}

func TestPerItemFailureDoesNotAbortBatch(t *testing.T) {
	searcher := &stubSearcher{
		results: map[string][]model.Track{
			"Good Artist": {{Title: "Good", PreviewURL: "u"}},
		},
		errs: map[string]error{
			"Bad Artist": fmt.Errorf("network down"),
		},
	}
	r := NewResolver(searcher, 0)

	run(r, playlist(suggestion("Bad", "Artist"), suggestion("Good", "Artist")))

	if _, ok := r.Lookup("bad|artist"); ok {
		t.Error("failed lookup should not gain a cache entry")
	}
	if _, ok := r.Lookup("good|artist"); !ok {
		t.Error("batch should continue past a failed item")
	}
	if r.IsPending("bad|artist") {
		t.Error("pending flag not cleared on failure")
	}
}

func TestNoResultsIsSwallowed(t *testing.T) {
	r := NewResolver(&stubSearcher{results: map[string][]model.Track{}}, 0)
	run(r, playlist(suggestion("Obscure", "Nobody")))
	if _, ok := r.Lookup("obscure|nobody"); ok {
		t.Error("no results should leave no cache entry")
	}
}

func TestStaleBatchIsDiscarded(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]model.Track{
		"Old Artist": {{Title: "Old", PreviewURL: "stale"}},
	}}
	r := NewResolver(searcher, 0)

	token, items := r.beginBatch([]model.AIPlaylist{playlist(suggestion("Old", "Artist"))})

	// A newer batch supersedes the one above before it runs.
	r.beginBatch([]model.AIPlaylist{playlist(suggestion("New", "Artist"))})

	r.runBatch(context.Background(), token, items)

	if _, ok := r.Lookup("old|artist"); ok {
		t.Error("stale batch result must not be written to the cache")
	}
	if r.IsPending("old|artist") {
		t.Error("abandoned item left pending")
	}
}

func TestBestMatch(t *testing.T) {
	results := []model.Track{
		{Title: "Completely Different", PreviewURL: "1"},
		{Title: "Strobe (Club Mix)", PreviewURL: "2"},
	}
	if got := bestMatch("Strobe (Radio Edit)", results); got.PreviewURL != "2" {
		t.Errorf("containment match failed, got %+v", got)
	}

	// No containment match falls back to the first result.
	if got := bestMatch("Nothing Like It", results); got.PreviewURL != "1" {
		t.Errorf("fallback failed, got %+v", got)
	}

	if got := bestMatch("Anything", nil); got != nil {
		t.Errorf("empty results should yield nil, got %+v", got)
	}
}

func TestStripParenthetical(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Strobe (Radio Edit)", "strobe"},
		{"Strobe", "strobe"},
		{"One (Two) Three (Four)", "one three"},
		{"  Shouty TITLE  ", "shouty title"},
	}
	for _, tt := range tests {
		if got := stripParenthetical(tt.in); got != tt.want {
			t.Errorf("stripParenthetical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnrichTracks(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]model.Track{
		"Opus Eric Prydz": {{Title: "Opus", Artist: "Eric Prydz", PreviewURL: "u", AlbumArt: "art", Duration: 29}},
	}}
	r := NewResolver(searcher, 0)
	run(r, playlist(suggestion("Opus", "Eric Prydz")))

	in := []model.Track{
		{ID: "1", Title: "Opus", Artist: "Eric Prydz"},
		{ID: "2", Title: "Unknown", Artist: "Nobody", PreviewURL: "keep"},
	}
	out := r.EnrichTracks(in)

	if out[0].PreviewURL != "u" || out[0].Duration != 29 {
		t.Errorf("enrichment missing: %+v", out[0])
	}
	if out[1].PreviewURL != "keep" {
		t.Errorf("unrelated track modified: %+v", out[1])
	}
	if in[0].PreviewURL != "" {
		t.Error("input slice mutated")
	}
}

package preview

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jeromej12/mixos/core/identity"
	"github.com/jeromej12/mixos/logger"
	"github.com/jeromej12/mixos/model"
)

// Searcher is the track search capability previews are resolved against.
type Searcher interface {
	SearchTracks(ctx context.Context, query string) ([]model.Track, error)
}

// Entry is a resolved preview, cached by normalized track key for the
// lifetime of the process. Entries are never expired.
type Entry struct {
	PreviewURL string `json:"previewUrl"`
	AlbumArt   string `json:"albumArt,omitempty"`
	Duration   int    `json:"duration,omitempty"`
}

// Resolver resolves playable previews for AI-suggested tracks.
// Lookups run sequentially with a fixed pause between them, and a
// monotonic batch token makes results from superseded batches
// harmless: they are discarded before the cache write.
type Resolver struct {
	mu       sync.Mutex
	searcher Searcher
	cache    map[string]Entry
	pending  map[string]bool
	batch    uint64
	delay    time.Duration
}

func NewResolver(searcher Searcher, delay time.Duration) *Resolver {
	return &Resolver{
		searcher: searcher,
		cache:    make(map[string]Entry),
		pending:  make(map[string]bool),
		delay:    delay,
	}
}

type workItem struct {
	key    string
	title  string
	artist string
}

// Resolve starts a background batch for every track in the given
// playlists that has neither a cache entry nor a pending lookup.
// Calling Resolve again supersedes any batch still running.
func (r *Resolver) Resolve(ctx context.Context, playlists []model.AIPlaylist) {
	token, items := r.beginBatch(playlists)
	if len(items) == 0 {
		return
	}
	go r.runBatch(ctx, token, items)
}

// beginBatch bumps the batch token and computes the deduplicated
// working set.
func (r *Resolver) beginBatch(playlists []model.AIPlaylist) (uint64, []workItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.batch++
	token := r.batch

	var items []workItem
	seen := make(map[string]bool)
	for _, p := range playlists {
		for _, t := range p.Tracks {
			key := identity.NormalizeKey(t.Title, t.Artist)
			if seen[key] || r.pending[key] {
				continue
			}
			if _, ok := r.cache[key]; ok {
				continue
			}
			seen[key] = true
			r.pending[key] = true
			items = append(items, workItem{key: key, title: t.Title, artist: t.Artist})
		}
	}
	return token, items
}

func (r *Resolver) runBatch(ctx context.Context, token uint64, items []workItem) {
	for i, item := range items {
		if i > 0 && r.delay > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				r.abandon(items[i:])
				return
			}
		}
		if r.stale(token) {
			r.abandon(items[i:])
			return
		}
		r.resolveOne(ctx, token, item)
	}
}

// resolveOne performs a single lookup. Failures are swallowed; the key
// just never gains a cache entry.
func (r *Resolver) resolveOne(ctx context.Context, token uint64, item workItem) {
	results, err := r.searcher.SearchTracks(ctx, item.title+" "+item.artist)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, item.key)

	if token != r.batch {
		return
	}
	if err != nil {
		logger.Debug("preview lookup failed",
			logger.String("key", item.key),
			logger.ErrorField(err))
		return
	}
	match := bestMatch(item.title, results)
	if match == nil {
		return
	}

	r.cache[item.key] = Entry{
		PreviewURL: match.PreviewURL,
		AlbumArt:   match.AlbumArt,
		Duration:   match.Duration,
	}
}

func (r *Resolver) stale(token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return token != r.batch
}

func (r *Resolver) abandon(items []workItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		delete(r.pending, item.key)
	}
}

// Lookup returns the cached entry for a normalized key.
func (r *Resolver) Lookup(key string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache[key]
	return e, ok
}

// IsPending reports whether a lookup for the key is queued or in flight.
func (r *Resolver) IsPending(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending[key]
}

// EnrichTracks returns copies of the tracks with resolved preview data
// filled in where the cache has it.
func (r *Resolver) EnrichTracks(tracks []model.Track) []model.Track {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Track, len(tracks))
	copy(out, tracks)
	for i := range out {
		key := identity.TrackKey(&out[i])
		e, ok := r.cache[key]
		if !ok {
			continue
		}
		if out[i].PreviewURL == "" {
			out[i].PreviewURL = e.PreviewURL
		}
		if out[i].AlbumArt == "" {
			out[i].AlbumArt = e.AlbumArt
		}
		if out[i].Duration == 0 {
			out[i].Duration = e.Duration
		}
	}
	return out
}

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)

func stripParenthetical(title string) string {
	return strings.TrimSpace(strings.ToLower(parenthetical.ReplaceAllString(title, "")))
}

// bestMatch picks the first result whose stripped title contains or is
// contained by the stripped query title, falling back to the first
// result. Parenthetical suffixes like "(Radio Edit)" are ignored on
// both sides.
func bestMatch(queryTitle string, results []model.Track) *model.Track {
	if len(results) == 0 {
		return nil
	}
	want := stripParenthetical(queryTitle)
	for i := range results {
		got := stripParenthetical(results[i].Title)
		if got == "" || want == "" {
			continue
		}
		if strings.Contains(got, want) || strings.Contains(want, got) {
			return &results[i]
		}
	}
	return &results[0]
}

package playback

import (
	"fmt"
	"sync"

	"github.com/jeromej12/mixos/core/identity"
	"github.com/jeromej12/mixos/logger"
	"github.com/jeromej12/mixos/model"
)

// State is the shared now-playing snapshot. PlayingKey is empty when
// nothing is playing.
type State struct {
	PlayingKey string  `json:"playingKey"`
	Source     string  `json:"source,omitempty"`
	Progress   float64 `json:"progress"`
}

// Coordinator enforces at most one active preview across every track
// listing. Local tracks stream from their library audio endpoint,
// everything else plays its resolved preview URL.
type Coordinator struct {
	mu    sync.Mutex
	state State
	subs  map[chan State]struct{}
}

func NewCoordinator() *Coordinator {
	return &Coordinator{subs: make(map[chan State]struct{})}
}

// PlayPause toggles playback for the given track. Calling it for the
// track that is already playing pauses it; any other playable track
// replaces the current one. Tracks with no audio source are ignored.
// The returned bool reports whether the state changed.
func (c *Coordinator) PlayPause(track model.Track) (State, bool) {
	key := identity.TrackKey(&track)

	c.mu.Lock()
	defer c.mu.Unlock()

	if key == c.state.PlayingKey {
		c.state = State{}
		c.notify()
		return c.state, true
	}

	source := audioSource(track)
	if source == "" {
		return c.state, false
	}

	c.state = State{PlayingKey: key, Source: source, Progress: 0}
	logger.Debug("playback switched",
		logger.String("key", key),
		logger.String("source", source))
	c.notify()
	return c.state, true
}

// SetProgress records playback progress, clamped to [0, 1].
func (c *Coordinator) SetProgress(fraction float64) State {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.PlayingKey == "" {
		return c.state
	}
	c.state.Progress = fraction
	c.notify()
	return c.state
}

// Finished handles natural end-of-audio: clears the playing key and
// resets progress.
func (c *Coordinator) Finished() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{}
	c.notify()
	return c.state
}

// State returns the current now-playing snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers a listener for state changes. The returned
// cancel function must be called when the listener goes away.
func (c *Coordinator) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.subs, ch)
		c.mu.Unlock()
	}
	return ch, cancel
}

// notify fans the current state out to subscribers without blocking.
// Caller must hold the lock.
func (c *Coordinator) notify() {
	for ch := range c.subs {
		select {
		case ch <- c.state:
		default:
		}
	}
}

func audioSource(track model.Track) string {
	if track.Source == model.SourceLocal {
		return fmt.Sprintf("/api/tracks/%s/audio", track.ID)
	}
	return track.PreviewURL
}

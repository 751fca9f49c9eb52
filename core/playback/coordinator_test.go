package playback

import (
	"testing"

	"github.com/jeromej12/mixos/model"
)

func localTrack(id, title string) model.Track {
	return model.Track{ID: id, Title: title, Artist: "Artist", Source: model.SourceLocal}
}

func previewTrack(id, title, url string) model.Track {
	return model.Track{ID: id, Title: title, Artist: "Artist", Source: model.SourceSuggested, PreviewURL: url}
}

func TestPlayThenPause(t *testing.T) {
	c := NewCoordinator()

	st, changed := c.PlayPause(previewTrack("1", "Strobe", "https://p/1"))
	if !changed {
		t.Fatal("expected state change")
	}
	if st.PlayingKey != "strobe|artist" || st.Source != "https://p/1" {
		t.Errorf("state = %+v", st)
	}

	// Same track toggles off.
	st, changed = c.PlayPause(previewTrack("1", "Strobe", "https://p/1"))
	if !changed || st.PlayingKey != "" {
		t.Errorf("toggle off failed: %+v", st)
	}
}

func TestSwitchingTracksReplacesPlayback(t *testing.T) {
	c := NewCoordinator()

	c.PlayPause(previewTrack("1", "A", "https://p/a"))
	st, changed := c.PlayPause(previewTrack("2", "B", "https://p/b"))
	if !changed {
		t.Fatal("expected state change")
	}
	if st.PlayingKey != "b|artist" {
		t.Errorf("playingKey = %q, want b|artist", st.PlayingKey)
	}
	if st.Progress != 0 {
		t.Errorf("progress not reset: %v", st.Progress)
	}
}

func TestLocalTrackUsesLibraryAudio(t *testing.T) {
	c := NewCoordinator()
	st, _ := c.PlayPause(localTrack("abc", "Mine"))
	if st.Source != "/api/tracks/abc/audio" {
		t.Errorf("source = %q", st.Source)
	}
}

func TestUnplayableTrackIsNoOp(t *testing.T) {
	c := NewCoordinator()
	c.PlayPause(previewTrack("1", "A", "https://p/a"))

	st, changed := c.PlayPause(model.Track{ID: "2", Title: "NoPreview", Artist: "Artist", Source: model.SourceSearched})
	if changed {
		t.Error("unplayable track should not change state")
	}
	if st.PlayingKey != "a|artist" {
		t.Errorf("previous playback lost: %+v", st)
	}
}

func TestProgressAndFinish(t *testing.T) {
	c := NewCoordinator()
	c.PlayPause(previewTrack("1", "A", "https://p/a"))

	if st := c.SetProgress(0.5); st.Progress != 0.5 {
		t.Errorf("progress = %v, want 0.5", st.Progress)
	}
	if st := c.SetProgress(2); st.Progress != 1 {
		t.Errorf("progress = %v, want clamped to 1", st.Progress)
	}
	if st := c.SetProgress(-1); st.Progress != 0 {
		t.Errorf("progress = %v, want clamped to 0", st.Progress)
	}

	if st := c.Finished(); st.PlayingKey != "" || st.Progress != 0 {
		t.Errorf("finish did not reset: %+v", st)
	}

	// Progress on idle state is ignored.
	if st := c.SetProgress(0.3); st.Progress != 0 {
		t.Errorf("idle progress should stay 0: %+v", st)
	}
}

func TestSubscribe(t *testing.T) {
	c := NewCoordinator()
	ch, cancel := c.Subscribe()
	defer cancel()

	c.PlayPause(previewTrack("1", "A", "https://p/a"))

	select {
	case st := <-ch:
		if st.PlayingKey != "a|artist" {
			t.Errorf("notified state = %+v", st)
		}
	default:
		t.Fatal("no notification delivered")
	}
}

func TestAtMostOnePlaying(t *testing.T) {
	c := NewCoordinator()
	tracks := []model.Track{
		previewTrack("1", "A", "u1"),
		previewTrack("2", "B", "u2"),
		localTrack("3", "C"),
	}
	for _, tr := range tracks {
		c.PlayPause(tr)
		if st := c.State(); st.PlayingKey == "" {
			t.Fatalf("expected a playing key after PlayPause(%s)", tr.Title)
		}
	}
	// Only the last one is active.
	if st := c.State(); st.PlayingKey != "c|artist" {
		t.Errorf("playingKey = %q, want c|artist", st.PlayingKey)
	}
}

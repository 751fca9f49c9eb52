package analyze

import (
	"context"
	"fmt"
	"sync"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jeromej12/mixos/logger"
	"github.com/jeromej12/mixos/model"
)

// Analyzer estimates BPM, key and energy for a track using Spotify
// audio features. Callers must fall back to the unanalyzed track when
// Analyze fails; analysis is always best-effort.
type Analyzer struct {
	clientID     string
	clientSecret string

	mu     sync.Mutex
	client *spotify.Client
}

func NewAnalyzer(clientID, clientSecret string) *Analyzer {
	return &Analyzer{clientID: clientID, clientSecret: clientSecret}
}

// Enabled reports whether credentials were configured.
func (a *Analyzer) Enabled() bool {
	return a.clientID != "" && a.clientSecret != ""
}

// Analyze fills in missing BPM, key and energy on a copy of the track.
// Fields that already carry a value are left alone.
func (a *Analyzer) Analyze(ctx context.Context, track model.Track) (model.Track, error) {
	if !a.Enabled() {
		return track, nil
	}
	if track.BPM != nil && track.Key != "" && track.Energy != nil {
		return track, nil
	}

	client, err := a.ensureClient(ctx)
	if err != nil {
		return track, err
	}

	query := track.Title + " " + track.Artist
	results, err := client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return track, fmt.Errorf("spotify search failed: %w", err)
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return track, fmt.Errorf("no spotify match for %q", query)
	}
	match := results.Tracks.Tracks[0]

	features, err := client.GetAudioFeatures(ctx, match.ID)
	if err != nil {
		return track, fmt.Errorf("audio features lookup failed: %w", err)
	}
	if len(features) == 0 || features[0] == nil {
		return track, fmt.Errorf("no audio features for %q", query)
	}
	f := features[0]

	if track.BPM == nil {
		bpm := NormalizeBPM(float64(f.Tempo))
		track.BPM = &bpm
	}
	if track.Key == "" {
		track.Key = CamelotKey(int(f.Key), int(f.Mode))
	}
	if track.Energy == nil {
		energy := EnergyScale(float64(f.Energy))
		track.Energy = &energy
	}

	logger.Debug("analyzed track",
		logger.String("title", track.Title),
		logger.String("artist", track.Artist),
		logger.String("key", track.Key))
	return track, nil
}

func (a *Analyzer) ensureClient(ctx context.Context) (*spotify.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}

	config := &clientcredentials.Config{
		ClientID:     a.clientID,
		ClientSecret: a.clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify auth failed: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	a.client = spotify.New(httpClient)
	return a.client, nil
}

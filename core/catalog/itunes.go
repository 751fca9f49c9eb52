package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeromej12/mixos/model"
)

const defaultSearchLimit = 10

// Client searches the iTunes catalog for tracks with playable previews.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SearchTracks looks up songs matching the query.
func (c *Client) SearchTracks(ctx context.Context, query string) ([]model.Track, error) {
	params := url.Values{}
	params.Set("term", query)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", fmt.Sprintf("%d", defaultSearchLimit))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var searchResp model.ITunesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	tracks := make([]model.Track, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		tracks = append(tracks, resultToTrack(r))
	}
	return tracks, nil
}

func resultToTrack(r model.ITunesResult) model.Track {
	return model.Track{
		ID:         fmt.Sprintf("itunes-%d", r.TrackID),
		Title:      r.TrackName,
		Artist:     r.ArtistName,
		Album:      r.CollectionName,
		AlbumArt:   upscaleArtwork(r.ArtworkURL100),
		Genre:      r.PrimaryGenreName,
		Duration:   int(r.TrackTimeMillis / 1000),
		Source:     model.SourceSearched,
		PreviewURL: r.PreviewURL,
	}
}

// upscaleArtwork swaps the 100x100 thumbnail for the 300x300 variant
// the artwork CDN also serves.
func upscaleArtwork(artworkURL string) string {
	return strings.Replace(artworkURL, "100x100", "300x300", 1)
}

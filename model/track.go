package model

import "time"

// TrackSource records where a track was first materialized.
// It is assigned at creation and never mutated afterwards.
type TrackSource string

const (
	SourceLocal     TrackSource = "local"
	SourceSearched  TrackSource = "searched"
	SourceSuggested TrackSource = "ai-suggested"
)

// Track represents one piece of music, from any origin.
// BPM and Energy are pointers so that a legitimate zero value is
// distinguishable from "not analyzed yet".
type Track struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Artist     string      `json:"artist"`
	Album      string      `json:"album,omitempty"`
	AlbumArt   string      `json:"albumArt,omitempty"`
	Genre      string      `json:"genre,omitempty"`
	BPM        *float64    `json:"bpm,omitempty"`
	Key        string      `json:"key,omitempty"` // Camelot notation (e.g., "8A", "5B")
	Energy     *float64    `json:"energy,omitempty"`
	Duration   int         `json:"duration"` // seconds; 0 means unknown/not yet resolved
	Source     TrackSource `json:"source"`
	PreviewURL string      `json:"previewUrl,omitempty"`
	FilePath   string      `json:"filePath,omitempty"`  // local uploads only
	Position   string      `json:"position,omitempty"`  // AI set-position role (opener, build, peak, ...)
	Reasoning  string      `json:"reasoning,omitempty"` // AI justification for inclusion
}

// Setlist is the single user-curated ordered set of tracks being built.
// TotalDuration is derived from Tracks and recomputed on every mutation.
type Setlist struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Tracks        []Track   `json:"tracks"`
	TotalDuration int       `json:"totalDuration"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SearchResult wraps catalog search output.
type SearchResult struct {
	Tracks []Track `json:"tracks"`
	Total  int     `json:"total"`
}

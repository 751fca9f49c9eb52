package model

// AITrackSuggestion is one track as returned by the model, before it is
// converted into a Track. Numeric fields are pointers because the model
// may omit any of them and zero is a meaningful value.
type AITrackSuggestion struct {
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	BPM       *float64 `json:"bpm,omitempty"`
	Key       string   `json:"key,omitempty"`
	Energy    *float64 `json:"energy,omitempty"`
	Position  string   `json:"position,omitempty"`
	Reasoning string   `json:"reasoning,omitempty"`
}

// AIPlaylist is one generated playlist candidate from the model.
type AIPlaylist struct {
	Name                  string              `json:"name"`
	Description           string              `json:"description"`
	BPMRange              string              `json:"bpm_range,omitempty"`
	EnergyProgression     string              `json:"energy_progression,omitempty"`
	RecommendedTrackCount int                 `json:"recommended_track_count,omitempty"`
	TotalDurationEstimate string              `json:"total_duration_estimate,omitempty"`
	Genres                []string            `json:"genres,omitempty"`
	KeyCharacteristics    []string            `json:"key_characteristics,omitempty"`
	Tracks                []AITrackSuggestion `json:"tracks"`
	TransitionNotes       string              `json:"transition_notes,omitempty"`
}

// AIResponse is the top-level JSON document the model is instructed to emit.
type AIResponse struct {
	Playlists []AIPlaylist `json:"playlists"`
}

// GenerateRequest carries the user's free-form setlist brief.
type GenerateRequest struct {
	Prompt                string `json:"prompt"`
	Count                 int    `json:"count,omitempty"`
	TargetDurationMinutes int    `json:"targetDurationMinutes,omitempty"`
}

// RefineRequest carries follow-up guidance applied on top of the current
// playlist version.
type RefineRequest struct {
	Prompt string `json:"prompt"`
}

// PlaylistVersion is one snapshot in the refinement history. Label is
// "Original" for the seed generation and the literal refinement
// instruction for every version after it.
type PlaylistVersion struct {
	Playlists []AIPlaylist `json:"playlists"`
	Label     string       `json:"label"`
}

// VersionsResponse reports the stored history and the cursor into it.
type VersionsResponse struct {
	Versions []PlaylistVersion `json:"versions"`
	Current  int               `json:"current"`
}

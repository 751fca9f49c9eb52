package identity

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/jeromej12/mixos/model"
)

// NormalizeKey folds a (title, artist) pair into the canonical dedup key.
// Two tracks with equal keys are the same musical track no matter which
// source produced them or what ID they carry.
func NormalizeKey(title, artist string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(artist))
}

// TrackKey is NormalizeKey applied to a track's own fields.
func TrackKey(t *model.Track) string {
	return NormalizeKey(t.Title, t.Artist)
}

// ConvertSuggestion turns an AI suggestion into a real Track. The track
// gets a fresh ID and an unresolved duration of zero; preview resolution
// fills the rest in later.
func ConvertSuggestion(s model.AITrackSuggestion) model.Track {
	return model.Track{
		ID:        uuid.NewString(),
		Title:     s.Title,
		Artist:    s.Artist,
		BPM:       s.BPM,
		Key:       s.Key,
		Energy:    s.Energy,
		Duration:  0,
		Source:    model.SourceSuggested,
		Position:  s.Position,
		Reasoning: s.Reasoning,
	}
}

// IsPresentIn reports whether any track in the collection shares the
// candidate's normalized key.
func IsPresentIn(tracks []model.Track, candidate *model.Track) bool {
	key := TrackKey(candidate)
	for i := range tracks {
		if TrackKey(&tracks[i]) == key {
			return true
		}
	}
	return false
}

// AverageBPM is the mean over tracks that carry a BPM value, rounded to
// the nearest integer. A BPM of zero still counts as present.
func AverageBPM(tracks []model.Track) int {
	var sum float64
	var n int
	for i := range tracks {
		if tracks[i].BPM != nil {
			sum += *tracks[i].BPM
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// AverageEnergy is the mean over tracks that carry an energy value,
// rounded to one decimal place.
func AverageEnergy(tracks []model.Track) float64 {
	var sum float64
	var n int
	for i := range tracks {
		if tracks[i].Energy != nil {
			sum += *tracks[i].Energy
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*10) / 10
}

// TotalDuration sums track durations in seconds.
func TotalDuration(tracks []model.Track) int {
	var total int
	for i := range tracks {
		total += tracks[i].Duration
	}
	return total
}

// FormatDuration renders seconds as "H:MM:SS" or "M:SS".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

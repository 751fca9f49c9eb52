package library

import (
	"path/filepath"
	"regexp"
	"strings"
)

// junkSuffix matches bracketed or parenthesized tail segments such as
// "[Official Video]" or "(Lyric Video)" that rippers append to names.
var junkSuffix = regexp.MustCompile(`\s*[\[(][^\])]*[\])]\s*$`)

// ParseFilename extracts (artist, title) from an audio file name using
// the common "Artist - Title" convention. Without a separator the whole
// name becomes the title and the artist is unknown.
func ParseFilename(name string) (artist, title string) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	for {
		scrubbed := junkSuffix.ReplaceAllString(base, "")
		if scrubbed == base {
			break
		}
		base = scrubbed
	}
	base = strings.TrimSpace(base)

	if idx := strings.Index(base, " - "); idx >= 0 {
		artist = strings.TrimSpace(base[:idx])
		title = strings.TrimSpace(base[idx+3:])
		if artist != "" && title != "" {
			return artist, title
		}
	}
	return "Unknown Artist", base
}

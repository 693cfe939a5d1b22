package tracklist

import (
	"regexp"
	"strings"
)

// Separators split a single "Artist - Title" value, tried in order
var Separators = []string{" - ", " — ", " – ", "-", "—", "–", ":", "|", "·"}

var quotedTitle = regexp.MustCompile(`^(.*?)["“”](.+?)["“”]$`)

// ParseArtistTitle splits a combined value into artist and title. Values
// that cannot be split are returned as a bare title.
func ParseArtistTitle(value string) (artist, title string) {
	value = strings.TrimSpace(value)

	for _, sep := range Separators {
		if !strings.Contains(value, sep) {
			continue
		}
		parts := strings.SplitN(value, sep, 2)
		a, t := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if a != "" && t != "" {
			return a, t
		}
	}

	// Artist "Title"
	if m := quotedTitle.FindStringSubmatch(value); m != nil {
		a, t := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if a != "" && t != "" {
			return a, t
		}
	}

	return "", value
}

func hasSeparator(value string) bool {
	for _, sep := range Separators {
		if strings.Contains(value, sep) {
			return true
		}
	}
	return false
}

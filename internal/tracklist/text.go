package tracklist

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"unicode"

	"github.com/ytget/musicdl/internal/model"
	"github.com/ytget/musicdl/internal/platform"
)

// ErrNoEntries is returned when a text file holds nothing to download
var ErrNoEntries = errors.New("no valid entries found in file")

// TextList is the content of a plain text track list
type TextList struct {
	Path      string
	Encoding  string
	Tracks    []*model.Track
	Playlists []string // playlist URLs that still need expanding
	Warnings  []string
}

func readTextFile(path string) (string, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", "", fmt.Errorf("path is not a file: %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read text file: %w", err)
	}
	enc := DetectEncoding(raw)
	text, err := Decode(raw, enc)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode text file: %w", err)
	}
	return text, enc, nil
}

func isComment(line string) bool {
	return line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

func looksLikeURL(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// titleFromURL returns an explicit "title" query parameter if present
func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(u.Query().Get("title"))
}

// hasText reports whether s holds at least one letter or digit
func hasText(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

// LoadTextFile reads one entry per line. YouTube video URLs become URL
// tracks, playlist URLs are collected for expansion and any other line is
// parsed as "Artist - Title". Blank lines and lines starting with "#" or
// "//" are ignored. Repeated entries are skipped with a warning.
func LoadTextFile(path string) (*TextList, error) {
	text, enc, err := readTextFile(path)
	if err != nil {
		return nil, err
	}

	list := &TextList{Path: path, Encoding: enc}
	seen := make(map[string]struct{})
	warn := func(lineNum int, format string, args ...any) {
		list.Warnings = append(list.Warnings, fmt.Sprintf("Line %d: ", lineNum)+fmt.Sprintf(format, args...))
	}

	for i, line := range strings.Split(strings.TrimSpace(text), "\n") {
		lineNum := i + 1
		line = strings.TrimSpace(line)
		if isComment(line) {
			continue
		}

		var key string
		var track *model.Track

		switch {
		case platform.IsPlaylistURL(line):
			id := platform.ExtractPlaylistID(line)
			if _, dup := seen["list:"+id]; dup {
				warn(lineNum, "Duplicate playlist skipped: %s", line)
				continue
			}
			seen["list:"+id] = struct{}{}
			list.Playlists = append(list.Playlists, fmt.Sprintf(platform.YouTubePlaylistURLTemplate, id))
			continue

		case platform.IsYouTubeURL(line):
			normalized, err := platform.NormalizeVideoURL(line)
			if err != nil {
				warn(lineNum, "Could not normalize URL: %s", line)
				continue
			}
			key = normalized
			track = model.NewURLTrack(normalized, titleFromURL(line))

		case looksLikeURL(line):
			warn(lineNum, "Not a valid YouTube URL: %s", line)
			continue

		default:
			artist, title := ParseArtistTitle(line)
			track = model.NewTrack(artist, title, "")
			if !hasText(track.Query) {
				warn(lineNum, "No artist or title: %s", line)
				continue
			}
			key = strings.ToLower(track.Query)
		}

		if _, dup := seen[key]; dup {
			warn(lineNum, "Duplicate entry skipped: %s", line)
			continue
		}
		seen[key] = struct{}{}
		track.Line = lineNum
		list.Tracks = append(list.Tracks, track)
	}

	if len(list.Tracks) == 0 && len(list.Playlists) == 0 {
		return list, fmt.Errorf("%w: %s", ErrNoEntries, path)
	}
	return list, nil
}

// ValidateTextFile counts usable entries without building tracks. It returns
// the number of valid entries, the number of lines and one message per
// rejected line.
func ValidateTextFile(path string) (valid, total int, errs []string) {
	text, _, err := readTextFile(path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, 0, []string{"File not found"}
		}
		return 0, 0, []string{err.Error()}
	}

	for i, line := range strings.Split(strings.TrimSpace(text), "\n") {
		total++
		line = strings.TrimSpace(line)
		if isComment(line) {
			continue
		}
		switch {
		case platform.IsYouTubeURL(line):
			if platform.ExtractVideoID(line) == "" && !platform.IsPlaylistURL(line) {
				errs = append(errs, fmt.Sprintf("Line %d: Invalid YouTube URL", i+1))
				continue
			}
			valid++
		case looksLikeURL(line):
			errs = append(errs, fmt.Sprintf("Line %d: Invalid YouTube URL", i+1))
		case !hasText(line):
			errs = append(errs, fmt.Sprintf("Line %d: No artist or title", i+1))
		default:
			valid++
		}
	}
	return valid, total, errs
}

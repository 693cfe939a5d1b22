package platform

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// URL templates
const (
	YouTubeVideoURLTemplate    = "https://www.youtube.com/watch?v=%s"
	YouTubePlaylistURLTemplate = "https://www.youtube.com/playlist?list=%s"
)

// URL parameters
const (
	VideoParam    = "v"
	PlaylistParam = "list"
)

var (
	youTubeHosts = map[string]struct{}{
		"youtube.com":       {},
		"www.youtube.com":   {},
		"m.youtube.com":     {},
		"music.youtube.com": {},
		"youtu.be":          {},
		"www.youtu.be":      {},
	}

	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	// Path prefixes that carry the video ID as the next segment
	videoPathPrefixes = []string{"/embed/", "/shorts/", "/live/", "/v/"}
)

func parseYouTubeURL(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if _, ok := youTubeHosts[strings.ToLower(u.Hostname())]; !ok {
		return nil, false
	}
	return u, true
}

// IsYouTubeURL reports whether raw points at a YouTube host
func IsYouTubeURL(raw string) bool {
	_, ok := parseYouTubeURL(raw)
	return ok
}

// ExtractVideoID returns the 11-character video ID or "" if raw has none
func ExtractVideoID(raw string) string {
	u, ok := parseYouTubeURL(raw)
	if !ok {
		return ""
	}

	var id string
	if strings.Contains(strings.ToLower(u.Hostname()), "youtu.be") {
		id = strings.Trim(u.Path, "/")
	} else if v := u.Query().Get(VideoParam); v != "" {
		id = v
	} else {
		for _, prefix := range videoPathPrefixes {
			if strings.HasPrefix(u.Path, prefix) {
				id = strings.SplitN(strings.TrimPrefix(u.Path, prefix), "/", 2)[0]
				break
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return ""
	}
	return id
}

// NormalizeVideoURL rewrites any supported video URL to the canonical watch form
func NormalizeVideoURL(raw string) (string, error) {
	id := ExtractVideoID(raw)
	if id == "" {
		return "", fmt.Errorf("not a YouTube video URL: %s", raw)
	}
	return fmt.Sprintf(YouTubeVideoURLTemplate, id), nil
}

// ExtractPlaylistID returns the "list" parameter of a YouTube URL
func ExtractPlaylistID(raw string) string {
	u, ok := parseYouTubeURL(raw)
	if !ok {
		return ""
	}
	return u.Query().Get(PlaylistParam)
}

// IsPlaylistURL reports whether raw is a playlist page rather than a single
// video. A watch URL that also carries a list parameter is treated as a video.
func IsPlaylistURL(raw string) bool {
	if ExtractPlaylistID(raw) == "" {
		return false
	}
	return ExtractVideoID(raw) == ""
}

package model

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TrackIDPrefix prefixes every generated track ID
const TrackIDPrefix = "track-"

// PlaceholderTitle is used for URL entries whose title is not known yet
const PlaceholderTitle = "YouTube Video"

// Track is a single entry read from a CSV or text list
type Track struct {
	ID         string
	Artist     string
	Title      string
	Album      string
	Query      string            // search query sent to YouTube
	TargetStub string            // filename without extension
	SourceURL  string            // URL given in the input list, if any
	URL        string            // resolved video URL
	VideoTitle string            // title reported by YouTube for URL
	Line       int               // 1-based row or line number in the input
	Status     TrackStatus       // current lifecycle status
	ResultPath string            // path to the saved audio file
	Error      string            // last error message if any
	Duration   float64           // seconds, 0 if unknown
	FileSize   int64             // bytes, 0 if unknown
	Progress   float64           // 0.0 to 1.0
	Speed      string            // human readable speed (e.g., "1.2 MB/s")
	ETASec     int               // ETA in seconds, -1 if unknown
	Format     map[string]string // ext, acodec and abr of the saved file
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewTrack builds a pending search track. The query is "artist - title" with
// dangling separators trimmed, so a title-only row searches for the title.
func NewTrack(artist, title, album string) *Track {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)
	query := BuildQuery(artist, title)
	return &Track{
		ID:         NewTrackID(),
		Artist:     artist,
		Title:      title,
		Album:      strings.TrimSpace(album),
		Query:      query,
		TargetStub: query,
		Status:     TrackStatusPending,
		ETASec:     -1,
	}
}

// NewURLTrack builds a pending track that already points at a video
func NewURLTrack(url, title string) *Track {
	if strings.TrimSpace(title) == "" {
		title = PlaceholderTitle
	}
	t := NewTrack("", title, "")
	t.SourceURL = url
	t.URL = url
	return t
}

// BuildQuery joins artist and title into a search query
func BuildQuery(artist, title string) string {
	return strings.Trim(fmt.Sprintf("%s - %s", artist, title), " -")
}

// NewTrackID returns a time-ordered unique track ID
func NewTrackID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TrackIDPrefix+"%d", time.Now().UnixNano())
	}
	return TrackIDPrefix + id.String()
}

// DisplayName returns a human-readable track name
func (t *Track) DisplayName() string {
	if t.Artist != "" && t.Title != "" {
		return t.Artist + " - " + t.Title
	}
	if t.Title != "" {
		return t.Title
	}
	if t.Artist != "" {
		return t.Artist
	}
	return "Unknown"
}

// HasPlaceholderTitle reports whether the title still needs to be resolved
func (t *Track) HasPlaceholderTitle() bool {
	return t.Artist == "" && (t.Title == "" || t.Title == PlaceholderTitle)
}

// Result returns the download result view of the track
func (t *Track) Result() DownloadResult {
	return DownloadResult{
		Success:      t.Status.IsSuccess(),
		FilePath:     t.ResultPath,
		ErrorMessage: t.Error,
		Duration:     t.Duration,
		FileSize:     t.FileSize,
		Format:       maps.Clone(t.Format),
	}
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (t *Track) GetETAString() string {
	if t.ETASec <= 0 {
		return "—"
	}

	hours := t.ETASec / 3600
	minutes := (t.ETASec % 3600) / 60
	seconds := t.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Clone returns a copy that is safe to hand to another goroutine
func (t *Track) Clone() *Track {
	cp := *t
	cp.Format = maps.Clone(t.Format)
	return &cp
}

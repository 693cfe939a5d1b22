package model

import "time"

// PlaylistEntry is a single video listed in a playlist
type PlaylistEntry struct {
	VideoID string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// Playlist is a YouTube playlist expanded into individual videos
type Playlist struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	URL       string           `json:"url"`
	Entries   []*PlaylistEntry `json:"entries"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewPlaylist creates a new playlist instance
func NewPlaylist(url string) *Playlist {
	return &Playlist{
		URL:       url,
		Entries:   make([]*PlaylistEntry, 0),
		CreatedAt: time.Now(),
	}
}

// AddEntry appends an entry unless a video with the same ID is already listed
func (p *Playlist) AddEntry(entry *PlaylistEntry) bool {
	for _, e := range p.Entries {
		if e.VideoID == entry.VideoID {
			return false
		}
	}
	p.Entries = append(p.Entries, entry)
	return true
}

// Len returns the number of entries
func (p *Playlist) Len() int {
	return len(p.Entries)
}

// Tracks converts every entry into a pending URL track
func (p *Playlist) Tracks() []*Track {
	tracks := make([]*Track, 0, len(p.Entries))
	for _, e := range p.Entries {
		tracks = append(tracks, NewURLTrack(e.URL, e.Title))
	}
	return tracks
}

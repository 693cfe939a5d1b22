package platform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ytget/musicdl/internal/model"
)

// Timeout constants
const (
	DefaultPlaylistParseTimeout = 60 * time.Second
)

// PlaylistParserService expands YouTube playlist URLs into video entries
type PlaylistParserService struct {
	timeout time.Duration
	fetcher PlaylistItemsFetcher
}

// NewPlaylistParserService creates a new playlist parser service
func NewPlaylistParserService() *PlaylistParserService {
	return &PlaylistParserService{
		timeout: DefaultPlaylistParseTimeout,
		fetcher: YTDLPItemsFetcher{},
	}
}

// SetTimeout sets the timeout for playlist parsing
func (p *PlaylistParserService) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// SetFetcher replaces the item fetcher
func (p *PlaylistParserService) SetFetcher(fetcher PlaylistItemsFetcher) {
	p.fetcher = fetcher
}

// ParsePlaylist parses a YouTube playlist URL and returns its entries.
// Duplicate videos are listed once.
func (p *PlaylistParserService) ParsePlaylist(ctx context.Context, url string) (*model.Playlist, error) {
	playlistID := ExtractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("invalid playlist URL format: %s", url)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	playlist := model.NewPlaylist(url)
	playlist.ID = playlistID

	entries, err := p.fetcher.FetchItems(ctx, playlistID)
	if err != nil {
		playlist.Error = err.Error()
		return playlist, fmt.Errorf("playlist %s: %w", playlistID, err)
	}

	for _, e := range entries {
		playlist.AddEntry(e)
	}

	if playlist.Len() > 0 {
		playlist.Title = playlistTitle(playlist.Entries)
	} else {
		playlist.Title = fmt.Sprintf("Playlist %s", playlistID)
	}

	return playlist, nil
}

// ExpandTracks parses every playlist URL and returns the tracks of all of
// them in order. Playlists that fail are skipped and reported as warnings.
func (p *PlaylistParserService) ExpandTracks(ctx context.Context, urls []string) ([]*model.Track, []string) {
	var tracks []*model.Track
	var warnings []string
	for _, u := range urls {
		playlist, err := p.ParsePlaylist(ctx, u)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Playlist %s: %v", u, err))
			continue
		}
		if playlist.Len() == 0 {
			warnings = append(warnings, fmt.Sprintf("%s is empty: %s", playlist.Title, u))
			continue
		}
		slog.Info("playlist expanded", "playlist", playlist.Title, "id", playlist.ID, "tracks", playlist.Len())
		tracks = append(tracks, playlist.Tracks()...)
	}
	return tracks, warnings
}

package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/ytget/musicdl/internal/model"
	"github.com/ytget/ytdlp/v2"
)

// Playlist title constants
const (
	DefaultPlaylistName = "Unknown Playlist"
	MinPrefixLength     = 10
	PlaylistSuffix      = " Playlist"
)

// PlaylistItemsFetcher lists the videos of a playlist by its ID
type PlaylistItemsFetcher interface {
	FetchItems(ctx context.Context, playlistID string) ([]*model.PlaylistEntry, error)
}

// YTDLPItemsFetcher fetches playlist items with the ytdlp library
type YTDLPItemsFetcher struct{}

// FetchItems returns every item of the playlist
func (YTDLPItemsFetcher) FetchItems(ctx context.Context, playlistID string) ([]*model.PlaylistEntry, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	entries := make([]*model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		entries = append(entries, &model.PlaylistEntry{
			VideoID: it.VideoID,
			Title:   strings.TrimSpace(it.Title),
			URL:     fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	return entries, nil
}

// playlistTitle derives a title from the common prefix of the first entries
func playlistTitle(entries []*model.PlaylistEntry) string {
	if len(entries) == 0 {
		return DefaultPlaylistName
	}
	if len(entries) > 1 {
		commonPrefix := findCommonPrefix(entries[0].Title, entries[1].Title)
		if len(commonPrefix) > MinPrefixLength {
			return strings.TrimSpace(commonPrefix) + PlaylistSuffix
		}
	}
	if entries[0].Title == "" {
		return DefaultPlaylistName
	}
	return entries[0].Title + PlaylistSuffix
}

// findCommonPrefix finds the common prefix between two strings
func findCommonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}

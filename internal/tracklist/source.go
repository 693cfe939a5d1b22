package tracklist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ytget/musicdl/internal/model"
	"github.com/ytget/musicdl/internal/platform"
)

// ErrInvalidURL is returned for URL sources that are not YouTube links
var ErrInvalidURL = errors.New("invalid YouTube URL")

// SourceKind selects how a source string is read
type SourceKind int

const (
	SourceCSV SourceKind = iota
	SourceURL
	SourceText
)

// String returns the flag name of the kind
func (k SourceKind) String() string {
	switch k {
	case SourceURL:
		return "url"
	case SourceText:
		return "text"
	default:
		return "csv"
	}
}

// PlaylistExpander turns playlist URLs into URL tracks
type PlaylistExpander interface {
	ExpandTracks(ctx context.Context, urls []string) ([]*model.Track, []string)
}

// Loaded is the result of reading a source
type Loaded struct {
	Detection *Detection // set for CSV sources
	Tracks    []*model.Track
	Warnings  []string

	// ValidLines and TotalLines are set for text sources
	ValidLines int
	TotalLines int
}

// LoadSource reads tracks from a CSV file, a text file or a single URL.
// Playlists are expanded when playlists is not nil, otherwise they are
// reported as warnings.
func LoadSource(ctx context.Context, kind SourceKind, target string, p *Parser, playlists PlaylistExpander) (*Loaded, error) {
	target = strings.TrimSpace(target)
	switch kind {
	case SourceURL:
		if !platform.IsYouTubeURL(target) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidURL, target)
		}
		if platform.IsPlaylistURL(target) {
			if playlists == nil {
				return &Loaded{Warnings: []string{fmt.Sprintf("Playlist expansion unavailable: %s", target)}}, nil
			}
			tracks, warnings := playlists.ExpandTracks(ctx, []string{target})
			if len(tracks) == 0 && len(warnings) > 0 {
				return nil, errors.New(warnings[0])
			}
			return &Loaded{Tracks: tracks, Warnings: warnings}, nil
		}
		url, err := platform.NormalizeVideoURL(target)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
		return &Loaded{Tracks: []*model.Track{model.NewURLTrack(url, "")}}, nil

	case SourceText:
		path, err := sourceFile(target)
		if err != nil {
			return nil, err
		}
		valid, total, _ := ValidateTextFile(path)
		list, err := LoadTextFile(path)
		if err != nil {
			return nil, err
		}
		out := &Loaded{Tracks: list.Tracks, Warnings: list.Warnings, ValidLines: valid, TotalLines: total}
		if len(list.Playlists) > 0 {
			if playlists == nil {
				out.Warnings = append(out.Warnings, fmt.Sprintf("%d playlist URLs skipped", len(list.Playlists)))
			} else {
				expanded, w := playlists.ExpandTracks(ctx, list.Playlists)
				out.Tracks = append(out.Tracks, expanded...)
				out.Warnings = append(out.Warnings, w...)
			}
		}
		return out, nil

	default:
		path, err := sourceFile(target)
		if err != nil {
			return nil, err
		}
		if p == nil {
			p = NewParser()
		}
		det, err := p.Load(path)
		if err != nil {
			return nil, err
		}
		return &Loaded{Detection: det, Tracks: BuildTracks(det, "", "")}, nil
	}
}

// sourceFile resolves a CSV or text file argument to an existing file
func sourceFile(target string) (string, error) {
	path, err := platform.ValidateFilePath(target, true)
	if errors.Is(err, platform.ErrPathNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	return path, err
}

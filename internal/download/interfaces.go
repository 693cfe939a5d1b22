package download

import (
	"context"

	"github.com/ytget/musicdl/internal/history"
	"github.com/ytget/musicdl/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(*model.Track))
	ProcessTrack(ctx context.Context, track *model.Track, dryRun bool) model.DownloadResult
	Run(ctx context.Context, tracks []*model.Track, dryRun bool, progress ProgressFunc) []model.DownloadResult
	Stop()
	GetTrack(id string) (*model.Track, bool)
	GetAllTracks() []*model.Track

	// SetMaxParallelDownloads sets the worker count, clamped to 1..5
	SetMaxParallelDownloads(max int)
}

// Searcher resolves queries and URLs to videos.
type Searcher interface {
	Search(ctx context.Context, query string) (*model.SearchResult, error)
	VideoInfo(ctx context.Context, url string) (*model.SearchResult, error)
}

// Fetcher downloads a single video as audio.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest, progress func(Progress)) (*FetchResult, error)
}

// DurationReader reports the duration of a local media file in seconds.
type DurationReader interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// History remembers finished downloads across runs.
type History interface {
	Record(ctx context.Context, t *model.Track) error
	FindCompleted(ctx context.Context, query, url string) (*history.Entry, error)
}

// ProgressFunc is called after each track of a batch finishes.
type ProgressFunc func(done, total int, track *model.Track)

package download

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lrstanley/go-ytdlp"
)

// ProgressInterval throttles yt-dlp progress callbacks
const ProgressInterval = 500 * time.Millisecond

// FetchRequest describes one yt-dlp download
type FetchRequest struct {
	URL            string
	OutputDir      string
	OutputTemplate string
	Format         string // yt-dlp format selector
	AudioCodec     string // post-processing codec, e.g. "opus" or "mp3"
	Bitrate        string // "best" or a value like "192K"
	Overwrite      bool
	FFmpegPath     string
	UserAgent      string
	WriteInfoJSON  bool
	WriteThumbnail bool
}

// FetchResult is what yt-dlp reported after a download. FilePath may carry
// the extension from before audio extraction.
type FetchResult struct {
	FilePath string
	Title    string
	Duration float64
	Format   map[string]string // ext, acodec and abr
}

// Progress is a throttled download progress snapshot
type Progress struct {
	Title           string
	DownloadedBytes int
	TotalBytes      int
	Fraction        float64 // 0.0 to 1.0
	Speed           string  // humanized bytes per second
	ETA             time.Duration
}

// YTDLPFetcher implements Fetcher with github.com/lrstanley/go-ytdlp
type YTDLPFetcher struct{}

// NewFetcher creates the default yt-dlp fetcher
func NewFetcher() *YTDLPFetcher {
	return &YTDLPFetcher{}
}

// command builds the yt-dlp invocation for req
func (f *YTDLPFetcher) command(req FetchRequest) *ytdlp.Command {
	dl := ytdlp.New().
		PrintJSON().
		NoSimulate().
		NoPlaylist().
		RestrictFilenames().
		ExtractAudio().
		EmbedMetadata().
		Output(filepath.Join(req.OutputDir, req.OutputTemplate))

	if req.Format != "" {
		dl = dl.Format(req.Format)
	}
	if req.AudioCodec != "" {
		dl = dl.AudioFormat(req.AudioCodec)
	}
	if req.Bitrate != "" && req.Bitrate != "best" {
		dl = dl.AudioQuality(req.Bitrate)
	}
	if req.Overwrite {
		dl = dl.ForceOverwrites()
	} else {
		dl = dl.NoOverwrites()
	}
	if req.FFmpegPath != "" {
		dl = dl.FFmpegLocation(req.FFmpegPath)
	}
	if req.UserAgent != "" {
		dl = dl.AddHeaders("User-Agent:" + req.UserAgent)
	}
	if req.WriteInfoJSON {
		dl = dl.WriteInfoJSON()
	}
	if req.WriteThumbnail {
		dl = dl.WriteThumbnail()
	}
	return dl
}

// Fetch downloads req.URL and reports throttled progress
func (f *YTDLPFetcher) Fetch(ctx context.Context, req FetchRequest, progress func(Progress)) (*FetchResult, error) {
	dl := f.command(req)

	if progress != nil {
		dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
			progress(toProgress(update))
		})
	}

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	if result == nil {
		return &FetchResult{}, nil
	}
	info, err := result.GetExtractedInfo()
	if err != nil {
		slog.Warn("could not parse yt-dlp json output", "url", req.URL, "error", err)
		return &FetchResult{}, nil
	}
	if len(info) == 0 {
		return &FetchResult{}, nil
	}
	return resultFromInfo(info[0]), nil
}

// resultFromInfo maps the --print-json document of a finished download
func resultFromInfo(info *ytdlp.ExtractedInfo) *FetchResult {
	out := &FetchResult{}
	switch {
	case info.Filename != nil:
		out.FilePath = *info.Filename
	case info.AltFilename != nil:
		out.FilePath = *info.AltFilename
	}
	if info.Title != nil {
		out.Title = *info.Title
	}
	if info.Duration != nil {
		out.Duration = *info.Duration
	}

	format := map[string]string{}
	if info.Extension != "" {
		format["ext"] = info.Extension
	}
	if f := info.ExtractedFormat; f != nil {
		if f.ACodec != nil {
			format["acodec"] = *f.ACodec
		}
		if f.ABR != nil {
			format["abr"] = strconv.FormatFloat(*f.ABR, 'f', -1, 64)
		}
	}
	if len(format) > 0 {
		out.Format = format
	}
	return out
}

// toProgress converts a go-ytdlp update into a Progress snapshot
func toProgress(update ytdlp.ProgressUpdate) Progress {
	p := Progress{
		DownloadedBytes: update.DownloadedBytes,
		TotalBytes:      update.TotalBytes,
		ETA:             update.ETA(),
	}
	if update.TotalBytes > 0 {
		p.Fraction = float64(update.DownloadedBytes) / float64(update.TotalBytes)
	}
	if !update.Started.IsZero() {
		p.Speed = FormatSpeed(update.DownloadedBytes, time.Since(update.Started))
	}
	if update.Info != nil && update.Info.Title != nil {
		p.Title = *update.Info.Title
	}
	return p
}

// FormatSpeed renders bytes over elapsed as e.g. "1.2 MB/s"
func FormatSpeed(bytes int, elapsed time.Duration) string {
	if elapsed <= 0 || bytes <= 0 {
		return ""
	}
	perSecond := float64(bytes) / elapsed.Seconds()
	return humanize.Bytes(uint64(perSecond)) + "/s"
}

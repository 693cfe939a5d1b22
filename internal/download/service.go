package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ytget/musicdl/internal/history"
	"github.com/ytget/musicdl/internal/model"
	"github.com/ytget/musicdl/internal/platform"
	"github.com/ytget/musicdl/internal/search"
)

// Worker pool limits
const (
	MinParallel     = 1
	MaxParallel     = 5
	DefaultParallel = 3
)

// Retry policy around the external downloader
const (
	MaxRetries        = 1
	DefaultRetryDelay = 2 * time.Second
)

// Messages stored in Track.Error
const (
	msgNoSearchResults = "No search results for: %s"
	msgFileNotFound    = "Downloaded file not found"
	msgCancelled       = "Cancelled"
)

// Options configures how tracks are downloaded
type Options struct {
	MusicDir       string
	OutputTemplate string
	AudioFormat    string
	AudioCodec     string
	Bitrate        string
	Overwrite      bool
	FFmpegPath     string
	UserAgent      string
	WriteInfoJSON  bool
	WriteThumbnail bool
	MaxParallel    int
}

var _ Downloader = (*Service)(nil)

// Service handles search and download operations
type Service struct {
	tracks      map[string]*model.Track
	order       []string
	tasksMutex  sync.RWMutex
	maxParallel int
	retryDelay  time.Duration
	opts        Options

	searcher  Searcher
	fetcher   Fetcher
	durations DurationReader
	history   History

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	claimed  map[string]string // output path -> track ID
	inFlight atomic.Int32      // downloads between fetch and file lookup

	onUpdate func(*model.Track) // callback for UI updates
}

// NewService creates a new download service
func NewService(opts Options, searcher Searcher, fetcher Fetcher) *Service {
	s := &Service{
		tracks:     make(map[string]*model.Track),
		claimed:    make(map[string]string),
		retryDelay: DefaultRetryDelay,
		opts:       opts,
		searcher:   searcher,
		fetcher:    fetcher,
	}
	if opts.MaxParallel == 0 {
		opts.MaxParallel = DefaultParallel
	}
	s.SetMaxParallelDownloads(opts.MaxParallel)
	return s
}

// SetUpdateCallback sets the callback function for track updates. The
// callback receives a copy of the track.
func (s *Service) SetUpdateCallback(callback func(*model.Track)) {
	s.onUpdate = callback
}

// SetMaxParallelDownloads sets the worker count, clamped to 1..5
func (s *Service) SetMaxParallelDownloads(max int) {
	if max < MinParallel {
		max = MinParallel
	}
	if max > MaxParallel {
		max = MaxParallel
	}
	s.tasksMutex.Lock()
	s.maxParallel = max
	s.tasksMutex.Unlock()
}

// SetRetryDelay sets the backoff before the single retry
func (s *Service) SetRetryDelay(d time.Duration) {
	s.retryDelay = d
}

// SetDurationReader sets the duration reader used when yt-dlp reports no duration
func (s *Service) SetDurationReader(p DurationReader) {
	s.durations = p
}

// SetHistory enables skipping tracks that were already downloaded
func (s *Service) SetHistory(h History) {
	s.history = h
}

// GetTrack returns a copy of a registered track
func (s *Service) GetTrack(id string) (*model.Track, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	track, exists := s.tracks[id]
	if !exists {
		return nil, false
	}
	return track.Clone(), true
}

// GetAllTracks returns copies of all registered tracks in registration order
func (s *Service) GetAllTracks() []*model.Track {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tracks := make([]*model.Track, 0, len(s.order))
	for _, id := range s.order {
		tracks = append(tracks, s.tracks[id].Clone())
	}
	return tracks
}

// Reset forgets all registered tracks
func (s *Service) Reset() {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()
	s.tracks = make(map[string]*model.Track)
	s.claimed = make(map[string]string)
	s.order = nil
}

// Stop stops the running batch after the tracks already in progress
func (s *Service) Stop() {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	if s.cancel != nil {
		s.cancel()
		slog.Info("stop requested, finishing tracks in progress")
	}
}

// Run processes tracks on a bounded worker pool. Results are returned in
// input order; tracks never started because of Stop stay pending.
func (s *Service) Run(ctx context.Context, tracks []*model.Track, dryRun bool, progress ProgressFunc) []model.DownloadResult {
	results := make([]model.DownloadResult, len(tracks))
	if len(tracks) == 0 {
		return results
	}
	for _, t := range tracks {
		s.register(t)
	}

	feedCtx, cancel := context.WithCancel(ctx)
	s.cancelMu.Lock()
	s.cancel = cancel
	s.cancelMu.Unlock()
	defer func() {
		s.cancelMu.Lock()
		s.cancel = nil
		s.cancelMu.Unlock()
		cancel()
	}()

	s.tasksMutex.RLock()
	workers := min(s.maxParallel, len(tracks))
	s.tasksMutex.RUnlock()

	slog.Info("starting batch", "tracks", len(tracks), "workers", workers, "dry_run", dryRun)

	jobs := make(chan int)
	started := make([]bool, len(tracks))
	var done atomic.Int32
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if feedCtx.Err() != nil {
					continue
				}
				started[i] = true
				results[i] = s.ProcessTrack(ctx, tracks[i], dryRun)
				n := int(done.Add(1))
				if progress != nil {
					progress(n, len(tracks), s.snapshot(tracks[i]))
				}
			}
		}()
	}

feed:
	for i := range tracks {
		if feedCtx.Err() != nil {
			break
		}
		select {
		case <-feedCtx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for i, t := range tracks {
		if !started[i] {
			results[i] = s.snapshot(t).Result()
		}
	}

	slog.Info("batch finished", "processed", done.Load(), "total", len(tracks))
	return results
}

// ProcessTrack resolves and downloads one track. Failures are recorded on
// the track and never returned as errors.
func (s *Service) ProcessTrack(ctx context.Context, track *model.Track, dryRun bool) model.DownloadResult {
	s.register(track)
	s.update(track, func(t *model.Track) {
		t.StartedAt = time.Now()
		t.Error = ""
		t.Progress = 0
	})

	if err := s.resolve(ctx, track, dryRun); err != nil {
		s.fail(ctx, track, err)
		return s.snapshot(track).Result()
	}
	if dryRun {
		s.update(track, func(t *model.Track) {
			t.FinishedAt = time.Now()
		})
		return s.snapshot(track).Result()
	}

	if s.skipFromHistory(ctx, track) {
		return resultOf(s.snapshot(track))
	}

	if err := s.download(ctx, track); err != nil {
		s.fail(ctx, track, err)
		return s.snapshot(track).Result()
	}

	s.record(ctx, track)
	return s.snapshot(track).Result()
}

// resolve finds a video URL for search tracks and a title for URL tracks
func (s *Service) resolve(ctx context.Context, track *model.Track, dryRun bool) error {
	snap := s.snapshot(track)

	if snap.URL == "" {
		s.update(track, func(t *model.Track) { t.Status = model.TrackStatusSearching })
		res, err := s.searcher.Search(ctx, snap.Query)
		if err != nil || res == nil || res.URL == "" {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil && !errors.Is(err, search.ErrNoResults) {
				slog.Warn("search failed", "query", snap.Query, "error", err)
			}
			return fmt.Errorf(msgNoSearchResults, snap.Query)
		}
		slog.Info("found video", "query", snap.Query, "title", res.Title, "url", res.URL)
		s.update(track, func(t *model.Track) {
			t.URL = res.URL
			t.VideoTitle = res.Title
			if res.Duration > 0 {
				t.Duration = res.Duration
			}
			t.Status = model.TrackStatusFound
		})
		return nil
	}

	if dryRun && snap.HasPlaceholderTitle() {
		res, err := s.searcher.VideoInfo(ctx, snap.URL)
		if err != nil || res == nil {
			slog.Warn("could not resolve video title", "url", snap.URL, "error", err)
		} else {
			s.update(track, func(t *model.Track) {
				setVideoTitle(t, res.Title)
				if res.Duration > 0 {
					t.Duration = res.Duration
				}
			})
		}
	}
	s.update(track, func(t *model.Track) { t.Status = model.TrackStatusFound })
	return nil
}

// skipFromHistory marks the track skipped when overwriting is disabled and
// an earlier download of it still exists on disk
func (s *Service) skipFromHistory(ctx context.Context, track *model.Track) bool {
	if s.opts.Overwrite || s.history == nil {
		return false
	}
	snap := s.snapshot(track)
	entry, err := s.history.FindCompleted(ctx, historyQuery(snap), snap.URL)
	if err != nil {
		if !errors.Is(err, history.ErrNotFound) {
			slog.Warn("history lookup failed", "query", snap.Query, "error", err)
		}
		return false
	}
	if entry.FilePath == "" {
		return false
	}
	if _, err := os.Stat(entry.FilePath); err != nil {
		return false
	}

	slog.Info("already downloaded, skipping", "query", snap.Query, "path", entry.FilePath)
	s.update(track, func(t *model.Track) {
		t.Status = model.TrackStatusSkipped
		t.ResultPath = entry.FilePath
		t.FileSize = entry.FileSize
		if entry.Duration > 0 {
			t.Duration = entry.Duration
		}
		t.Progress = 1.0
		t.FinishedAt = time.Now()
	})
	return true
}

// download fetches the audio and fills in path, duration and size
func (s *Service) download(ctx context.Context, track *model.Track) error {
	s.update(track, func(t *model.Track) {
		t.Status = model.TrackStatusDownloading
		t.Progress = 0
		t.ETASec = -1
	})

	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	snap := s.snapshot(track)
	req := s.request(snap.URL)
	res, err := s.downloadWithRetry(ctx, req, track)
	if err != nil {
		return err
	}
	if res == nil {
		res = &FetchResult{}
	}

	path := s.locateOutput(res, snap)
	if path == "" {
		return errors.New(msgFileNotFound)
	}
	s.claim(path, track.ID)

	duration := res.Duration
	if duration <= 0 {
		duration = snap.Duration
	}
	if duration <= 0 && s.durations != nil {
		if d, err := s.durations.Duration(ctx, path); err == nil {
			duration = d
		} else {
			slog.Debug("ffprobe failed", "path", path, "error", err)
		}
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	s.update(track, func(t *model.Track) {
		t.Status = model.TrackStatusDone
		t.ResultPath = path
		t.Duration = duration
		t.FileSize = size
		t.Progress = 1.0
		t.ETASec = -1
		t.Speed = ""
		t.FinishedAt = time.Now()
		setVideoTitle(t, res.Title)
		t.Format = outputFormat(res.Format, path)
	})
	slog.Info("downloaded", "track", snap.DisplayName(), "path", path, "size", size)
	return nil
}

// request builds a FetchRequest from the service options
func (s *Service) request(url string) FetchRequest {
	template := s.opts.OutputTemplate
	if template == "" {
		template = "%(title)s.%(ext)s"
	}
	return FetchRequest{
		URL:            url,
		OutputDir:      s.opts.MusicDir,
		OutputTemplate: template,
		Format:         s.opts.AudioFormat,
		AudioCodec:     s.opts.AudioCodec,
		Bitrate:        s.opts.Bitrate,
		Overwrite:      s.opts.Overwrite,
		FFmpegPath:     s.opts.FFmpegPath,
		UserAgent:      s.opts.UserAgent,
		WriteInfoJSON:  s.opts.WriteInfoJSON,
		WriteThumbnail: s.opts.WriteThumbnail,
	}
}

// locateOutput finds the final audio file. yt-dlp may report the name
// before audio extraction changed the extension. Without a reported name the
// directory is searched by title; the newest-file fallback is only used when
// no other download could have produced that file.
func (s *Service) locateOutput(res *FetchResult, track *model.Track) string {
	if res.FilePath != "" {
		if fileExists(res.FilePath) {
			return res.FilePath
		}
		if s.opts.AudioCodec != "" {
			alt := strings.TrimSuffix(res.FilePath, filepath.Ext(res.FilePath)) + "." + s.opts.AudioCodec
			if fileExists(alt) {
				return alt
			}
		}
	}

	path, err := platform.FindDownloadedFile(platform.FileLookup{
		Dir:    s.opts.MusicDir,
		Titles: []string{res.Title, track.VideoTitle, track.Title, track.Query},
		Since:  track.StartedAt,
		Recent: s.inFlight.Load() <= 1,
		Exclude: func(p string) bool {
			return s.claimedByOther(p, track.ID)
		},
	})
	if err != nil {
		slog.Debug("output lookup failed", "dir", s.opts.MusicDir, "error", err)
		return ""
	}
	return path
}

// claim attributes an output file to a track
func (s *Service) claim(path, trackID string) {
	s.tasksMutex.Lock()
	s.claimed[path] = trackID
	s.tasksMutex.Unlock()
}

func (s *Service) claimedByOther(path, trackID string) bool {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	owner, ok := s.claimed[path]
	return ok && owner != trackID
}

// downloadWithRetry attempts download with retry logic
func (s *Service) downloadWithRetry(ctx context.Context, req FetchRequest, track *model.Track) (*FetchResult, error) {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			// Backoff delay
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			slog.Info("retrying download", "track", track.ID, "attempt", attempt+1)
		}

		res, err := s.fetcher.Fetch(ctx, req, func(p Progress) {
			s.updateTrackProgress(track, p)
		})
		if err == nil {
			return res, nil
		}

		lastErr = err
		slog.Warn("download attempt failed", "track", track.ID, "attempt", attempt+1, "error", err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// updateTrackProgress updates track progress from yt-dlp info
func (s *Service) updateTrackProgress(track *model.Track, p Progress) {
	s.update(track, func(t *model.Track) {
		if p.Fraction > 0 {
			t.Progress = min(p.Fraction, 1.0)
		}
		if p.Speed != "" {
			t.Speed = p.Speed
		}
		if p.ETA > 0 {
			t.ETASec = int(p.ETA.Seconds())
		}
		if t.HasPlaceholderTitle() {
			setVideoTitle(t, p.Title)
		}
	})
}

// fail marks the track as failed and records it
func (s *Service) fail(ctx context.Context, track *model.Track, err error) {
	msg := err.Error()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		msg = msgCancelled
	}
	s.update(track, func(t *model.Track) {
		t.Status = model.TrackStatusError
		t.Error = msg
		t.Speed = ""
		t.ETASec = -1
		t.FinishedAt = time.Now()
	})
	slog.Error("track failed", "track", track.ID, "query", s.snapshot(track).Query, "error", msg)
	if ctx.Err() == nil {
		s.record(ctx, track)
	}
}

// record writes the track to history when enabled
func (s *Service) record(ctx context.Context, track *model.Track) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, s.snapshot(track)); err != nil {
		slog.Warn("failed to record history", "track", track.ID, "error", err)
	}
}

// register adds a track to the service if it is not known yet
func (s *Service) register(track *model.Track) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()
	if track.ID == "" {
		track.ID = model.NewTrackID()
	}
	if _, ok := s.tracks[track.ID]; ok {
		return
	}
	s.tracks[track.ID] = track
	s.order = append(s.order, track.ID)
}

// update mutates a track under the lock and notifies with a copy
func (s *Service) update(track *model.Track, fn func(*model.Track)) {
	s.tasksMutex.Lock()
	fn(track)
	cp := track.Clone()
	s.tasksMutex.Unlock()
	s.notifyUpdate(cp)
}

// snapshot returns a copy of track taken under the lock
func (s *Service) snapshot(track *model.Track) *model.Track {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	return track.Clone()
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(track *model.Track) {
	if s.onUpdate != nil {
		s.onUpdate(track)
	}
}

// setVideoTitle stores the YouTube title. Tracks that only had the
// placeholder title take it as their title and query.
func setVideoTitle(t *model.Track, title string) {
	if title == "" {
		return
	}
	t.VideoTitle = title
	if t.HasPlaceholderTitle() {
		t.Title = title
		t.Query = model.BuildQuery(t.Artist, t.Title)
	}
}

// historyQuery is the query used for history lookups. Tracks given as URLs
// are matched by URL only.
func historyQuery(t *model.Track) string {
	if t.SourceURL != "" || t.HasPlaceholderTitle() {
		return ""
	}
	return t.Query
}

// outputFormat completes the reported format with the saved file's extension
func outputFormat(reported map[string]string, path string) map[string]string {
	format := maps.Clone(reported)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		if format == nil {
			format = map[string]string{}
		}
		format["ext"] = ext
	}
	return format
}

// resultOf is Track.Result with skipped tracks counted as successful
func resultOf(t *model.Track) model.DownloadResult {
	r := t.Result()
	if t.Status == model.TrackStatusSkipped {
		r.Success = true
	}
	return r
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

package model

// TrackStatus represents where a track is in the search/download lifecycle
type TrackStatus string

const (
	// TrackStatusPending means the track is queued but not started
	TrackStatusPending TrackStatus = "pending"

	// TrackStatusSearching means a YouTube search is in progress
	TrackStatusSearching TrackStatus = "searching"

	// TrackStatusFound means a video was resolved but nothing was downloaded yet
	TrackStatusFound TrackStatus = "found"

	// TrackStatusDownloading means yt-dlp is fetching and transcoding audio
	TrackStatusDownloading TrackStatus = "downloading"

	// TrackStatusDone means the audio file was saved
	TrackStatusDone TrackStatus = "done"

	// TrackStatusError means the track failed and was skipped
	TrackStatusError TrackStatus = "error"

	// TrackStatusSkipped means the track was not processed (already downloaded)
	TrackStatusSkipped TrackStatus = "skipped"
)

// String returns the string representation of TrackStatus
func (ts TrackStatus) String() string {
	return string(ts)
}

// IsActive returns true while a search or download is running
func (ts TrackStatus) IsActive() bool {
	return ts == TrackStatusSearching || ts == TrackStatusDownloading
}

// IsFinished returns true if no further work will happen for the track
func (ts TrackStatus) IsFinished() bool {
	return ts == TrackStatusDone || ts == TrackStatusError || ts == TrackStatusSkipped
}

// IsSuccess reports whether the track counts as successful in summaries.
// A found track is a success in dry-run mode.
func (ts TrackStatus) IsSuccess() bool {
	return ts == TrackStatusDone || ts == TrackStatusFound
}

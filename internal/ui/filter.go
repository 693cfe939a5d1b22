package ui

import "github.com/ytget/musicdl/internal/model"

// StatusFilter enumerates visible subsets of tracks in the job table.
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterActive
	FilterPending
	FilterCompleted
	FilterErrors
)

// String returns the label shown in the status line.
func (sf StatusFilter) String() string {
	switch sf {
	case FilterAll:
		return "All"
	case FilterActive:
		return "Active"
	case FilterPending:
		return "Pending"
	case FilterCompleted:
		return "Completed"
	case FilterErrors:
		return "Errors"
	default:
		return "Unknown"
	}
}

// Next returns the filter after sf, wrapping around
func (sf StatusFilter) Next() StatusFilter {
	return (sf + 1) % (FilterErrors + 1)
}

// Matches returns whether a track should be shown under the filter
func (sf StatusFilter) Matches(track *model.Track) bool {
	switch sf {
	case FilterAll:
		return true
	case FilterActive:
		return track.Status.IsActive()
	case FilterPending:
		return track.Status == model.TrackStatusPending
	case FilterCompleted:
		return track.Status == model.TrackStatusDone || track.Status == model.TrackStatusSkipped || track.Status == model.TrackStatusFound
	case FilterErrors:
		return track.Status == model.TrackStatusError
	default:
		return true
	}
}

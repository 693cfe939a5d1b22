package ui

import (
	"testing"

	"github.com/ytget/musicdl/internal/model"
)

func TestStatusFilterMatches(t *testing.T) {
	tests := []struct {
		filter StatusFilter
		status model.TrackStatus
		want   bool
	}{
		{FilterAll, model.TrackStatusError, true},
		{FilterActive, model.TrackStatusDownloading, true},
		{FilterActive, model.TrackStatusSearching, true},
		{FilterActive, model.TrackStatusPending, false},
		{FilterPending, model.TrackStatusPending, true},
		{FilterCompleted, model.TrackStatusDone, true},
		{FilterCompleted, model.TrackStatusSkipped, true},
		{FilterCompleted, model.TrackStatusError, false},
		{FilterErrors, model.TrackStatusError, true},
		{FilterErrors, model.TrackStatusDone, false},
	}

	for _, tt := range tests {
		t.Run(tt.filter.String()+"/"+tt.status.String(), func(t *testing.T) {
			track := &model.Track{Status: tt.status}
			if got := tt.filter.Matches(track); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusFilterNextWraps(t *testing.T) {
	f := FilterAll
	seen := map[StatusFilter]bool{}
	for i := 0; i < 5; i++ {
		seen[f] = true
		f = f.Next()
	}
	if f != FilterAll {
		t.Errorf("expected wrap to FilterAll, got %s", f)
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 distinct filters, got %d", len(seen))
	}
}

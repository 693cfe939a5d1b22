package model

import (
	"strings"
	"testing"
)

func TestNewTrack_Query(t *testing.T) {
	tests := []struct {
		name          string
		artist, title string
		expected      string
	}{
		{"artist and title", "Radiohead", "Creep", "Radiohead - Creep"},
		{"title only", "", "Creep", "Creep"},
		{"artist only", "Radiohead", "", "Radiohead"},
		{"whitespace trimmed", "  Radiohead ", " Creep  ", "Radiohead - Creep"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := NewTrack(tt.artist, tt.title, "")
			if track.Query != tt.expected {
				t.Errorf("Query = %q, expected %q", track.Query, tt.expected)
			}
			if track.TargetStub != tt.expected {
				t.Errorf("TargetStub = %q, expected %q", track.TargetStub, tt.expected)
			}
			if track.Status != TrackStatusPending {
				t.Errorf("Status = %s, expected pending", track.Status)
			}
			if track.ETASec != -1 {
				t.Errorf("ETASec = %d, expected -1", track.ETASec)
			}
		})
	}
}

func TestNewTrackID(t *testing.T) {
	id1 := NewTrackID()
	id2 := NewTrackID()

	if id1 == id2 {
		t.Error("Expected different track IDs")
	}
	if !strings.HasPrefix(id1, TrackIDPrefix) {
		t.Errorf("Expected ID to start with %q, got: %s", TrackIDPrefix, id1)
	}
	if len(id1) != len(TrackIDPrefix)+36 {
		t.Errorf("Expected ID length %d, got %d for ID: %s", len(TrackIDPrefix)+36, len(id1), id1)
	}
}

func TestTrack_DisplayName(t *testing.T) {
	tests := []struct {
		artist, title string
		expected      string
	}{
		{"Radiohead", "Creep", "Radiohead - Creep"},
		{"", "Creep", "Creep"},
		{"Radiohead", "", "Radiohead"},
		{"", "", "Unknown"},
	}

	for _, test := range tests {
		track := &Track{Artist: test.artist, Title: test.title}
		if got := track.DisplayName(); got != test.expected {
			t.Errorf("DisplayName() with artist=%q title=%q = %q, expected %q",
				test.artist, test.title, got, test.expected)
		}
	}
}

func TestNewURLTrack(t *testing.T) {
	track := NewURLTrack("https://www.youtube.com/watch?v=abc", "")
	if track.Title != PlaceholderTitle {
		t.Errorf("Title = %q, expected placeholder", track.Title)
	}
	if track.URL != track.SourceURL || track.URL == "" {
		t.Errorf("URL = %q, SourceURL = %q", track.URL, track.SourceURL)
	}
	if !track.HasPlaceholderTitle() {
		t.Error("expected placeholder title")
	}

	named := NewURLTrack("https://www.youtube.com/watch?v=abc", "Song")
	if named.HasPlaceholderTitle() {
		t.Error("named URL track should not report a placeholder title")
	}
}

func TestTrack_GetETAString(t *testing.T) {
	tests := []struct {
		etaSec   int
		expected string
	}{
		{-1, "—"},
		{0, "—"},
		{30, "00:30"},
		{90, "01:30"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
	}

	for _, test := range tests {
		track := &Track{ETASec: test.etaSec}
		if result := track.GetETAString(); result != test.expected {
			t.Errorf("GetETAString() with ETASec=%d = %s, expected %s", test.etaSec, result, test.expected)
		}
	}
}

func TestTrack_Result(t *testing.T) {
	track := &Track{Status: TrackStatusDone, ResultPath: "/music/a.opus", FileSize: 42, Duration: 180}
	res := track.Result()
	if !res.Success || res.FilePath != "/music/a.opus" || res.FileSize != 42 || res.Duration != 180 {
		t.Errorf("unexpected result: %+v", res)
	}

	failed := &Track{Status: TrackStatusError, Error: "boom"}
	if res := failed.Result(); res.Success || res.ErrorMessage != "boom" {
		t.Errorf("unexpected result: %+v", res)
	}
}

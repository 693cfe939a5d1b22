package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ytget/musicdl/internal/model"
)

func sampleTracks() []*model.Track {
	done := model.NewTrack("Björk", "Jóga", "Homogenic")
	done.Status = model.TrackStatusDone
	done.URL = "https://www.youtube.com/watch?v=abc&list=x"
	done.ResultPath = "/music/Jóga.opus"
	done.Duration = 305.5
	done.FileSize = 4096

	failed := model.NewTrack("Nobody", "Nothing", "")
	failed.Status = model.TrackStatusError
	failed.Error = "No search results for: Nobody - Nothing"

	pending := model.NewTrack("", "Later", "")

	skipped := model.NewTrack("A", "B", "")
	skipped.Status = model.TrackStatusSkipped

	found := model.NewTrack("C", "D", "")
	found.Status = model.TrackStatusFound

	return []*model.Track{done, failed, pending, skipped, found}
}

func TestWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", DefaultFileName)
	if err := WriteResults(path, sampleTracks()); err != nil {
		t.Fatalf("WriteResults() error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	if !strings.HasPrefix(text, "[\n  {") {
		t.Errorf("expected 2-space indented array, got %q", text[:min(len(text), 10)])
	}
	if !strings.Contains(text, "Björk") || strings.Contains(text, `ö`) {
		t.Error("non-ASCII characters should not be escaped")
	}
	if !strings.Contains(text, "&list=x") {
		t.Error("HTML characters should not be escaped")
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}

	keys := []string{"artist", "title", "album", "query", "status", "url", "result_path", "error", "duration", "filesize"}
	for _, k := range keys {
		if _, ok := records[0][k]; !ok {
			t.Errorf("record missing key %q", k)
		}
	}
	if len(records[0]) != len(keys) {
		t.Errorf("expected %d keys, got %d", len(keys), len(records[0]))
	}

	if records[0]["status"] != "done" || records[0]["filesize"] != float64(4096) || records[0]["duration"] != 305.5 {
		t.Errorf("unexpected done record: %v", records[0])
	}
	if records[1]["error"] != "No search results for: Nobody - Nothing" || records[1]["url"] != nil {
		t.Errorf("unexpected error record: %v", records[1])
	}
	for _, k := range []string{"url", "result_path", "error", "duration", "filesize"} {
		if records[2][k] != nil {
			t.Errorf("pending record %q = %v, expected null", k, records[2][k])
		}
	}
}

func TestWriteResults_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := WriteResults(path, nil); err != nil {
		t.Fatalf("WriteResults() error: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("expected empty array, got %q", raw)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleTracks())
	expected := Summary{Total: 5, Success: 2, Errors: 1, Skipped: 1, Pending: 1}
	if s != expected {
		t.Errorf("Summarize() = %+v, expected %+v", s, expected)
	}
	if got := s.String(); got != "5 total, 2 ok, 1 failed, 1 skipped, 1 pending" {
		t.Errorf("String() = %q", got)
	}
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath(""); got != DefaultFileName {
		t.Errorf("DefaultPath(\"\") = %q", got)
	}
	if got := DefaultPath("/tmp/x"); got != filepath.Join("/tmp/x", DefaultFileName) {
		t.Errorf("DefaultPath() = %q", got)
	}
}

package ui

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ytget/musicdl/internal/config"
	"github.com/ytget/musicdl/internal/download"
	"github.com/ytget/musicdl/internal/model"
	"github.com/ytget/musicdl/internal/tracklist"
)

type stubSearcher struct{}

func (stubSearcher) Search(_ context.Context, query string) (*model.SearchResult, error) {
	id := strings.ReplaceAll(strings.ToLower(query), " ", "")
	return &model.SearchResult{ID: id, Title: query, URL: "https://www.youtube.com/watch?v=" + id}, nil
}

func (stubSearcher) VideoInfo(_ context.Context, url string) (*model.SearchResult, error) {
	return &model.SearchResult{Title: "Resolved", URL: url}, nil
}

const testCSV = "Artist,Track,Album\nQueen,Bohemian Rhapsody,A Night at the Opera\nNirvana,Lithium,Nevermind\n"

func newTestJob(t *testing.T, mode jobMode) (*Model, *jobModel) {
	t.Helper()
	dir := t.TempDir()
	s := config.Defaults()
	s.MusicDir = dir
	s.ShowClock = false
	m := New(Deps{
		Settings:   s,
		ExportPath: filepath.Join(dir, "results.json"),
		NewService: func(s config.Settings) download.Downloader {
			svc := download.NewService(download.Options{MusicDir: s.MusicDir, MaxParallel: s.MaxConcurrentDownloads}, stubSearcher{}, nil)
			svc.SetRetryDelay(0)
			return svc
		},
	})
	j := newJobModel(m.env, mode, "")
	m.job = j
	m.screen = screenJob
	return m, j
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracks.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestJobScanCSV(t *testing.T) {
	_, j := newTestJob(t, modeCSV)
	j.input.SetValue(writeCSV(t))

	cmd := j.scan()
	if cmd == nil {
		t.Fatal("expected scan command")
	}
	j.Update(cmd())

	if len(j.tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d (status %q)", len(j.tracks), j.status)
	}
	if j.tracks[0].Artist != "Queen" || j.tracks[0].Title != "Bohemian Rhapsody" || j.tracks[0].Album != "A Night at the Opera" {
		t.Errorf("unexpected first track %+v", j.tracks[0])
	}
	if j.inputFocused {
		t.Error("focus should move to the table after a successful scan")
	}
	if !strings.Contains(j.columnsLine(), "artist=Artist") {
		t.Errorf("unexpected columns line %q", j.columnsLine())
	}
}

func TestJobScanEmptyInput(t *testing.T) {
	_, j := newTestJob(t, modeCSV)
	if cmd := j.scan(); cmd != nil {
		t.Error("empty input must not scan")
	}
	if j.status != j.env.text.GetText(KeyPleaseEnterPath) {
		t.Errorf("unexpected status %q", j.status)
	}
}

func TestJobColumnOverride(t *testing.T) {
	_, j := newTestJob(t, modeCSV)
	j.input.SetValue(writeCSV(t))
	j.Update(j.scan()())

	j.Update(runes("]"))
	if j.artistCol != "Track" {
		t.Fatalf("expected artist override Track, got %q", j.artistCol)
	}
	if j.tracks[0].Artist != "Bohemian Rhapsody" {
		t.Errorf("tracks not rebuilt with override, got %+v", j.tracks[0])
	}

	j.Update(runes("{"))
	if j.trackCol != "Artist" {
		t.Errorf("expected track override Artist, got %q", j.trackCol)
	}
}

func TestJobScanTextReportsValidLines(t *testing.T) {
	_, j := newTestJob(t, modeText)
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte("Queen - Bohemian Rhapsody\n-\nNirvana - Lithium\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	j.input.SetValue(path)
	j.Update(j.scan()())

	if len(j.tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d (status %q)", len(j.tracks), j.status)
	}
	if !strings.HasSuffix(j.status, "2 of 3 lines valid") {
		t.Errorf("unexpected status %q", j.status)
	}
}

func TestJobURLModeRejectsInvalid(t *testing.T) {
	_, j := newTestJob(t, modeURL)
	j.input.SetValue("https://example.com/video")
	j.Update(j.scan()())

	if len(j.tracks) != 0 {
		t.Error("invalid URL must not produce tracks")
	}
	if !strings.Contains(j.status, "invalid YouTube URL") {
		t.Errorf("unexpected status %q", j.status)
	}
}

func TestJobURLModeSingleVideo(t *testing.T) {
	_, j := newTestJob(t, modeURL)
	j.input.SetValue("https://youtu.be/dQw4w9WgXcQ")
	j.Update(j.scan()())

	if len(j.tracks) != 1 {
		t.Fatalf("expected 1 track, got %d (status %q)", len(j.tracks), j.status)
	}
	if j.tracks[0].URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("unexpected URL %s", j.tracks[0].URL)
	}
}

func TestJobDryRunBatch(t *testing.T) {
	m, j := newTestJob(t, modeCSV)
	j.input.SetValue(writeCSV(t))
	j.Update(j.scan()())

	j.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if !j.dryRun {
		t.Fatal("ctrl+d should enable dry run")
	}
	j.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if !j.running {
		t.Fatal("ctrl+r should start the batch")
	}

	timeout := time.After(5 * time.Second)
	for j.running {
		select {
		case msg := <-m.env.events:
			m.Update(msg)
		case <-timeout:
			t.Fatal("batch did not finish")
		}
	}

	for _, tr := range j.tracks {
		if tr.Status != model.TrackStatusFound {
			t.Errorf("track %s: expected found, got %s (%s)", tr.DisplayName(), tr.Status, tr.Error)
		}
		if tr.URL == "" {
			t.Errorf("track %s: URL not resolved", tr.DisplayName())
		}
	}

	raw, err := os.ReadFile(j.exportPath())
	if err != nil {
		t.Fatalf("results were not exported: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if len(records) != 2 || records[0]["status"] != "found" {
		t.Errorf("unexpected export %s", raw)
	}
}

func TestJobBackWhileRunning(t *testing.T) {
	_, j := newTestJob(t, modeCSV)
	j.running = true
	nav, _ := j.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if nav != navNone {
		t.Error("esc must not leave a running job")
	}
	j.running = false
	nav, _ = j.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if nav != navMenu {
		t.Error("esc should return to the menu")
	}
}

func TestNextColumn(t *testing.T) {
	headers := []string{"a", "b", "c"}
	tests := []struct {
		current string
		step    int
		want    string
	}{
		{"a", 1, "b"},
		{"c", 1, "a"},
		{"a", -1, "c"},
		{"", 1, "a"},
		{"", -1, "c"},
	}
	for _, tt := range tests {
		if got := nextColumn(headers, tt.current, tt.step); got != tt.want {
			t.Errorf("nextColumn(%q, %d) = %q, want %q", tt.current, tt.step, got, tt.want)
		}
	}
}

func TestTrackInfo(t *testing.T) {
	done := &model.Track{Status: model.TrackStatusDone, FileSize: 3_400_000, Duration: 225}
	if got := trackInfo(done); got != "3.4 MB · 3:45" {
		t.Errorf("trackInfo(done) = %q", got)
	}
	failed := &model.Track{Status: model.TrackStatusError, Error: "No search results for: x"}
	if got := trackInfo(failed); got != failed.Error {
		t.Errorf("trackInfo(error) = %q", got)
	}
	pending := &model.Track{Status: model.TrackStatusPending}
	if got := trackInfo(pending); got != DashPlaceholder {
		t.Errorf("trackInfo(pending) = %q", got)
	}
}

func TestMenuNavigation(t *testing.T) {
	m := New(Deps{Settings: config.Defaults()})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenJob || m.job == nil || m.job.mode != modeCSV {
		t.Fatalf("enter on first item should open the CSV job screen, got screen %v", m.screen)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenMenu {
		t.Errorf("esc should return to the menu, got %v", m.screen)
	}
}

func TestNewOpensInitialSource(t *testing.T) {
	tests := []struct {
		kind tracklist.SourceKind
		want jobMode
	}{
		{tracklist.SourceCSV, modeCSV},
		{tracklist.SourceText, modeText},
		{tracklist.SourceURL, modeURL},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			m := New(Deps{Settings: config.Defaults(), InitialSource: tt.kind, InitialTarget: "input"})
			if m.screen != screenJob || m.job == nil {
				t.Fatalf("screen = %v, want job screen", m.screen)
			}
			if m.job.mode != tt.want {
				t.Errorf("mode = %v, want %v", m.job.mode, tt.want)
			}
			if got := m.job.input.Value(); got != "input" {
				t.Errorf("input = %q", got)
			}
		})
	}

	if m := New(Deps{Settings: config.Defaults()}); m.screen != screenMenu {
		t.Errorf("screen without target = %v, want menu", m.screen)
	}
}

// Package export writes per-track results as JSON and summarizes a batch.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ytget/musicdl/internal/model"
)

// DefaultFileName is used when no export path is given
const DefaultFileName = "download_results.json"

// Record is the exported view of one track
type Record struct {
	Artist     string   `json:"artist"`
	Title      string   `json:"title"`
	Album      string   `json:"album"`
	Query      string   `json:"query"`
	Status     string   `json:"status"`
	URL        *string  `json:"url"`
	ResultPath *string  `json:"result_path"`
	Error      *string  `json:"error"`
	Duration   *float64 `json:"duration"`
	FileSize   *int64   `json:"filesize"`
}

// Summary counts tracks by outcome
type Summary struct {
	Total   int
	Success int
	Errors  int
	Skipped int
	Pending int
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewRecord converts a track into its exported form
func NewRecord(t *model.Track) Record {
	r := Record{
		Artist:     t.Artist,
		Title:      t.Title,
		Album:      t.Album,
		Query:      t.Query,
		Status:     t.Status.String(),
		URL:        optString(t.URL),
		ResultPath: optString(t.ResultPath),
		Error:      optString(t.Error),
	}
	if t.Duration > 0 {
		d := t.Duration
		r.Duration = &d
	}
	if t.FileSize > 0 {
		n := t.FileSize
		r.FileSize = &n
	}
	return r
}

// Marshal encodes tracks as an indented JSON array without HTML escaping
func Marshal(tracks []*model.Track) ([]byte, error) {
	records := make([]Record, 0, len(tracks))
	for _, t := range tracks {
		records = append(records, NewRecord(t))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding results: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteResults writes the JSON export of tracks to path
func WriteResults(path string, tracks []*model.Track) error {
	data, err := Marshal(tracks)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// DefaultPath returns the export file path inside dir
func DefaultPath(dir string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, DefaultFileName)
}

// Summarize counts tracks by status. Found tracks count as successes.
func Summarize(tracks []*model.Track) Summary {
	s := Summary{Total: len(tracks)}
	for _, t := range tracks {
		switch {
		case t.Status == model.TrackStatusSkipped:
			s.Skipped++
		case t.Status.IsSuccess():
			s.Success++
		case t.Status == model.TrackStatusError:
			s.Errors++
		default:
			s.Pending++
		}
	}
	return s
}

// String renders the summary as a single status line
func (s Summary) String() string {
	return fmt.Sprintf("%d total, %d ok, %d failed, %d skipped, %d pending",
		s.Total, s.Success, s.Errors, s.Skipped, s.Pending)
}

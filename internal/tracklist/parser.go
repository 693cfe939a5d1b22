package tracklist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ytget/musicdl/internal/model"
	"github.com/ytget/musicdl/internal/platform"
)

// Default parser limits
const (
	DefaultMaxPreviewRows = 200
	DefaultSampleBytes    = 64 * 1024

	headerSniffRecords  = 20
	delimiterSniffLines = 50
)

// Delimiters are the candidate CSV field separators, in preference order
var Delimiters = []rune{',', ';', '\t', '|'}

var (
	ErrNotFound  = errors.New("file not found")
	ErrEmpty     = errors.New("file appears to be empty")
	ErrNoHeaders = errors.New("no headers found in CSV file")
	ErrNoRows    = errors.New("no data rows found in CSV file")
)

// Dialect describes how a CSV file is laid out
type Dialect struct {
	Encoding  string
	Delimiter rune
	HasHeader bool
}

// Row is one data row keyed by header name
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value of column, or "" if the row lacks it
func (r Row) Get(column string) string {
	if column == "" {
		return ""
	}
	return r.Values[column]
}

// Detection is the result of loading and analysing a CSV file
type Detection struct {
	Path      string
	Dialect   Dialect
	Headers   []string
	Rows      []Row
	ArtistCol string
	TrackCol  string
	AlbumCol  string
	SingleCol string // set when rows hold "Artist - Title" in one column
	URLCol    string
}

// SingleColumn reports whether artist and title come from a single column
func (d *Detection) SingleColumn() bool {
	return d.SingleCol != ""
}

// Parser loads track lists from CSV files
type Parser struct {
	MaxPreviewRows int
	SampleBytes    int
	// Encoding forces a non UTF-8 encoding. UTF-8 names keep auto-detection.
	Encoding string
}

// Option configures a Parser
type Option func(*Parser)

// WithMaxPreviewRows limits how many data rows are loaded
func WithMaxPreviewRows(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.MaxPreviewRows = n
		}
	}
}

// WithSampleBytes sets how much of the file is read for sniffing
func WithSampleBytes(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.SampleBytes = n
		}
	}
}

// WithEncoding forces the file encoding
func WithEncoding(name string) Option {
	return func(p *Parser) {
		p.Encoding = NormalizeEncoding(name)
	}
}

// NewParser creates a parser with default limits
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		MaxPreviewRows: DefaultMaxPreviewRows,
		SampleBytes:    DefaultSampleBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) encodingFor(sample []byte, truncated bool) string {
	switch p.Encoding {
	case EncodingLatin1, EncodingCP1252:
		return p.Encoding
	default:
		return detectEncoding(sample, truncated)
	}
}

// Sniff detects encoding, delimiter and header row from the start of a file
func (p *Parser) Sniff(path string) (*Dialect, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, p.SampleBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sample := buf[:n]
	truncated := n == p.SampleBytes

	d := &Dialect{Encoding: p.encodingFor(sample, truncated), Delimiter: ',', HasHeader: true}
	text, err := Decode(sample, d.Encoding)
	if err != nil {
		return nil, err
	}
	if truncated {
		if i := strings.LastIndexByte(text, '\n'); i > 0 {
			text = text[:i]
		}
	}

	lines := sampleLines(text, delimiterSniffLines)
	d.Delimiter = sniffDelimiter(lines)
	d.HasHeader = sniffHeader(readRecords(text, d.Delimiter, headerSniffRecords))
	return d, nil
}

// Load sniffs and reads a CSV file, then detects its columns
func (p *Parser) Load(path string) (*Detection, error) {
	dialect, err := p.Sniff(path)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze CSV format: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	text, err := Decode(raw, dialect.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	r := newReader(text, dialect.Delimiter)
	det := &Detection{Path: path, Dialect: *dialect}

	for len(det.Rows) < p.MaxPreviewRows {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}

		if det.Headers == nil {
			if dialect.HasHeader {
				det.Headers = buildHeaders(record)
				continue
			}
			det.Headers = syntheticHeaders(len(record))
		}

		line, _ := r.FieldPos(0)
		row := Row{Line: line, Values: make(map[string]string, len(det.Headers))}
		for i, h := range det.Headers {
			if i < len(record) {
				row.Values[h] = strings.TrimSpace(record[i])
			}
		}
		det.Rows = append(det.Rows, row)
	}

	if len(det.Headers) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHeaders, path)
	}
	if len(det.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRows, path)
	}

	cols := detectColumns(det.Headers, det.Rows)
	det.ArtistCol = cols.artist
	det.TrackCol = cols.track
	det.AlbumCol = cols.album
	det.SingleCol = cols.single
	det.URLCol = cols.url
	return det, nil
}

// BuildTracks turns detected rows into pending tracks. Non-empty overrides
// select the artist and title columns explicitly.
func BuildTracks(d *Detection, artistOverride, trackOverride string) []*model.Track {
	artistCol, trackCol := d.ArtistCol, d.TrackCol
	single := d.SingleCol
	if artistOverride != "" || trackOverride != "" {
		single = ""
		if artistOverride != "" {
			artistCol = artistOverride
		}
		if trackOverride != "" {
			trackCol = trackOverride
		}
	}

	albumCol := d.AlbumCol
	if albumCol == artistCol || albumCol == trackCol {
		albumCol = ""
	}

	tracks := make([]*model.Track, 0, len(d.Rows))
	for _, row := range d.Rows {
		var artist, title string
		if single != "" {
			artist, title = ParseArtistTitle(row.Get(single))
		} else {
			artist, title = row.Get(artistCol), row.Get(trackCol)
		}

		url := ""
		if raw := row.Get(d.URLCol); raw != "" {
			if normalized, err := platform.NormalizeVideoURL(raw); err == nil {
				url = normalized
			}
		}

		var t *model.Track
		switch {
		case artist == "" && title == "" && url == "":
			continue
		case artist == "" && title == "":
			t = model.NewURLTrack(url, "")
		default:
			t = model.NewTrack(artist, title, row.Get(albumCol))
			if t.Query == "" {
				continue
			}
			t.SourceURL, t.URL = url, url
		}
		t.Line = row.Line
		tracks = append(tracks, t)
	}
	return tracks
}

func newReader(text string, delimiter rune) *csv.Reader {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r
}

func readRecords(text string, delimiter rune, limit int) [][]string {
	r := newReader(text, delimiter)
	var records [][]string
	for len(records) < limit {
		rec, err := r.Read()
		if err != nil {
			break
		}
		records = append(records, rec)
	}
	return records
}

func buildHeaders(record []string) []string {
	headers := make([]string, len(record))
	seen := make(map[string]int, len(record))
	for i, h := range record {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "col_" + strconv.Itoa(i+1)
		}
		seen[h]++
		if seen[h] > 1 {
			h = h + "_" + strconv.Itoa(seen[h])
		}
		headers[i] = h
	}
	return headers
}

func syntheticHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = "col_" + strconv.Itoa(i+1)
	}
	return headers
}

func sampleLines(text string, limit int) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
		if len(lines) == limit {
			break
		}
	}
	return lines
}

// sniffDelimiter picks the candidate whose per-line count is most consistent
func sniffDelimiter(lines []string) rune {
	best, bestScore := Delimiters[0], 0
	for _, d := range Delimiters {
		counts := make(map[int]int)
		for _, l := range lines {
			if c := countOutsideQuotes(l, d); c > 0 {
				counts[c]++
			}
		}
		score := 0
		for _, n := range counts {
			score = max(score, n)
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

func countOutsideQuotes(line string, d rune) int {
	count, quoted := 0, false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			count++
		}
	}
	return count
}

// sniffHeader votes per column: a header cell that differs in kind or length
// from a uniform data column counts for a header row.
func sniffHeader(records [][]string) bool {
	if len(records) < 2 {
		return true
	}
	header := records[0]
	for _, cell := range header {
		if isNumeric(cell) {
			return false
		}
	}
	for _, cell := range header {
		if isKnownHeader(cell) {
			return true
		}
	}

	votes := 0
	for col, cell := range header {
		allNumeric, sameLength := true, true
		length, seen := -1, 0
		for _, rec := range records[1:] {
			if col >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[col])
			seen++
			if !isNumeric(v) {
				allNumeric = false
			}
			n := utf8.RuneCountInString(v)
			if length == -1 {
				length = n
			} else if n != length {
				sameLength = false
			}
		}
		if seen == 0 {
			continue
		}
		switch {
		case allNumeric:
			votes++
		case sameLength:
			if utf8.RuneCountInString(strings.TrimSpace(cell)) != length {
				votes++
			} else {
				votes--
			}
		}
	}
	return votes > 0
}

func isKnownHeader(cell string) bool {
	return ScoreHeader(cell, ArtistSynonyms) >= exactMatchScore ||
		ScoreHeader(cell, TrackSynonyms) >= exactMatchScore ||
		ScoreHeader(cell, AlbumSynonyms) >= exactMatchScore
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

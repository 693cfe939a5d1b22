package tracklist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestNewParser(t *testing.T) {
	p := NewParser()
	if p.MaxPreviewRows != DefaultMaxPreviewRows {
		t.Errorf("MaxPreviewRows = %d, expected %d", p.MaxPreviewRows, DefaultMaxPreviewRows)
	}
	if p.SampleBytes != 64*1024 {
		t.Errorf("SampleBytes = %d, expected %d", p.SampleBytes, 64*1024)
	}

	p = NewParser(WithMaxPreviewRows(5), WithSampleBytes(0), WithEncoding("Windows-1252"))
	if p.MaxPreviewRows != 5 {
		t.Errorf("MaxPreviewRows = %d, expected 5", p.MaxPreviewRows)
	}
	if p.SampleBytes != DefaultSampleBytes {
		t.Errorf("SampleBytes should ignore non-positive values, got %d", p.SampleBytes)
	}
	if p.Encoding != EncodingCP1252 {
		t.Errorf("Encoding = %q, expected %q", p.Encoding, EncodingCP1252)
	}
}

func TestScoreHeader(t *testing.T) {
	tests := []struct {
		header   string
		synonyms []string
		expected int
	}{
		{"Artist", ArtistSynonyms, 15},
		{"Artist Name", ArtistSynonyms, 18},
		{"Title", TrackSynonyms, 14},
		{"Track Name", TrackSynonyms, 18},
		{"Title", ArtistSynonyms, 3},
		{"Year", ArtistSynonyms, 0},
		{"Album", AlbumSynonyms, 11},
	}

	for _, tt := range tests {
		if got := ScoreHeader(tt.header, tt.synonyms); got != tt.expected {
			t.Errorf("ScoreHeader(%q) = %d, expected %d", tt.header, got, tt.expected)
		}
	}
}

func TestLoad_DetectsColumns(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		delimiter rune
		artist    string
		track     string
		album     string
		single    string
		url       string
	}{
		{
			name:      "comma with album",
			content:   "Artist,Title,Album\nRadiohead,Creep,Pablo Honey\nBjörk,Jóga,Homogenic\n",
			delimiter: ',',
			artist:    "Artist",
			track:     "Title",
			album:     "Album",
		},
		{
			name:      "semicolon synonyms",
			content:   "Song;Performer\nCreep;Radiohead\nJoga;Bjork\nTeardrop;Massive Attack\n",
			delimiter: ';',
			artist:    "Performer",
			track:     "Song",
		},
		{
			name:      "tab separated export",
			content:   "Track Name\tArtist Name\tAlbum Name\nCreep\tRadiohead\tPablo Honey\n",
			delimiter: '\t',
			artist:    "Artist Name",
			track:     "Track Name",
			album:     "Album Name",
		},
		{
			name:      "headerless single column",
			content:   "Radiohead - Creep\nBjörk - Jóga\nMassive Attack - Teardrop\n",
			delimiter: ',',
			single:    "col_1",
		},
		{
			name:      "same column drops artist",
			content:   "Name,Year\nCreep,1992\nJoga,1997\n",
			delimiter: ',',
			track:     "Name",
		},
		{
			name:      "url column",
			content:   "Title,Link\nCreep,https://www.youtube.com/watch?v=XFkzRNyygfk\nJoga,\n",
			delimiter: ',',
			track:     "Title",
			url:       "Link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "list.csv", []byte(tt.content))
			det, err := NewParser().Load(path)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if det.Dialect.Delimiter != tt.delimiter {
				t.Errorf("Delimiter = %q, expected %q", det.Dialect.Delimiter, tt.delimiter)
			}
			if det.ArtistCol != tt.artist {
				t.Errorf("ArtistCol = %q, expected %q", det.ArtistCol, tt.artist)
			}
			if det.TrackCol != tt.track {
				t.Errorf("TrackCol = %q, expected %q", det.TrackCol, tt.track)
			}
			if det.AlbumCol != tt.album {
				t.Errorf("AlbumCol = %q, expected %q", det.AlbumCol, tt.album)
			}
			if det.SingleCol != tt.single {
				t.Errorf("SingleCol = %q, expected %q", det.SingleCol, tt.single)
			}
			if det.URLCol != tt.url {
				t.Errorf("URLCol = %q, expected %q", det.URLCol, tt.url)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  *string
		expected error
	}{
		{"missing file", nil, ErrNotFound},
		{"empty file", ptr(""), ErrEmpty},
		{"whitespace only", ptr("\n  \n"), ErrEmpty},
		{"header only", ptr("Artist,Title\n"), ErrNoRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.csv")
			if tt.content != nil {
				path = writeFile(t, "list.csv", []byte(*tt.content))
			}
			_, err := NewParser().Load(path)
			if !errors.Is(err, tt.expected) {
				t.Errorf("Load() error = %v, expected %v", err, tt.expected)
			}
		})
	}
}

func ptr(s string) *string { return &s }

func TestLoad_Encodings(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		encoding string
		artist   string
	}{
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "Artist,Title\nBjörk,Jóga\n"...), EncodingUTF8BOM, "Björk"},
		{"utf-8", []byte("Artist,Title\nBjörk,Jóga\n"), EncodingUTF8, "Björk"},
		{"latin-1", []byte("Artist,Title\nBj\xf6rk,J\xf3ga\n"), EncodingLatin1, "Björk"},
		{"cp1252", []byte("Artist,Title\nSin\xe9ad O\x92Connor,Nothing Compares\n"), EncodingCP1252, "Sinéad O’Connor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "list.csv", tt.content)
			det, err := NewParser().Load(path)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if det.Dialect.Encoding != tt.encoding {
				t.Errorf("Encoding = %q, expected %q", det.Dialect.Encoding, tt.encoding)
			}
			if det.Headers[0] != "Artist" {
				t.Errorf("first header = %q, BOM should be stripped", det.Headers[0])
			}
			if got := det.Rows[0].Get("Artist"); got != tt.artist {
				t.Errorf("artist = %q, expected %q", got, tt.artist)
			}
		})
	}
}

func TestLoad_MaxPreviewRows(t *testing.T) {
	path := writeFile(t, "list.csv", []byte("Artist,Title\nA,1\nB,2\nC,3\nD,4\n"))
	det, err := NewParser(WithMaxPreviewRows(2)).Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(det.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(det.Rows))
	}
	if det.Rows[0].Line != 2 || det.Rows[1].Line != 3 {
		t.Errorf("unexpected line numbers %d, %d", det.Rows[0].Line, det.Rows[1].Line)
	}
}

func TestLoad_DuplicateAndBlankHeaders(t *testing.T) {
	path := writeFile(t, "list.csv", []byte("Artist,,Artist\nA,B,C\n"))
	det, err := NewParser().Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	expected := []string{"Artist", "col_2", "Artist_2"}
	for i, h := range expected {
		if det.Headers[i] != h {
			t.Errorf("Headers[%d] = %q, expected %q", i, det.Headers[i], h)
		}
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		lines    []string
		expected rune
	}{
		{[]string{"a,b,c", "d,e,f"}, ','},
		{[]string{"a;b", "c;d", "e;f"}, ';'},
		{[]string{"a\tb", "c\td"}, '\t'},
		{[]string{"a|b", "c|d"}, '|'},
		{[]string{`"a;b",c`, `"d;e",f`}, ','},
		{[]string{"no delimiters here"}, ','},
		{nil, ','},
	}

	for _, tt := range tests {
		if got := sniffDelimiter(tt.lines); got != tt.expected {
			t.Errorf("sniffDelimiter(%q) = %q, expected %q", tt.lines, got, tt.expected)
		}
	}
}

func TestSniffHeader(t *testing.T) {
	tests := []struct {
		name     string
		records  [][]string
		expected bool
	}{
		{"single record", [][]string{{"anything"}}, true},
		{"known header", [][]string{{"Artist", "Title"}, {"A", "B"}}, true},
		{"numeric first row", [][]string{{"1", "Creep"}, {"2", "Joga"}}, false},
		{"numeric column", [][]string{{"Rank", "Song"}, {"1", "Creep"}, {"2", "Joga"}}, true},
		{"varied data", [][]string{{"Radiohead - Creep"}, {"Björk - Jóga"}, {"Massive Attack - Teardrop"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffHeader(tt.records); got != tt.expected {
				t.Errorf("sniffHeader() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		sample    []byte
		truncated bool
		expected  string
	}{
		{[]byte{0xEF, 0xBB, 0xBF, 'a'}, false, EncodingUTF8BOM},
		{[]byte("plain ascii"), false, EncodingUTF8},
		{[]byte("caf\xc3\xa9"), false, EncodingUTF8},
		{[]byte("truncated \xc3"), true, EncodingUTF8},
		{[]byte("truncated \xc3"), false, EncodingLatin1},
		{[]byte("caf\xe9 au lait"), true, EncodingLatin1},
		{[]byte("quote \x93x\x94"), false, EncodingCP1252},
		{nil, false, EncodingUTF8},
	}

	for _, tt := range tests {
		if got := detectEncoding(tt.sample, tt.truncated); got != tt.expected {
			t.Errorf("DetectEncoding(%q) = %q, expected %q", tt.sample, got, tt.expected)
		}
	}
}

func TestNormalizeEncoding(t *testing.T) {
	tests := map[string]string{
		"utf-8-sig":  EncodingUTF8BOM,
		"UTF8":       EncodingUTF8,
		"ISO-8859-1": EncodingLatin1,
		"latin_1":    EncodingLatin1,
		"cp1252":     EncodingCP1252,
		"koi8-r":     "",
	}
	for input, expected := range tests {
		if got := NormalizeEncoding(input); got != expected {
			t.Errorf("NormalizeEncoding(%q) = %q, expected %q", input, got, expected)
		}
	}
}

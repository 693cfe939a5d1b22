package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir", "nested")

	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestGetHomeDownloadsDir(t *testing.T) {
	downloadsDir, err := GetHomeDownloadsDir()
	if err != nil {
		t.Fatalf("Failed to get downloads directory: %v", err)
	}
	if filepath.Base(downloadsDir) != "Downloads" {
		t.Errorf("Expected directory to end with 'Downloads', got: %s", downloadsDir)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~", home},
		{"~/Music", filepath.Join(home, "Music")},
		{"/abs/path", "/abs/path"},
		{"relative/~/x", "relative/~/x"},
		{"~user/x", "~user/x"},
	}

	for _, tt := range tests {
		if got := ExpandHome(tt.input); got != tt.expected {
			t.Errorf("ExpandHome(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Radiohead - Creep", "Radiohead - Creep"},
		{"invalid chars", `AC/DC: Back "In" Black?`, "DC_ Back _In_ Black"},
		{"backslash path", `C:\music\song`, "song"},
		{"tabs and newlines", "a\t\nb", "a_b"},
		{"trim edges", "__ song. ", "song"},
		{"empty", "", FallbackFileName},
		{"dots only", "..", FallbackFileName},
		{"leading dot trimmed", ".bashrc", "bashrc"},
		{"tilde", "~home", FallbackFileName},
		{"reserved", "CON", FallbackFileName},
		{"reserved lower with ext", "nul.txt", FallbackFileName},
		{"unicode", "Björk - Jóga", "Björk - Jóga"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename_Length(t *testing.T) {
	long := strings.Repeat("é", 200) // 400 bytes
	got := SanitizeFilename(long)
	if len(got) > MaxFileNameLength {
		t.Errorf("expected at most %d bytes, got %d", MaxFileNameLength, len(got))
	}
	if !strings.HasPrefix(long, got) {
		t.Error("truncation should cut on a rune boundary")
	}
}

func TestValidateFilePath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "list.csv")
	if err := os.WriteFile(existing, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		path      string
		mustExist bool
		want      string
		wantErr   error
	}{
		{name: "absolute", path: existing, mustExist: true, want: existing},
		{name: "relative with parent", path: "sub/../list.csv", mustExist: true, want: existing},
		{name: "missing allowed", path: "new.json", want: filepath.Join(dir, "new.json")},
		{name: "missing", path: filepath.Join(dir, "missing.csv"), mustExist: true, wantErr: ErrPathNotFound},
		{name: "directory", path: "sub", mustExist: true, wantErr: ErrNotAFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFilePath(tt.path, tt.mustExist)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, expected %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resolved, _ := filepath.EvalSymlinks(filepath.Dir(got)); resolved != "" {
				got = filepath.Join(resolved, filepath.Base(got))
			}
			want := tt.want
			if resolved, _ := filepath.EvalSymlinks(filepath.Dir(want)); resolved != "" {
				want = filepath.Join(resolved, filepath.Base(want))
			}
			if got != want {
				t.Errorf("ValidateFilePath() = %q, expected %q", got, want)
			}
		})
	}

	if _, err := ValidateFilePath("  ", false); err == nil {
		t.Error("expected error for empty path")
	}
}

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if age > 0 {
		mod := time.Now().Add(-age)
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFindDownloadedFile_ExactMatch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Some Song.opus", "Other.m4a", "Some Song.info.json"} {
		writeAged(t, filepath.Join(dir, name), time.Hour)
	}

	got, err := FindDownloadedFile(FileLookup{Dir: dir, Titles: []string{"Some Song"}, Since: time.Now()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(got) != "Some Song.opus" {
		t.Errorf("got %q, expected Some Song.opus", got)
	}
}

func TestFindDownloadedFile_SanitizedMatch(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "AC_DC - Thunder.opus")
	writeAged(t, p, time.Hour)

	got, err := FindDownloadedFile(FileLookup{Dir: dir, Titles: []string{"AC:DC - Thunder"}, Since: time.Now()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p {
		t.Errorf("got %q, expected %q", got, p)
	}
}

func TestFindDownloadedFile_RestrictedMatch(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "Queen_-_Bohemian_Rhapsody_Official_Video.opus")
	writeAged(t, want, time.Hour)
	writeAged(t, filepath.Join(dir, "Nirvana_-_Lithium.opus"), 0)

	got, err := FindDownloadedFile(FileLookup{
		Dir:    dir,
		Titles: []string{"Bohemian Rhapsody", "Queen - Bohemian Rhapsody (Official Video)"},
		Since:  time.Now().Add(-time.Second),
		Recent: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("got %q, expected %q", got, want)
	}
}

func TestFindDownloadedFile_RecentFallback(t *testing.T) {
	dir := t.TempDir()
	start := time.Now().Add(-5 * time.Second)

	stale := filepath.Join(dir, "stale.opus")
	fresh := filepath.Join(dir, "fresh.opus")
	writeAged(t, stale, time.Hour)
	writeAged(t, fresh, 0)
	writeAged(t, filepath.Join(dir, "newest.opus.part"), 0)

	got, err := FindDownloadedFile(FileLookup{Dir: dir, Titles: []string{"Unrelated title"}, Since: start, Recent: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != fresh {
		t.Errorf("got %q, expected %q", got, fresh)
	}

	if _, err := FindDownloadedFile(FileLookup{Dir: dir, Titles: []string{"Unrelated title"}, Since: start}); err == nil {
		t.Error("expected error when the recent fallback is disabled")
	}
}

func TestFindDownloadedFile_Exclude(t *testing.T) {
	dir := t.TempDir()
	claimed := filepath.Join(dir, "claimed.opus")
	writeAged(t, claimed, 0)

	exclude := func(path string) bool { return path == claimed }
	_, err := FindDownloadedFile(FileLookup{Dir: dir, Titles: []string{"claimed"}, Recent: true, Exclude: exclude})
	if err == nil {
		t.Error("expected excluded file to be ignored")
	}
}

func TestFindDownloadedFile_NotFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindDownloadedFile(FileLookup{Dir: dir, Titles: []string{"missing"}, Recent: true}); err == nil {
		t.Error("expected error for empty directory")
	}
	if _, err := FindDownloadedFile(FileLookup{Dir: filepath.Join(dir, "nope"), Titles: []string{"missing"}}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRestrictFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Queen - Bohemian Rhapsody", "Queen_-_Bohemian_Rhapsody"},
		{"Nirvana - Smells Like Teen Spirit (Official Music Video)", "Nirvana_-_Smells_Like_Teen_Spirit_Official_Music_Video"},
		{"AC/DC: Thunderstruck", "AC_DC_-_Thunderstruck"},
		{"Beyoncé - Halo", "Beyonce_-_Halo"},
		{"What's Up?", "What_s_Up"},
		{"  spaced   out  ", "spaced_out"},
		{"???", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := RestrictFilename(tt.input); got != tt.expected {
				t.Errorf("RestrictFilename(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestOpenInFileManager_NonExistentPath(t *testing.T) {
	err := OpenInFileManager(filepath.Join(t.TempDir(), "nonexistent"))
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
}

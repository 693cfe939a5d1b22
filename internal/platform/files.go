package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// Filename limits
const (
	MaxFileNameLength = 255
	FallbackFileName  = "audio"
)

// RecentFileWindow bounds how old a file may be to count as a fresh download
const RecentFileWindow = 60 * time.Second

// File extensions that are never the downloaded audio
var (
	SkippedExtensions = []string{".part", ".ytdl", ".json", ".jpg", ".jpeg", ".png", ".webp", ".tmp"}
)

var (
	// ErrNotAFile is returned when a path that must be a file is a directory
	ErrNotAFile = errors.New("not a regular file")
	// ErrPathNotFound is returned when a required path does not exist
	ErrPathNotFound = errors.New("path does not exist")
)

var (
	invalidFileChars = regexp.MustCompile(`[\\/:*?"<>|\n\r\t]+`)

	repeatedUnderscores = regexp.MustCompile(`_{2,}`)

	windowsReservedNames = map[string]struct{}{
		"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
		"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
		"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
	}
)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return homeDir
	}
	return filepath.Join(homeDir, path[2:])
}

// SanitizeFilename turns an arbitrary title into a safe single path component
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = invalidFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_ .")

	if name == "" || name == ".." || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") {
		return FallbackFileName
	}

	stem := name
	if i := strings.Index(stem, "."); i > 0 {
		stem = stem[:i]
	}
	if _, reserved := windowsReservedNames[strings.ToUpper(stem)]; reserved {
		return FallbackFileName
	}

	if len(name) > MaxFileNameLength {
		cut := MaxFileNameLength
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	return name
}

// ValidateFilePath expands "~" and returns the absolute, cleaned path. With
// mustExist the path has to name an existing regular file.
func ValidateFilePath(path string, mustExist bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("file path is empty")
	}

	cleaned, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	if mustExist {
		info, err := os.Stat(cleaned)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrPathNotFound, cleaned)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrNotAFile, cleaned)
		}
	}
	return cleaned, nil
}

// FileLookup describes how FindDownloadedFile searches a directory
type FileLookup struct {
	Dir string
	// Titles are tried in order, each as given, sanitized and in yt-dlp's
	// restricted form
	Titles []string
	Since  time.Time
	// Recent allows falling back to the newest file modified since Since
	// (or within RecentFileWindow) when no title matches
	Recent bool
	// Exclude rejects paths that already belong to another track
	Exclude func(path string) bool
}

// FindDownloadedFile locates the file yt-dlp wrote. Title matches win over
// the recent-file fallback.
func FindDownloadedFile(l FileLookup) (string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", l.Dir, err)
	}

	byStem := make(map[string]string)
	cutoff := time.Now().Add(-RecentFileWindow)
	if !l.Since.IsZero() && l.Since.Before(cutoff) {
		cutoff = l.Since
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var recent []candidate

	for _, entry := range entries {
		if entry.IsDir() || isSkippedFile(entry.Name()) {
			continue
		}
		name := entry.Name()
		path := filepath.Join(l.Dir, name)
		if l.Exclude != nil && l.Exclude(path) {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if _, seen := byStem[stem]; !seen {
			byStem[stem] = path
		}

		if !l.Recent {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			recent = append(recent, candidate{path: path, mod: info.ModTime()})
		}
	}

	for _, title := range l.Titles {
		if title == "" {
			continue
		}
		for _, stem := range []string{title, SanitizeFilename(title), RestrictFilename(title)} {
			if path, ok := byStem[stem]; ok {
				return path, nil
			}
		}
	}

	if len(recent) == 0 {
		return "", fmt.Errorf("downloaded file not found for %q in %s", strings.Join(l.Titles, " / "), l.Dir)
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].mod.After(recent[j].mod)
	})
	return recent[0].path, nil
}

// RestrictFilename mirrors yt-dlp's --restrict-filenames: accents are
// dropped, spaces and punctuation become "_", ":" becomes "_-".
func RestrictFilename(title string) string {
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, title); err == nil {
		title = folded
	}

	var b strings.Builder
	for _, r := range title {
		switch {
		case r == '?' || r == '"' || r < 32 || r == 127:
		case r == ':':
			b.WriteString("_-")
		case strings.ContainsRune(`\/|*<>`, r):
			b.WriteByte('_')
		case strings.ContainsRune("!&'()[]{}$;`^,#", r) || unicode.IsSpace(r) || r > unicode.MaxASCII:
			if unicode.Is(unicode.Mn, r) || unicode.IsControl(r) {
				continue
			}
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	out := repeatedUnderscores.ReplaceAllString(b.String(), "_")
	out = strings.Trim(out, "_")
	out = strings.TrimLeft(out, "-.")
	if out == "" {
		return "_"
	}
	return out
}

func isSkippedFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// OpenInFileManager opens a directory, or reveals a file, in the system file manager
func OpenInFileManager(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotFound, absPath)
	}

	switch runtime.GOOS {
	case OSDarwin:
		if info.IsDir() {
			return exec.Command(OpenCommand, absPath).Run()
		}
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Run()
	case OSWindows:
		if info.IsDir() {
			return exec.Command(ExplorerCommand, absPath).Run()
		}
		return exec.Command(ExplorerCommand, WindowsSelectParam, absPath).Run()
	case OSLinux:
		dir := absPath
		if !info.IsDir() {
			// File selection is not standardized on Linux
			dir = filepath.Dir(absPath)
		}
		return openDirLinux(dir)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

func openDirLinux(dir string) error {
	if err := exec.Command(XDGOpenCommand, dir).Run(); err == nil {
		return nil
	}
	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.Command(fm, dir).Run()
		}
	}
	return fmt.Errorf("no suitable file manager found")
}

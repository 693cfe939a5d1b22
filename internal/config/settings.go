package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ytget/musicdl/internal/platform"
)

// AppName names the config and data directories
const AppName = "musicdl"

// ConfigFileName is the settings file inside the config directory
const ConfigFileName = "config.json"

// Themes
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeMono  = "mono"
)

// Languages
const (
	LanguageEnglish    = "en"
	LanguageRussian    = "ru"
	LanguagePortuguese = "pt"
)

// MusicDirName is the default download folder inside the user's Downloads
const MusicDirName = "MusicDL Downloads"

// Concurrency limits
const (
	MinConcurrentDownloads = 1
	MaxConcurrentDownloads = 5
)

// Preview limits
const (
	MinPreviewRows = 1
	MaxPreviewRows = 10000
)

// Default values
const (
	DefaultMusicDir               = "~/Downloads/" + MusicDirName
	DefaultCacheDir               = ".cache"
	DefaultLogsDir                = "logs"
	DefaultMaxConcurrentDownloads = 3
	DefaultAudioFormat            = "bestaudio[ext=webm][acodec=opus]/bestaudio/best"
	DefaultAudioCodec             = "opus"
	DefaultBitrate                = "best"
	DefaultOutputTemplate         = "%(title)s.%(ext)s"
	DefaultOverwriteFiles         = true
	DefaultMaxPreviewRows         = 200
	DefaultEncoding               = "utf-8-sig"
	DefaultShowClock              = true
	DefaultTheme                  = ThemeDark
	DefaultLanguage               = LanguageEnglish
)

// Settings holds the JSON configuration
type Settings struct {
	MusicDir               string `json:"music_dir"`
	CacheDir               string `json:"cache_dir"`
	LogsDir                string `json:"logs_dir"`
	MaxConcurrentDownloads int    `json:"max_concurrent_downloads"`
	AudioFormat            string `json:"audio_format"`
	AudioCodec             string `json:"audio_codec"`
	Bitrate                string `json:"bitrate"`
	OutputTemplate         string `json:"output_template"`
	OverwriteFiles         bool   `json:"overwrite_files"`
	MaxPreviewRows         int    `json:"max_preview_rows"`
	Encoding               string `json:"encoding"`
	ShowClock              bool   `json:"show_clock"`
	Theme                  string `json:"theme"`
	UserAgent              string `json:"user_agent"`
	WriteInfoJSON          bool   `json:"write_info_json"`
	WriteThumbnail         bool   `json:"write_thumbnail"`
	Language               string `json:"language"`
}

// Defaults returns the settings used when no valid file exists
func Defaults() Settings {
	return Settings{
		MusicDir:               DefaultMusicDir,
		CacheDir:               DefaultCacheDir,
		LogsDir:                DefaultLogsDir,
		MaxConcurrentDownloads: DefaultMaxConcurrentDownloads,
		AudioFormat:            DefaultAudioFormat,
		AudioCodec:             DefaultAudioCodec,
		Bitrate:                DefaultBitrate,
		OutputTemplate:         DefaultOutputTemplate,
		OverwriteFiles:         DefaultOverwriteFiles,
		MaxPreviewRows:         DefaultMaxPreviewRows,
		Encoding:               DefaultEncoding,
		ShowClock:              DefaultShowClock,
		Theme:                  DefaultTheme,
		Language:               DefaultLanguage,
	}
}

// GetThemeOptions returns available theme names
func GetThemeOptions() []string {
	return []string{ThemeDark, ThemeLight, ThemeMono}
}

// GetLanguageOptions returns the supported interface languages
func GetLanguageOptions() []string {
	return []string{LanguageEnglish, LanguagePortuguese, LanguageRussian}
}

// SetLanguage sets the interface language, falling back to English for
// unsupported codes
func (s *Settings) SetLanguage(lang string) {
	switch lang {
	case LanguageEnglish, LanguageRussian, LanguagePortuguese:
		s.Language = lang
	default:
		s.Language = DefaultLanguage
	}
}

// SetMaxConcurrentDownloads sets the worker count clamped to 1..5
func (s *Settings) SetMaxConcurrentDownloads(count int) {
	if count < MinConcurrentDownloads {
		count = MinConcurrentDownloads
	}
	if count > MaxConcurrentDownloads {
		count = MaxConcurrentDownloads
	}
	s.MaxConcurrentDownloads = count
}

// SetMaxPreviewRows sets how many CSV rows are loaded
func (s *Settings) SetMaxPreviewRows(rows int) {
	if rows < MinPreviewRows {
		rows = DefaultMaxPreviewRows
	}
	if rows > MaxPreviewRows {
		rows = MaxPreviewRows
	}
	s.MaxPreviewRows = rows
}

// SetTheme sets the UI theme, falling back to dark for unknown names
func (s *Settings) SetTheme(theme string) {
	switch theme {
	case ThemeDark, ThemeLight, ThemeMono:
		s.Theme = theme
	default:
		s.Theme = DefaultTheme
	}
}

// SetOutputTemplate sets the yt-dlp output template
func (s *Settings) SetOutputTemplate(template string) {
	if template == "" {
		template = DefaultOutputTemplate
	}
	s.OutputTemplate = template
}

// Normalize replaces empty or out of range values with defaults
func (s *Settings) Normalize() {
	d := Defaults()
	if s.MusicDir == "" {
		s.MusicDir = d.MusicDir
	}
	if s.CacheDir == "" {
		s.CacheDir = d.CacheDir
	}
	if s.LogsDir == "" {
		s.LogsDir = d.LogsDir
	}
	if s.AudioFormat == "" {
		s.AudioFormat = d.AudioFormat
	}
	if s.AudioCodec == "" {
		s.AudioCodec = d.AudioCodec
	}
	if s.Bitrate == "" {
		s.Bitrate = d.Bitrate
	}
	if s.Encoding == "" {
		s.Encoding = d.Encoding
	}
	s.SetMaxConcurrentDownloads(s.MaxConcurrentDownloads)
	s.SetMaxPreviewRows(s.MaxPreviewRows)
	s.SetTheme(s.Theme)
	s.SetLanguage(s.Language)
	s.SetOutputTemplate(s.OutputTemplate)
}

// Resolve expands "~" and anchors relative directories under dataDir. The
// default music directory follows the platform's Downloads folder.
func (s *Settings) Resolve(dataDir string) {
	if s.MusicDir == DefaultMusicDir {
		if downloads, err := platform.GetHomeDownloadsDir(); err == nil {
			s.MusicDir = filepath.Join(downloads, MusicDirName)
		}
	}
	resolve := func(p string) string {
		p = platform.ExpandHome(p)
		if filepath.IsAbs(p) || dataDir == "" {
			return p
		}
		return filepath.Join(dataDir, p)
	}
	s.MusicDir = resolve(s.MusicDir)
	s.CacheDir = resolve(s.CacheDir)
	s.LogsDir = resolve(s.LogsDir)
}

// EnsureDirectories creates the music, cache and logs directories
func (s *Settings) EnsureDirectories() error {
	for _, dir := range []string{s.MusicDir, s.CacheDir, s.LogsDir} {
		if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// DefaultPath returns the per-user config file path
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, AppName, ConfigFileName), nil
}

// DataDir returns the per-user data directory that anchors relative paths
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	switch runtime.GOOS {
	case platform.OSDarwin:
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, AppName)
		}
	case platform.OSWindows:
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, AppName)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", AppName)
	}
	return AppName
}

// Manager loads and saves settings from a JSON file
type Manager struct {
	path    string
	dataDir string
}

// NewManager creates a manager for path; an empty path selects DefaultPath
func NewManager(path string) (*Manager, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Manager{path: platform.ExpandHome(path), dataDir: DataDir()}, nil
}

// Path returns the settings file path
func (m *Manager) Path() string {
	return m.path
}

// SetDataDir changes the directory relative paths resolve against
func (m *Manager) SetDataDir(dir string) {
	m.dataDir = dir
}

// Load reads the settings file. A missing file yields defaults; an invalid
// file or unknown keys are logged and also yield defaults.
func (m *Manager) Load() (Settings, error) {
	s := Defaults()

	raw, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("using default configuration", "path", m.path)
	case err != nil:
		return s, fmt.Errorf("reading config %s: %w", m.path, err)
	default:
		loaded := Defaults()
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&loaded); err != nil {
			slog.Warn("invalid config file, using defaults", "path", m.path, "error", err)
		} else {
			s = loaded
			slog.Info("loaded configuration", "path", m.path)
		}
	}

	s.Normalize()
	s.Resolve(m.dataDir)
	return s, nil
}

// Save writes settings as indented JSON, creating the directory if needed
func (m *Manager) Save(s Settings) error {
	s.Normalize()
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(m.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", m.path, err)
	}
	slog.Info("saved configuration", "path", m.path)
	return nil
}

// Reset returns resolved default settings without touching the file
func (m *Manager) Reset() Settings {
	s := Defaults()
	s.Resolve(m.dataDir)
	return s
}

package ui

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ytget/musicdl/internal/config"
	"github.com/ytget/musicdl/internal/tracklist"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindInt
	kindBool
	kindChoice
)

// AudioCodecs are the post-processing codecs offered in settings
var AudioCodecs = []string{"opus", "mp3", "m4a", "aac", "flac", "vorbis", "wav", "best"}

// settingsField is one editable JSON key
type settingsField struct {
	key     string
	kind    fieldKind
	choices []string
	input   textinput.Model
}

func newField(key string, kind fieldKind, value string, choices ...string) settingsField {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 1024
	in.Width = InputWidth
	in.SetValue(value)
	return settingsField{key: key, kind: kind, choices: choices, input: in}
}

func (f *settingsField) editable() bool {
	return f.kind == kindText || f.kind == kindInt
}

// cycle moves a bool or choice field to its next value
func (f *settingsField) cycle(step int) {
	switch f.kind {
	case kindBool:
		v, _ := strconv.ParseBool(f.input.Value())
		f.input.SetValue(strconv.FormatBool(!v))
	case kindChoice:
		if len(f.choices) > 0 {
			f.input.SetValue(nextColumn(f.choices, f.input.Value(), step))
		}
	}
}

// settingsFields lists every settings key in file order
func settingsFields(s config.Settings, languages []string) []settingsField {
	b := strconv.FormatBool
	return []settingsField{
		newField("music_dir", kindText, s.MusicDir),
		newField("cache_dir", kindText, s.CacheDir),
		newField("logs_dir", kindText, s.LogsDir),
		newField("max_concurrent_downloads", kindInt, strconv.Itoa(s.MaxConcurrentDownloads)),
		newField("audio_format", kindText, s.AudioFormat),
		newField("audio_codec", kindChoice, s.AudioCodec, AudioCodecs...),
		newField("bitrate", kindText, s.Bitrate),
		newField("output_template", kindText, s.OutputTemplate),
		newField("overwrite_files", kindBool, b(s.OverwriteFiles)),
		newField("max_preview_rows", kindInt, strconv.Itoa(s.MaxPreviewRows)),
		newField("encoding", kindChoice, s.Encoding, tracklist.EncodingUTF8BOM, tracklist.EncodingUTF8, tracklist.EncodingLatin1, tracklist.EncodingCP1252),
		newField("show_clock", kindBool, b(s.ShowClock)),
		newField("theme", kindChoice, s.Theme, config.GetThemeOptions()...),
		newField("user_agent", kindText, s.UserAgent),
		newField("write_info_json", kindBool, b(s.WriteInfoJSON)),
		newField("write_thumbnail", kindBool, b(s.WriteThumbnail)),
		newField("language", kindChoice, s.Language, languages...),
	}
}

// applyFields copies field values into a settings value
func applyFields(fields []settingsField, base config.Settings) (config.Settings, error) {
	s := base
	for _, f := range fields {
		v := strings.TrimSpace(f.input.Value())
		var err error
		switch f.key {
		case "music_dir":
			s.MusicDir = v
		case "cache_dir":
			s.CacheDir = v
		case "logs_dir":
			s.LogsDir = v
		case "max_concurrent_downloads":
			var n int
			n, err = strconv.Atoi(v)
			s.SetMaxConcurrentDownloads(n)
		case "audio_format":
			s.AudioFormat = v
		case "audio_codec":
			s.AudioCodec = v
		case "bitrate":
			s.Bitrate = v
		case "output_template":
			s.SetOutputTemplate(v)
		case "overwrite_files":
			s.OverwriteFiles, err = strconv.ParseBool(v)
		case "max_preview_rows":
			var n int
			n, err = strconv.Atoi(v)
			s.SetMaxPreviewRows(n)
		case "encoding":
			s.Encoding = v
		case "show_clock":
			s.ShowClock, err = strconv.ParseBool(v)
		case "theme":
			s.SetTheme(v)
		case "user_agent":
			s.UserAgent = v
		case "write_info_json":
			s.WriteInfoJSON, err = strconv.ParseBool(v)
		case "write_thumbnail":
			s.WriteThumbnail, err = strconv.ParseBool(v)
		case "language":
			s.Language = v
		}
		if err != nil {
			return base, fmt.Errorf("%s: invalid value %q", f.key, v)
		}
	}
	s.Normalize()
	return s, nil
}

type settingsModel struct {
	env    *env
	keys   settingsKeys
	help   help.Model
	fields []settingsField
	focus  int
	status string
}

func newSettingsModel(e *env) *settingsModel {
	h := help.New()
	h.Styles.ShortKey = e.theme.Accent
	h.Styles.ShortDesc = e.theme.Help

	m := &settingsModel{env: e, keys: newSettingsKeys(), help: h}
	m.load(e.settings)
	return m
}

func (m *settingsModel) load(s config.Settings) {
	m.fields = settingsFields(s, config.GetLanguageOptions())
	m.setFocus(m.focus)
}

func (m *settingsModel) setFocus(i int) {
	n := len(m.fields)
	m.focus = ((i % n) + n) % n
	for k := range m.fields {
		if k == m.focus && m.fields[k].editable() {
			m.fields[k].input.Focus()
		} else {
			m.fields[k].input.Blur()
		}
	}
}

func (m *settingsModel) Update(msg tea.Msg) (navigation, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
		return navNone, cmd
	}

	switch {
	case k.String() == "ctrl+q":
		return navQuit, nil
	case key.Matches(k, m.keys.Cancel):
		return navMenu, nil
	case key.Matches(k, m.keys.Save):
		if m.save() {
			return navMenu, nil
		}
		return navNone, nil
	case key.Matches(k, m.keys.Reset):
		if m.env.deps.Manager != nil {
			m.load(m.env.deps.Manager.Reset())
		} else {
			m.load(config.Defaults())
		}
		m.status = m.env.text.GetText(KeySettingsReset)
		return navNone, nil
	case key.Matches(k, m.keys.Next):
		m.setFocus(m.focus + 1)
		return navNone, nil
	case key.Matches(k, m.keys.Prev):
		m.setFocus(m.focus - 1)
		return navNone, nil
	}

	f := &m.fields[m.focus]
	if !f.editable() {
		if key.Matches(k, m.keys.Toggle) {
			step := 1
			if k.String() == "left" {
				step = -1
			}
			f.cycle(step)
		}
		return navNone, nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return navNone, cmd
}

// save validates, persists and applies the edited settings
func (m *settingsModel) save() bool {
	s, err := applyFields(m.fields, m.env.settings)
	if err != nil {
		m.status = err.Error()
		return false
	}
	if m.env.deps.Manager != nil {
		if err := m.env.deps.Manager.Save(s); err != nil {
			m.status = err.Error()
			slog.Error("saving settings failed", "error", err)
			return false
		}
		// reload to resolve relative directories
		if loaded, err := m.env.deps.Manager.Load(); err == nil {
			s = loaded
		}
	}
	if err := s.EnsureDirectories(); err != nil {
		slog.Warn("cannot create directories", "error", err)
	}
	m.env.applySettings(s)
	m.status = m.env.text.GetText(KeySettingsSaved)
	slog.Info("settings applied", "theme", s.Theme, "max_concurrent_downloads", s.MaxConcurrentDownloads)
	return true
}

func (m *settingsModel) View() string {
	th := m.env.theme
	var b strings.Builder
	b.WriteString(th.Title.Render(IconSettings+" "+m.env.text.GetText(KeySettings)) + "\n\n")
	for i, f := range m.fields {
		label := fmt.Sprintf("%-*s", SettingsLabelW, f.key)
		value := f.input.View()
		if !f.editable() {
			value = f.input.Value()
			if f.kind == kindChoice || f.kind == kindBool {
				value = "< " + value + " >"
			}
		}
		if i == m.focus {
			label = th.Selected.Render(label)
		} else {
			label = th.Muted.Render(label)
		}
		b.WriteString(label + " " + value + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + th.Accent.Render(m.status) + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/ytget/musicdl/internal/config"
	"github.com/ytget/musicdl/internal/model"
)

// Theme bundles the lipgloss styles every screen renders with.
type Theme struct {
	Name string

	Title    lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Pending  lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
	Help     lipgloss.Style

	TableHeader   lipgloss.Style
	TableSelected lipgloss.Style

	// progress bar gradient; equal colors give a solid fill
	BarStart, BarEnd string
}

// NewTheme returns the palette for name. Unknown names get the dark theme.
func NewTheme(name string) Theme {
	switch strings.ToLower(name) {
	case config.ThemeLight:
		return Theme{
			Name:          config.ThemeLight,
			Title:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
			Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Accent:        lipgloss.NewStyle().Foreground(lipgloss.Color("27")),
			Success:       lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
			Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
			Pending:       lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
			Selected:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("25")),
			Panel:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("250")).Padding(0, 1),
			Help:          lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			TableHeader:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("250")),
			TableSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("25")),
			BarStart:      "#1E66F5",
			BarEnd:        "#40A02B",
		}
	case config.ThemeMono:
		plain := lipgloss.NewStyle()
		return Theme{
			Name:          config.ThemeMono,
			Title:         plain.Bold(true),
			Muted:         plain,
			Accent:        plain.Underline(true),
			Success:       plain,
			Error:         plain.Bold(true),
			Pending:       plain,
			Selected:      plain.Reverse(true),
			Panel:         plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
			Help:          plain,
			TableHeader:   plain.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true),
			TableSelected: plain.Reverse(true),
			BarStart:      "#FFFFFF",
			BarEnd:        "#FFFFFF",
		}
	default:
		return Theme{
			Name:          config.ThemeDark,
			Title:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
			Muted:         lipgloss.NewStyle().Faint(true),
			Accent:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			Success:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Pending:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Selected:      lipgloss.NewStyle().Bold(true).Reverse(true),
			Panel:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1),
			Help:          lipgloss.NewStyle().Faint(true),
			TableHeader:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("8")),
			TableSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
			BarStart:      "#5A56E0",
			BarEnd:        "#EE6FF8",
		}
	}
}

// TableStyles returns bubbles/table styles for the theme
func (t Theme) TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = t.TableHeader.Padding(0, 1)
	s.Selected = t.TableSelected
	return s
}

// NewProgressBar returns a progress bar painted with the theme colors
func (t Theme) NewProgressBar() progress.Model {
	if t.BarStart == t.BarEnd {
		return progress.New(progress.WithSolidFill(t.BarStart), progress.WithWidth(ProgressWidth))
	}
	return progress.New(progress.WithGradient(t.BarStart, t.BarEnd), progress.WithWidth(ProgressWidth))
}

// StatusStyle picks the style for a track status
func (t Theme) StatusStyle(status model.TrackStatus) lipgloss.Style {
	switch status {
	case model.TrackStatusDone, model.TrackStatusFound:
		return t.Success
	case model.TrackStatusSkipped:
		return t.Muted
	case model.TrackStatusError:
		return t.Error
	case model.TrackStatusSearching, model.TrackStatusDownloading:
		return t.Accent
	default:
		return t.Pending
	}
}

// StatusIcon returns the symbol shown next to a status
func StatusIcon(status model.TrackStatus) string {
	switch status {
	case model.TrackStatusDone, model.TrackStatusFound:
		return IconDone
	case model.TrackStatusError:
		return IconError
	case model.TrackStatusSkipped:
		return IconSkipped
	case model.TrackStatusSearching, model.TrackStatusDownloading:
		return IconPlay
	default:
		return IconPending
	}
}

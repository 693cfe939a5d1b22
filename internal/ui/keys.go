package ui

import "github.com/charmbracelet/bubbles/key"

// jobKeys are the bindings of the job screen
type jobKeys struct {
	Scan, Start, Stop, DryRun, Export, OpenDir, Quit, Back key.Binding
	ArtistPrev, ArtistNext, TrackPrev, TrackNext           key.Binding
	Focus, Filter                                          key.Binding
}

func newJobKeys() jobKeys {
	return jobKeys{
		Scan:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "scan")),
		Start:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "start")),
		Stop:       key.NewBinding(key.WithKeys("ctrl+c", "x"), key.WithHelp("ctrl+c", "stop")),
		DryRun:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "dry run")),
		Export:     key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export")),
		OpenDir:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open folder")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		ArtistPrev: key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "artist col")),
		ArtistNext: key.NewBinding(key.WithKeys("]")),
		TrackPrev:  key.NewBinding(key.WithKeys("{"), key.WithHelp("{/}", "track col")),
		TrackNext:  key.NewBinding(key.WithKeys("}")),
		Focus:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	}
}

// ShortHelp returns bindings for the help line
func (k jobKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Scan, k.Start, k.Stop, k.DryRun, k.Export, k.OpenDir, k.ArtistPrev, k.TrackPrev, k.Filter, k.Focus, k.Back, k.Quit}
}

// settingsKeys are the bindings of the settings screen
type settingsKeys struct {
	Save, Reset, Cancel, Next, Prev, Toggle key.Binding
}

func newSettingsKeys() settingsKeys {
	return settingsKeys{
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Reset:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab/↓", "next")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab/↑", "prev")),
		Toggle: key.NewBinding(key.WithKeys(" ", "left", "right"), key.WithHelp("space", "toggle")),
	}
}

// ShortHelp returns bindings for the help line
func (k settingsKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Reset, k.Cancel, k.Next, k.Prev, k.Toggle}
}

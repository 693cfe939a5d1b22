package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ytget/musicdl/internal/config"
	"github.com/ytget/musicdl/internal/download"
	"github.com/ytget/musicdl/internal/logging"
	"github.com/ytget/musicdl/internal/platform"
	"github.com/ytget/musicdl/internal/tracklist"
)

// Deps carries everything the UI needs from the rest of the application
type Deps struct {
	Manager  *config.Manager
	Settings config.Settings
	// NewService builds a download service for the current settings
	NewService func(config.Settings) download.Downloader
	Playlists  *platform.PlaylistParserService
	Sink       *logging.LineSink
	ExportPath string
	// InitialTarget, when set, opens the job screen for InitialSource
	// and scans it right away
	InitialSource tracklist.SourceKind
	InitialTarget string
	DryRun        bool
}

type screen int

const (
	screenMenu screen = iota
	screenJob
	screenSettings
)

// navigation is what a screen asks the root model to do next
type navigation int

const (
	navNone navigation = iota
	navMenu
	navQuit
)

// env is the state shared by all screens
type env struct {
	deps     Deps
	settings config.Settings
	theme    Theme
	text     *Localization
	events   chan tea.Msg
	now      time.Time
	width    int
	height   int
}

func (e *env) applySettings(s config.Settings) {
	e.settings = s
	e.theme = NewTheme(s.Theme)
	e.text.SetLanguage(s.Language)
}

// Model is the root Bubble Tea model
type Model struct {
	env      *env
	screen   screen
	menu     *menuModel
	job      *jobModel
	settings *settingsModel
	logs     []string
	logView  viewport.Model
	ticking  bool
}

// New creates the root model
func New(deps Deps) *Model {
	e := &env{
		deps:   deps,
		text:   NewLocalization(),
		events: make(chan tea.Msg, EventBufferSize),
		now:    time.Now(),
		width:  DefaultWidth,
		height: DefaultHeight,
	}
	e.applySettings(deps.Settings)

	m := &Model{
		env:     e,
		screen:  screenMenu,
		logView: viewport.New(DefaultWidth, LogPanelHeight),
	}
	m.menu = newMenuModel(e)
	if deps.InitialTarget != "" {
		m.job = newJobModel(e, modeFor(deps.InitialSource), deps.InitialTarget)
		m.screen = screenJob
	}
	return m
}

// Run starts the TUI and blocks until it exits
func Run(deps Deps) error {
	p := tea.NewProgram(New(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.env.events)}
	if cmd := waitForLog(m.env.deps.Sink); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.env.settings.ShowClock {
		m.ticking = true
		cmds = append(cmds, clockTick())
	}
	if m.job != nil {
		cmds = append(cmds, m.job.scan())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case logLineMsg:
		m.appendLog(string(msg))
		return m, waitForLog(m.env.deps.Sink)

	case clockTickMsg:
		m.env.now = time.Time(msg)
		if m.env.settings.ShowClock {
			return m, clockTick()
		}
		m.ticking = false
		return m, nil

	case trackUpdateMsg, batchProgressMsg, batchDoneMsg:
		var cmd tea.Cmd
		if m.job != nil {
			_, cmd = m.job.Update(msg)
		}
		return m, tea.Batch(cmd, waitForEvent(m.env.events))
	}

	var nav navigation
	var cmd tea.Cmd
	switch m.screen {
	case screenMenu:
		var next screen
		next, nav, cmd = m.menu.Update(msg)
		m.open(next)
	case screenJob:
		nav, cmd = m.job.Update(msg)
	case screenSettings:
		nav, cmd = m.settings.Update(msg)
		if m.env.settings.ShowClock && !m.ticking {
			m.ticking = true
			cmd = tea.Batch(cmd, clockTick())
		}
	}

	switch nav {
	case navQuit:
		return m, tea.Quit
	case navMenu:
		m.screen = screenMenu
		m.menu = newMenuModel(m.env)
	}
	return m, cmd
}

// open switches from the menu to another screen
func (m *Model) open(next screen) {
	switch {
	case next == screenMenu:
		return
	case next == screenSettings:
		m.settings = newSettingsModel(m.env)
	case next == screenJob && m.menu.mode != nil:
		m.job = newJobModel(m.env, *m.menu.mode, "")
	}
	m.screen = next
	m.resize(m.env.width, m.env.height)
}

func (m *Model) resize(width, height int) {
	m.env.width, m.env.height = width, height
	m.logView.Width = max(width-4, ColMinTextWidth)
	m.logView.Height = LogPanelHeight
	m.menu.setSize(width, height-LogPanelHeight-HeaderHeight-2)
	if m.job != nil {
		m.job.setSize(width, height-LogPanelHeight-HeaderHeight-2)
	}
}

func (m *Model) appendLog(line string) {
	m.logs = append(m.logs, line)
	if len(m.logs) > MaxLogLines {
		m.logs = m.logs[len(m.logs)-MaxLogLines:]
	}
	m.logView.SetContent(strings.Join(m.logs, "\n"))
	m.logView.GotoBottom()
}

func (m *Model) View() string {
	th := m.env.theme

	title := th.Title.Render(IconMusic + " " + m.env.text.GetText(KeyAppTitle))
	if m.env.settings.ShowClock {
		clock := th.Muted.Render(m.env.now.Format(ClockFormat))
		gap := max(m.env.width-lipgloss.Width(title)-lipgloss.Width(clock), 1)
		title += strings.Repeat(" ", gap) + clock
	}

	var body string
	switch m.screen {
	case screenJob:
		body = m.job.View()
	case screenSettings:
		body = m.settings.View()
	default:
		body = m.menu.View()
	}

	logs := th.Panel.Width(max(m.env.width-2, ColMinTextWidth)).Render(
		th.Muted.Render(m.env.text.GetText(KeyLog)) + "\n" + m.logView.View(),
	)
	return fmt.Sprintf("%s\n%s\n%s", title, body, logs)
}

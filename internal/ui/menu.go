package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// menuItem adapts a menu entry to bubbles/list.Item
type menuItem struct {
	title, desc string
	target      screen
	mode        *jobMode
	quit        bool
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

type menuModel struct {
	env  *env
	list list.Model
	mode *jobMode // mode of the job screen chosen last
}

func newMenuModel(e *env) *menuModel {
	t := e.text
	csv, url, text := modeCSV, modeURL, modeText
	configPath := ""
	if e.deps.Manager != nil {
		configPath = e.deps.Manager.Path()
	}
	items := []list.Item{
		menuItem{title: IconFile + " " + t.GetText(KeyMenuCSV), desc: t.GetText(KeyCSVPath), target: screenJob, mode: &csv},
		menuItem{title: IconLink + " " + t.GetText(KeyMenuURL), desc: t.GetText(KeyEnterURL), target: screenJob, mode: &url},
		menuItem{title: IconFile + " " + t.GetText(KeyMenuText), desc: t.GetText(KeyTextPath), target: screenJob, mode: &text},
		menuItem{title: IconSettings + " " + t.GetText(KeySettings), desc: configPath, target: screenSettings},
		menuItem{title: IconStop + " " + t.GetText(KeyExit), quit: true},
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = e.theme.Selected
	delegate.Styles.SelectedDesc = e.theme.Accent

	l := list.New(items, delegate, e.width, e.height-LogPanelHeight-HeaderHeight-2)
	l.Title = e.text.GetText(KeyAppTitle)
	l.Styles.Title = e.theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	return &menuModel{env: e, list: l}
}

func (m *menuModel) setSize(width, height int) {
	m.list.SetSize(width, max(height, MinTableHeight))
}

// Update returns the screen to open, if any
func (m *menuModel) Update(msg tea.Msg) (screen, navigation, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c", "ctrl+q", "q":
			return screenMenu, navQuit, nil
		case "enter":
			item, ok := m.list.SelectedItem().(menuItem)
			if !ok {
				return screenMenu, navNone, nil
			}
			if item.quit {
				return screenMenu, navQuit, nil
			}
			m.mode = item.mode
			return item.target, navNone, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return screenMenu, navNone, cmd
}

func (m *menuModel) View() string {
	return m.list.View()
}

package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ytget/musicdl/internal/logging"
	"github.com/ytget/musicdl/internal/model"
	"github.com/ytget/musicdl/internal/tracklist"
)

type logLineMsg string

type trackUpdateMsg struct{ track *model.Track }

type batchProgressMsg struct{ done, total int }

type batchDoneMsg struct{ results []model.DownloadResult }

type scanDoneMsg struct {
	detection *tracklist.Detection
	tracks    []*model.Track
	warnings  []string
	// valid and total count the lines of a text source
	valid int
	total int
	err   error
}

type clockTickMsg time.Time

// waitForLog delivers the next line of the log sink
func waitForLog(sink *logging.LineSink) tea.Cmd {
	if sink == nil {
		return nil
	}
	return func() tea.Msg {
		line, ok := <-sink.Lines()
		if !ok {
			return nil
		}
		return logLineMsg(line)
	}
}

// waitForEvent delivers the next service event
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(ClockInterval, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

// trySend delivers msg unless the buffer is full
func trySend(events chan<- tea.Msg, msg tea.Msg) {
	select {
	case events <- msg:
	default:
	}
}

package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (symbols)
const (
	IconSettings = "⚙"
	IconPlay     = "▶"
	IconStop     = "■"
	IconFolder   = "📁"
	IconFile     = "📄"
	IconLink     = "🔗"
	IconDone     = "✔"
	IconError    = "✖"
	IconSkipped  = "↷"
	IconPending  = "•"
	IconMusic    = "🎵"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
	ClockFormat         = "15:04:05"
)

// Layout sizing (terminal cells)
const (
	DefaultWidth  = 100
	DefaultHeight = 30

	LogPanelHeight  = 6
	MaxLogLines     = 500
	HeaderHeight    = 2
	FooterHeight    = 4
	MinTableHeight  = 3
	ProgressWidth   = 40
	InputWidth      = 60
	SettingsLabelW  = 26
	ColIndexWidth   = 4
	ColStatusWidth  = 12
	ColInfoWidth    = 24
	ColAlbumWidth   = 16
	ColMinTextWidth = 12
)

// Update channel sizing
const (
	EventBufferSize = 256
)

// Delays
const (
	ClockInterval = time.Second
)

// Package ui contains the terminal user interface built on Bubble Tea. It
// wires key presses to the track list parser and the download service and
// renders the menu, job, and settings screens plus a log panel. All UI
// strings are localized via Localization.
package ui

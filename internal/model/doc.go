package model

// Package model defines domain data structures used across the app: tracks
// read from CSV or text lists, their lifecycle status, search and download
// results, and playlists expanded from URL lists. Structures are plain values
// shared by the download pipeline, the TUI and the JSON export.

// Package download implements the track pipeline: search, optional download
// via yt-dlp (github.com/lrstanley/go-ytdlp), retry-or-skip error policy,
// history lookups and progress propagation to the UI. A batch runs on a
// bounded worker pool and results are reported in input order.
package download

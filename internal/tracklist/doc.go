// Package tracklist turns user supplied lists into tracks.
//
// CSV files are sniffed for encoding, delimiter and header row, then their
// columns are scored against synonym sets to find the artist, title and album
// columns. When no good pair of columns exists, a single "Artist - Title"
// column is looked for instead. Plain text files hold one YouTube URL or one
// "Artist - Title" entry per line.
package tracklist

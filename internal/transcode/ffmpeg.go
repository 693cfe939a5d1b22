// Package transcode locates the ffmpeg tool chain used by yt-dlp for audio
// extraction and measures finished files for their duration.
package transcode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Executable and I/O constants
const (
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
)

// LocateFFmpeg returns a validated absolute path to ffmpeg. When none is
// found it returns "ffmpeg" and leaves the lookup to yt-dlp.
func LocateFFmpeg() string {
	path, err := exec.LookPath(FFmpegCommand)
	if err != nil {
		return FFmpegCommand
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if !ValidateExecutable(path, FFmpegCommand) {
		return FFmpegCommand
	}
	return path
}

// Available reports whether ffmpeg can be found in PATH
func Available() bool {
	_, err := exec.LookPath(FFmpegCommand)
	return err == nil
}

// ValidateExecutable checks that path is a clean absolute path to an
// executable regular file whose name contains name.
func ValidateExecutable(path, name string) bool {
	if path == "" || !filepath.IsAbs(path) || filepath.Clean(path) != path {
		return false
	}
	if !strings.Contains(strings.ToLower(filepath.Base(path)), strings.ToLower(name)) {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}

// DurationReader reads media metadata with ffprobe
type DurationReader struct {
	// BinaryPath is the path to the ffprobe executable. Defaults to "ffprobe".
	BinaryPath string
}

// NewDurationReader creates a reader that uses ffprobe from PATH
func NewDurationReader() *DurationReader {
	return &DurationReader{BinaryPath: FFprobeCommand}
}

// Duration returns the duration of a media file in seconds
func (p *DurationReader) Duration(ctx context.Context, filePath string) (float64, error) {
	bin := p.BinaryPath
	if bin == "" {
		bin = FFprobeCommand
	}

	cmd := exec.CommandContext(ctx, bin, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", durationStr, err)
	}
	return duration, nil
}

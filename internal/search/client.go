// Package search resolves free-text track queries to YouTube videos by
// running yt-dlp in metadata-only mode.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/ytget/musicdl/internal/model"
)

// DefaultBinary is the yt-dlp executable looked up in PATH
const DefaultBinary = "yt-dlp"

// SearchPrefix asks yt-dlp for the first YouTube search hit
const SearchPrefix = "ytsearch1:"

const videoURLTemplate = "https://www.youtube.com/watch?v=%s"

// ErrNoResults is returned when a search yields no videos
var ErrNoResults = errors.New("no search results")

// Client looks up YouTube videos.
type Client interface {
	Search(ctx context.Context, query string) (*model.SearchResult, error)
	VideoInfo(ctx context.Context, url string) (*model.SearchResult, error)
}

// CommandClient implements Client by calling the yt-dlp binary.
type CommandClient struct {
	// BinaryPath is the path to the yt-dlp executable. Defaults to "yt-dlp".
	BinaryPath string
	// UserAgent is sent with every request when set.
	UserAgent string
}

// NewClient creates a new yt-dlp CommandClient.
func NewClient() *CommandClient {
	return &CommandClient{BinaryPath: DefaultBinary}
}

// Search returns the first YouTube video matching query.
func (c *CommandClient) Search(ctx context.Context, query string) (*model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrNoResults)
	}
	results, err := c.run(ctx, SearchPrefix+query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w for: %s", ErrNoResults, query)
	}
	return results[0], nil
}

// VideoInfo returns metadata for a single video URL.
func (c *CommandClient) VideoInfo(ctx context.Context, url string) (*model.SearchResult, error) {
	results, err := c.run(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w for: %s", ErrNoResults, url)
	}
	return results[0], nil
}

func (c *CommandClient) run(ctx context.Context, target string) ([]*model.SearchResult, error) {
	bin := c.BinaryPath
	if bin == "" {
		bin = DefaultBinary
	}

	args := []string{"--dump-json", "--no-warnings", "--no-playlist", "--skip-download"}
	if c.UserAgent != "" {
		args = append(args, "--user-agent", c.UserAgent)
	}
	args = append(args, "--", target)

	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var results []*model.SearchResult
	dec := json.NewDecoder(&stdout)
	for {
		var entry model.SearchResult
		if err := dec.Decode(&entry); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
		}
		if entry.URL == "" && entry.ID != "" {
			entry.URL = fmt.Sprintf(videoURLTemplate, entry.ID)
		}
		if entry.URL == "" {
			continue
		}
		if entry.Title == "" {
			entry.Title = "Unknown"
		}
		results = append(results, &entry)
	}

	return results, nil
}

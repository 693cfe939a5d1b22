// Package cli parses command-line flags and starts either the terminal UI
// or the headless batch runner.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/ytget/musicdl/internal/config"
	"github.com/ytget/musicdl/internal/download"
	"github.com/ytget/musicdl/internal/history"
	"github.com/ytget/musicdl/internal/logging"
	"github.com/ytget/musicdl/internal/platform"
	"github.com/ytget/musicdl/internal/search"
	"github.com/ytget/musicdl/internal/tracklist"
	"github.com/ytget/musicdl/internal/transcode"
	"github.com/ytget/musicdl/internal/ui"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Environment variables
const (
	EnvConfig   = "MUSICDL_CONFIG"
	EnvLogLevel = "MUSICDL_LOG_LEVEL"
	EnvExport   = "MUSICDL_EXPORT"
)

// AppName is the program name shown in help output
const AppName = "musicdl"

const logSinkSize = 256

// Run parses args and runs the application. It returns the process exit code.
func Run(args []string, version string) int {
	return run(args, version, os.Stdout, os.Stderr)
}

func run(args []string, version string, stdout, stderr io.Writer) int {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(stderr, "failed loading .env file: %s\n", err)
		return ExitError
	}

	app := NewApp(version)
	app.Writer = stdout
	app.ErrWriter = stderr

	if err := app.Run(args); err != nil {
		fmt.Fprintln(stderr, err)
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		return ExitError
	}
	return ExitOK
}

// NewApp builds the urfave/cli application
func NewApp(version string) *cli.App {
	app := cli.NewApp()
	app.Name = AppName
	app.Usage = "download YouTube audio from CSV playlists, text lists and links"
	app.Version = version
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "csv",
			Usage: "CSV file to load on startup",
		},
		&cli.StringFlag{
			Name:  "text",
			Usage: "text file with one track or URL per line",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "YouTube video or playlist URL",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "search only, do not download",
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "configuration file path",
			EnvVars: []string{EnvConfig},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "INFO",
			Usage:   "logging level: DEBUG, INFO, WARNING or ERROR",
			EnvVars: []string{EnvLogLevel},
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "run the batch without the terminal UI",
		},
		&cli.StringFlag{
			Name:    "export",
			Usage:   "path of the JSON results file",
			EnvVars: []string{EnvExport},
		},
		&cli.IntFlag{
			Name:  "history",
			Usage: "print the `N` most recent downloads and exit",
		},
	}
	app.OnUsageError = func(_ *cli.Context, err error, _ bool) error {
		return cli.Exit(err.Error(), ExitUsage)
	}
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Action = action
	return app
}

// source returns the input selected by flags
func source(c *cli.Context) (tracklist.SourceKind, string, error) {
	var kind tracklist.SourceKind
	var target string
	count := 0
	for _, f := range []struct {
		name string
		kind tracklist.SourceKind
	}{
		{"csv", tracklist.SourceCSV},
		{"text", tracklist.SourceText},
		{"url", tracklist.SourceURL},
	} {
		if v := c.String(f.name); v != "" {
			kind, target = f.kind, v
			count++
		}
	}
	if count > 1 {
		return kind, "", errors.New("only one of --csv, --text and --url may be given")
	}
	return kind, target, nil
}

func action(c *cli.Context) error {
	level, err := logging.ParseLevel(c.String("log-level"))
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}
	kind, target, err := source(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}
	headless := c.Bool("headless")
	if headless && target == "" {
		return cli.Exit("--headless needs one of --csv, --text or --url", ExitUsage)
	}

	manager, err := config.NewManager(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	settings, err := manager.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load configuration: %v", err), ExitError)
	}
	if err := settings.EnsureDirectories(); err != nil {
		return cli.Exit(err.Error(), ExitError)
	}

	var sink *logging.LineSink
	if !headless {
		sink = logging.NewLineSink(logSinkSize)
	}
	_, closeLog, err := logging.Setup(logging.Options{
		Dir:    settings.LogsDir,
		Level:  level,
		Sink:   sink,
		Stderr: headless,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to set up logging: %v", err), ExitError)
	}
	defer closeLog()

	slog.Info("musicdl starting", "version", c.App.Version, "config", manager.Path())
	if !transcode.Available() {
		slog.Warn("ffmpeg not found in PATH, audio extraction may fail")
	}

	store, err := history.Open(history.DefaultPath(settings.CacheDir))
	if err != nil {
		slog.Warn("download history disabled", "error", err)
	} else {
		defer store.Close()
	}

	if n := c.Int("history"); n > 0 {
		if store == nil {
			return cli.Exit("download history is unavailable", ExitError)
		}
		entries, err := store.Recent(c.Context, n)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to read history: %v", err), ExitError)
		}
		printHistory(c.App.Writer, entries)
		return nil
	}

	newService := func(s config.Settings) download.Downloader {
		return NewService(s, store)
	}
	playlists := platform.NewPlaylistParserService()

	if headless {
		return runHeadless(c, settings, newService(settings), playlists, kind, target)
	}

	deps := ui.Deps{
		Manager:       manager,
		Settings:      settings,
		NewService:    newService,
		Playlists:     playlists,
		Sink:          sink,
		ExportPath:    c.String("export"),
		InitialSource: kind,
		InitialTarget: target,
		DryRun:        c.Bool("dry-run"),
	}
	slog.Info("starting TUI application")
	if err := ui.Run(deps); err != nil {
		slog.Error("application error", "error", err)
		return cli.Exit(fmt.Sprintf("application error: %v", err), ExitError)
	}
	return nil
}

// NewService wires the production search client, fetcher, duration reader and
// history store into a download service
func NewService(s config.Settings, store *history.Store) *download.Service {
	client := search.NewClient()
	client.UserAgent = s.UserAgent

	opts := download.Options{
		MusicDir:       s.MusicDir,
		OutputTemplate: s.OutputTemplate,
		AudioFormat:    s.AudioFormat,
		AudioCodec:     s.AudioCodec,
		Bitrate:        s.Bitrate,
		Overwrite:      s.OverwriteFiles,
		UserAgent:      s.UserAgent,
		WriteInfoJSON:  s.WriteInfoJSON,
		WriteThumbnail: s.WriteThumbnail,
		MaxParallel:    s.MaxConcurrentDownloads,
	}
	if p := transcode.LocateFFmpeg(); filepath.IsAbs(p) {
		opts.FFmpegPath = p
	}

	svc := download.NewService(opts, client, download.NewFetcher())
	svc.SetDurationReader(transcode.NewDurationReader())
	if store != nil {
		svc.SetHistory(store)
	}
	return svc
}

func runHeadless(c *cli.Context, settings config.Settings, svc download.Downloader, playlists *platform.PlaylistParserService, kind tracklist.SourceKind, target string) error {
	parser := tracklist.NewParser(
		tracklist.WithMaxPreviewRows(settings.MaxPreviewRows),
		tracklist.WithEncoding(settings.Encoding),
	)
	loaded, err := tracklist.LoadSource(c.Context, kind, target, parser, playlists)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load %s: %v", kind, err), ExitError)
	}
	for _, w := range loaded.Warnings {
		slog.Warn(w)
	}
	if loaded.TotalLines > 0 {
		slog.Info("text file checked", "valid_lines", loaded.ValidLines, "lines", loaded.TotalLines)
	}
	if len(loaded.Tracks) == 0 {
		return cli.Exit("no tracks to process", ExitError)
	}

	runner := &Runner{
		Out:        c.App.Writer,
		Service:    svc,
		DryRun:     c.Bool("dry-run"),
		ExportPath: c.String("export"),
	}
	ctx, stop := runner.handleSignals(c.Context)
	defer stop()

	if _, err := runner.Run(ctx, loaded.Tracks); err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	return nil
}

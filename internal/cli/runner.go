package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/ytget/musicdl/internal/download"
	"github.com/ytget/musicdl/internal/export"
	"github.com/ytget/musicdl/internal/history"
	"github.com/ytget/musicdl/internal/model"
)

var (
	okColor      = color.New(color.FgGreen)
	errColor     = color.New(color.FgRed)
	skipColor    = color.New(color.FgYellow)
	foundColor   = color.New(color.FgCyan)
	summaryColor = color.New(color.Bold)
)

// Runner processes a batch without the terminal UI and prints one line per
// finished track followed by a summary table
type Runner struct {
	Out        io.Writer
	Service    download.Downloader
	DryRun     bool
	ExportPath string
}

// Run processes tracks, prints the report and writes the JSON export.
// Failed tracks do not make Run return an error.
func (r *Runner) Run(ctx context.Context, tracks []*model.Track) (export.Summary, error) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}

	slog.Info("starting headless batch", "tracks", len(tracks), "dry_run", r.DryRun)
	r.Service.Run(ctx, tracks, r.DryRun, func(done, total int, t *model.Track) {
		printTrackLine(out, done, total, t)
	})

	final := r.Service.GetAllTracks()
	renderTable(out, final)

	summary := export.Summarize(final)
	summaryColor.Fprintln(out, summary.String())

	path := r.ExportPath
	if path == "" {
		path = export.DefaultPath("")
	}
	if err := export.WriteResults(path, final); err != nil {
		return summary, fmt.Errorf("export results: %w", err)
	}
	fmt.Fprintf(out, "Results exported to %s\n", path)
	slog.Info("headless batch finished", "summary", summary.String(), "export", path)
	return summary, nil
}

func printTrackLine(w io.Writer, done, total int, t *model.Track) {
	prefix := fmt.Sprintf("[%d/%d]", done, total)
	name := t.DisplayName()
	switch t.Status {
	case model.TrackStatusDone:
		okColor.Fprintf(w, "%s ✔ %s -> %s\n", prefix, name, t.ResultPath)
	case model.TrackStatusFound:
		foundColor.Fprintf(w, "%s ? %s -> %s\n", prefix, name, t.URL)
	case model.TrackStatusSkipped:
		skipColor.Fprintf(w, "%s ↷ %s (already downloaded)\n", prefix, name)
	case model.TrackStatusError:
		errColor.Fprintf(w, "%s ✖ %s: %s\n", prefix, name, t.Error)
	default:
		fmt.Fprintf(w, "%s %s %s\n", prefix, t.Status, name)
	}
}

func renderTable(w io.Writer, tracks []*model.Track) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Track", "Status", "Size", "Result"})
	table.SetAutoWrapText(false)
	for i, t := range tracks {
		size := ""
		if t.FileSize > 0 {
			size = humanize.Bytes(uint64(t.FileSize))
		}
		result := t.ResultPath
		switch {
		case t.Status == model.TrackStatusError:
			result = t.Error
		case result == "":
			result = t.URL
		}
		table.Append([]string{strconv.Itoa(i + 1), t.DisplayName(), t.Status.String(), size, result})
	}
	table.Render()
}

// printHistory lists stored downloads, newest first
func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No downloads recorded yet")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"When", "Track", "Status", "File"})
	table.SetAutoWrapText(false)
	for _, e := range entries {
		name := e.Query
		if e.Artist != "" && e.Title != "" {
			name = e.Artist + " - " + e.Title
		} else if e.Title != "" {
			name = e.Title
		}
		file := e.FilePath
		if file == "" {
			file = e.URL
		}
		table.Append([]string{humanize.Time(e.CreatedAt), name, e.Status, file})
	}
	table.Render()
}

// handleSignals stops feeding new tracks on the first interrupt and cancels
// in-flight downloads on the second
func (r *Runner) handleSignals(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigs:
		case <-ctx.Done():
			return
		}
		slog.Warn("interrupt received, finishing current downloads (press Ctrl+C again to abort)")
		r.Service.Stop()
		select {
		case <-sigs:
			slog.Warn("aborting downloads")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigs)
		cancel()
	}
}

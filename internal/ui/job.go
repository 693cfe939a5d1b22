package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/ytget/musicdl/internal/download"
	"github.com/ytget/musicdl/internal/export"
	"github.com/ytget/musicdl/internal/model"
	"github.com/ytget/musicdl/internal/platform"
	"github.com/ytget/musicdl/internal/tracklist"
)

// jobMode selects where the job screen reads tracks from
type jobMode int

const (
	modeCSV jobMode = iota
	modeURL
	modeText
)

func (m jobMode) source() tracklist.SourceKind {
	switch m {
	case modeURL:
		return tracklist.SourceURL
	case modeText:
		return tracklist.SourceText
	default:
		return tracklist.SourceCSV
	}
}

func modeFor(kind tracklist.SourceKind) jobMode {
	switch kind {
	case tracklist.SourceURL:
		return modeURL
	case tracklist.SourceText:
		return modeText
	default:
		return modeCSV
	}
}

type jobModel struct {
	env  *env
	keys jobKeys
	help help.Model

	mode         jobMode
	input        textinput.Model
	inputFocused bool
	table        table.Model
	bar          progress.Model

	detection *tracklist.Detection
	artistCol string // column overrides, empty means detected
	trackCol  string
	tracks    []*model.Track
	index     map[string]int

	dryRun  bool
	running bool
	done    int
	total   int
	filter  StatusFilter
	status  string

	svc    download.Downloader
	cancel context.CancelFunc

	width  int
	height int
}

func newJobModel(e *env, mode jobMode, path string) *jobModel {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 4096
	in.Width = InputWidth
	switch mode {
	case modeURL:
		in.Placeholder = "https://www.youtube.com/watch?v=..."
	case modeText:
		in.Placeholder = "tracks.txt"
	default:
		in.Placeholder = "playlist.csv"
	}
	in.SetValue(path)
	in.Focus()

	t := table.New(
		table.WithColumns(trackColumns(DefaultWidth)),
		table.WithHeight(MinTableHeight),
	)
	t.SetStyles(e.theme.TableStyles())

	h := help.New()
	h.Styles.ShortKey = e.theme.Accent
	h.Styles.ShortDesc = e.theme.Help

	j := &jobModel{
		env:          e,
		keys:         newJobKeys(),
		help:         h,
		mode:         mode,
		input:        in,
		inputFocused: true,
		table:        t,
		bar:          e.theme.NewProgressBar(),
		index:        make(map[string]int),
		dryRun:       e.deps.DryRun,
		status:       e.text.GetText(KeyReady),
	}
	j.setSize(e.width, e.height-LogPanelHeight-HeaderHeight-2)
	return j
}

// trackColumns sizes the status table for width
func trackColumns(width int) []table.Column {
	fixed := ColIndexWidth + ColStatusWidth + ColInfoWidth + ColAlbumWidth + 12
	text := max((width-fixed)/2, ColMinTextWidth)
	return []table.Column{
		{Title: "#", Width: ColIndexWidth},
		{Title: "Artist", Width: text},
		{Title: "Title", Width: text},
		{Title: "Album", Width: ColAlbumWidth},
		{Title: "Status", Width: ColStatusWidth},
		{Title: "Info", Width: ColInfoWidth},
	}
}

func (j *jobModel) setSize(width, height int) {
	j.width, j.height = width, height
	// rows must never outnumber columns while they change
	j.table.SetRows(nil)
	j.table.SetColumns(trackColumns(width))
	j.table.SetHeight(max(height-8, MinTableHeight))
	j.refreshRows()
	j.bar.Width = min(max(width-20, 10), ProgressWidth*2)
	j.help.Width = width
}

func (j *jobModel) Update(msg tea.Msg) (navigation, tea.Cmd) {
	switch msg := msg.(type) {
	case scanDoneMsg:
		j.onScanDone(msg)
		return navNone, nil

	case trackUpdateMsg:
		if i, ok := j.index[msg.track.ID]; ok {
			j.tracks[i] = msg.track
			j.refreshRows()
		}
		return navNone, nil

	case batchProgressMsg:
		j.done, j.total = msg.done, msg.total
		j.status = fmt.Sprintf(j.env.text.GetText(KeyRunning), j.done, j.total)
		return navNone, nil

	case batchDoneMsg:
		j.onBatchDone()
		return navNone, nil

	case tea.KeyMsg:
		return j.handleKey(msg)
	}

	var cmd tea.Cmd
	if j.inputFocused {
		j.input, cmd = j.input.Update(msg)
	} else {
		j.table, cmd = j.table.Update(msg)
	}
	return navNone, cmd
}

func (j *jobModel) handleKey(msg tea.KeyMsg) (navigation, tea.Cmd) {
	switch {
	case key.Matches(msg, j.keys.Quit):
		j.abort()
		return navQuit, nil
	case key.Matches(msg, j.keys.Back):
		if j.running {
			j.status = j.env.text.GetText(KeyStopFirst)
			return navNone, nil
		}
		return navMenu, nil
	case key.Matches(msg, j.keys.Scan):
		return navNone, j.scan()
	case key.Matches(msg, j.keys.Start):
		j.start()
		return navNone, nil
	case msg.String() == "ctrl+c":
		j.stop()
		return navNone, nil
	case key.Matches(msg, j.keys.DryRun):
		j.dryRun = !j.dryRun
		return navNone, nil
	case key.Matches(msg, j.keys.Export):
		j.exportResults()
		return navNone, nil
	case key.Matches(msg, j.keys.OpenDir):
		j.openMusicDir()
		return navNone, nil
	case key.Matches(msg, j.keys.Focus):
		j.toggleFocus()
		return navNone, nil
	}

	var cmd tea.Cmd
	if j.inputFocused {
		if msg.String() == "enter" {
			return navNone, j.scan()
		}
		j.input, cmd = j.input.Update(msg)
		return navNone, cmd
	}

	switch {
	case key.Matches(msg, j.keys.Stop):
		j.stop()
	case key.Matches(msg, j.keys.ArtistPrev):
		j.cycleColumn(&j.artistCol, -1)
	case key.Matches(msg, j.keys.ArtistNext):
		j.cycleColumn(&j.artistCol, 1)
	case key.Matches(msg, j.keys.TrackPrev):
		j.cycleColumn(&j.trackCol, -1)
	case key.Matches(msg, j.keys.TrackNext):
		j.cycleColumn(&j.trackCol, 1)
	case key.Matches(msg, j.keys.Filter):
		j.filter = j.filter.Next()
		j.refreshRows()
	default:
		j.table, cmd = j.table.Update(msg)
	}
	return navNone, cmd
}

func (j *jobModel) toggleFocus() {
	j.inputFocused = !j.inputFocused
	if j.inputFocused {
		j.input.Focus()
		j.table.Blur()
	} else {
		j.input.Blur()
		j.table.Focus()
	}
}

// scan loads tracks from the input in the background
func (j *jobModel) scan() tea.Cmd {
	if j.running {
		j.status = j.env.text.GetText(KeyStopFirst)
		return nil
	}
	target := strings.TrimSpace(j.input.Value())
	if target == "" {
		j.status = j.env.text.GetText(KeyPleaseEnterPath)
		return nil
	}
	j.status = j.env.text.GetText(KeyScanning)

	settings := j.env.settings
	playlists := j.env.deps.Playlists
	mode := j.mode
	return func() tea.Msg {
		return loadTracks(context.Background(), mode, target, settings.MaxPreviewRows, settings.Encoding, playlists)
	}
}

// loadTracks reads tracks for a job mode. It runs outside the UI loop.
func loadTracks(ctx context.Context, mode jobMode, target string, maxRows int, encoding string, playlists *platform.PlaylistParserService) scanDoneMsg {
	parser := tracklist.NewParser(
		tracklist.WithMaxPreviewRows(maxRows),
		tracklist.WithEncoding(encoding),
	)
	var expander tracklist.PlaylistExpander
	if playlists != nil {
		expander = playlists
	}
	loaded, err := tracklist.LoadSource(ctx, mode.source(), target, parser, expander)
	if err != nil {
		return scanDoneMsg{err: err}
	}
	return scanDoneMsg{
		detection: loaded.Detection,
		tracks:    loaded.Tracks,
		warnings:  loaded.Warnings,
		valid:     loaded.ValidLines,
		total:     loaded.TotalLines,
	}
}

func (j *jobModel) onScanDone(msg scanDoneMsg) {
	if msg.err != nil {
		j.status = msg.err.Error()
		slog.Error("scan failed", "input", j.input.Value(), "error", msg.err)
		return
	}
	for _, w := range msg.warnings {
		slog.Warn(w)
	}
	j.detection = msg.detection
	j.artistCol, j.trackCol = "", ""
	j.setTracks(msg.tracks)
	j.done, j.total = 0, len(msg.tracks)
	j.status = fmt.Sprintf(j.env.text.GetText(KeyLoaded), len(msg.tracks))
	if msg.total > 0 {
		j.status += ", " + fmt.Sprintf(j.env.text.GetText(KeyLinesValid), msg.valid, msg.total)
	}
	slog.Info("tracks loaded", "input", j.input.Value(), "tracks", len(msg.tracks), "valid_lines", msg.valid, "lines", msg.total)

	if len(j.tracks) > 0 && j.inputFocused {
		j.toggleFocus()
	}
}

func (j *jobModel) setTracks(tracks []*model.Track) {
	j.tracks = tracks
	j.index = make(map[string]int, len(tracks))
	for i, t := range tracks {
		j.index[t.ID] = i
	}
	j.refreshRows()
}

// effectiveColumns returns the artist and title columns in use
func (j *jobModel) effectiveColumns() (artist, track string) {
	if j.detection == nil {
		return "", ""
	}
	artist, track = j.detection.ArtistCol, j.detection.TrackCol
	if j.artistCol != "" {
		artist = j.artistCol
	}
	if j.trackCol != "" {
		track = j.trackCol
	}
	return artist, track
}

// cycleColumn moves a column override through the CSV headers
func (j *jobModel) cycleColumn(col *string, step int) {
	if j.running || j.detection == nil || len(j.detection.Headers) == 0 {
		return
	}
	artist, track := j.effectiveColumns()
	current := track
	if col == &j.artistCol {
		current = artist
	}
	*col = nextColumn(j.detection.Headers, current, step)
	j.setTracks(tracklist.BuildTracks(j.detection, j.artistCol, j.trackCol))
	j.total = len(j.tracks)
}

// nextColumn returns the header step positions away from current
func nextColumn(headers []string, current string, step int) string {
	n := len(headers)
	pos := -1
	for i, h := range headers {
		if h == current {
			pos = i
			break
		}
	}
	if pos < 0 {
		if step > 0 {
			return headers[0]
		}
		return headers[n-1]
	}
	return headers[((pos+step)%n+n)%n]
}

// start runs the loaded tracks through a new download service
func (j *jobModel) start() {
	if j.running {
		return
	}
	if len(j.tracks) == 0 {
		j.status = j.env.text.GetText(KeyNoTracks)
		return
	}
	if j.env.deps.NewService == nil {
		j.status = "download service unavailable"
		return
	}

	svc := j.env.deps.NewService(j.env.settings)
	events := j.env.events
	svc.SetUpdateCallback(func(t *model.Track) {
		trySend(events, trackUpdateMsg{track: t})
	})

	run := make([]*model.Track, len(j.tracks))
	for i, t := range j.tracks {
		c := t.Clone()
		c.Status = model.TrackStatusPending
		c.Error, c.ResultPath, c.Speed = "", "", ""
		c.Progress, c.ETASec = 0, -1
		if c.SourceURL == "" {
			c.URL = ""
		}
		run[i] = c
		j.tracks[i] = c.Clone()
	}
	j.refreshRows()

	ctx, cancel := context.WithCancel(context.Background())
	j.svc, j.cancel = svc, cancel
	j.running = true
	j.done, j.total = 0, len(run)
	j.status = fmt.Sprintf(j.env.text.GetText(KeyRunning), 0, len(run))
	dryRun := j.dryRun

	go func() {
		results := svc.Run(ctx, run, dryRun, func(done, total int, _ *model.Track) {
			trySend(events, batchProgressMsg{done: done, total: total})
		})
		events <- batchDoneMsg{results: results}
	}()
}

func (j *jobModel) stop() {
	if !j.running || j.svc == nil {
		return
	}
	j.svc.Stop()
	j.status = j.env.text.GetText(KeyStopping)
}

// abort cancels in-flight downloads when the application quits
func (j *jobModel) abort() {
	if j.cancel != nil {
		j.cancel()
	}
}

func (j *jobModel) onBatchDone() {
	if j.svc != nil {
		for _, t := range j.svc.GetAllTracks() {
			if i, ok := j.index[t.ID]; ok {
				j.tracks[i] = t
			}
		}
	}
	if j.cancel != nil {
		j.cancel()
	}
	j.running = false
	j.svc, j.cancel = nil, nil
	j.refreshRows()

	summary := export.Summarize(j.tracks)
	slog.Info("batch complete", "summary", summary.String())
	j.exportResults()
	j.status = fmt.Sprintf(j.env.text.GetText(KeyFinished), summary.String())
}

func (j *jobModel) exportPath() string {
	if j.env.deps.ExportPath != "" {
		return j.env.deps.ExportPath
	}
	return export.DefaultPath("")
}

func (j *jobModel) exportResults() {
	if len(j.tracks) == 0 {
		j.status = j.env.text.GetText(KeyNoTracks)
		return
	}
	path := j.exportPath()
	if err := export.WriteResults(path, j.tracks); err != nil {
		j.status = err.Error()
		slog.Error("export failed", "path", path, "error", err)
		return
	}
	j.status = fmt.Sprintf(j.env.text.GetText(KeyExported), path)
	slog.Info("results exported", "path", path, "tracks", len(j.tracks))
}

func (j *jobModel) openMusicDir() {
	dir := j.env.settings.MusicDir
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		j.status = j.env.text.GetText(KeyErrorOpeningDir)
		slog.Error("cannot create music dir", "dir", dir, "error", err)
		return
	}
	if err := platform.OpenInFileManager(dir); err != nil {
		j.status = j.env.text.GetText(KeyErrorOpeningDir)
		slog.Error("cannot open music dir", "dir", dir, "error", err)
	}
}

// refreshRows rebuilds the table rows for the current filter
func (j *jobModel) refreshRows() {
	rows := make([]table.Row, 0, len(j.tracks))
	for i, t := range j.tracks {
		if !j.filter.Matches(t) {
			continue
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			t.Artist,
			t.Title,
			t.Album,
			StatusIcon(t.Status) + " " + t.Status.String(),
			trackInfo(t),
		})
	}
	j.table.SetRows(rows)
}

// trackInfo renders the info column for a track
func trackInfo(t *model.Track) string {
	switch t.Status {
	case model.TrackStatusDownloading:
		parts := []string{fmt.Sprintf(ProgressLabelFormat, int(t.Progress*100))}
		if t.Speed != "" {
			parts = append(parts, t.Speed)
		}
		if t.ETASec > 0 {
			parts = append(parts, t.GetETAString())
		}
		return strings.Join(parts, " ")
	case model.TrackStatusDone, model.TrackStatusSkipped:
		parts := []string{}
		if t.FileSize > 0 {
			parts = append(parts, humanize.Bytes(uint64(t.FileSize)))
		}
		if t.Duration > 0 {
			parts = append(parts, formatDuration(t.Duration))
		}
		if len(parts) == 0 {
			return DashPlaceholder
		}
		return strings.Join(parts, MiddleDotSeparator)
	case model.TrackStatusFound:
		if t.URL != "" {
			return t.URL
		}
	case model.TrackStatusError:
		return t.Error
	}
	if t.URL != "" {
		return t.URL
	}
	return DashPlaceholder
}

// formatDuration renders seconds as m:ss
func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func (j *jobModel) View() string {
	th := j.env.theme
	t := j.env.text

	label := t.GetText(KeyCSVPath)
	switch j.mode {
	case modeURL:
		label = t.GetText(KeyEnterURL)
	case modeText:
		label = t.GetText(KeyTextPath)
	}

	var b strings.Builder
	b.WriteString(th.Accent.Render(label) + "\n")
	b.WriteString(j.input.View() + "\n")

	flags := []string{j.status}
	if j.dryRun {
		flags = append(flags, th.Pending.Render(t.GetText(KeyDryRun)))
	}
	flags = append(flags, t.GetText(KeyFilter)+": "+j.filter.String())
	b.WriteString(strings.Join(flags, MiddleDotSeparator) + "\n")

	if j.detection != nil {
		b.WriteString(th.Muted.Render(j.columnsLine()) + "\n")
	}

	fraction := 0.0
	if j.total > 0 {
		fraction = float64(j.done) / float64(j.total)
	}
	b.WriteString(j.bar.ViewAs(fraction) + fmt.Sprintf(" %d/%d", j.done, j.total) + "\n")
	b.WriteString(j.table.View() + "\n")
	b.WriteString(j.help.ShortHelpView(j.keys.ShortHelp()))
	return b.String()
}

func (j *jobModel) columnsLine() string {
	t := j.env.text
	artist, track := j.effectiveColumns()
	if artist == "" && track == "" && j.detection.SingleColumn() {
		return fmt.Sprintf(t.GetText(KeySingleColumn), j.detection.SingleCol)
	}
	album := j.detection.AlbumCol
	return fmt.Sprintf(t.GetText(KeyDetected), orDash(artist), orDash(track), orDash(album))
}

func orDash(s string) string {
	if s == "" {
		return DashPlaceholder
	}
	return s
}

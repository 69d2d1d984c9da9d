package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/playlift/playlift/internal/service/migration"
)

const (
	// refreshInterval is the render tick; events repaint between ticks too.
	refreshInterval = 250 * time.Millisecond

	// trackWindowSize is how many recent per-track durations feed the
	// migration ETA.
	trackWindowSize = 100

	// downloadWindowSize is how many recent playlist-download durations feed
	// the download ETA.
	downloadWindowSize = 20

	// activityLogSize caps each panel's recent-activity list.
	activityLogSize = 20

	progressBarWidth = 20
	defaultWidth     = 100
)

// tickMsg drives the periodic refresh.
type tickMsg time.Time

// runFinishedMsg tells the model the run is over and the program may exit.
type runFinishedMsg struct{}

// workerRow is one migration worker's current playlist.
type workerRow struct {
	active   bool
	playlist string
	current  int
	total    int
	track    string
}

// migrationPanel is the left half of the display.
type migrationPanel struct {
	workers     []workerRow
	lastTrackAt []time.Time

	playlistsDone  int
	playlistsTotal int

	// tracksKnown counts the tracks of every playlist a worker has picked
	// up; queued playlists report their counts only once started.
	tracksKnown int

	added    int
	skipped  int
	notFound int
	failed   int

	trackTimes *rollingWindow
	log        *activityLog
}

func (p *migrationPanel) processed() int {
	return p.added + p.skipped + p.notFound + p.failed
}

func (p *migrationPanel) pending() int {
	pending := p.tracksKnown - p.processed()
	if pending < 0 {
		return 0
	}

	return pending
}

func (p *migrationPanel) activeWorkers() int {
	count := 0

	for _, row := range p.workers {
		if row.active {
			count++
		}
	}

	return count
}

// eta projects the remaining migration time: the rolling mean per-track
// duration times the pending track count, split across the active workers.
func (p *migrationPanel) eta() time.Duration {
	mean := p.trackTimes.mean()
	pending := p.pending()

	if mean == 0 || pending == 0 {
		return 0
	}

	workers := p.activeWorkers()
	if workers < 1 {
		workers = 1
	}

	return mean * time.Duration(pending) / time.Duration(workers)
}

// activeDownload is one playlist the downloader is currently fetching.
type activeDownload struct {
	name       string
	trackCount int
	startedAt  time.Time
}

// downloadPanel is the right half of the display.
type downloadPanel struct {
	workerCount int

	active map[string]activeDownload

	// polledPending is the orchestrator's last reported queue depth. Zero
	// until the drain phase starts polling.
	polledPending int

	completed int
	failed    int

	durations *rollingWindow
	log       *activityLog
}

// pending prefers the orchestrator's own count and falls back to the
// downloads known to be in flight.
func (p *downloadPanel) pending() int {
	if p.polledPending > len(p.active) {
		return p.polledPending
	}

	return len(p.active)
}

func (p *downloadPanel) eta() time.Duration {
	mean := p.durations.mean()
	pending := p.pending()

	if mean == 0 || pending == 0 {
		return 0
	}

	workers := p.workerCount
	if workers < 1 {
		workers = 1
	}

	return mean * time.Duration(pending) / time.Duration(workers)
}

// Model is the bubbletea model behind the live split-screen display. It is
// fed migration and download events through Program.Sink and repaints on
// every event and on a steady tick.
type Model struct {
	onInterrupt func()
	now         func() time.Time

	width       int
	done        bool
	interrupted bool

	bar progress.Model

	mig migrationPanel
	dl  downloadPanel
}

// NewModel builds the display model for the given pool sizes. onInterrupt is
// invoked when the user asks to cancel the run; it may be nil.
func NewModel(migrationWorkers, downloadWorkers int, onInterrupt func()) *Model {
	if migrationWorkers < 1 {
		migrationWorkers = 1
	}

	if downloadWorkers < 1 {
		downloadWorkers = 1
	}

	return &Model{
		onInterrupt: onInterrupt,
		now:         time.Now,
		width:       defaultWidth,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(progressBarWidth),
			progress.WithoutPercentage(),
		),
		mig: migrationPanel{
			workers:     make([]workerRow, migrationWorkers),
			lastTrackAt: make([]time.Time, migrationWorkers),
			trackTimes:  newRollingWindow(trackWindowSize),
			log:         newActivityLog(activityLogSize),
		},
		dl: downloadPanel{
			workerCount: downloadWorkers,
			active:      make(map[string]activeDownload),
			durations:   newRollingWindow(downloadWindowSize),
			log:         newActivityLog(activityLogSize),
		},
	}
}

// Init starts the refresh tick.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// The run context is canceled and the display stays up while
			// started playlists wind down; Finish quits it.
			m.interrupted = true

			if m.onInterrupt != nil {
				m.onInterrupt()
			}
		}

		return m, nil

	case tickMsg:
		if m.done {
			return m, nil
		}

		return m, m.tick()

	case runFinishedMsg:
		m.done = true
		return m, tea.Quit

	case migration.PlaylistStartedEvent:
		m.applyPlaylistStarted(msg)
		return m, nil

	case migration.TrackProcessedEvent:
		m.applyTrackProcessed(msg)
		return m, nil

	case migration.PlaylistFinishedEvent:
		m.applyPlaylistFinished(msg)
		return m, nil

	case migration.DownloadStartedEvent:
		m.applyDownloadStarted(msg)
		return m, nil

	case migration.DownloadFinishedEvent:
		m.applyDownloadFinished(msg)
		return m, nil

	case migration.DownloadPollEvent:
		m.dl.polledPending = msg.Stats.Pending
		m.dl.completed = msg.Stats.Completed
		m.dl.failed = msg.Stats.Failed

		return m, nil
	}

	return m, nil
}

// workerRowFor returns the row for a 1-based worker id, growing the panel
// when an id beyond the configured pool shows up.
func (m *Model) workerRowFor(worker int) *workerRow {
	if worker < 1 {
		return nil
	}

	for worker > len(m.mig.workers) {
		m.mig.workers = append(m.mig.workers, workerRow{})
		m.mig.lastTrackAt = append(m.mig.lastTrackAt, time.Time{})
	}

	return &m.mig.workers[worker-1]
}

func (m *Model) applyPlaylistStarted(event migration.PlaylistStartedEvent) {
	row := m.workerRowFor(event.Worker)
	if row == nil {
		return
	}

	*row = workerRow{active: true, playlist: event.Name, total: event.TrackCount}

	m.mig.playlistsTotal = event.Total
	m.mig.tracksKnown += event.TrackCount

	// The first track's duration is measured from pickup.
	m.mig.lastTrackAt[event.Worker-1] = m.now()

	m.mig.log.add(fmt.Sprintf("> %s (%d tracks)", event.Name, event.TrackCount))
}

func (m *Model) applyTrackProcessed(event migration.TrackProcessedEvent) {
	row := m.workerRowFor(event.Worker)
	if row == nil {
		return
	}

	row.current++
	row.track = event.Title

	switch event.Outcome {
	case migration.MigrationOutcomeAdded:
		m.mig.added++
	case migration.MigrationOutcomeSkipped:
		m.mig.skipped++
	case migration.MigrationOutcomeNotFound:
		m.mig.notFound++
		m.mig.log.add("not found: " + event.Title)
	case migration.MigrationOutcomeFailed:
		m.mig.failed++
		m.mig.log.add("failed to add: " + event.Title)
	}

	now := m.now()
	if baseline := m.mig.lastTrackAt[event.Worker-1]; !baseline.IsZero() {
		m.mig.trackTimes.add(now.Sub(baseline))
	}

	m.mig.lastTrackAt[event.Worker-1] = now
}

func (m *Model) applyPlaylistFinished(event migration.PlaylistFinishedEvent) {
	m.mig.playlistsDone++

	if row := m.workerRowFor(event.Worker); row != nil {
		// A failed playlist leaves its unprocessed tracks behind; drop them
		// from the pending count so the ETA does not chase ghosts.
		if remaining := row.total - row.current; remaining > 0 {
			m.mig.tracksKnown -= remaining
		}

		*row = workerRow{}
	}

	if event.Err != nil {
		m.mig.log.add(fmt.Sprintf("FAILED %s: %v", event.Name, event.Err))
		return
	}

	m.mig.log.add(fmt.Sprintf("done %s: %d added, %d skipped, %d not found, %d failed",
		event.Name, event.Added, event.Skipped, event.NotFound, event.Failed))
}

func (m *Model) applyDownloadStarted(event migration.DownloadStartedEvent) {
	m.dl.active[event.UUID] = activeDownload{
		name:       event.Name,
		trackCount: event.TrackCount,
		startedAt:  m.now(),
	}

	m.dl.log.add("downloading " + event.Name)
}

func (m *Model) applyDownloadFinished(event migration.DownloadFinishedEvent) {
	if entry, ok := m.dl.active[event.UUID]; ok {
		m.dl.durations.add(m.now().Sub(entry.startedAt))
		delete(m.dl.active, event.UUID)
	}

	if m.dl.polledPending > 0 {
		m.dl.polledPending--
	}

	if event.Success {
		m.dl.completed++
		m.dl.log.add("ok " + event.Name)

		return
	}

	m.dl.failed++
	m.dl.log.add(fmt.Sprintf("failed %s: %s", event.Name, event.Message))
}

// rollingWindow keeps the most recent samples and answers their mean.
type rollingWindow struct {
	samples []time.Duration
	size    int
}

func newRollingWindow(size int) *rollingWindow {
	return &rollingWindow{size: size}
}

func (w *rollingWindow) add(sample time.Duration) {
	w.samples = append(w.samples, sample)

	if len(w.samples) > w.size {
		copy(w.samples, w.samples[len(w.samples)-w.size:])
		w.samples = w.samples[:w.size]
	}
}

func (w *rollingWindow) mean() time.Duration {
	if len(w.samples) == 0 {
		return 0
	}

	var total time.Duration
	for _, sample := range w.samples {
		total += sample
	}

	return total / time.Duration(len(w.samples))
}

// activityLog keeps the newest entries, oldest first.
type activityLog struct {
	entries []string
	size    int
}

func newActivityLog(size int) *activityLog {
	return &activityLog{size: size}
}

func (l *activityLog) add(entry string) {
	l.entries = append(l.entries, entry)

	if len(l.entries) > l.size {
		copy(l.entries, l.entries[len(l.entries)-l.size:])
		l.entries = l.entries[:l.size]
	}
}

// formatETA renders a duration estimate for the panel headers. Unknown
// estimates render as an ellipsis.
func formatETA(d time.Duration) string {
	if d <= 0 {
		return "…"
	}

	if d < time.Second {
		return "<1s"
	}

	d = d.Round(time.Second)

	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	seconds := (d % time.Minute) / time.Second

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

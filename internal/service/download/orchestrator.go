package download

//go:generate $MOCKGEN -source=orchestrator.go -destination=mocks/orchestrator_mock.go

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/logger"
)

const (
	// minPlaylistTimeout floors the per-playlist timeout regardless of size.
	minPlaylistTimeout = 10 * time.Minute

	// perTrackTimeout is the time allowed per track when sizing the timeout.
	perTrackTimeout = 30 * time.Second

	// unknownSizeTimeout applies when a playlist's track count is unknown.
	unknownSizeTimeout = 2 * time.Hour

	// completionPollInterval is how often WaitForCompletion wakes up to
	// invoke the progress callback while downloads are still in flight.
	completionPollInterval = 500 * time.Millisecond

	// failureMessageLimit caps extracted failure messages.
	failureMessageLimit = 200
)

// Orchestrator queues migrated playlists for the external downloader and
// tracks their completion.
type Orchestrator interface {
	// Add queues a playlist for download. In parallel mode the download
	// starts immediately on a free pool slot; in sequential mode it waits
	// for DownloadQueued.
	Add(ctx context.Context, playlist Playlist)
	// DownloadQueued drains the sequential queue one playlist at a time.
	// It is a no-op in parallel mode.
	DownloadQueued(ctx context.Context) []Result
	// WaitForCompletion blocks until every in-flight download finishes,
	// invoking onProgress roughly twice a second so the UI can refresh.
	// It is a no-op in sequential mode.
	WaitForCompletion(ctx context.Context, onProgress func()) []Result
	// Stats returns the current completed, failed and pending counts.
	Stats() Stats
	// FailedDownloads returns the results of all failed downloads so far.
	FailedDownloads() []Result
}

// OrchestratorImpl implements Orchestrator on a semaphore-bounded pool of
// downloader subprocesses.
type OrchestratorImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// runner executes downloader subprocesses.
	runner Runner
	// onStart fires before a playlist download launches. May be nil.
	onStart StartCallback
	// onComplete fires after a playlist download finishes. May be nil.
	onComplete CompleteCallback
	// semaphore bounds concurrent downloader subprocesses.
	semaphore chan struct{}
	// waitGroup tracks in-flight parallel downloads.
	waitGroup sync.WaitGroup
	// mu protects the counters and slices below.
	mu sync.Mutex
	// queued holds playlists waiting for the sequential drain.
	queued []Playlist
	// results accumulates finished parallel downloads for WaitForCompletion.
	results []Result
	// completed counts downloads that exited cleanly.
	completed int
	// failed counts downloads that failed or timed out.
	failed int
	// inFlight counts downloads dispatched but not yet finished.
	inFlight int
	// failedDownloads collects the results of failed downloads.
	failedDownloads []Result
}

// NewOrchestrator creates a download orchestrator with the given runner and
// observer callbacks. Either callback may be nil.
func NewOrchestrator(
	cfg *config.Config,
	runner Runner,
	onStart StartCallback,
	onComplete CompleteCallback,
) Orchestrator {
	return &OrchestratorImpl{
		cfg:        cfg,
		runner:     runner,
		onStart:    onStart,
		onComplete: onComplete,
		semaphore:  make(chan struct{}, cfg.DownloadWorkers),
	}
}

// Add queues a playlist for download.
func (o *OrchestratorImpl) Add(ctx context.Context, playlist Playlist) {
	if !o.cfg.DownloadEnabled {
		return
	}

	if !o.cfg.ParallelDownloads {
		o.mu.Lock()
		o.queued = append(o.queued, playlist)
		o.mu.Unlock()

		return
	}

	o.mu.Lock()
	o.inFlight++
	o.mu.Unlock()

	o.waitGroup.Add(1)

	go func() {
		defer o.waitGroup.Done()

		// Acquire a pool slot (blocks while all workers are busy).
		o.semaphore <- struct{}{}

		defer func() {
			<-o.semaphore
		}()

		result := o.downloadPlaylist(ctx, playlist)

		o.mu.Lock()
		o.results = append(o.results, result)
		o.inFlight--
		o.mu.Unlock()
	}()
}

// DownloadQueued drains the sequential queue one playlist at a time.
func (o *OrchestratorImpl) DownloadQueued(ctx context.Context) []Result {
	if !o.cfg.DownloadEnabled || o.cfg.ParallelDownloads {
		return nil
	}

	var results []Result

	for {
		// Stop draining when the run is canceled (CTRL+C pressed).
		select {
		case <-ctx.Done():
			return results
		default:
		}

		o.mu.Lock()

		if len(o.queued) == 0 {
			o.mu.Unlock()

			return results
		}

		playlist := o.queued[0]
		o.queued = o.queued[1:]
		o.inFlight++
		o.mu.Unlock()

		results = append(results, o.downloadPlaylist(ctx, playlist))

		o.mu.Lock()
		o.inFlight--
		o.mu.Unlock()
	}
}

// WaitForCompletion blocks until every dispatched download finishes, waking
// roughly every half second to invoke onProgress.
func (o *OrchestratorImpl) WaitForCompletion(ctx context.Context, onProgress func()) []Result {
	if !o.cfg.DownloadEnabled || !o.cfg.ParallelDownloads {
		return nil
	}

	done := make(chan struct{})

	go func() {
		o.waitGroup.Wait()
		close(done)
	}()

	ticker := time.NewTicker(completionPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			o.mu.Lock()
			results := o.results
			o.results = nil
			o.mu.Unlock()

			return results
		case <-ticker.C:
			if onProgress != nil {
				onProgress()
			}
		case <-ctx.Done():
			// Subprocesses share the canceled context and are already
			// being killed; hand back what finished.
			o.mu.Lock()
			results := o.results
			o.results = nil
			o.mu.Unlock()

			return results
		}
	}
}

// Stats returns a snapshot of the completed, failed and pending counts.
func (o *OrchestratorImpl) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()

	return Stats{
		Completed: o.completed,
		Failed:    o.failed,
		Pending:   o.inFlight + len(o.queued),
	}
}

// FailedDownloads returns the results of all failed downloads so far.
func (o *OrchestratorImpl) FailedDownloads() []Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	failed := make([]Result, len(o.failedDownloads))
	copy(failed, o.failedDownloads)

	return failed
}

// downloadPlaylist runs one downloader invocation and classifies the outcome.
func (o *OrchestratorImpl) downloadPlaylist(ctx context.Context, playlist Playlist) Result {
	logger.Debugf(ctx, "Starting download for playlist %s (%s)", playlist.Name, playlist.UUID)

	if o.onStart != nil {
		o.onStart(playlist.UUID, playlist.Name, playlist.TrackCount)
	}

	timeout := playlistTimeout(playlist.TrackCount)
	spec := ExecSpec{
		Bin: o.cfg.DownloaderBinary,
		// Options like --skip-errors must precede the url subcommand.
		Args:    []string{"download", "--skip-errors", "url", "playlist/" + playlist.UUID},
		Timeout: timeout,
	}

	execResult := o.runner.Run(ctx, spec)

	success := execResult.ExitCode == 0
	message := "Download completed"

	switch {
	case success:
	case execResult.TimedOut:
		message = fmt.Sprintf("Download timed out after %s", timeout)
		logger.Warnf(ctx, "Playlist download timeout for %s", playlist.Name)
	default:
		message = failureMessage(execResult)
		logger.Warnf(ctx, "Playlist download failed for %s: %s", playlist.Name, message)
	}

	result := Result{
		UUID:    playlist.UUID,
		Name:    playlist.Name,
		Success: success,
		Message: message,
	}

	o.mu.Lock()

	if success {
		o.completed++
	} else {
		o.failed++
		o.failedDownloads = append(o.failedDownloads, result)
	}

	o.mu.Unlock()

	if o.onComplete != nil {
		o.onComplete(playlist.UUID, playlist.Name, success, message)
	}

	return result
}

// playlistTimeout sizes the subprocess timeout: 30 seconds per track with a
// 10 minute floor, 2 hours when the track count is unknown. Large playlists
// legitimately take hours, so there is no ceiling.
func playlistTimeout(trackCount int) time.Duration {
	if trackCount <= 0 {
		return unknownSizeTimeout
	}

	timeout := time.Duration(trackCount) * perTrackTimeout
	if timeout < minPlaylistTimeout {
		return minPlaylistTimeout
	}

	return timeout
}

// failureMessage extracts a human-readable reason from a failed invocation:
// the first stderr-then-stdout line mentioning an error, then the raw output
// tails, then the bare exit code.
func failureMessage(execResult ExecResult) string {
	for _, tail := range []string{execResult.StderrTail, execResult.StdoutTail} {
		for _, line := range strings.Split(tail, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if strings.Contains(strings.ToLower(line), "error") {
				return truncateMessage(line)
			}
		}
	}

	if trimmed := strings.TrimSpace(execResult.StderrTail); trimmed != "" {
		return truncateMessage(trimmed)
	}

	if trimmed := strings.TrimSpace(execResult.StdoutTail); trimmed != "" {
		return truncateMessage(trimmed)
	}

	return fmt.Sprintf("Exit code %d", execResult.ExitCode)
}

// truncateMessage caps an extracted reason at failureMessageLimit characters.
func truncateMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= failureMessageLimit {
		return message
	}

	return string(runes[:failureMessageLimit])
}

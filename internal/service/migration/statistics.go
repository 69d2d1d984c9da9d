package migration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/playlift/playlift/internal/logger"
	"github.com/playlift/playlift/internal/service/download"
)

const (
	// failureReasonLimit caps failure reasons in the summary so one long
	// error chain cannot flood the terminal.
	failureReasonLimit = 200

	summarySeparator = "═══════════════════════════════════════════════════════════════"
)

// RunStats aggregates the run's counters.
type RunStats struct {
	// PlaylistsMigrated is how many playlists migrated end-to-end.
	PlaylistsMigrated int
	// PlaylistsFailed is how many playlists could not be migrated at all.
	PlaylistsFailed int
	// TracksAdded is how many tracks were added to target playlists.
	TracksAdded int
	// TracksSkipped is how many tracks were already present.
	TracksSkipped int
	// TracksNotFound is how many tracks could not be resolved.
	TracksNotFound int
	// TracksFailed is how many tracks failed every add attempt.
	TracksFailed int
	// StartTime is when the run began.
	StartTime time.Time
	// EndTime is when migration and downloads finished.
	EndTime time.Time
	// FailedPlaylists lists the playlists the run could not migrate.
	FailedPlaylists []PlaylistFailure
}

// PlaylistFailure records one playlist the run could not migrate.
type PlaylistFailure struct {
	// Name is the playlist title.
	Name string
	// Reason is the human-readable failure.
	Reason string
}

// runStatistics guards RunStats for concurrent workers.
type runStatistics struct {
	mu    sync.Mutex
	stats RunStats
}

func newRunStatistics() *runStatistics {
	return &runStatistics{}
}

func (s *runStatistics) start(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.StartTime = now
}

func (s *runStatistics) finish(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.EndTime = now
}

func (s *runStatistics) recordTrack(outcome MigrationOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch outcome {
	case MigrationOutcomeAdded:
		s.stats.TracksAdded++
	case MigrationOutcomeSkipped:
		s.stats.TracksSkipped++
	case MigrationOutcomeNotFound:
		s.stats.TracksNotFound++
	case MigrationOutcomeFailed:
		s.stats.TracksFailed++
	}
}

func (s *runStatistics) recordPlaylistMigrated() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.PlaylistsMigrated++
}

func (s *runStatistics) recordPlaylistFailure(name, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.PlaylistsFailed++
	s.stats.FailedPlaylists = append(s.stats.FailedPlaylists, PlaylistFailure{Name: name, Reason: reason})
}

// snapshot returns a copy safe to read without the lock.
func (s *runStatistics) snapshot() RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	stats.FailedPlaylists = make([]PlaylistFailure, len(s.stats.FailedPlaylists))
	copy(stats.FailedPlaylists, s.stats.FailedPlaylists)

	return stats
}

// printRunSummary prints the end-of-run summary.
func (s *ServiceImpl) printRunSummary(ctx context.Context, downloadResults []download.Result, finalizeStats *FinalizeStats) {
	stats := s.stats.snapshot()

	totalTracks := stats.TracksAdded + stats.TracksSkipped + stats.TracksNotFound + stats.TracksFailed
	if totalTracks == 0 && stats.PlaylistsFailed == 0 {
		return
	}

	wasInterrupted := ctx.Err() != nil

	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)

	if wasInterrupted {
		logger.Info(ctx, "            MIGRATION SUMMARY (Interrupted)")
	} else {
		logger.Info(ctx, "                   MIGRATION SUMMARY")
	}

	logger.Info(ctx, summarySeparator)
	logger.Infof(ctx, "Playlists:        %d migrated, %d failed", stats.PlaylistsMigrated, stats.PlaylistsFailed)
	logger.Infof(ctx, "Tracks:           %d total processed", totalTracks)

	if stats.TracksAdded > 0 {
		logger.Infof(ctx, "  Added:           %d", stats.TracksAdded)
	}

	if stats.TracksSkipped > 0 {
		logger.Infof(ctx, "  Skipped:         %d", stats.TracksSkipped)
	}

	if stats.TracksNotFound > 0 {
		logger.Infof(ctx, "  Not Found:       %d", stats.TracksNotFound)
	}

	if stats.TracksFailed > 0 {
		logger.Infof(ctx, "  Failed to Add:   %d", stats.TracksFailed)
	}

	printDownloadStatistics(ctx, downloadResults)
	printLocatedFileStatistics(ctx, finalizeStats)

	if !stats.StartTime.IsZero() && !stats.EndTime.IsZero() {
		duration := stats.EndTime.Sub(stats.StartTime)

		// Only show if the duration is meaningful (> 100ms).
		if duration > 100*time.Millisecond {
			logger.Infof(ctx, "Duration:         %s", formatDuration(duration))
		}
	}

	logger.Info(ctx, summarySeparator)

	printFailedPlaylists(ctx, stats.FailedPlaylists)
	printFailedDownloads(ctx, downloadResults)
}

// printDownloadStatistics prints playlist download counts.
func printDownloadStatistics(ctx context.Context, results []download.Result) {
	if len(results) == 0 {
		return
	}

	var completed, failed int

	for _, result := range results {
		if result.Success {
			completed++
		} else {
			failed++
		}
	}

	logger.Infof(ctx, "Downloads:        %d completed, %d failed", completed, failed)
}

// printLocatedFileStatistics prints how much downloaded audio was found on disk.
func printLocatedFileStatistics(ctx context.Context, finalizeStats *FinalizeStats) {
	if finalizeStats == nil || finalizeStats.FilesLocated == 0 {
		return
	}

	//nolint:gosec // BytesLocated is always positive, no overflow risk.
	logger.Infof(ctx, "Files Located:    %d (%s)", finalizeStats.FilesLocated, humanize.Bytes(uint64(finalizeStats.BytesLocated)))
}

// printFailedPlaylists lists the playlists the run could not migrate.
func printFailedPlaylists(ctx context.Context, failures []PlaylistFailure) {
	if len(failures) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "FAILED PLAYLISTS: %d", len(failures))

	for i, failure := range failures {
		logger.Errorf(ctx, "  [%d] %s: %s", i+1, failure.Name, truncateReason(failure.Reason))
	}
}

// printFailedDownloads lists the playlist downloads that failed.
func printFailedDownloads(ctx context.Context, results []download.Result) {
	var failures []download.Result

	for _, result := range results {
		if !result.Success {
			failures = append(failures, result)
		}
	}

	if len(failures) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "FAILED DOWNLOADS: %d", len(failures))

	for i, failure := range failures {
		logger.Errorf(ctx, "  [%d] %s: %s", i+1, failure.Name, truncateReason(failure.Message))
	}
}

func truncateReason(reason string) string {
	runes := []rune(reason)
	if len(runes) <= failureReasonLimit {
		return reason
	}

	return string(runes[:failureReasonLimit])
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

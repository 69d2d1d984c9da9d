package migration

import (
	"context"
	"fmt"
	"sync"

	"github.com/playlift/playlift/internal/client/spotify"
	"github.com/playlift/playlift/internal/logger"
	"github.com/playlift/playlift/internal/service/download"
)

// trackCounts tallies one playlist's outcomes for its finished event.
type trackCounts struct {
	added    int
	skipped  int
	notFound int
	failed   int
}

func (c *trackCounts) apply(outcome MigrationOutcome) {
	switch outcome {
	case MigrationOutcomeAdded:
		c.added++
	case MigrationOutcomeSkipped:
		c.skipped++
	case MigrationOutcomeNotFound:
		c.notFound++
	case MigrationOutcomeFailed:
		c.failed++
	}
}

// runWorkerPool migrates playlists on a bounded pool. The slot channel
// doubles as the semaphore and the worker-id allocator: holding an id is
// holding the right to run.
func (s *ServiceImpl) runWorkerPool(ctx context.Context, jobs []*PlaylistJob) {
	workerCount := s.workerCount()

	workerSlots := make(chan int, workerCount)
	for id := 1; id <= workerCount; id++ {
		workerSlots <- id
	}

	var waitGroup sync.WaitGroup

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			logger.Warn(ctx, "Migration canceled, waiting for started playlists to wind down")
			waitGroup.Wait()

			return
		default:
		}

		if job == nil {
			continue
		}

		waitGroup.Add(1)

		go func(job *PlaylistJob) {
			defer waitGroup.Done()

			workerID := <-workerSlots
			defer func() { workerSlots <- workerID }()

			s.processPlaylistJob(ctx, workerID, job, len(jobs))
		}(job)
	}

	waitGroup.Wait()
}

// processPlaylistJob is the pool boundary: it allocates the playlist's
// stable run number and contains panics so one bad playlist cannot drain
// the pool.
func (s *ServiceImpl) processPlaylistJob(ctx context.Context, workerID int, job *PlaylistJob, totalPlaylists int) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("playlist migration panicked: %v", r)

			logger.Errorf(ctx, "Migration of playlist '%s' panicked: %v", job.Name, r)
			s.stats.recordPlaylistFailure(job.Name, err.Error())
			s.emit(PlaylistFinishedEvent{Worker: workerID, Name: job.Name, Err: err})
		}
	}()

	s.mu.Lock()
	s.playlistNumber++
	number := s.playlistNumber
	s.mu.Unlock()

	s.migratePlaylist(ctx, workerID, number, totalPlaylists, job)
}

// migratePlaylist runs the per-playlist procedure: fetch source tracks,
// find or create the target playlist, snapshot it, resolve and add every
// track, stamp the description, optionally remove duplicates, and hand the
// playlist to the download orchestrator.
func (s *ServiceImpl) migratePlaylist(ctx context.Context, workerID, number, totalPlaylists int, job *PlaylistJob) {
	logger.Infof(ctx, "Migrating playlist %d/%d: '%s'", number, totalPlaylists, job.Name)
	s.emit(PlaylistStartedEvent{
		Worker:     workerID,
		Number:     number,
		Total:      totalPlaylists,
		Name:       job.Name,
		TrackCount: job.TrackCount,
	})

	tracks, err := s.fetchSourceTracks(ctx, job)
	if err != nil {
		s.failPlaylist(ctx, workerID, job, "", nil, fmt.Errorf("failed to fetch source tracks: %w", err))
		return
	}

	handle, err := s.mutator.FindOrCreatePlaylist(ctx, job.Name)
	if err != nil {
		s.failPlaylist(ctx, workerID, job, "", tracks, fmt.Errorf("failed to find or create target playlist: %w", err))
		return
	}

	snapshot, err := s.mutator.BuildSnapshot(ctx, handle)
	if err != nil {
		s.failPlaylist(ctx, workerID, job, handle.UUID, tracks, fmt.Errorf("failed to snapshot target playlist: %w", err))
		return
	}

	s.collector.StartPlaylist(job.Name, handle.UUID)

	var counts trackCounts

	for _, track := range tracks {
		select {
		case <-ctx.Done():
			s.failPlaylist(ctx, workerID, job, handle.UUID, nil, fmt.Errorf("migration canceled: %w", ctx.Err()))
			return
		default:
		}

		report := s.migrateTrack(ctx, track, handle, snapshot)
		s.collector.AddTrack(job.Name, report)
		s.stats.recordTrack(report.MigrationStatus)
		counts.apply(report.MigrationStatus)
		s.emit(TrackProcessedEvent{Worker: workerID, Outcome: report.MigrationStatus, Title: report.SourceTitle})
	}

	// The description carries the last-sync timestamp; losing it is not
	// worth failing a migrated playlist over.
	if err = s.mutator.UpdateDescription(ctx, handle.UUID); err != nil {
		logger.Warnf(ctx, "Failed to update description of playlist '%s': %v", job.Name, err)
	}

	if s.cfg.CleanupDuplicates {
		if report, cleanupErr := s.mutator.RemoveDuplicates(ctx, handle.UUID, false); cleanupErr != nil {
			logger.Warnf(ctx, "Failed to remove duplicates from playlist '%s': %v", job.Name, cleanupErr)
		} else if report.Removed > 0 {
			logger.Infof(ctx, "Removed %d duplicate item(s) from playlist '%s'", report.Removed, job.Name)
		}
	}

	s.rememberMigratedPlaylist(handle.UUID)
	s.stats.recordPlaylistMigrated()
	s.emit(PlaylistFinishedEvent{
		Worker:   workerID,
		Name:     job.Name,
		Added:    counts.added,
		Skipped:  counts.skipped,
		NotFound: counts.notFound,
		Failed:   counts.failed,
	})

	logger.Infof(ctx, "Finished playlist '%s': %d added, %d skipped, %d not found, %d failed to add",
		job.Name, counts.added, counts.skipped, counts.notFound, counts.failed)

	s.orchestrator.Add(ctx, download.Playlist{UUID: handle.UUID, Name: job.Name, TrackCount: len(tracks)})
}

// migrateTrack resolves one source track through the cascade and adds it to
// the target playlist. It always returns a report; track-level failures
// never propagate.
func (s *ServiceImpl) migrateTrack(ctx context.Context, track *spotify.Track, handle *PlaylistHandle, snapshot *Snapshot) *TrackReport {
	report := NewTrackReport(track)

	result := s.matcher.Match(ctx, track, snapshot)
	if result.Outcome != MatchOutcomeHit {
		return report
	}

	report.applyMatch(result)

	if result.Source == ResolutionMetadataMatch || snapshot.Contains(result.TargetID) {
		if report.MigrationSource == "" {
			report.MigrationSource = ResolutionExisting
		}

		report.MigrationStatus = MigrationOutcomeSkipped

		return report
	}

	if err := s.mutator.AddTrack(ctx, handle.UUID, result.TargetID); err != nil {
		logger.Debugf(ctx, "Failed to add track '%s' as %s: %v", track.Name, result.TargetID, err)

		if !s.rescueAdd(ctx, track, handle, snapshot, result.TargetID, report) {
			report.MigrationStatus = MigrationOutcomeFailed
		}

		return report
	}

	report.MigrationStatus = MigrationOutcomeAdded
	snapshot.Insert(snapshotEntryFromSource(track, result.TargetID))

	return report
}

// rescueAdd reruns the search step after a failed add. A hit pointing at a
// different id than the one that failed gets one more add attempt; on
// success the report is rewritten to the rescue result.
func (s *ServiceImpl) rescueAdd(
	ctx context.Context,
	track *spotify.Track,
	handle *PlaylistHandle,
	snapshot *Snapshot,
	failedID string,
	report *TrackReport,
) bool {
	result := s.matcher.MatchBySearch(ctx, track)
	if result.Outcome != MatchOutcomeHit || result.TargetID == failedID {
		return false
	}

	if err := s.mutator.AddTrack(ctx, handle.UUID, result.TargetID); err != nil {
		logger.Debugf(ctx, "Rescue add of track '%s' as %s failed: %v", track.Name, result.TargetID, err)
		return false
	}

	result.Source = ResolutionTargetSearchFallback
	report.applyMatch(result)
	report.MigrationStatus = MigrationOutcomeAdded
	snapshot.Insert(snapshotEntryFromSource(track, result.TargetID))

	return true
}

// failPlaylist records a playlist-scoped failure: the run statistics, the
// playlist's text log, and an all-not-found report so the CSV stays complete.
func (s *ServiceImpl) failPlaylist(
	ctx context.Context,
	workerID int,
	job *PlaylistJob,
	playlistUUID string,
	tracks []*spotify.Track,
	err error,
) {
	logger.Errorf(ctx, "Failed to migrate playlist '%s': %v", job.Name, err)

	s.stats.recordPlaylistFailure(job.Name, err.Error())
	s.collector.RecordPlaylistFailure(job.Name, playlistUUID, err.Error(), tracks)
	s.emit(PlaylistFinishedEvent{Worker: workerID, Name: job.Name, Err: err})
}

// fetchSourceTracks loads the job's tracks from the source catalog.
func (s *ServiceImpl) fetchSourceTracks(ctx context.Context, job *PlaylistJob) ([]*spotify.Track, error) {
	if job.Liked {
		return s.spotifyClient.LikedTracks(ctx)
	}

	return s.spotifyClient.PlaylistTracks(ctx, job.ID)
}

func (s *ServiceImpl) rememberMigratedPlaylist(playlistUUID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.migratedPlaylistUUIDs = append(s.migratedPlaylistUUIDs, playlistUUID)
}

// snapshotEntryFromSource builds the snapshot entry recorded after a
// successful add. Source metadata stands in for the target's: the cascade
// only needs it for fuzzy comparison.
func snapshotEntryFromSource(track *spotify.Track, targetID string) *SnapshotEntry {
	return &SnapshotEntry{
		ID:              targetID,
		Title:           track.Name,
		Artists:         sourceArtistNames(track),
		DurationSeconds: track.DurationMS / millisecondsPerSecond,
	}
}

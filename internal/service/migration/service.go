package migration

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/playlift/playlift/internal/client/spotify"
	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/logger"
	"github.com/playlift/playlift/internal/service/download"
)

// Service runs playlist migrations end-to-end and cleans up target playlists.
type Service interface {
	// MigratePlaylists migrates the given source playlists, drains the
	// download orchestrator, writes the audit reports, and prints the run
	// summary. Per-playlist failures are recorded, never fatal.
	MigratePlaylists(ctx context.Context, jobs []*PlaylistJob)
	// CleanupPlaylists removes duplicate items from the given target
	// playlists. With dryRun set it only reports what would be removed.
	CleanupPlaylists(ctx context.Context, playlistUUIDs []string, dryRun bool)
}

// ServiceImpl implements the Service interface.
type ServiceImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// spotifyClient reads the source catalog.
	spotifyClient spotify.Client
	// matcher resolves source tracks to target ids.
	matcher Matcher
	// mutator writes target playlists.
	mutator Mutator
	// collector accumulates and writes the audit reports.
	collector *Collector
	// orchestrator downloads migrated playlists.
	orchestrator download.Orchestrator
	// events receives progress events; nil drops them.
	events EventSink
	// stats aggregates the run's counters.
	stats *runStatistics

	// mu protects the playlist number counter and the migrated-playlist list.
	mu                    sync.Mutex
	playlistNumber        int
	migratedPlaylistUUIDs []string
}

// NewService creates and returns a new instance of ServiceImpl.
func NewService(
	cfg *config.Config,
	spotifyClient spotify.Client,
	matcher Matcher,
	mutator Mutator,
	collector *Collector,
	orchestrator download.Orchestrator,
	events EventSink,
) Service {
	return &ServiceImpl{
		cfg:           cfg,
		spotifyClient: spotifyClient,
		matcher:       matcher,
		mutator:       mutator,
		collector:     collector,
		orchestrator:  orchestrator,
		events:        events,
		stats:         newRunStatistics(),
	}
}

// MigratePlaylists migrates the given source playlists end-to-end.
func (s *ServiceImpl) MigratePlaylists(ctx context.Context, jobs []*PlaylistJob) {
	if len(jobs) == 0 {
		logger.Info(ctx, "Nothing to migrate.")
		return
	}

	s.stats.start(time.Now())

	logger.Infof(ctx, "Migrating %d playlist(s) with %d worker(s)", len(jobs), s.workerCount())

	s.runWorkerPool(ctx, jobs)

	// Sequential mode queues downloads until migration is done; parallel
	// mode has them in flight already. One of the two calls is a no-op.
	results := s.orchestrator.DownloadQueued(ctx)
	results = append(results, s.orchestrator.WaitForCompletion(ctx, s.pollDownloads)...)

	for _, result := range results {
		s.collector.MarkPlaylistDownloaded(result.Name, result.Success)
	}

	s.stats.finish(time.Now())

	finalizeStats := s.collector.FinalizeAndWrite(ctx, s.cfg.DownloadEnabled)

	s.printRunSummary(ctx, results, finalizeStats)
	s.logMigratedPlaylists(ctx)

	logger.Infof(ctx, "Run artifacts: %s", s.collector.RunLogDir())
}

// CleanupPlaylists removes duplicate items from the given target playlists.
func (s *ServiceImpl) CleanupPlaylists(ctx context.Context, playlistUUIDs []string, dryRun bool) {
	for _, playlistUUID := range playlistUUIDs {
		select {
		case <-ctx.Done():
			logger.Warn(ctx, "Cleanup canceled")
			return
		default:
		}

		report, err := s.mutator.RemoveDuplicates(ctx, playlistUUID, dryRun)
		if err != nil {
			logger.Errorf(ctx, "Failed to clean up playlist %s: %v", playlistUUID, err)
			continue
		}

		switch {
		case report.Removed == 0:
			logger.Infof(ctx, "Playlist %s: no duplicates among %d item(s)", playlistUUID, report.TotalItems)
		case dryRun:
			logger.Infof(ctx, "Playlist %s: %d of %d item(s) are duplicates and would be removed",
				playlistUUID, report.Removed, report.TotalItems)
		default:
			logger.Infof(ctx, "Playlist %s: removed %d duplicate item(s), %d remain",
				playlistUUID, report.Removed, report.TotalItems-report.Removed)
		}
	}
}

func (s *ServiceImpl) emit(event any) {
	if s.events == nil {
		return
	}

	s.events(event)
}

func (s *ServiceImpl) pollDownloads() {
	s.emit(DownloadPollEvent{Stats: s.orchestrator.Stats()})
}

func (s *ServiceImpl) workerCount() int {
	count := int(s.cfg.MigrationWorkers)
	if count < 1 {
		return 1
	}

	return count
}

func (s *ServiceImpl) logMigratedPlaylists(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.migratedPlaylistUUIDs) == 0 {
		return
	}

	logger.Debugf(ctx, "Migrated playlist ids: %s", strings.Join(s.migratedPlaylistUUIDs, ", "))
}

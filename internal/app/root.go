package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/playlift/playlift/internal/client/songlink"
	"github.com/playlift/playlift/internal/client/spotify"
	"github.com/playlift/playlift/internal/client/tidal"
	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/constants"
	"github.com/playlift/playlift/internal/logger"
	"github.com/playlift/playlift/internal/service/download"
	"github.com/playlift/playlift/internal/service/migration"
	"github.com/playlift/playlift/internal/ui"
)

// runLogDirTimeLayout names per-run artifact directories by start time.
const runLogDirTimeLayout = "20060102-150405"

// ExecuteRootCommand is the entry point for a migration run.
// It initializes the catalog clients, resolves the playlist selection,
// assembles the migration service, and migrates the selected playlists.
// Per-playlist failures end up in the run artifacts, never abort the run.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, args []string) {
	spotifyClient, err := spotify.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize source catalog client: %v", err)
	}

	tidalClient, err := tidal.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize target catalog client: %v", err)
	}

	songlinkClient, err := songlink.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize universal-link client: %v", err)
	}

	matcher, err := migration.NewMatcher(songlinkClient, tidalClient)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize track matcher: %v", err)
	}

	jobs, err := resolvePlaylistJobs(ctx, cfg, spotifyClient, args, os.Stdin, os.Stdout)
	if err != nil {
		logger.Fatalf(ctx, "Failed to resolve playlist selection: %v", err)
	}

	runLogDir, err := makeRunLogDir(time.Now())
	if err != nil {
		logger.Fatalf(ctx, "Failed to create run log directory: %v", err)
	}

	logger.Infof(ctx, "Run artifacts will be saved to %s", runLogDir)

	// Ensure a stray panic never escapes with the terminal still captured
	// by the live view.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}
	}()

	// CTRL+C in the live view cancels runCtx: workers stop picking up new
	// playlists and downloader subprocesses are killed, while the view
	// stays up until started playlists wind down.
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	sink, finishProgress := startProgress(runCtx, cfg, len(jobs), runLogDir, cancelRun)
	defer finishProgress()

	service := assembleMigrationService(cfg, spotifyClient, tidalClient, matcher, sink, runLogDir)
	service.MigratePlaylists(runCtx, jobs)
}

// startProgress starts the live split-screen view when it is enabled and
// usable, falling back to plain logging with an optional progress bar.
// The returned finish function must run before the process exits.
func startProgress(
	ctx context.Context,
	cfg *config.Config,
	totalPlaylists int,
	runLogDir string,
	onInterrupt func(),
) (migration.EventSink, func()) {
	if cfg.FancyUI {
		program, err := ui.Start(ctx,
			int(cfg.MigrationWorkers), int(cfg.DownloadWorkers), runLogDir, onInterrupt)
		if err == nil {
			return program.Sink(), func() {
				if finishErr := program.Finish(); finishErr != nil {
					logger.Warnf(ctx, "Progress view exited with an error: %v", finishErr)
				}

				logger.Infof(ctx, "Run artifacts are in %s", runLogDir)
			}
		}

		logger.Warnf(ctx, "Live progress view unavailable, falling back to plain output: %v", err)
	}

	plain := ui.NewPlainProgress(totalPlaylists, int(cfg.MigrationWorkers))

	return plain.Sink(), plain.Finish
}

// assembleMigrationService builds the migration service with all of its
// collaborators: mutator, report collector, probe and download orchestrator.
// Downloader lifecycle callbacks are forwarded into the progress sink.
func assembleMigrationService(
	cfg *config.Config,
	spotifyClient spotify.Client,
	tidalClient tidal.Client,
	matcher migration.Matcher,
	sink migration.EventSink,
	runLogDir string,
) migration.Service {
	mutator := migration.NewMutator(tidalClient)
	prober := migration.NewFFProber(cfg, download.NewSubprocessRunner())
	collector := migration.NewCollector(cfg, prober, runLogDir)

	onStart := func(uuid, name string, trackCount int) {
		if sink != nil {
			sink(migration.DownloadStartedEvent{UUID: uuid, Name: name, TrackCount: trackCount})
		}
	}

	onComplete := func(uuid, name string, success bool, message string) {
		if sink != nil {
			sink(migration.DownloadFinishedEvent{UUID: uuid, Name: name, Success: success, Message: message})
		}
	}

	orchestrator := download.NewOrchestrator(cfg, download.NewSubprocessRunner(), onStart, onComplete)

	return migration.NewService(cfg, spotifyClient, matcher, mutator, collector, orchestrator, sink)
}

// makeRunLogDir creates the per-run artifact directory under the system
// temporary directory, named by the run's start time.
func makeRunLogDir(startedAt time.Time) (string, error) {
	dir := filepath.Join(os.TempDir(), "playlift", startedAt.Format(runLogDirTimeLayout)+"-runlog")
	if err := os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
		return "", err
	}

	return dir, nil
}

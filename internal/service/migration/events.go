package migration

import "github.com/playlift/playlift/internal/service/download"

// EventSink receives progress events as they happen. The live UI feeds
// events into its message loop; plain mode logs them. A nil sink is valid
// and drops everything.
type EventSink func(event any)

// PlaylistStartedEvent fires when a worker picks up a playlist.
type PlaylistStartedEvent struct {
	// Worker is the pool slot processing the playlist.
	Worker int
	// Number is the playlist's stable position in the run, starting at 1.
	Number int
	// Total is the number of playlists in the run.
	Total int
	// Name is the playlist title.
	Name string
	// TrackCount is the track count reported with the playlist.
	TrackCount int
}

// TrackProcessedEvent fires after each source track is resolved.
type TrackProcessedEvent struct {
	// Worker is the pool slot processing the track's playlist.
	Worker int
	// Outcome is the track's migration outcome.
	Outcome MigrationOutcome
	// Title is the source track title.
	Title string
}

// PlaylistFinishedEvent fires when a playlist's migration ends, successfully
// or not.
type PlaylistFinishedEvent struct {
	// Worker is the pool slot that processed the playlist.
	Worker int
	// Name is the playlist title.
	Name string
	// Added is how many tracks were added to the target playlist.
	Added int
	// Skipped is how many tracks were already present.
	Skipped int
	// NotFound is how many tracks could not be resolved.
	NotFound int
	// Failed is how many tracks failed every add attempt.
	Failed int
	// Err is set when the playlist as a whole could not be migrated.
	Err error
}

// DownloadStartedEvent fires when a playlist download launches.
type DownloadStartedEvent struct {
	// UUID is the target playlist's identifier.
	UUID string
	// Name is the playlist title.
	Name string
	// TrackCount is the playlist's track count.
	TrackCount int
}

// DownloadFinishedEvent fires when a playlist download ends.
type DownloadFinishedEvent struct {
	// UUID is the target playlist's identifier.
	UUID string
	// Name is the playlist title.
	Name string
	// Success reports whether the downloader exited cleanly.
	Success bool
	// Message is the human-readable result.
	Message string
}

// DownloadPollEvent carries the orchestrator's counters while the run waits
// for downloads to finish.
type DownloadPollEvent struct {
	// Stats is the orchestrator's current view.
	Stats download.Stats
}

package download

// Playlist identifies one migrated playlist queued for download.
type Playlist struct {
	// UUID is the target catalog playlist identifier.
	UUID string
	// Name is the human-readable playlist title.
	Name string
	// TrackCount sizes the subprocess timeout. Zero or negative means unknown.
	TrackCount int
}

// Result describes one finished download attempt.
type Result struct {
	// UUID is the target catalog playlist identifier.
	UUID string
	// Name is the human-readable playlist title.
	Name string
	// Success reports whether the downloader exited cleanly.
	Success bool
	// Message summarizes the outcome; on failure, the extracted reason.
	Message string
}

// Stats is a point-in-time snapshot of orchestrator progress.
type Stats struct {
	// Completed is the number of downloads that exited cleanly.
	Completed int
	// Failed is the number of downloads that failed or timed out.
	Failed int
	// Pending is the number of downloads queued or in flight.
	Pending int
}

// StartCallback fires right before a playlist download launches.
type StartCallback func(uuid, name string, trackCount int)

// CompleteCallback fires after a playlist download finishes.
type CompleteCallback func(uuid, name string, success bool, message string)

// Package migration moves playlists from the source catalog to the target
// catalog. A bounded worker pool migrates playlists end-to-end: each track
// is resolved through a cascade of match attempts (metadata against the
// target playlist's snapshot, then the universal-link service, then target
// search), added to the target playlist, and recorded as a TrackReport row.
// Finished playlists are handed to the download orchestrator, and per-playlist
// CSV reports enriched with probed audio metadata are written at the end of
// the run.
package migration

// Package download drives the external downloader binary for migrated
// playlists. A bounded worker pool shells out once per playlist with a
// timeout sized to the track count, classifies the subprocess exit, and
// reports progress through start and complete callbacks.
package download

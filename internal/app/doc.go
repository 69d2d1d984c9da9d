// Package app wires the application together for the CLI entry points.
// It builds the catalog clients, the matcher cascade, the download
// orchestrator and the progress view, resolves which playlists a run
// covers, and hands the assembled migration service its work.
package app

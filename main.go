// Playlift is a CLI tool that migrates playlists from one streaming catalog
// to another, drives an external downloader to materialize them as local
// audio files, and writes a per-playlist audit CSV.
package main

import "github.com/playlift/playlift/cmd"

// main is the entry point of the application.
// It calls the Execute function from the cmd package, which starts the CLI.
func main() {
	cmd.Execute()
}

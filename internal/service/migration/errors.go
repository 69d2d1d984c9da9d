package migration

import "errors"

var (
	// ErrPlaylistNotCreated indicates the target service accepted a create call
	// but the new playlist never appeared in the user's playlists.
	ErrPlaylistNotCreated = errors.New("created playlist did not appear in the user's playlists")
	// ErrEmptyProbeBinary indicates the audio probe binary is not set.
	ErrEmptyProbeBinary = errors.New("audio probe binary is not set")
	// ErrProbeFailed indicates the audio probe subprocess exited with an error.
	ErrProbeFailed = errors.New("audio probe failed")
	// ErrNoAudioStream indicates the probed file contains no audio stream.
	ErrNoAudioStream = errors.New("no audio stream in probed file")
)

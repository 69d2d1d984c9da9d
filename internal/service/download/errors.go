package download

import "errors"

// Common errors for the download orchestrator.
var (
	// ErrEmptyBinary indicates that no downloader binary is configured.
	ErrEmptyBinary = errors.New("downloader binary is not set")
)

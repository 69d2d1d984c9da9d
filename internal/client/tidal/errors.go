package tidal

import "errors"

var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrTokenRefreshFailed indicates the access token could not be refreshed.
	ErrTokenRefreshFailed = errors.New("failed to refresh access token")
	// ErrTracksNotAdded indicates some tracks were rejected even by one-by-one addition.
	// The wrapped message names the failing track IDs.
	ErrTracksNotAdded = errors.New("failed to add tracks")
	// ErrUnknownUser indicates the session endpoint did not reveal a user ID.
	ErrUnknownUser = errors.New("could not determine user ID")
)

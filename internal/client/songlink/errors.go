package songlink

import "errors"

var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrNoTargetLink indicates the service definitively knows no target catalog
	// counterpart for the track. Callers treat it as a miss, not a failure.
	ErrNoTargetLink = errors.New("no target catalog link for track")
)

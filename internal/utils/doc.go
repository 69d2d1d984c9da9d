// Package utils holds small helpers shared across the application:
// playlist list-file reading, named regex group extraction, slice mapping,
// and the content-type and pacing helpers used by the HTTP clients.
package utils

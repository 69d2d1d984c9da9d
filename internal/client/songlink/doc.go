// Package songlink provides a Go client for the song.link (Odesli)
// universal-link API, resolving source catalog tracks to their target
// catalog counterparts. It enforces the service's published
// requests-per-minute limit with a sliding window, caches successful
// resolutions, and distinguishes a definitive "no counterpart" answer
// from transient transport failures.
package songlink

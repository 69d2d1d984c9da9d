// Package spotify provides a Go client for reading the source catalog:
// the authenticated user's profile, playlists, playlist tracks, and
// saved tracks. It authenticates with OAuth 2.0, refreshing access
// tokens ahead of expiry and persisting rotated tokens back to the
// configuration file, and paces every request through a shared rate
// limiter. Pagination is handled internally so callers always receive
// complete collections.
package spotify

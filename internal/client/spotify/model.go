package spotify

// User represents the authenticated user's profile.
type User struct {
	// ID is the user's catalog identifier.
	ID string `json:"id"`
	// DisplayName is the user's visible name.
	DisplayName string `json:"display_name"`
}

// Playlist represents one of the user's playlists.
type Playlist struct {
	// ID is the playlist's catalog identifier.
	ID string `json:"id"`
	// Name is the playlist title.
	Name string `json:"name"`
	// Owner identifies the account the playlist belongs to.
	Owner PlaylistOwner `json:"owner"`
	// Tracks carries the track count reported with the playlist.
	Tracks PlaylistTracksSummary `json:"tracks"`
}

// PlaylistOwner identifies the account a playlist belongs to.
type PlaylistOwner struct {
	// ID is the owning user's catalog identifier.
	ID string `json:"id"`
}

// PlaylistTracksSummary carries the track count reported with a playlist.
type PlaylistTracksSummary struct {
	// Total is the number of tracks in the playlist.
	Total int `json:"total"`
}

// Track represents a track with the metadata the migration pipeline needs.
type Track struct {
	// ID is the track's catalog identifier. Local files come back with an empty ID.
	ID string `json:"id"`
	// Name is the track title.
	Name string `json:"name"`
	// DurationMS is the track length in milliseconds.
	DurationMS int64 `json:"duration_ms"`
	// TrackNumber is the track's position on its album.
	TrackNumber int `json:"track_number"`
	// Artists lists the credited artists in catalog order.
	Artists []*Artist `json:"artists"`
	// Album carries the album the track belongs to.
	Album Album `json:"album"`
	// ExternalIDs carries cross-catalog identifiers such as the ISRC.
	ExternalIDs ExternalIDs `json:"external_ids"`
	// ExternalURLs carries web links to the track.
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Artist represents a credited artist.
type Artist struct {
	// Name is the artist's display name.
	Name string `json:"name"`
}

// Album represents the album a track belongs to.
type Album struct {
	// Name is the album title.
	Name string `json:"name"`
}

// ExternalIDs carries cross-catalog identifiers for a track.
type ExternalIDs struct {
	// ISRC is the International Standard Recording Code, when known.
	ISRC string `json:"isrc"`
}

// ExternalURLs carries web links for a catalog entity.
type ExternalURLs struct {
	// Spotify is the entity's web URL on the source catalog.
	Spotify string `json:"spotify"`
}

// PagedPlaylistsResponse represents one page of the user's playlists.
type PagedPlaylistsResponse struct {
	// Items holds the playlists on this page.
	Items []*Playlist `json:"items"`
	// Total is the full collection size across all pages.
	Total int `json:"total"`
	// Next is the URL of the following page, or empty on the last page.
	Next string `json:"next"`
}

// PagedTracksResponse represents one page of playlist or library tracks.
type PagedTracksResponse struct {
	// Items holds the track entries on this page.
	Items []*PlaylistTrackItem `json:"items"`
	// Total is the full collection size across all pages.
	Total int `json:"total"`
	// Next is the URL of the following page, or empty on the last page.
	Next string `json:"next"`
}

// PlaylistTrackItem wraps a track entry in a paged response.
// Track is null for entries the catalog can no longer serve.
type PlaylistTrackItem struct {
	// Track is the wrapped track, or nil for unavailable entries.
	Track *Track `json:"track"`
}

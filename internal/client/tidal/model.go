package tidal

// Session represents the API session the current access token belongs to.
type Session struct {
	// SessionID is the opaque session identifier.
	SessionID string `json:"sessionId"`
	// UserID is the numeric ID of the authenticated user.
	UserID int64 `json:"userId"`
	// CountryCode is the two-letter country the account is registered in.
	CountryCode string `json:"countryCode"`
}

// Playlist represents a playlist in the target catalog.
type Playlist struct {
	// UUID is the playlist's stable identifier.
	UUID string `json:"uuid"`
	// Title is the playlist title.
	Title string `json:"title"`
	// Description is the playlist description.
	Description string `json:"description"`
	// NumberOfTracks is the item count reported with the playlist.
	NumberOfTracks int `json:"numberOfTracks"`
	// LastUpdated is the server-side modification timestamp.
	LastUpdated string `json:"lastUpdated"`
	// URL is the playlist's web link.
	URL string `json:"url"`
}

// Track represents a track in the target catalog.
type Track struct {
	// ID is the track's numeric catalog identifier.
	ID int64 `json:"id"`
	// Title is the track title.
	Title string `json:"title"`
	// Duration is the track length in seconds.
	Duration int64 `json:"duration"`
	// TrackNumber is the track's position on its album.
	TrackNumber int `json:"trackNumber"`
	// ISRC is the International Standard Recording Code, when known.
	ISRC string `json:"isrc"`
	// Artists lists the credited artists in catalog order.
	Artists []*Artist `json:"artists"`
	// Album carries the album the track belongs to.
	Album *Album `json:"album"`
	// URL is the track's web link.
	URL string `json:"url"`
}

// Artist represents a credited artist.
type Artist struct {
	// ID is the artist's numeric catalog identifier.
	ID int64 `json:"id"`
	// Name is the artist's display name.
	Name string `json:"name"`
}

// Album represents the album a track belongs to.
type Album struct {
	// ID is the album's numeric catalog identifier.
	ID int64 `json:"id"`
	// Title is the album title.
	Title string `json:"title"`
}

// PlaylistItem wraps one playlist entry. Item may be null for entries
// the catalog can no longer serve; callers must keep such entries in
// place, because an item's slice position is its playlist index.
type PlaylistItem struct {
	// Item is the wrapped track, or nil for unavailable entries.
	Item *Track `json:"item"`
	// Type names the entry kind, usually "track".
	Type string `json:"type"`
}

// PagedPlaylistsResponse represents one page of the user's playlists.
type PagedPlaylistsResponse struct {
	// Items holds the playlists on this page.
	Items []*Playlist `json:"items"`
	// Limit is the page size the server applied.
	Limit int `json:"limit"`
	// Offset is the index of the first item on this page.
	Offset int `json:"offset"`
	// TotalNumberOfItems is the full collection size across all pages.
	TotalNumberOfItems int `json:"totalNumberOfItems"`
}

// PagedItemsResponse represents one page of a playlist's items.
type PagedItemsResponse struct {
	// Items holds the entries on this page in playlist order.
	Items []*PlaylistItem `json:"items"`
	// Limit is the page size the server applied.
	Limit int `json:"limit"`
	// Offset is the index of the first item on this page.
	Offset int `json:"offset"`
	// TotalNumberOfItems is the full collection size across all pages.
	TotalNumberOfItems int `json:"totalNumberOfItems"`
}

// SearchResponse represents the response structure for a catalog search.
type SearchResponse struct {
	// Tracks carries the track results, when requested.
	Tracks *SearchTracks `json:"tracks"`
}

// SearchTracks carries the track portion of a search response.
type SearchTracks struct {
	// Items holds the matching tracks in relevance order.
	Items []*Track `json:"items"`
	// TotalNumberOfItems is the full result count.
	TotalNumberOfItems int `json:"totalNumberOfItems"`
}

// TokenResponse represents the OAuth token endpoint's response.
type TokenResponse struct {
	// AccessToken is the newly minted bearer token.
	AccessToken string `json:"access_token"`
	// RefreshToken replaces the stored refresh token when present.
	RefreshToken string `json:"refresh_token"`
	// TokenType is the token scheme, normally "Bearer".
	TokenType string `json:"token_type"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
	// User describes the account the token belongs to, when present.
	User *TokenUser `json:"user"`
}

// TokenUser describes the account a token belongs to.
type TokenUser struct {
	// UserID is the numeric ID of the authenticated user.
	UserID int64 `json:"userId"`
	// CountryCode is the two-letter country the account is registered in.
	CountryCode string `json:"countryCode"`
}

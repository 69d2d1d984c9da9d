package songlink

// LinksResponse represents the response structure for a universal-link lookup.
type LinksResponse struct {
	// EntityUniqueID identifies the entity the lookup resolved from.
	EntityUniqueID string `json:"entityUniqueId"`
	// PageURL is the song.link page aggregating all platform links.
	PageURL string `json:"pageUrl"`
	// LinksByPlatform maps platform names to their link entries.
	LinksByPlatform map[string]*PlatformLink `json:"linksByPlatform"`
}

// PlatformLink represents a single platform's entry in a universal-link response.
type PlatformLink struct {
	// EntityUniqueID is the platform-scoped entity ID, e.g. "TIDAL_TRACK::12345".
	EntityUniqueID string `json:"entityUniqueId"`
	// URL is the web link to the entity on the platform.
	URL string `json:"url"`
}

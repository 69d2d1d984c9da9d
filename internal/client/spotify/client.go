package spotify

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/logger"
	http_transport "github.com/playlift/playlift/internal/transport/http"
)

// Client defines the interface for reading the source catalog.
type Client interface {
	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*User, error)
	// UserPlaylists retrieves all playlists of the authenticated user.
	UserPlaylists(ctx context.Context) ([]*Playlist, error)
	// PlaylistTracks retrieves all tracks of a playlist, skipping unavailable entries.
	PlaylistTracks(ctx context.Context, playlistID string) ([]*Track, error)
	// LikedTracks retrieves the user's saved tracks, skipping unavailable entries.
	LikedTracks(ctx context.Context) ([]*Track, error)
	// LikedTracksCount retrieves the user's saved-track count without
	// paging through the collection.
	LikedTracksCount(ctx context.Context) (int, error)
}

// ClientImpl implements the Client interface for the source catalog API.
type ClientImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// baseURL is the base URL for API requests.
	baseURL string
	// httpClient is the HTTP client for making requests, with OAuth attached.
	httpClient *http.Client
	// tokenSource mints and refreshes access tokens.
	tokenSource oauth2.TokenSource
	// limiter paces all API calls.
	limiter *rate.Limiter
	// persistMu serializes token rotation checks.
	persistMu sync.Mutex
}

const (
	// userProfileURI is the URI path for the current user's profile.
	userProfileURI = "me"
	// userPlaylistsURI is the URI path for the current user's playlists.
	userPlaylistsURI = "me/playlists"
	// likedTracksURI is the URI path for the user's saved tracks.
	likedTracksURI = "me/tracks"
	// playlistsURIPath is the URI path component for playlist resources.
	playlistsURIPath = "playlists"
	// tracksURIPath is the URI path component for a playlist's tracks.
	tracksURIPath = "tracks"
)

const (
	// playlistsPageSize is the API maximum page size for the playlists endpoint.
	playlistsPageSize = 50
	// playlistTracksPageSize is the API maximum page size for the playlist tracks endpoint.
	playlistTracksPageSize = 100
	// likedTracksPageSize is the API maximum page size for the saved tracks endpoint.
	likedTracksPageSize = 50
	// tokenExpiryMargin refreshes access tokens this long before they expire,
	// so a token cannot lapse in the middle of a paged fetch.
	tokenExpiryMargin = time.Minute
)

// NewClient creates and returns a new instance of ClientImpl.
// The client refreshes its OAuth token ahead of expiry and persists
// rotated tokens back to the configuration file.
func NewClient(cfg *config.Config) (Client, error) {
	baseTransport := http_transport.NewUserAgentInjector(
		http_transport.NewLogTransport(http.DefaultTransport, 0),
		http_transport.DefaultUserAgent)

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: cfg.SpotifyTokenURL,
		},
	}

	token := &oauth2.Token{
		AccessToken:  cfg.SpotifyAccessToken,
		TokenType:    "Bearer",
		RefreshToken: cfg.SpotifyRefreshToken,
		Expiry:       cfg.ParsedSpotifyTokenExpiry,
	}

	// Token refreshes go through the same transport chain as API calls.
	// The background context is deliberate: the token source outlives any
	// single request.
	refreshCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
		Transport: baseTransport,
		Timeout:   http_transport.DefaultTimeout,
	})

	tokenSource := oauth2.ReuseTokenSourceWithExpiry(
		token,
		oauthConfig.TokenSource(refreshCtx, token),
		tokenExpiryMargin)

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: tokenSource,
			Base:   baseTransport,
		},
		Timeout: http_transport.DefaultTimeout,
	}

	client := &ClientImpl{
		cfg:         cfg,
		baseURL:     cfg.SpotifyAPIURL,
		httpClient:  httpClient,
		tokenSource: tokenSource,
		limiter:     rate.NewLimiter(rate.Limit(cfg.SourceRequestsPerSecond), 1),
	}

	return client, nil
}

// CurrentUser retrieves the authenticated user's profile.
func (c *ClientImpl) CurrentUser(ctx context.Context) (*User, error) {
	user, err := fetchJSON[User](c, ctx, userProfileURI)
	if err != nil {
		return nil, err
	}

	c.persistRotatedTokens(ctx)

	return user, nil
}

// UserPlaylists retrieves all playlists of the authenticated user.
func (c *ClientImpl) UserPlaylists(ctx context.Context) ([]*Playlist, error) {
	var (
		playlists []*Playlist
		offset    int
	)

	for {
		page, err := c.fetchPlaylistsPage(ctx, offset)
		if err != nil {
			return nil, err
		}

		playlists = append(playlists, page.Items...)

		logger.Debugf(ctx, "Fetched %d playlists (offset=%d, total=%d)",
			len(page.Items), offset, page.Total)

		if page.Next == "" || len(page.Items) == 0 || len(playlists) >= page.Total {
			break
		}

		offset += playlistsPageSize
	}

	c.persistRotatedTokens(ctx)

	return playlists, nil
}

// PlaylistTracks retrieves all tracks of a playlist, skipping unavailable entries.
func (c *ClientImpl) PlaylistTracks(ctx context.Context, playlistID string) ([]*Track, error) {
	uri, err := url.JoinPath(playlistsURIPath, playlistID, tracksURIPath)
	if err != nil {
		return nil, err
	}

	return c.fetchAllTracks(ctx, uri, playlistTracksPageSize)
}

// LikedTracks retrieves the user's saved tracks, skipping unavailable entries.
func (c *ClientImpl) LikedTracks(ctx context.Context) ([]*Track, error) {
	return c.fetchAllTracks(ctx, likedTracksURI, likedTracksPageSize)
}

// LikedTracksCount retrieves the user's saved-track count from the first
// page's total, without paging through the collection.
func (c *ClientImpl) LikedTracksCount(ctx context.Context) (int, error) {
	query := url.Values{}
	query.Set("limit", "1")
	query.Set("offset", "0")

	page, err := fetchJSONWithQuery[PagedTracksResponse](c, ctx, likedTracksURI, query)
	if err != nil {
		return 0, err
	}

	return page.Total, nil
}

// fetchPlaylistsPage fetches a single page of the user's playlists.
func (c *ClientImpl) fetchPlaylistsPage(ctx context.Context, offset int) (*PagedPlaylistsResponse, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(playlistsPageSize))
	query.Set("offset", strconv.Itoa(offset))

	return fetchJSONWithQuery[PagedPlaylistsResponse](c, ctx, userPlaylistsURI, query)
}

// fetchAllTracks walks a paged track collection to its end.
// Entries without a track payload are local files or regionally
// unavailable tracks and are dropped here.
func (c *ClientImpl) fetchAllTracks(ctx context.Context, uri string, pageSize int) ([]*Track, error) {
	var (
		tracks []*Track
		offset int
	)

	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("offset", strconv.Itoa(offset))

		page, err := fetchJSONWithQuery[PagedTracksResponse](c, ctx, uri, query)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item == nil || item.Track == nil {
				continue
			}

			tracks = append(tracks, item.Track)
		}

		logger.Debugf(ctx, "Fetched %d track entries from %s (offset=%d, total=%d)",
			len(page.Items), uri, offset, page.Total)

		if page.Next == "" || len(page.Items) == 0 || offset+len(page.Items) >= page.Total {
			break
		}

		offset += pageSize
	}

	c.persistRotatedTokens(ctx)

	return tracks, nil
}

// persistRotatedTokens writes refreshed OAuth tokens back to the
// configuration file so the next run does not repeat the refresh.
func (c *ClientImpl) persistRotatedTokens(ctx context.Context) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	token, err := c.tokenSource.Token()
	if err != nil || token.AccessToken == c.cfg.SpotifyAccessToken {
		return
	}

	c.cfg.SpotifyAccessToken = token.AccessToken
	if token.RefreshToken != "" {
		c.cfg.SpotifyRefreshToken = token.RefreshToken
	}

	c.cfg.SpotifyTokenExpiry = token.Expiry.Format(time.RFC3339)
	c.cfg.ParsedSpotifyTokenExpiry = token.Expiry

	if err = config.SaveConfig(c.cfg); err != nil {
		logger.Warnf(ctx, "Failed to persist rotated source catalog tokens: %v", err)

		return
	}

	logger.Debug(ctx, "Persisted rotated source catalog tokens")
}

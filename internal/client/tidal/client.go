package tidal

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/logger"
	http_transport "github.com/playlift/playlift/internal/transport/http"
	"github.com/playlift/playlift/internal/utils"
)

// Client defines the interface for interacting with the target catalog API.
type Client interface {
	// Session retrieves the API session the current token belongs to.
	Session(ctx context.Context) (*Session, error)
	// UserPlaylists retrieves all playlists created by the current user.
	UserPlaylists(ctx context.Context) ([]*Playlist, error)
	// CreatePlaylist creates a playlist with the given title and description.
	CreatePlaylist(ctx context.Context, title, description string) (*Playlist, error)
	// PlaylistItems retrieves all items of a playlist. The returned slice
	// preserves playlist order, one entry per index, including unavailable entries.
	PlaylistItems(ctx context.Context, playlistUUID string) ([]*PlaylistItem, error)
	// AddPlaylistTracks adds tracks under the entity-tag protocol, falling
	// back to one-by-one additions when the batch is rejected.
	AddPlaylistTracks(ctx context.Context, playlistUUID string, trackIDs []string) error
	// DeletePlaylistItems removes the items at the given zero-based indices.
	DeletePlaylistItems(ctx context.Context, playlistUUID string, indices []int) error
	// UpdatePlaylistDescription rewrites a playlist's description.
	UpdatePlaylistDescription(ctx context.Context, playlistUUID, description string) error
	// SearchTracks searches the catalog and returns the top track results.
	SearchTracks(ctx context.Context, query string) ([]*Track, error)
}

// ClientImpl implements the Client interface for the target catalog API.
type ClientImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// baseURL is the base URL for API requests.
	baseURL string
	// tokenURL is the OAuth token endpoint used for refreshes.
	tokenURL string
	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
	// tokenMu guards accessToken and serializes refreshes.
	tokenMu sync.Mutex
	// accessToken is the bearer token attached to every request.
	accessToken string
	// sessionMu guards userID and countryCode.
	sessionMu sync.Mutex
	// userID is the authenticated user's numeric ID, zero until discovered.
	userID int64
	// countryCode is sent with most requests; the session value wins over config.
	countryCode string
	// saveConfig persists rotated tokens. Swappable for tests.
	saveConfig func(*config.Config) error
}

const (
	// sessionsURI is the URI path for session discovery.
	sessionsURI = "sessions"
	// searchURI is the URI path for catalog search.
	searchURI = "search"
	// usersURIPath is the URI path component for user resources.
	usersURIPath = "users"
	// playlistsURIPath is the URI path component for playlist resources.
	playlistsURIPath = "playlists"
	// itemsURIPath is the URI path component for a playlist's items.
	itemsURIPath = "items"
)

const (
	// playlistsPageSize is the page size for listing the user's playlists.
	playlistsPageSize = 50
	// playlistItemsPageSize is the page size for paging a playlist's items.
	playlistItemsPageSize = 100
	// searchResultLimit caps how many search results are considered.
	searchResultLimit = 10
	// onDuplicatesSkip tells the server to ignore duplicate track IDs in an add.
	onDuplicatesSkip = "SKIP"
	// searchTypesTracks restricts search responses to track results.
	searchTypesTracks = "TRACKS"
	// oneByOnePauseEvery inserts a pause after this many one-by-one additions.
	oneByOnePauseEvery = 10
	// oneByOnePauseMin and oneByOnePauseMax bound the pause between addition bursts.
	oneByOnePauseMin = 250 * time.Millisecond
	oneByOnePauseMax = 750 * time.Millisecond
)

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config) (Client, error) {
	httpClient := &http.Client{
		Transport: http_transport.NewUserAgentInjector(
			http_transport.NewLogTransport(http.DefaultTransport, 0),
			http_transport.DefaultUserAgent),
		Timeout: http_transport.DefaultTimeout,
	}

	client := &ClientImpl{
		cfg:         cfg,
		baseURL:     cfg.TidalAPIURL,
		tokenURL:    cfg.TidalTokenURL,
		httpClient:  httpClient,
		accessToken: cfg.TidalAccessToken,
		userID:      cfg.TidalUserID,
		countryCode: cfg.UserCountry,
		saveConfig:  config.SaveConfig,
	}

	return client, nil
}

// Session retrieves the API session the current token belongs to and
// caches the discovered user ID and country code.
func (c *ClientImpl) Session(ctx context.Context) (*Session, error) {
	session, err := fetchJSON[Session](c, ctx, sessionsURI, nil)
	if err != nil {
		return nil, err
	}

	c.sessionMu.Lock()
	if session.UserID != 0 {
		c.userID = session.UserID
	}

	if session.CountryCode != "" {
		c.countryCode = session.CountryCode
	}
	c.sessionMu.Unlock()

	return session, nil
}

// UserPlaylists retrieves all playlists created by the current user.
func (c *ClientImpl) UserPlaylists(ctx context.Context) ([]*Playlist, error) {
	userID, countryCode, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	uri, err := url.JoinPath(usersURIPath, strconv.FormatInt(userID, 10), playlistsURIPath)
	if err != nil {
		return nil, err
	}

	var (
		playlists []*Playlist
		offset    int
	)

	for {
		query := url.Values{}
		query.Set("countryCode", countryCode)
		query.Set("limit", strconv.Itoa(playlistsPageSize))
		query.Set("offset", strconv.Itoa(offset))

		page, err := fetchJSON[PagedPlaylistsResponse](c, ctx, uri, query)
		if err != nil {
			return nil, err
		}

		playlists = append(playlists, page.Items...)

		offset += playlistsPageSize
		if offset >= page.TotalNumberOfItems || len(page.Items) == 0 {
			break
		}
	}

	logger.Debugf(ctx, "Fetched %d playlists from target catalog", len(playlists))

	return playlists, nil
}

// CreatePlaylist creates a playlist with the given title and description.
func (c *ClientImpl) CreatePlaylist(ctx context.Context, title, description string) (*Playlist, error) {
	userID, countryCode, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	uri, err := url.JoinPath(usersURIPath, strconv.FormatInt(userID, 10), playlistsURIPath)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("title", title)
	form.Set("description", description)
	form.Set("countryCode", countryCode)

	response, err := c.doRequest(ctx, http.MethodPost, uri, nil, form, "")
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	if !isSuccess(response.StatusCode) {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	var playlist Playlist
	if err = json.NewDecoder(response.Body).Decode(&playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// PlaylistItems retrieves all items of a playlist in playlist order.
func (c *ClientImpl) PlaylistItems(ctx context.Context, playlistUUID string) ([]*PlaylistItem, error) {
	uri, err := url.JoinPath(playlistsURIPath, playlistUUID, itemsURIPath)
	if err != nil {
		return nil, err
	}

	var (
		items  []*PlaylistItem
		offset int
	)

	for {
		query := url.Values{}
		query.Set("countryCode", c.currentCountryCode())
		query.Set("limit", strconv.Itoa(playlistItemsPageSize))
		query.Set("offset", strconv.Itoa(offset))

		page, err := fetchJSON[PagedItemsResponse](c, ctx, uri, query)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)

		offset += playlistItemsPageSize
		if offset >= page.TotalNumberOfItems || len(page.Items) == 0 {
			break
		}
	}

	return items, nil
}

// AddPlaylistTracks adds tracks to a playlist. The batch is attempted
// first; when the server rejects it, tracks are added one by one so a
// single bad ID cannot sink the rest.
func (c *ClientImpl) AddPlaylistTracks(ctx context.Context, playlistUUID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	etag, err := c.fetchPlaylistETag(ctx, playlistUUID)
	if err != nil {
		return err
	}

	status, err := c.addTracksRequest(ctx, playlistUUID, trackIDs, etag)
	if err != nil {
		return err
	}

	if isSuccess(status) {
		return nil
	}

	logger.Warnf(ctx, "Batch addition of %d tracks failed with status %d, adding one by one",
		len(trackIDs), status)

	return c.addTracksOneByOne(ctx, playlistUUID, trackIDs)
}

// addTracksOneByOne adds tracks individually, refreshing the entity tag
// before each attempt because every successful add changes the playlist.
func (c *ClientImpl) addTracksOneByOne(ctx context.Context, playlistUUID string, trackIDs []string) error {
	var (
		succeeded int
		failedIDs []string
	)

	for i, trackID := range trackIDs {
		etag, err := c.fetchPlaylistETag(ctx, playlistUUID)
		if err != nil {
			return err
		}

		status, err := c.addTracksRequest(ctx, playlistUUID, []string{trackID}, etag)

		switch {
		case err != nil:
			return err
		case isSuccess(status):
			succeeded++
		default:
			logger.Debugf(ctx, "Failed to add track %s: status %d", trackID, status)
			failedIDs = append(failedIDs, trackID)
		}

		// Brief pause between bursts to stay under the server's rate limits.
		if (i+1)%oneByOnePauseEvery == 0 {
			utils.RandomPause(oneByOnePauseMin, oneByOnePauseMax)
		}
	}

	logger.Infof(ctx, "One-by-one addition: %d succeeded, %d failed", succeeded, len(failedIDs))

	if len(failedIDs) > 0 {
		return fmt.Errorf("%w: %s", ErrTracksNotAdded, strings.Join(failedIDs, ", "))
	}

	return nil
}

// DeletePlaylistItems removes the items at the given zero-based indices.
// Callers are responsible for ordering indices so removals do not shift
// the positions of items still to be removed.
func (c *ClientImpl) DeletePlaylistItems(ctx context.Context, playlistUUID string, indices []int) error {
	if len(indices) == 0 {
		return nil
	}

	etag, err := c.fetchPlaylistETag(ctx, playlistUUID)
	if err != nil {
		return err
	}

	indicesCSV := strings.Join(utils.Map(indices, strconv.Itoa), ",")

	uri, err := url.JoinPath(playlistsURIPath, playlistUUID, itemsURIPath, indicesCSV)
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("countryCode", c.currentCountryCode())

	response, err := c.doRequest(ctx, http.MethodDelete, uri, query, nil, etag)
	if err != nil {
		return err
	}

	defer response.Body.Close()

	if !isSuccess(response.StatusCode) && response.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return nil
}

// UpdatePlaylistDescription rewrites a playlist's description.
func (c *ClientImpl) UpdatePlaylistDescription(ctx context.Context, playlistUUID, description string) error {
	etag, err := c.fetchPlaylistETag(ctx, playlistUUID)
	if err != nil {
		return err
	}

	uri, err := url.JoinPath(playlistsURIPath, playlistUUID)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("description", description)

	response, err := c.doRequest(ctx, http.MethodPost, uri, nil, form, etag)
	if err != nil {
		return err
	}

	defer response.Body.Close()

	if !isSuccess(response.StatusCode) {
		return fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return nil
}

// SearchTracks searches the catalog and returns the top track results.
func (c *ClientImpl) SearchTracks(ctx context.Context, query string) ([]*Track, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("countryCode", c.currentCountryCode())
	params.Set("limit", strconv.Itoa(searchResultLimit))
	params.Set("types", searchTypesTracks)

	result, err := fetchJSON[SearchResponse](c, ctx, searchURI, params)
	if err != nil {
		return nil, err
	}

	if result.Tracks == nil {
		return nil, nil
	}

	items := result.Tracks.Items
	if len(items) > searchResultLimit {
		items = items[:searchResultLimit]
	}

	return items, nil
}

// ensureSession resolves the user ID and country code the token belongs
// to, asking the sessions endpoint when the config does not pin them.
func (c *ClientImpl) ensureSession(ctx context.Context) (int64, string, error) {
	c.sessionMu.Lock()
	userID, countryCode := c.userID, c.countryCode
	c.sessionMu.Unlock()

	if userID != 0 {
		return userID, countryCode, nil
	}

	if _, err := c.Session(ctx); err != nil {
		return 0, "", err
	}

	c.sessionMu.Lock()
	userID, countryCode = c.userID, c.countryCode
	c.sessionMu.Unlock()

	if userID == 0 {
		return 0, "", ErrUnknownUser
	}

	return userID, countryCode, nil
}

// currentCountryCode returns the country code requests should carry.
func (c *ClientImpl) currentCountryCode() string {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	return c.countryCode
}

// currentAccessToken returns the bearer token requests should carry.
func (c *ClientImpl) currentAccessToken() string {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	return c.accessToken
}

// fetchPlaylistETag reads the playlist's current entity tag. A missing
// tag is returned as empty and the mutation proceeds unconditionally,
// matching how the server treats requests without If-None-Match.
func (c *ClientImpl) fetchPlaylistETag(ctx context.Context, playlistUUID string) (string, error) {
	uri, err := url.JoinPath(playlistsURIPath, playlistUUID)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("countryCode", c.currentCountryCode())

	response, err := c.doRequest(ctx, http.MethodGet, uri, query, nil, "")
	if err != nil {
		return "", err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return response.Header.Get("ETag"), nil
}

// addTracksRequest posts one add request and reports the response status.
func (c *ClientImpl) addTracksRequest(
	ctx context.Context,
	playlistUUID string,
	trackIDs []string,
	etag string,
) (int, error) {
	uri, err := url.JoinPath(playlistsURIPath, playlistUUID, itemsURIPath)
	if err != nil {
		return 0, err
	}

	form := url.Values{}
	form.Set("trackIds", strings.Join(trackIDs, ","))
	form.Set("onDuplicates", onDuplicatesSkip)
	form.Set("countryCode", c.currentCountryCode())

	response, err := c.doRequest(ctx, http.MethodPost, uri, nil, form, etag)
	if err != nil {
		return 0, err
	}

	response.Body.Close() //nolint:gosec // Error on close is not critical here.

	return response.StatusCode, nil
}

// doRequest issues an authenticated request, refreshing the token once
// when the server answers 401 and retrying with the new token.
func (c *ClientImpl) doRequest(
	ctx context.Context,
	method, uri string,
	query, form url.Values,
	etag string,
) (*http.Response, error) {
	token := c.currentAccessToken()

	response, err := c.attempt(ctx, method, uri, query, form, etag, token)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusUnauthorized {
		return response, nil
	}

	response.Body.Close() //nolint:gosec // Error on close is not critical here.

	token, err = c.refreshAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return c.attempt(ctx, method, uri, query, form, etag, token)
}

// attempt builds and executes a single HTTP request.
func (c *ClientImpl) attempt(
	ctx context.Context,
	method, uri string,
	query, form url.Values,
	etag, token string,
) (*http.Response, error) {
	route, err := url.JoinPath(c.baseURL, uri)
	if err != nil {
		return nil, err
	}

	var body io.Reader = http.NoBody
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	request, err := http.NewRequestWithContext(ctx, method, route, body)
	if err != nil {
		return nil, err
	}

	if query != nil {
		request.URL.RawQuery = query.Encode()
	}

	if form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if etag != "" {
		request.Header.Set("If-None-Match", etag)
	}

	request.Header.Set("Authorization", "Bearer "+token)

	return c.httpClient.Do(request)
}

// refreshAccessToken exchanges the refresh token for a new access token.
// Concurrent callers are serialized; whoever arrives after a refresh
// just picks up the new token.
func (c *ClientImpl) refreshAccessToken(ctx context.Context, staleToken string) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != staleToken {
		return c.accessToken, nil
	}

	logger.Info(ctx, "Target catalog token expired, refreshing")

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.cfg.TidalRefreshToken)
	form.Set("client_id", c.cfg.TidalClientID)

	if c.cfg.TidalClientSecret != "" {
		form.Set("client_secret", c.cfg.TidalClientSecret)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}

	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrTokenRefreshFailed, response.StatusCode)
	}

	var result TokenResponse
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		return "", err
	}

	if result.AccessToken == "" {
		return "", ErrTokenRefreshFailed
	}

	c.accessToken = result.AccessToken
	c.cfg.TidalAccessToken = result.AccessToken

	// Some token endpoints rotate the refresh token; keep the old one otherwise.
	if result.RefreshToken != "" {
		c.cfg.TidalRefreshToken = result.RefreshToken
	}

	if result.User != nil && result.User.UserID != 0 {
		c.sessionMu.Lock()
		c.userID = result.User.UserID

		if result.User.CountryCode != "" {
			c.countryCode = result.User.CountryCode
		}
		c.sessionMu.Unlock()
	}

	if err = c.saveConfig(c.cfg); err != nil {
		logger.Warnf(ctx, "Failed to persist refreshed target catalog tokens: %v", err)
	} else {
		logger.Debug(ctx, "Persisted refreshed target catalog tokens")
	}

	return c.accessToken, nil
}

// isSuccess reports whether the status is one the mutation endpoints treat as success.
func isSuccess(statusCode int) bool {
	return statusCode == http.StatusOK || statusCode == http.StatusCreated
}

package songlink

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/logger"
	http_transport "github.com/playlift/playlift/internal/transport/http"
)

// Client defines the interface for the song.link universal-link service.
type Client interface {
	// Lookup resolves a source catalog track ID to the matching target catalog track ID.
	// It returns ErrNoTargetLink when the service knows no counterpart.
	Lookup(ctx context.Context, sourceTrackID string) (string, error)
}

// ClientImpl implements the Client interface against the song.link API.
type ClientImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// apiURL is the lookup endpoint.
	apiURL string
	// userCountry is the two-letter country code sent with every lookup.
	userCountry string
	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
	// window enforces the service's sliding-window rate limit.
	window *requestWindow
	// linksCache caches resolved track IDs so repeated lookups skip the window entirely.
	linksCache *lru.Cache[string, string]
}

const (
	// sourceTrackURLPrefix builds the canonical source catalog URL the service expects.
	sourceTrackURLPrefix = "https://open.spotify.com/track/"
	// targetPlatformKey is the linksByPlatform key carrying the target catalog entry.
	targetPlatformKey = "tidal"
	// entityIDSeparator splits entity IDs of the form "TIDAL_TRACK::12345".
	entityIDSeparator = "::"
	// rateWindowDuration is the span of the service's published rate limit window.
	rateWindowDuration = time.Minute
	// linksCacheSize defines the maximum number of resolved links to cache.
	// Lookups are capped at roughly 10 per minute, so avoiding a repeat here
	// is worth far more than in the catalog clients.
	linksCacheSize = 20000
)

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config) (Client, error) {
	httpClient := &http.Client{
		Transport: http_transport.NewUserAgentInjector(
			http_transport.NewLogTransport(http.DefaultTransport, 0),
			http_transport.DefaultUserAgent),
		Timeout: http_transport.DefaultTimeout,
	}

	linksCache, err := lru.New[string, string](linksCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create links cache: %w", err)
	}

	client := &ClientImpl{
		cfg:         cfg,
		apiURL:      cfg.SonglinkAPIURL,
		userCountry: cfg.UserCountry,
		httpClient:  httpClient,
		window:      newRequestWindow(int(cfg.LinkRequestsPerMinute), rateWindowDuration),
		linksCache:  linksCache,
	}

	return client, nil
}

// Lookup resolves a source catalog track ID to the matching target catalog track ID.
func (c *ClientImpl) Lookup(ctx context.Context, sourceTrackID string) (string, error) {
	if targetTrackID, ok := c.linksCache.Get(sourceTrackID); ok {
		return targetTrackID, nil
	}

	if err := c.window.Wait(ctx); err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, http.NoBody)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("url", sourceTrackURLPrefix+sourceTrackID)
	query.Set("userCountry", c.userCountry)
	request.URL.RawQuery = query.Encode()

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", err
	}

	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return "", ErrNoTargetLink
	}

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	var result LinksResponse
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		return "", err
	}

	platform, ok := result.LinksByPlatform[targetPlatformKey]
	if !ok || platform == nil {
		return "", ErrNoTargetLink
	}

	separatorIndex := strings.LastIndex(platform.EntityUniqueID, entityIDSeparator)
	if separatorIndex < 0 {
		return "", ErrNoTargetLink
	}

	targetTrackID := platform.EntityUniqueID[separatorIndex+len(entityIDSeparator):]
	if targetTrackID == "" {
		return "", ErrNoTargetLink
	}

	logger.Debugf(ctx, "Resolved source track %s to target track %s via universal link",
		sourceTrackID, targetTrackID)

	c.linksCache.Add(sourceTrackID, targetTrackID)

	return targetTrackID, nil
}

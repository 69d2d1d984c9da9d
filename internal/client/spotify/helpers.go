package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// fetchJSON fetches JSON from the specified URI, pacing the request through the client's limiter.
//
//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func fetchJSON[T any](c *ClientImpl, ctx context.Context, uri string) (*T, error) {
	return fetchJSONWithQuery[T](c, ctx, uri, nil)
}

// fetchJSONWithQuery fetches JSON from the specified URI with the specified query.
//
//nolint:revive // Has no sense, it's cause Go doesn't allow struct methods to be generic.
func fetchJSONWithQuery[T any](
	c *ClientImpl,
	ctx context.Context,
	uri string,
	query url.Values,
) (*T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	route, err := url.JoinPath(c.baseURL, uri)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
	if err != nil {
		return nil, err
	}

	if query != nil {
		request.URL.RawQuery = query.Encode()
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	var result T
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

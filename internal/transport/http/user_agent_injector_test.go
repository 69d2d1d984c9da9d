package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewUserAgentInjector tests the NewUserAgentInjector function.
func TestNewUserAgentInjector(t *testing.T) {
	t.Parallel()

	injector := NewUserAgentInjector(http.DefaultTransport, "TestAgent/1.0")

	assert.NotNil(t, injector)
	assert.Implements(t, (*http.RoundTripper)(nil), injector)
}

// TestUserAgentInjector_RoundTrip_InjectsWhenMissing tests that the header is
// injected when the caller did not set one.
func TestUserAgentInjector_RoundTrip_InjectsWhenMissing(t *testing.T) {
	t.Parallel()

	var receivedUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{
		Transport: NewUserAgentInjector(http.DefaultTransport, "TestAgent/1.0"),
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical in tests.

	assert.Equal(t, "TestAgent/1.0", receivedUserAgent)
}

// TestUserAgentInjector_RoundTrip_PreservesExisting tests that a caller-set
// header is left alone.
func TestUserAgentInjector_RoundTrip_PreservesExisting(t *testing.T) {
	t.Parallel()

	var receivedUserAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{
		Transport: NewUserAgentInjector(http.DefaultTransport, "TestAgent/1.0"),
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "Caller/2.0")

	resp, err := client.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical in tests.

	assert.Equal(t, "Caller/2.0", receivedUserAgent)
}

// errorRoundTripper always fails, for error propagation tests.
type errorRoundTripper struct {
	err error
}

func (e *errorRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, e.err
}

// TestUserAgentInjector_RoundTrip_PropagatesError tests that transport errors
// pass through unchanged.
func TestUserAgentInjector_RoundTrip_PropagatesError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("connection refused")
	injector := NewUserAgentInjector(&errorRoundTripper{err: wantErr}, "TestAgent/1.0")

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://unreachable.invalid", nil)
	require.NoError(t, err)

	resp, err := injector.RoundTrip(req)
	require.ErrorIs(t, err, wantErr)
	assert.Nil(t, resp)
}

// TestDefaultUserAgent tests that the default identifies the tool and its version.
func TestDefaultUserAgent(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(DefaultUserAgent, "playlift/"),
		"default user agent should identify the tool, got %q", DefaultUserAgent)
	assert.Greater(t, len(DefaultUserAgent), len("playlift/"))
}

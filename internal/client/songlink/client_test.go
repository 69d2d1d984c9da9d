package songlink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playlift/playlift/internal/config"
)

// newTestClient starts a mock lookup server and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		SonglinkAPIURL:        server.URL,
		UserCountry:           "US",
		LinkRequestsPerMinute: 10,
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)

	return client
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		status      int
		expectedID  string
		expectedErr error
	}{
		{
			name:       "resolved target link",
			body:       `{"linksByPlatform":{"tidal":{"entityUniqueId":"TIDAL_TRACK::200","url":"https://tidal.com/browse/track/200"}}}`,
			status:     http.StatusOK,
			expectedID: "200",
		},
		{
			name:        "lookup not found",
			body:        `{"statusCode":404}`,
			status:      http.StatusNotFound,
			expectedErr: ErrNoTargetLink,
		},
		{
			name:        "no target platform entry",
			body:        `{"linksByPlatform":{"deezer":{"entityUniqueId":"DEEZER_SONG::77"}}}`,
			status:      http.StatusOK,
			expectedErr: ErrNoTargetLink,
		},
		{
			name:        "malformed entity ID",
			body:        `{"linksByPlatform":{"tidal":{"entityUniqueId":"TIDAL_TRACK_200"}}}`,
			status:      http.StatusOK,
			expectedErr: ErrNoTargetLink,
		},
		{
			name:        "empty ID after separator",
			body:        `{"linksByPlatform":{"tidal":{"entityUniqueId":"TIDAL_TRACK::"}}}`,
			status:      http.StatusOK,
			expectedErr: ErrNoTargetLink,
		},
		{
			name:        "server error",
			body:        `{"error":"internal"}`,
			status:      http.StatusInternalServerError,
			expectedErr: ErrUnexpectedHTTPStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "https://open.spotify.com/track/source1", r.URL.Query().Get("url"))
				assert.Equal(t, "US", r.URL.Query().Get("userCountry"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) //nolint:errcheck // Test mock handler, error is not critical.
			})

			targetID, err := client.Lookup(context.Background(), "source1")

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, targetID)
		})
	}
}

// TestLookupCachesResolvedLinks verifies a repeated lookup is served from
// the cache instead of hitting the service again.
func TestLookupCachesResolvedLinks(t *testing.T) {
	t.Parallel()

	var requestCount atomic.Int64

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requestCount.Add(1)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"linksByPlatform":{"tidal":{"entityUniqueId":"TIDAL_TRACK::300"}}}`)) //nolint:errcheck // Test mock handler, error is not critical.
	})

	ctx := context.Background()

	first, err := client.Lookup(ctx, "source1")
	require.NoError(t, err)

	second, err := client.Lookup(ctx, "source1")
	require.NoError(t, err)

	assert.Equal(t, "300", first)
	assert.Equal(t, "300", second)
	assert.Equal(t, int64(1), requestCount.Load())
}

// TestLookupDoesNotCacheMisses verifies definitive misses are re-asked,
// so a track added to the target catalog later can still resolve.
func TestLookupDoesNotCacheMisses(t *testing.T) {
	t.Parallel()

	var requestCount atomic.Int64

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		requestCount.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	ctx := context.Background()

	_, err := client.Lookup(ctx, "source1")
	require.ErrorIs(t, err, ErrNoTargetLink)

	_, err = client.Lookup(ctx, "source1")
	require.ErrorIs(t, err, ErrNoTargetLink)

	assert.Equal(t, int64(2), requestCount.Load())
}

func TestRequestWindowLimitsBurst(t *testing.T) {
	t.Parallel()

	var (
		current = time.Unix(1700000000, 0)
		slept   []time.Duration
	)

	window := newRequestWindow(3, time.Minute)
	window.now = func() time.Time { return current }
	window.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		current = current.Add(d)

		return nil
	}

	ctx := context.Background()

	for range 3 {
		require.NoError(t, window.Wait(ctx))
	}

	assert.Empty(t, slept, "requests under the limit should not wait")

	require.NoError(t, window.Wait(ctx))
	require.Len(t, slept, 1)
	assert.Equal(t, time.Minute+waitBuffer, slept[0])
}

func TestRequestWindowEvictsOldEntries(t *testing.T) {
	t.Parallel()

	var (
		current = time.Unix(1700000000, 0)
		slept   []time.Duration
	)

	window := newRequestWindow(2, time.Minute)
	window.now = func() time.Time { return current }
	window.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		current = current.Add(d)

		return nil
	}

	ctx := context.Background()

	require.NoError(t, window.Wait(ctx))
	require.NoError(t, window.Wait(ctx))

	// Both admissions have left the window, so the next one is free.
	current = current.Add(61 * time.Second)

	require.NoError(t, window.Wait(ctx))
	assert.Empty(t, slept)
}

func TestRequestWindowHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	window := newRequestWindow(1, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, window.Wait(ctx))

	cancel()

	err := window.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

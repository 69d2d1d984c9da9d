package migration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_songlink "github.com/playlift/playlift/internal/client/songlink/mocks"
	"github.com/playlift/playlift/internal/client/spotify"
	mock_spotify "github.com/playlift/playlift/internal/client/spotify/mocks"
	"github.com/playlift/playlift/internal/client/tidal"
	mock_tidal "github.com/playlift/playlift/internal/client/tidal/mocks"
	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/service/download"
)

// testSyncTime is the fixed clock playlist descriptions are stamped with.
var testSyncTime = time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)

// testSyncDescription is the description testSyncTime produces.
const testSyncDescription = "Migrated from Spotify via playlift | Last sync: 2025-06-01 12:30:45"

// testPlaylistUUID is a well-formed target playlist id.
const testPlaylistUUID = "3fa85f64-5717-4562-b3fc-2c963f66afa6"

// sourceTrackBuilder builds source tracks with sensible defaults.
type sourceTrackBuilder struct {
	track *spotify.Track
}

func newSourceTrack() *sourceTrackBuilder {
	return &sourceTrackBuilder{
		track: &spotify.Track{
			ID:          "4k6UMxY3mRoN3pMkpmqDVN",
			Name:        "Levitating",
			DurationMS:  203000,
			TrackNumber: 5,
			Artists:     []*spotify.Artist{{Name: "Dua Lipa"}},
			Album:       spotify.Album{Name: "Future Nostalgia"},
		},
	}
}

func (b *sourceTrackBuilder) withID(id string) *sourceTrackBuilder {
	b.track.ID = id

	return b
}

func (b *sourceTrackBuilder) withName(name string) *sourceTrackBuilder {
	b.track.Name = name

	return b
}

func (b *sourceTrackBuilder) withDurationMS(durationMS int64) *sourceTrackBuilder {
	b.track.DurationMS = durationMS

	return b
}

func (b *sourceTrackBuilder) withArtists(names ...string) *sourceTrackBuilder {
	artists := make([]*spotify.Artist, 0, len(names))
	for _, name := range names {
		artists = append(artists, &spotify.Artist{Name: name})
	}

	b.track.Artists = artists

	return b
}

func (b *sourceTrackBuilder) withISRC(isrc string) *sourceTrackBuilder {
	b.track.ExternalIDs.ISRC = isrc

	return b
}

func (b *sourceTrackBuilder) build() *spotify.Track {
	return b.track
}

// newTargetTrack builds a target catalog track for search and snapshot fixtures.
func newTargetTrack(id int64, title string, durationSeconds int64, artistNames ...string) *tidal.Track {
	artists := make([]*tidal.Artist, 0, len(artistNames))
	for _, name := range artistNames {
		artists = append(artists, &tidal.Artist{Name: name})
	}

	return &tidal.Track{
		ID:       id,
		Title:    title,
		Duration: durationSeconds,
		Artists:  artists,
		Album:    &tidal.Album{Title: "Future Nostalgia"},
	}
}

// newPlaylistItem wraps a target track the way playlist item pages do.
func newPlaylistItem(id int64, title string, durationSeconds int64, artistNames ...string) *tidal.PlaylistItem {
	return &tidal.PlaylistItem{
		Item: newTargetTrack(id, title, durationSeconds, artistNames...),
		Type: "track",
	}
}

type testMatcherSetup struct {
	ctrl         *gomock.Controller
	mockSonglink *mock_songlink.MockClient
	mockTidal    *mock_tidal.MockClient
	matcher      Matcher
}

func newTestMatcherSetup(t *testing.T) *testMatcherSetup {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockSonglink := mock_songlink.NewMockClient(ctrl)
	mockTidal := mock_tidal.NewMockClient(ctrl)

	matcher, err := NewMatcher(mockSonglink, mockTidal)
	require.NoError(t, err, "Matcher should be created without error")

	return &testMatcherSetup{
		ctrl:         ctrl,
		mockSonglink: mockSonglink,
		mockTidal:    mockTidal,
		matcher:      matcher,
	}
}

func (s *testMatcherSetup) cleanup() {
	s.ctrl.Finish()
}

type testMutatorSetup struct {
	ctrl      *gomock.Controller
	mockTidal *mock_tidal.MockClient
	mutator   *MutatorImpl
}

func newTestMutatorSetup(t *testing.T) *testMutatorSetup {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockTidal := mock_tidal.NewMockClient(ctrl)

	mutator := &MutatorImpl{
		tidalClient: mockTidal,
		now:         func() time.Time { return testSyncTime },
	}

	return &testMutatorSetup{
		ctrl:      ctrl,
		mockTidal: mockTidal,
		mutator:   mutator,
	}
}

func (s *testMutatorSetup) cleanup() {
	s.ctrl.Finish()
}

type testServiceSetup struct {
	ctrl         *gomock.Controller
	mockSpotify  *mock_spotify.MockClient
	mockTidal    *mock_tidal.MockClient
	mockSonglink *mock_songlink.MockClient
	orchestrator *stubOrchestrator
	prober       *stubProber
	events       *eventRecorder
	collector    *Collector
	config       *config.Config
	service      Service
	runLogDir    string
}

func newTestServiceSetup(t *testing.T, configOverrides ...func(*config.Config)) *testServiceSetup {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockSpotify := mock_spotify.NewMockClient(ctrl)
	mockTidal := mock_tidal.NewMockClient(ctrl)
	mockSonglink := mock_songlink.NewMockClient(ctrl)

	cfg := &config.Config{
		MigrationWorkers: 1,
		DownloadWorkers:  1,
		DownloadPath:     t.TempDir(),
		M3UPath:          t.TempDir(),
	}

	for _, override := range configOverrides {
		override(cfg)
	}

	matcher, err := NewMatcher(mockSonglink, mockTidal)
	require.NoError(t, err, "Matcher should be created without error")

	mutator := &MutatorImpl{
		tidalClient: mockTidal,
		now:         func() time.Time { return testSyncTime },
	}

	runLogDir := t.TempDir()
	prober := &stubProber{}
	collector := NewCollector(cfg, prober, runLogDir)
	orchestrator := &stubOrchestrator{}
	events := newEventRecorder()

	service := NewService(cfg, mockSpotify, matcher, mutator, collector, orchestrator, events.record)

	return &testServiceSetup{
		ctrl:         ctrl,
		mockSpotify:  mockSpotify,
		mockTidal:    mockTidal,
		mockSonglink: mockSonglink,
		orchestrator: orchestrator,
		prober:       prober,
		events:       events,
		collector:    collector,
		config:       cfg,
		service:      service,
		runLogDir:    runLogDir,
	}
}

func (s *testServiceSetup) cleanup() {
	s.ctrl.Finish()
}

// stubOrchestrator records queued playlists and returns scripted results.
type stubOrchestrator struct {
	mu        sync.Mutex
	added     []download.Playlist
	queued    []download.Result
	completed []download.Result
	stats     download.Stats
	polls     int
}

func (o *stubOrchestrator) Add(_ context.Context, playlist download.Playlist) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.added = append(o.added, playlist)
}

func (o *stubOrchestrator) DownloadQueued(_ context.Context) []download.Result {
	return o.queued
}

func (o *stubOrchestrator) WaitForCompletion(_ context.Context, onProgress func()) []download.Result {
	if onProgress != nil {
		onProgress()

		o.mu.Lock()
		o.polls++
		o.mu.Unlock()
	}

	return o.completed
}

func (o *stubOrchestrator) Stats() download.Stats {
	return o.stats
}

func (o *stubOrchestrator) FailedDownloads() []download.Result {
	return nil
}

func (o *stubOrchestrator) addedPlaylists() []download.Playlist {
	o.mu.Lock()
	defer o.mu.Unlock()

	playlists := make([]download.Playlist, len(o.added))
	copy(playlists, o.added)

	return playlists
}

// stubProber returns scripted audio attributes and records probed paths.
type stubProber struct {
	mu         sync.Mutex
	attributes *AudioAttributes
	err        error
	paths      []string
}

func (p *stubProber) Probe(_ context.Context, path string) (*AudioAttributes, error) {
	p.mu.Lock()
	p.paths = append(p.paths, path)
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}

	if p.attributes == nil {
		return &AudioAttributes{}, nil
	}

	return p.attributes, nil
}

func (p *stubProber) probedPaths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	paths := make([]string, len(p.paths))
	copy(paths, p.paths)

	return paths
}

// eventRecorder captures emitted progress events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []any
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{}
}

func (r *eventRecorder) record(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *eventRecorder) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]any, len(r.events))
	copy(events, r.events)

	return events
}

package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/playlift/playlift/internal/client/songlink"
	"github.com/playlift/playlift/internal/client/spotify"
	"github.com/playlift/playlift/internal/client/tidal"
)

func TestMatcherPrefersSnapshotMatch(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	track := newSourceTrack().build()

	snapshot := NewSnapshot()
	snapshot.Insert(&SnapshotEntry{
		ID:              "77646168",
		Title:           "Levitating",
		Artists:         []string{"Dua Lipa"},
		DurationSeconds: 203,
	})

	// No expectations on the clients: a snapshot hit must not go remote.
	result := setup.matcher.Match(context.Background(), track, snapshot)

	require.Equal(t, MatchOutcomeHit, result.Outcome, "Snapshot entry should resolve the track")
	assert.Equal(t, "77646168", result.TargetID)
	assert.Equal(t, ResolutionMetadataMatch, result.Source)
	require.NotNil(t, result.Info, "Snapshot hits should carry target metadata")
	assert.Equal(t, int64(203000), result.Info.DurationMS)
}

func TestMatcherRemixMismatchSkipsSnapshot(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	track := newSourceTrack().
		withName("Blinding Lights (Chromatics Remix)").
		withDurationMS(240000).
		withArtists("The Weeknd").
		build()

	// Same duration, same artist, and normalization strips the parenthetical,
	// so remix parity is the only thing keeping these two recordings apart.
	snapshot := NewSnapshot()
	snapshot.Insert(&SnapshotEntry{
		ID:              "3001",
		Title:           "Blinding Lights",
		Artists:         []string{"The Weeknd"},
		DurationSeconds: 240,
	})

	setup.mockSonglink.EXPECT().
		Lookup(gomock.Any(), track.ID).
		Return("3002", nil)

	result := setup.matcher.Match(context.Background(), track, snapshot)

	require.Equal(t, MatchOutcomeHit, result.Outcome)
	assert.Equal(t, "3002", result.TargetID, "The remix must not collapse onto the original recording")
	assert.Equal(t, ResolutionUniversalLink, result.Source)
}

func TestMatcherResolvesThroughUniversalLink(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	track := newSourceTrack().build()

	setup.mockSonglink.EXPECT().
		Lookup(gomock.Any(), track.ID).
		Return("77646168", nil)

	result := setup.matcher.Match(context.Background(), track, NewSnapshot())

	require.Equal(t, MatchOutcomeHit, result.Outcome)
	assert.Equal(t, "77646168", result.TargetID)
	assert.Equal(t, ResolutionUniversalLink, result.Source)
	assert.Nil(t, result.Info, "The link service maps ids only, it knows no metadata")
}

func TestMatcherFallsBackToSearchOnNoLink(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	track := newSourceTrack().build()

	setup.mockSonglink.EXPECT().
		Lookup(gomock.Any(), track.ID).
		Return("", songlink.ErrNoTargetLink)

	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "levitating dua lipa").
		Return([]*tidal.Track{newTargetTrack(77646168, "Levitating", 203, "Dua Lipa")}, nil)

	result := setup.matcher.Match(context.Background(), track, NewSnapshot())

	require.Equal(t, MatchOutcomeHit, result.Outcome)
	assert.Equal(t, "77646168", result.TargetID)
	assert.Equal(t, ResolutionTargetSearch, result.Source)
	require.NotNil(t, result.Info, "Search hits should carry the candidate's metadata")
	assert.Equal(t, "Levitating", result.Info.Title)
	assert.Equal(t, "Dua Lipa", result.Info.Artist)
	assert.Equal(t, "Future Nostalgia", result.Info.Album)
	assert.Equal(t, int64(203000), result.Info.DurationMS)
}

func TestMatcherDowngradesLookupFailureToMiss(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	track := newSourceTrack().build()

	setup.mockSonglink.EXPECT().
		Lookup(gomock.Any(), track.ID).
		Return("", errors.New("unexpected status code: 502"))

	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "levitating dua lipa").
		Return(nil, nil)
	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "dua lipa").
		Return(nil, nil)

	result := setup.matcher.Match(context.Background(), track, NewSnapshot())

	assert.Equal(t, MatchOutcomeMiss, result.Outcome, "Match should never surface transient errors")
	assert.NoError(t, result.Err)
}

func TestMatcherSkipsUniversalLinkForLocalFiles(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	// Local files carry no source id, so there is nothing to look up.
	track := newSourceTrack().withID("").build()

	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "levitating dua lipa").
		Return([]*tidal.Track{newTargetTrack(77646168, "Levitating", 203, "Dua Lipa")}, nil)

	result := setup.matcher.Match(context.Background(), track, NewSnapshot())

	require.Equal(t, MatchOutcomeHit, result.Outcome)
	assert.Equal(t, ResolutionTargetSearch, result.Source)
}

func TestMatcherNilTrackIsMiss(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	result := setup.matcher.Match(context.Background(), nil, NewSnapshot())

	assert.Equal(t, MatchOutcomeMiss, result.Outcome)
}

func TestMatcherAcceptsISRCOverMetadata(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	track := newSourceTrack().withISRC("GBAHS2000623").build()

	tooLong := newTargetTrack(1, "Levitating", 350, "Dua Lipa")
	remix := newTargetTrack(2, "Levitating Remix", 203, "Dua Lipa")

	// The right recording hides behind metadata that fails every predicate
	// check; the shared ISRC alone must carry it.
	isrcTwin := newTargetTrack(3, "Levitating", 999, "Somebody Else")
	isrcTwin.ISRC = "GBAHS2000623"

	setup.mockSonglink.EXPECT().
		Lookup(gomock.Any(), track.ID).
		Return("", songlink.ErrNoTargetLink)

	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "levitating dua lipa").
		Return([]*tidal.Track{tooLong, remix, isrcTwin}, nil)

	result := setup.matcher.Match(context.Background(), track, NewSnapshot())

	require.Equal(t, MatchOutcomeHit, result.Outcome)
	assert.Equal(t, "3", result.TargetID)
	assert.Equal(t, ResolutionTargetSearch, result.Source)
}

func TestMatcherWalksTheQueryLadder(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	track := newSourceTrack().build()

	first := setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "levitating dua lipa").
		Return(nil, nil)
	second := setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "dua lipa").
		Return([]*tidal.Track{newTargetTrack(77646168, "Levitating", 203, "Dua Lipa")}, nil)

	gomock.InOrder(first, second)

	result := setup.matcher.MatchBySearch(context.Background(), track)

	require.Equal(t, MatchOutcomeHit, result.Outcome)
	assert.Equal(t, "77646168", result.TargetID)
}

func TestMatcherSkipsFailedQueries(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	track := newSourceTrack().build()

	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "levitating dua lipa").
		Return(nil, errors.New("unexpected status code: 429"))
	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "dua lipa").
		Return([]*tidal.Track{newTargetTrack(77646168, "Levitating", 203, "Dua Lipa")}, nil)

	result := setup.matcher.MatchBySearch(context.Background(), track)

	require.Equal(t, MatchOutcomeHit, result.Outcome, "A failed query should not end the ladder")
	assert.Equal(t, "77646168", result.TargetID)
}

func TestMatcherCachesSearchResults(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	track := newSourceTrack().build()

	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "levitating dua lipa").
		Return(nil, nil).
		Times(1)
	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "dua lipa").
		Return(nil, nil).
		Times(1)

	first := setup.matcher.MatchBySearch(context.Background(), track)
	second := setup.matcher.MatchBySearch(context.Background(), track)

	assert.Equal(t, MatchOutcomeMiss, first.Outcome)
	assert.Equal(t, MatchOutcomeMiss, second.Outcome)
}

func TestMatcherDoesNotCacheFailedQueries(t *testing.T) {
	t.Parallel()

	setup := newTestMatcherSetup(t)
	defer setup.cleanup()

	track := newSourceTrack().build()

	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "levitating dua lipa").
		Return(nil, errors.New("unexpected status code: 503")).
		Times(2)
	setup.mockTidal.EXPECT().
		SearchTracks(gomock.Any(), "dua lipa").
		Return(nil, nil).
		Times(1)

	first := setup.matcher.MatchBySearch(context.Background(), track)
	second := setup.matcher.MatchBySearch(context.Background(), track)

	assert.Equal(t, MatchOutcomeMiss, first.Outcome)
	assert.Equal(t, MatchOutcomeMiss, second.Outcome)
}

func TestSearchQueries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		track    *spotify.Track
		expected []string
	}{
		{
			name:     "ascii title collapses the duplicate ascii pass",
			track:    newSourceTrack().build(),
			expected: []string{"levitating dua lipa", "dua lipa"},
		},
		{
			name: "multi-word title adds a first-word query",
			track: newSourceTrack().
				withName("Around the World").
				withArtists("Daft Punk").
				build(),
			expected: []string{"around the world daft punk", "around daft punk", "daft punk"},
		},
		{
			name: "non-ascii title drops the empty ascii pass",
			track: newSourceTrack().
				withName("Пропаганда").
				withArtists("Дора").
				build(),
			expected: []string{"пропаганда дора", "дора"},
		},
		{
			name: "mixed scripts emit a distinct ascii query",
			track: newSourceTrack().
				withName("日本 Heart").
				withArtists("Band").
				build(),
			expected: []string{"日本 heart band", "heart band", "band"},
		},
		{
			name: "no artists leaves title-only queries",
			track: newSourceTrack().
				withName("Around the World").
				withArtists().
				build(),
			expected: []string{"around the world", "around"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, searchQueries(tt.track))
		})
	}
}

func TestIsCandidateMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		track             *spotify.Track
		candidateTitle    string
		candidateArtists  []string
		candidateDuration int64
		expected          bool
	}{
		{
			name:              "exact metadata",
			track:             newSourceTrack().build(),
			candidateTitle:    "Levitating",
			candidateArtists:  []string{"Dua Lipa"},
			candidateDuration: 203,
			expected:          true,
		},
		{
			name:              "duration at the tolerance boundary",
			track:             newSourceTrack().build(),
			candidateTitle:    "Levitating",
			candidateArtists:  []string{"Dua Lipa"},
			candidateDuration: 205,
			expected:          true,
		},
		{
			name:              "duration beyond the tolerance",
			track:             newSourceTrack().build(),
			candidateTitle:    "Levitating",
			candidateArtists:  []string{"Dua Lipa"},
			candidateDuration: 206,
			expected:          false,
		},
		{
			name:              "remix source rejects the plain recording",
			track:             newSourceTrack().withName("Blinding Lights (Chromatics Remix)").withDurationMS(240000).withArtists("The Weeknd").build(),
			candidateTitle:    "Blinding Lights",
			candidateArtists:  []string{"The Weeknd"},
			candidateDuration: 240,
			expected:          false,
		},
		{
			name:              "remix on both sides matches",
			track:             newSourceTrack().withName("Blinding Lights (Chromatics Remix)").withDurationMS(240000).withArtists("The Weeknd").build(),
			candidateTitle:    "Blinding Lights (Chromatics Remix)",
			candidateArtists:  []string{"The Weeknd"},
			candidateDuration: 240,
			expected:          true,
		},
		{
			name:              "featured credit in the candidate title still matches",
			track:             newSourceTrack().build(),
			candidateTitle:    "Levitating (feat. DaBaby)",
			candidateArtists:  []string{"Dua Lipa"},
			candidateDuration: 203,
			expected:          true,
		},
		{
			name:              "joint billing overlaps on one artist",
			track:             newSourceTrack().build(),
			candidateTitle:    "Levitating",
			candidateArtists:  []string{"Calvin Harris & Dua Lipa"},
			candidateDuration: 203,
			expected:          true,
		},
		{
			name:              "disjoint artists never match",
			track:             newSourceTrack().build(),
			candidateTitle:    "Levitating",
			candidateArtists:  []string{"Somebody Else"},
			candidateDuration: 203,
			expected:          false,
		},
		{
			name:              "cross-script titles fall back to the ascii pass",
			track:             newSourceTrack().withName("日本 Heart").build(),
			candidateTitle:    "中国 Heart",
			candidateArtists:  []string{"Dua Lipa"},
			candidateDuration: 203,
			expected:          true,
		},
		{
			name:              "titles that normalize to nothing carry no signal",
			track:             newSourceTrack().withName("Instrumental").build(),
			candidateTitle:    "Instrumental",
			candidateArtists:  []string{"Dua Lipa"},
			candidateDuration: 203,
			expected:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			actual := isCandidateMatch(tt.track, tt.candidateTitle, tt.candidateArtists, tt.candidateDuration)

			assert.Equal(t, tt.expected, actual)
		})
	}
}

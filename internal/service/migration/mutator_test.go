package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/playlift/playlift/internal/client/tidal"
)

func TestMutatorReusesExistingPlaylist(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		UserPlaylists(gomock.Any()).
		Return([]*tidal.Playlist{
			{UUID: "other-uuid", Title: "road trip", NumberOfTracks: 3},
			{UUID: testPlaylistUUID, Title: "Road Trip", NumberOfTracks: 7},
		}, nil)

	handle, err := setup.mutator.FindOrCreatePlaylist(context.Background(), "Road Trip")

	require.NoError(t, err)
	assert.Equal(t, testPlaylistUUID, handle.UUID, "Title comparison must be case-sensitive")
	assert.Equal(t, "Road Trip", handle.Title)
	assert.True(t, handle.Reused)
	assert.Equal(t, 7, handle.KnownTracks)
}

func TestMutatorCreatesPlaylistWithSyncDescription(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		UserPlaylists(gomock.Any()).
		Return(nil, nil)

	setup.mockTidal.EXPECT().
		CreatePlaylist(gomock.Any(), "Road Trip", testSyncDescription).
		Return(&tidal.Playlist{UUID: testPlaylistUUID, Title: "Road Trip"}, nil)

	handle, err := setup.mutator.FindOrCreatePlaylist(context.Background(), "Road Trip")

	require.NoError(t, err)
	assert.Equal(t, testPlaylistUUID, handle.UUID)
	assert.False(t, handle.Reused)
	assert.Zero(t, handle.KnownTracks)
}

func TestMutatorRecoversCreatedPlaylistByRelisting(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		UserPlaylists(gomock.Any()).
		Return(nil, nil)

	// A create response without a usable id: the playlist exists anyway.
	setup.mockTidal.EXPECT().
		CreatePlaylist(gomock.Any(), "Road Trip", testSyncDescription).
		Return(&tidal.Playlist{UUID: "0"}, nil)

	setup.mockTidal.EXPECT().
		UserPlaylists(gomock.Any()).
		Return([]*tidal.Playlist{{UUID: testPlaylistUUID, Title: "Road Trip"}}, nil)

	handle, err := setup.mutator.FindOrCreatePlaylist(context.Background(), "Road Trip")

	require.NoError(t, err)
	assert.Equal(t, testPlaylistUUID, handle.UUID)
}

func TestMutatorReportsPlaylistThatNeverAppeared(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		UserPlaylists(gomock.Any()).
		Return(nil, nil).
		Times(2)

	setup.mockTidal.EXPECT().
		CreatePlaylist(gomock.Any(), "Road Trip", testSyncDescription).
		Return(nil, nil)

	handle, err := setup.mutator.FindOrCreatePlaylist(context.Background(), "Road Trip")

	require.ErrorIs(t, err, ErrPlaylistNotCreated)
	assert.Nil(t, handle)
}

func TestMutatorWrapsListFailure(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		UserPlaylists(gomock.Any()).
		Return(nil, errors.New("unexpected status code: 500"))

	handle, err := setup.mutator.FindOrCreatePlaylist(context.Background(), "Road Trip")

	require.Error(t, err)
	assert.Nil(t, handle)
}

func TestMutatorBuildSnapshotSkipsFreshPlaylists(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	// No PlaylistItems expectation: a playlist created this run is empty.
	snapshot, err := setup.mutator.BuildSnapshot(context.Background(), &PlaylistHandle{
		UUID:  testPlaylistUUID,
		Title: "Road Trip",
	})

	require.NoError(t, err)
	assert.Zero(t, snapshot.Len())
}

func TestMutatorBuildSnapshotCapturesItems(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		PlaylistItems(gomock.Any(), testPlaylistUUID).
		Return([]*tidal.PlaylistItem{
			newPlaylistItem(100, "Levitating", 203, "Dua Lipa"),
			nil,
			{Type: "track"},
			newPlaylistItem(200, "One More Time", 320, "Daft Punk"),
		}, nil)

	snapshot, err := setup.mutator.BuildSnapshot(context.Background(), &PlaylistHandle{
		UUID:        testPlaylistUUID,
		Title:       "Road Trip",
		Reused:      true,
		KnownTracks: 4,
	})

	require.NoError(t, err)
	require.Equal(t, 2, snapshot.Len(), "Unavailable entries should be skipped")

	assert.True(t, snapshot.Contains("100"))
	assert.True(t, snapshot.Contains("200"))

	entry := snapshot.Entries()[0]
	assert.Equal(t, "Levitating", entry.Title)
	assert.Equal(t, []string{"Dua Lipa"}, entry.Artists)
	assert.Equal(t, int64(203), entry.DurationSeconds)
}

func TestMutatorBuildSnapshotNilHandle(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	snapshot, err := setup.mutator.BuildSnapshot(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, snapshot.Len())
}

func TestMutatorRemovesDuplicatesDescending(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		PlaylistItems(gomock.Any(), testPlaylistUUID).
		Return([]*tidal.PlaylistItem{
			newPlaylistItem(100, "A", 100, "X"),
			newPlaylistItem(200, "B", 100, "X"),
			newPlaylistItem(100, "A", 100, "X"),
			newPlaylistItem(300, "C", 100, "X"),
			newPlaylistItem(200, "B", 100, "X"),
		}, nil)

	setup.mockTidal.EXPECT().
		DeletePlaylistItems(gomock.Any(), testPlaylistUUID, []int{4, 2}).
		Return(nil)

	report, err := setup.mutator.RemoveDuplicates(context.Background(), testPlaylistUUID, false)

	require.NoError(t, err)
	assert.Equal(t, 5, report.TotalItems)
	assert.Equal(t, 2, report.Removed)
}

func TestMutatorRemoveDuplicatesDryRun(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		PlaylistItems(gomock.Any(), testPlaylistUUID).
		Return([]*tidal.PlaylistItem{
			newPlaylistItem(100, "A", 100, "X"),
			newPlaylistItem(100, "A", 100, "X"),
		}, nil)

	// No delete expectation: a dry run only counts.
	report, err := setup.mutator.RemoveDuplicates(context.Background(), testPlaylistUUID, true)

	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalItems)
	assert.Equal(t, 1, report.Removed)
}

func TestMutatorRemoveDuplicatesBatchesDeletes(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	items := make([]*tidal.PlaylistItem, 0, 121)
	for range 121 {
		items = append(items, newPlaylistItem(7, "Same Track", 200, "Artist"))
	}

	setup.mockTidal.EXPECT().
		PlaylistItems(gomock.Any(), testPlaylistUUID).
		Return(items, nil)

	var batches [][]int

	setup.mockTidal.EXPECT().
		DeletePlaylistItems(gomock.Any(), testPlaylistUUID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, indices []int) error {
			batch := make([]int, len(indices))
			copy(batch, indices)
			batches = append(batches, batch)

			return nil
		}).
		Times(3)

	report, err := setup.mutator.RemoveDuplicates(context.Background(), testPlaylistUUID, false)

	require.NoError(t, err)
	assert.Equal(t, 120, report.Removed)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 50)
	assert.Len(t, batches[1], 50)
	assert.Len(t, batches[2], 20)

	var flattened []int
	for _, batch := range batches {
		flattened = append(flattened, batch...)
	}

	assert.Equal(t, 120, flattened[0], "Deletion must start from the highest index")
	assert.Equal(t, 1, flattened[len(flattened)-1])

	for i := 1; i < len(flattened); i++ {
		assert.Less(t, flattened[i], flattened[i-1], "Indices must stay strictly descending across batches")
	}
}

func TestMutatorRemoveDuplicatesSkipsNilItems(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		PlaylistItems(gomock.Any(), testPlaylistUUID).
		Return([]*tidal.PlaylistItem{
			nil,
			newPlaylistItem(100, "A", 100, "X"),
			{Type: "track"},
			newPlaylistItem(100, "A", 100, "X"),
		}, nil)

	setup.mockTidal.EXPECT().
		DeletePlaylistItems(gomock.Any(), testPlaylistUUID, []int{3}).
		Return(nil)

	report, err := setup.mutator.RemoveDuplicates(context.Background(), testPlaylistUUID, false)

	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalItems)
	assert.Equal(t, 1, report.Removed, "Unavailable entries hold their position but never count as duplicates")
}

func TestMutatorAddTrack(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		AddPlaylistTracks(gomock.Any(), testPlaylistUUID, []string{"77646168"}).
		Return(nil)

	err := setup.mutator.AddTrack(context.Background(), testPlaylistUUID, "77646168")

	assert.NoError(t, err)
}

func TestMutatorUpdateDescription(t *testing.T) {
	t.Parallel()

	setup := newTestMutatorSetup(t)
	defer setup.cleanup()

	setup.mockTidal.EXPECT().
		UpdatePlaylistDescription(gomock.Any(), testPlaylistUUID, testSyncDescription).
		Return(nil)

	err := setup.mutator.UpdateDescription(context.Background(), testPlaylistUUID)

	assert.NoError(t, err)
}

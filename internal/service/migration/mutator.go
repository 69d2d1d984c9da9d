package migration

//go:generate $MOCKGEN -source=mutator.go -destination=mocks/mutator_mock.go

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/playlift/playlift/internal/client/tidal"
	"github.com/playlift/playlift/internal/logger"
)

const (
	// deleteBatchSize caps how many item indices one delete request carries.
	deleteBatchSize = 50

	// descriptionTimeFormat stamps playlist descriptions with the last sync time.
	descriptionTimeFormat = "2006-01-02 15:04:05"

	descriptionFormat = "Migrated from Spotify via playlift | Last sync: %s"
)

// Mutator owns all writes against the target catalog's playlists: finding or
// creating the playlist a migration pass works against, snapshotting its
// items, adding tracks, stamping the description, and removing duplicates.
type Mutator interface {
	// FindOrCreatePlaylist returns the user's playlist with the exact title,
	// creating it when none exists.
	FindOrCreatePlaylist(ctx context.Context, title string) (*PlaylistHandle, error)
	// BuildSnapshot captures the playlist's current items for matching.
	// Freshly created playlists yield an empty snapshot without a fetch.
	BuildSnapshot(ctx context.Context, handle *PlaylistHandle) (*Snapshot, error)
	// AddTrack appends one track to the playlist.
	AddTrack(ctx context.Context, playlistUUID, trackID string) error
	// UpdateDescription stamps the playlist description with the current time.
	UpdateDescription(ctx context.Context, playlistUUID string) error
	// RemoveDuplicates deletes every repeated item, keeping each id's first
	// occurrence. With dryRun set it only counts.
	RemoveDuplicates(ctx context.Context, playlistUUID string, dryRun bool) (*DuplicateReport, error)
}

// MutatorImpl implements the Mutator interface.
type MutatorImpl struct {
	// tidalClient talks to the target catalog.
	tidalClient tidal.Client
	// now returns the current time; injectable for tests.
	now func() time.Time
}

// NewMutator creates and returns a new instance of MutatorImpl.
func NewMutator(tidalClient tidal.Client) Mutator {
	return &MutatorImpl{
		tidalClient: tidalClient,
		now:         time.Now,
	}
}

// FindOrCreatePlaylist returns the user's playlist with the exact title,
// creating it when none exists. Title comparison is case-sensitive so
// "Road Trip" and "road trip" stay distinct playlists.
func (m *MutatorImpl) FindOrCreatePlaylist(ctx context.Context, title string) (*PlaylistHandle, error) {
	playlists, err := m.tidalClient.UserPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list user playlists: %w", err)
	}

	if handle := findPlaylistByTitle(playlists, title); handle != nil {
		handle.Reused = true

		logger.Debugf(ctx, "Reusing existing playlist '%s' (%s)", title, handle.UUID)

		return handle, nil
	}

	created, err := m.tidalClient.CreatePlaylist(ctx, title, m.syncDescription())
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	if created != nil {
		if _, parseErr := uuid.Parse(created.UUID); parseErr == nil {
			return &PlaylistHandle{UUID: created.UUID, Title: title}, nil
		}

		logger.Warnf(ctx, "Create playlist returned malformed id %q, re-listing", created.UUID)
	}

	// Some create responses omit the playlist body. The playlist usually
	// exists anyway, so a re-list recovers its id.
	playlists, err = m.tidalClient.UserPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to re-list user playlists: %w", err)
	}

	if handle := findPlaylistByTitle(playlists, title); handle != nil {
		return handle, nil
	}

	return nil, ErrPlaylistNotCreated
}

// BuildSnapshot captures the playlist's current items for matching.
func (m *MutatorImpl) BuildSnapshot(ctx context.Context, handle *PlaylistHandle) (*Snapshot, error) {
	snapshot := NewSnapshot()
	if handle == nil || !handle.Reused {
		return snapshot, nil
	}

	items, err := m.tidalClient.PlaylistItems(ctx, handle.UUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist items: %w", err)
	}

	for _, item := range items {
		if item == nil || item.Item == nil {
			continue
		}

		track := item.Item
		snapshot.Insert(&SnapshotEntry{
			ID:              formatTrackID(track.ID),
			Title:           track.Title,
			Artists:         tidalArtistNames(track.Artists),
			DurationSeconds: track.Duration,
		})
	}

	if len(items) != handle.KnownTracks {
		logger.Warnf(ctx, "Playlist '%s' reports %d tracks but returned %d items",
			handle.Title, handle.KnownTracks, len(items))
	}

	return snapshot, nil
}

// AddTrack appends one track to the playlist.
func (m *MutatorImpl) AddTrack(ctx context.Context, playlistUUID, trackID string) error {
	return m.tidalClient.AddPlaylistTracks(ctx, playlistUUID, []string{trackID})
}

// UpdateDescription stamps the playlist description with the current time.
func (m *MutatorImpl) UpdateDescription(ctx context.Context, playlistUUID string) error {
	return m.tidalClient.UpdatePlaylistDescription(ctx, playlistUUID, m.syncDescription())
}

// RemoveDuplicates deletes every repeated item, keeping each id's first
// occurrence. Indices are deleted in descending batches so removals never
// shift the positions of items still pending removal.
func (m *MutatorImpl) RemoveDuplicates(ctx context.Context, playlistUUID string, dryRun bool) (*DuplicateReport, error) {
	items, err := m.tidalClient.PlaylistItems(ctx, playlistUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist items: %w", err)
	}

	duplicateIndices := collectDuplicateIndices(items)

	report := &DuplicateReport{
		TotalItems: len(items),
		Removed:    len(duplicateIndices),
	}

	if dryRun || len(duplicateIndices) == 0 {
		return report, nil
	}

	sort.Sort(sort.Reverse(sort.IntSlice(duplicateIndices)))

	for start := 0; start < len(duplicateIndices); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(duplicateIndices))

		if err := m.tidalClient.DeletePlaylistItems(ctx, playlistUUID, duplicateIndices[start:end]); err != nil {
			return nil, fmt.Errorf("failed to delete duplicate items: %w", err)
		}
	}

	logger.Debugf(ctx, "Removed %d duplicate item(s) from playlist %s", report.Removed, playlistUUID)

	return report, nil
}

func (m *MutatorImpl) syncDescription() string {
	return fmt.Sprintf(descriptionFormat, m.now().Format(descriptionTimeFormat))
}

// collectDuplicateIndices returns the positions of every item whose id has
// already appeared earlier in the list. A nil item occupies its position but
// can never be a duplicate.
func collectDuplicateIndices(items []*tidal.PlaylistItem) []int {
	seen := make(map[int64]struct{}, len(items))

	var duplicateIndices []int

	for index, item := range items {
		if item == nil || item.Item == nil {
			continue
		}

		id := item.Item.ID
		if _, ok := seen[id]; ok {
			duplicateIndices = append(duplicateIndices, index)
			continue
		}

		seen[id] = struct{}{}
	}

	return duplicateIndices
}

// findPlaylistByTitle returns a handle for the first playlist bearing the
// exact title, or nil.
func findPlaylistByTitle(playlists []*tidal.Playlist, title string) *PlaylistHandle {
	for _, playlist := range playlists {
		if playlist == nil || playlist.Title != title {
			continue
		}

		return &PlaylistHandle{
			UUID:        playlist.UUID,
			Title:       playlist.Title,
			KnownTracks: playlist.NumberOfTracks,
		}
	}

	return nil
}

package migration

import (
	"fmt"
	"strings"

	"github.com/playlift/playlift/internal/client/spotify"
)

const (
	// millisecondsPerSecond converts between the source catalog's
	// millisecond durations and the target catalog's second durations.
	millisecondsPerSecond = 1000

	sourceTrackURLFormat = "https://open.spotify.com/track/%s"
	targetTrackURLFormat = "https://listen.tidal.com/track/%s"
)

// MigrationOutcome classifies what happened to one source track.
type MigrationOutcome string

// Migration outcomes, as written to the migration_status CSV column.
const (
	// MigrationOutcomeAdded means the track was added to the target playlist.
	MigrationOutcomeAdded MigrationOutcome = "added"
	// MigrationOutcomeSkipped means the track was already present on the target.
	MigrationOutcomeSkipped MigrationOutcome = "skipped"
	// MigrationOutcomeNotFound means no target counterpart could be resolved.
	MigrationOutcomeNotFound MigrationOutcome = "not_found"
	// MigrationOutcomeFailed means a counterpart was resolved but every add attempt failed.
	MigrationOutcomeFailed MigrationOutcome = "failed_to_add"
)

// ResolutionSource names the cascade step that produced a target id.
type ResolutionSource string

// Resolution sources, as written to the migration_source CSV column.
const (
	// ResolutionMetadataMatch means the track matched an item already in the target playlist.
	ResolutionMetadataMatch ResolutionSource = "metadata_match"
	// ResolutionUniversalLink means the universal-link service mapped the track.
	ResolutionUniversalLink ResolutionSource = "universal_link"
	// ResolutionTargetSearch means a target catalog search resolved the track.
	ResolutionTargetSearch ResolutionSource = "target_search"
	// ResolutionTargetSearchFallback means a post-add-failure search rescued the track.
	ResolutionTargetSearchFallback ResolutionSource = "target_search_fallback"
	// ResolutionExisting tags a skipped track whose hit carried no step tag.
	// Cascade steps always tag their hits, so this is a guard value.
	ResolutionExisting ResolutionSource = "existing"
)

// DownloadOutcome classifies the download status of one track.
type DownloadOutcome string

// Download outcomes, as written to the download_status CSV column.
const (
	// DownloadOutcomeDownloaded means the track's playlist download succeeded.
	DownloadOutcomeDownloaded DownloadOutcome = "downloaded"
	// DownloadOutcomeFailed means the track's playlist download failed.
	DownloadOutcomeFailed DownloadOutcome = "failed"
	// DownloadOutcomeNotAttempted means no download was run for the track.
	DownloadOutcomeNotAttempted DownloadOutcome = "not_attempted"
)

// MatchOutcome discriminates MatchResult variants.
type MatchOutcome string

// Match outcomes.
const (
	// MatchOutcomeHit means a target id was resolved.
	MatchOutcomeHit MatchOutcome = "hit"
	// MatchOutcomeMiss means the step definitively knows no counterpart.
	MatchOutcomeMiss MatchOutcome = "miss"
	// MatchOutcomeTransientError means the step failed for an external reason
	// and the caller downgrades it to a miss.
	MatchOutcomeTransientError MatchOutcome = "transient_error"
)

// MatchResult is the outcome of a cascade step: a hit carrying the target id
// and the step that produced it, a definitive miss, or a transient error.
type MatchResult struct {
	// Outcome discriminates the variant.
	Outcome MatchOutcome
	// TargetID is the resolved target catalog id. Set only on a hit.
	TargetID string
	// Source names the cascade step that produced the hit.
	Source ResolutionSource
	// Info carries the target-side metadata known for the hit, when any.
	Info *TargetInfo
	// Err carries the underlying failure of a transient error.
	Err error
}

// TargetInfo carries the target-side metadata known for a resolved track.
type TargetInfo struct {
	// Title is the target track title.
	Title string
	// Artist is the comma-joined target artist credit.
	Artist string
	// Album is the target album title.
	Album string
	// DurationMS is the target track length in milliseconds.
	DurationMS int64
}

func matchHit(targetID string, source ResolutionSource, info *TargetInfo) MatchResult {
	return MatchResult{Outcome: MatchOutcomeHit, TargetID: targetID, Source: source, Info: info}
}

func matchMiss() MatchResult {
	return MatchResult{Outcome: MatchOutcomeMiss}
}

func matchTransient(err error) MatchResult {
	return MatchResult{Outcome: MatchOutcomeTransientError, Err: err}
}

// SnapshotEntry is one target-playlist item captured for matching.
type SnapshotEntry struct {
	// ID is the item's target catalog id.
	ID string
	// Title is the item's title.
	Title string
	// Artists lists the item's credited artist names.
	Artists []string
	// DurationSeconds is the item's length in seconds.
	DurationSeconds int64
}

// Snapshot holds the target playlist's items during one migration pass.
// It is owned by a single worker, so no locking is needed. Ids inserted
// after successful adds are visible to all later lookups in the pass.
type Snapshot struct {
	ids     map[string]struct{}
	entries []*SnapshotEntry
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{ids: make(map[string]struct{})}
}

// Insert adds an entry unless its id is already present.
func (s *Snapshot) Insert(entry *SnapshotEntry) {
	if entry == nil || entry.ID == "" {
		return
	}

	if _, ok := s.ids[entry.ID]; ok {
		return
	}

	s.ids[entry.ID] = struct{}{}
	s.entries = append(s.entries, entry)
}

// Contains reports whether the id is present.
func (s *Snapshot) Contains(id string) bool {
	_, ok := s.ids[id]

	return ok
}

// Entries returns the entries in insertion order.
func (s *Snapshot) Entries() []*SnapshotEntry {
	return s.entries
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// PlaylistHandle identifies the target playlist a migration pass works against.
type PlaylistHandle struct {
	// UUID is the playlist's stable identifier.
	UUID string
	// Title is the playlist title.
	Title string
	// Reused reports whether an existing playlist was matched by title
	// instead of creating a new one.
	Reused bool
	// KnownTracks is the item count reported at discovery time.
	KnownTracks int
}

// DuplicateReport summarizes one duplicate-removal pass over a playlist.
type DuplicateReport struct {
	// TotalItems is the playlist's item count before removal.
	TotalItems int
	// Removed is the number of duplicate items removed, or that would be
	// removed in a dry run.
	Removed int
}

// PlaylistJob names one source playlist to migrate.
type PlaylistJob struct {
	// ID is the source playlist's catalog identifier.
	ID string
	// Name is the playlist title, reused verbatim on the target.
	Name string
	// TrackCount is the track count reported with the playlist.
	TrackCount int
	// Liked marks the pseudo-playlist backed by the user's saved tracks.
	Liked bool
}

// TrackReport is one audit row: the source track, how its migration went,
// and what is known about the downloaded file. Field order mirrors the CSV
// column order.
type TrackReport struct {
	// SourceID is the source catalog track id.
	SourceID string
	// SourceURL is the track's source web link.
	SourceURL string
	// SourceTitle is the source track title.
	SourceTitle string
	// SourceArtist is the comma-joined source artist credit.
	SourceArtist string
	// SourceAlbum is the source album title.
	SourceAlbum string
	// SourceDurationMS is the source track length in milliseconds.
	SourceDurationMS int64
	// SourceTrackNumber is the track's position on its source album.
	SourceTrackNumber int
	// SourceISRC is the track's International Standard Recording Code.
	SourceISRC string
	// MigrationStatus is the track's migration outcome.
	MigrationStatus MigrationOutcome
	// MigrationSource names the cascade step that resolved the track.
	MigrationSource ResolutionSource
	// TargetID is the resolved target catalog id.
	TargetID string
	// TargetURL is the track's target web link.
	TargetURL string
	// TargetTitle is the target track title, when known.
	TargetTitle string
	// TargetArtist is the comma-joined target artist credit, when known.
	TargetArtist string
	// TargetAlbum is the target album title, when known.
	TargetAlbum string
	// TargetDurationMS is the target track length in milliseconds, when known.
	TargetDurationMS int64
	// DownloadStatus is the track's download outcome.
	DownloadStatus DownloadOutcome
	// DownloadFilePath is the located file on disk, when found.
	DownloadFilePath string
	// FileSizeBytes is the located file's size.
	FileSizeBytes int64
	// FileFormat is the container format's first name token.
	FileFormat string
	// CodecName is the audio codec's short name.
	CodecName string
	// CodecLongName is the audio codec's descriptive name.
	CodecLongName string
	// SampleRate is the audio sample rate in Hz.
	SampleRate int
	// Channels is the audio channel count.
	Channels int
	// ChannelLayout names the channel layout.
	ChannelLayout string
	// BitDepth is the bits per sample for lossless codecs.
	BitDepth int
	// BitrateAvg is the average bitrate in bits per second.
	BitrateAvg int64
	// BitrateMax is the maximum bitrate in bits per second, when reported.
	BitrateMax int64
	// DurationSeconds is the probed file duration in seconds.
	DurationSeconds float64
}

// NewTrackReport seeds a report from a source track. The migration outcome
// starts as not found and is overwritten as the cascade progresses.
func NewTrackReport(track *spotify.Track) *TrackReport {
	report := &TrackReport{
		MigrationStatus: MigrationOutcomeNotFound,
		DownloadStatus:  DownloadOutcomeNotAttempted,
	}

	if track == nil {
		return report
	}

	report.SourceID = track.ID
	report.SourceTitle = track.Name
	report.SourceArtist = strings.Join(sourceArtistNames(track), ", ")
	report.SourceAlbum = track.Album.Name
	report.SourceDurationMS = track.DurationMS
	report.SourceTrackNumber = track.TrackNumber
	report.SourceISRC = track.ExternalIDs.ISRC

	report.SourceURL = track.ExternalURLs.Spotify
	if report.SourceURL == "" && track.ID != "" {
		report.SourceURL = fmt.Sprintf(sourceTrackURLFormat, track.ID)
	}

	return report
}

// applyMatch fills the target-side fields from a cascade hit.
func (r *TrackReport) applyMatch(result MatchResult) {
	r.MigrationSource = result.Source
	r.TargetID = result.TargetID
	r.TargetURL = fmt.Sprintf(targetTrackURLFormat, result.TargetID)

	if result.Info == nil {
		return
	}

	r.TargetTitle = result.Info.Title
	r.TargetArtist = result.Info.Artist
	r.TargetAlbum = result.Info.Album
	r.TargetDurationMS = result.Info.DurationMS
}

// sourceArtistNames returns the track's credited artist names in catalog order.
func sourceArtistNames(track *spotify.Track) []string {
	names := make([]string, 0, len(track.Artists))

	for _, artist := range track.Artists {
		if artist == nil {
			continue
		}

		names = append(names, artist.Name)
	}

	return names
}

package migration

//go:generate $MOCKGEN -source=matcher.go -destination=mocks/matcher_mock.go

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/playlift/playlift/internal/client/songlink"
	"github.com/playlift/playlift/internal/client/spotify"
	"github.com/playlift/playlift/internal/client/tidal"
	"github.com/playlift/playlift/internal/logger"
)

const (
	// durationTolerance is how far apart two lengths may be while still
	// describing the same recording. Applies to every cascade step.
	durationTolerance = 2 * time.Second

	// searchCacheSize defines the maximum number of cached search queries.
	// Results are catalog-wide and unaffected by playlist writes, so they
	// stay valid for the whole run.
	searchCacheSize = 10000
)

// Matcher resolves source tracks to target catalog ids through a cascade:
// metadata against the playlist snapshot, then the universal-link service,
// then target search. Transient failures downgrade a step to a miss so the
// cascade always runs to completion.
type Matcher interface {
	// Match runs the full cascade for one track. The returned result is a
	// hit or a miss, never a transient error.
	Match(ctx context.Context, track *spotify.Track, snapshot *Snapshot) MatchResult
	// MatchBySearch runs only the target-search step. It backs the post-add
	// rescue, which needs a fresh candidate after a hit turned out stale.
	MatchBySearch(ctx context.Context, track *spotify.Track) MatchResult
}

// MatcherImpl implements the Matcher interface.
type MatcherImpl struct {
	// songlinkClient resolves tracks through the universal-link service.
	songlinkClient songlink.Client
	// tidalClient searches the target catalog.
	tidalClient tidal.Client
	// searchCache caches query results for the duration of the run.
	searchCache *lru.Cache[string, []*tidal.Track]
}

// NewMatcher creates and returns a new instance of MatcherImpl.
func NewMatcher(songlinkClient songlink.Client, tidalClient tidal.Client) (Matcher, error) {
	searchCache, err := lru.New[string, []*tidal.Track](searchCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	return &MatcherImpl{
		songlinkClient: songlinkClient,
		tidalClient:    tidalClient,
		searchCache:    searchCache,
	}, nil
}

// Match runs the full cascade for one track.
func (m *MatcherImpl) Match(ctx context.Context, track *spotify.Track, snapshot *Snapshot) MatchResult {
	if track == nil {
		return matchMiss()
	}

	if snapshot != nil {
		if result := m.matchSnapshot(track, snapshot); result.Outcome == MatchOutcomeHit {
			return result
		}
	}

	result := m.lookupUniversalLink(ctx, track)
	if result.Outcome == MatchOutcomeHit {
		return result
	}

	if result.Outcome == MatchOutcomeTransientError {
		logger.Debugf(ctx, "Universal link lookup for '%s' failed: %v", track.Name, result.Err)
	}

	return m.MatchBySearch(ctx, track)
}

// matchSnapshot looks for a playlist item that already is this track.
func (m *MatcherImpl) matchSnapshot(track *spotify.Track, snapshot *Snapshot) MatchResult {
	for _, entry := range snapshot.Entries() {
		if entry == nil {
			continue
		}

		if isCandidateMatch(track, entry.Title, entry.Artists, entry.DurationSeconds) {
			info := &TargetInfo{
				Title:      entry.Title,
				Artist:     strings.Join(entry.Artists, ", "),
				DurationMS: entry.DurationSeconds * millisecondsPerSecond,
			}

			return matchHit(entry.ID, ResolutionMetadataMatch, info)
		}
	}

	return matchMiss()
}

// lookupUniversalLink asks the universal-link service for the track's
// counterpart. A definitive "no counterpart" answer is a miss; anything
// else that fails is transient.
func (m *MatcherImpl) lookupUniversalLink(ctx context.Context, track *spotify.Track) MatchResult {
	if track.ID == "" {
		return matchMiss()
	}

	targetID, err := m.songlinkClient.Lookup(ctx, track.ID)
	if errors.Is(err, songlink.ErrNoTargetLink) {
		return matchMiss()
	}

	if err != nil {
		return matchTransient(err)
	}

	return matchHit(targetID, ResolutionUniversalLink, nil)
}

// MatchBySearch runs the target-search step: a ladder of progressively
// looser queries, each result list scanned for an ISRC hit first and a
// metadata candidate second. Query failures are logged and skipped.
func (m *MatcherImpl) MatchBySearch(ctx context.Context, track *spotify.Track) MatchResult {
	if track == nil {
		return matchMiss()
	}

	for _, query := range searchQueries(track) {
		results, err := m.searchTracks(ctx, query)
		if err != nil {
			logger.Debugf(ctx, "Search '%s' failed: %v", query, err)
			continue
		}

		for _, candidate := range results {
			if candidate == nil {
				continue
			}

			if track.ExternalIDs.ISRC != "" && candidate.ISRC == track.ExternalIDs.ISRC {
				return matchHit(formatTrackID(candidate.ID), ResolutionTargetSearch, targetInfoFromTrack(candidate))
			}

			if isCandidateMatch(track, candidate.Title, tidalArtistNames(candidate.Artists), candidate.Duration) {
				return matchHit(formatTrackID(candidate.ID), ResolutionTargetSearch, targetInfoFromTrack(candidate))
			}
		}
	}

	return matchMiss()
}

// searchTracks runs one search query through the cache.
func (m *MatcherImpl) searchTracks(ctx context.Context, query string) ([]*tidal.Track, error) {
	if cached, ok := m.searchCache.Get(query); ok {
		return cached, nil
	}

	results, err := m.tidalClient.SearchTracks(ctx, query)
	if err != nil {
		return nil, err
	}

	m.searchCache.Add(query, results)

	return results, nil
}

// searchQueries builds the query ladder for a track: full title with first
// artist, the same ASCII-only, the title's first significant word with the
// artist, and finally the artist alone. Consecutive duplicates collapse so
// pure-ASCII titles do not search twice.
func searchQueries(track *spotify.Track) []string {
	title := NormalizeTitle(track.Name)
	titleASCII := NormalizeTitleASCII(track.Name)

	var artist, artistASCII string

	if len(track.Artists) > 0 && track.Artists[0] != nil {
		artist = NormalizeTitle(track.Artists[0].Name)
		artistASCII = NormalizeTitleASCII(track.Artists[0].Name)
	}

	candidates := []string{
		joinQuery(title, artist),
		joinQuery(titleASCII, artistASCII),
		joinQuery(firstSignificantWord(title), artist),
		artist,
	}

	queries := make([]string, 0, len(candidates))

	for _, query := range candidates {
		if query == "" {
			continue
		}

		if len(queries) > 0 && queries[len(queries)-1] == query {
			continue
		}

		queries = append(queries, query)
	}

	return queries
}

func joinQuery(parts ...string) string {
	return strings.TrimSpace(strings.Join(parts, " "))
}

// isCandidateMatch applies the four-part predicate: duration within
// tolerance, remix parity, mutual title containment, and artist overlap.
func isCandidateMatch(track *spotify.Track, candidateTitle string, candidateArtists []string, candidateDurationSeconds int64) bool {
	if !durationsMatch(candidateDurationSeconds, track.DurationMS) {
		return false
	}

	if HasRemix(candidateTitle) != HasRemix(track.Name) {
		return false
	}

	if !titlesMatch(candidateTitle, track.Name) {
		return false
	}

	return artistsOverlap(candidateArtists, sourceArtistNames(track))
}

func durationsMatch(targetSeconds, sourceMS int64) bool {
	differenceMS := targetSeconds*millisecondsPerSecond - sourceMS
	if differenceMS < 0 {
		differenceMS = -differenceMS
	}

	return differenceMS <= durationTolerance.Milliseconds()
}

// titlesMatch checks mutual containment of the normalized titles, retrying
// with ASCII-only normalization when the scripts differ between catalogs.
func titlesMatch(a, b string) bool {
	if mutualContains(NormalizeTitle(a), NormalizeTitle(b)) {
		return true
	}

	return mutualContains(NormalizeTitleASCII(a), NormalizeTitleASCII(b))
}

// mutualContains reports whether either string contains the other.
// Empty strings never match: a title that normalizes to nothing carries
// no signal.
func mutualContains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	return strings.Contains(a, b) || strings.Contains(b, a)
}

// artistsOverlap reports whether the two credits share at least one artist
// after splitting joint billings.
func artistsOverlap(candidateArtists, sourceArtists []string) bool {
	candidateSet := make(map[string]struct{})

	for _, name := range SplitArtists(candidateArtists) {
		candidateSet[name] = struct{}{}
	}

	for _, name := range SplitArtists(sourceArtists) {
		if _, ok := candidateSet[name]; ok {
			return true
		}
	}

	return false
}

func formatTrackID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// tidalArtistNames returns the credited artist names in catalog order.
func tidalArtistNames(artists []*tidal.Artist) []string {
	names := make([]string, 0, len(artists))

	for _, artist := range artists {
		if artist == nil {
			continue
		}

		names = append(names, artist.Name)
	}

	return names
}

// targetInfoFromTrack copies the report-relevant metadata off a search result.
func targetInfoFromTrack(track *tidal.Track) *TargetInfo {
	info := &TargetInfo{
		Title:      track.Title,
		Artist:     strings.Join(tidalArtistNames(track.Artists), ", "),
		DurationMS: track.Duration * millisecondsPerSecond,
	}

	if track.Album != nil {
		info.Album = track.Album.Title
	}

	return info
}

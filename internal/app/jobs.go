package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/playlift/playlift/internal/client/spotify"
	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/logger"
	"github.com/playlift/playlift/internal/service/migration"
	"github.com/playlift/playlift/internal/utils"
)

const (
	// likedSongsPlaylistName titles the pseudo-playlist backed by the
	// user's saved tracks.
	likedSongsPlaylistName = "Liked Songs"

	// playlistFileExtension marks an argument as a file of playlist
	// references, one per line.
	playlistFileExtension = ".txt"

	// sourcePlaylistURIPrefix is the source catalog's URI form of a playlist.
	sourcePlaylistURIPrefix = "spotify:playlist:"
)

// Static error definitions for better error handling.
var (
	// ErrUnknownPlaylistReference indicates an argument that is neither a
	// playlist id, a playlist URL, nor a .txt file of references.
	ErrUnknownPlaylistReference = errors.New("not a playlist id, playlist URL or .txt file")

	// ErrInvalidSelection indicates an unparseable interactive selection.
	ErrInvalidSelection = errors.New("invalid selection format")
)

// sourcePlaylistURLRegexp extracts the playlist id from a source catalog web link.
var sourcePlaylistURLRegexp = regexp.MustCompile(
	`open\.spotify\.com/playlist/(?P<playlistID>[A-Za-z0-9]+)`)

// sourcePlaylistIDRegexp matches a bare source catalog playlist id.
var sourcePlaylistIDRegexp = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// resolvePlaylistJobs turns the command line into the run's playlist jobs.
// With arguments it parses them as ids, URLs or .txt files of references;
// without arguments it lists the account's playlists and prompts. The
// saved-tracks pseudo-playlist is appended when the run includes it.
func resolvePlaylistJobs(
	ctx context.Context,
	cfg *config.Config,
	client spotify.Client,
	args []string,
	in io.Reader,
	out io.Writer,
) ([]*migration.PlaylistJob, error) {
	var (
		jobs []*migration.PlaylistJob
		err  error
	)

	if len(args) > 0 {
		jobs, err = resolveJobsFromArgs(ctx, client, args)
	} else {
		jobs, err = resolveJobsInteractively(ctx, client, in, out)
	}

	if err != nil {
		return nil, err
	}

	if cfg.IncludeLiked {
		jobs = append(jobs, likedSongsJob(ctx, client))
	}

	return jobs, nil
}

// resolveJobsFromArgs expands the arguments into deduplicated playlist ids
// and enriches them with names and track counts from the account's playlist
// list. References the account cannot see keep the raw id as their name.
func resolveJobsFromArgs(
	ctx context.Context,
	client spotify.Client,
	args []string,
) ([]*migration.PlaylistJob, error) {
	playlistIDs, err := expandPlaylistReferences(args)
	if err != nil {
		return nil, err
	}

	known := make(map[string]*spotify.Playlist)

	playlists, err := client.UserPlaylists(ctx)
	if err != nil {
		logger.Warnf(ctx, "Failed to list account playlists, migrating by id only: %v", err)
	}

	for _, playlist := range playlists {
		known[playlist.ID] = playlist
	}

	jobs := make([]*migration.PlaylistJob, 0, len(playlistIDs))

	for _, playlistID := range playlistIDs {
		job := &migration.PlaylistJob{ID: playlistID, Name: playlistID}

		if playlist, ok := known[playlistID]; ok {
			job.Name = playlist.Name
			job.TrackCount = playlist.Tracks.Total
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

// expandPlaylistReferences parses each argument as a playlist reference or
// a .txt file of references, deduplicating ids while preserving order.
func expandPlaylistReferences(args []string) ([]string, error) {
	var (
		seen        = make(map[string]struct{})
		playlistIDs []string
	)

	appendID := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}

		seen[id] = struct{}{}

		playlistIDs = append(playlistIDs, id)
	}

	for _, arg := range args {
		if !strings.HasSuffix(strings.ToLower(arg), playlistFileExtension) {
			id, err := parsePlaylistReference(arg)
			if err != nil {
				return nil, err
			}

			appendID(id)

			continue
		}

		lines, err := utils.ReadUniqueLinesFromFile(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read playlist file %q: %w", arg, err)
		}

		for _, line := range lines {
			id, err := parsePlaylistReference(line)
			if err != nil {
				return nil, fmt.Errorf("in %q: %w", arg, err)
			}

			appendID(id)
		}
	}

	return playlistIDs, nil
}

// parsePlaylistReference extracts a playlist id from a web link, a catalog
// URI, or a bare id.
func parsePlaylistReference(reference string) (string, error) {
	reference = strings.TrimSpace(reference)

	if id := utils.ExtractNamedGroup(sourcePlaylistURLRegexp, "playlistID", reference); id != "" {
		return id, nil
	}

	if id, ok := strings.CutPrefix(reference, sourcePlaylistURIPrefix); ok && id != "" {
		return id, nil
	}

	if sourcePlaylistIDRegexp.MatchString(reference) {
		return reference, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownPlaylistReference, reference)
}

// resolveJobsInteractively lists the account's playlists, owned first, and
// prompts for a selection. An empty answer selects the owned playlists.
func resolveJobsInteractively(
	ctx context.Context,
	client spotify.Client,
	in io.Reader,
	out io.Writer,
) ([]*migration.PlaylistJob, error) {
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the account profile: %w", err)
	}

	playlists, err := client.UserPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list account playlists: %w", err)
	}

	if len(playlists) == 0 {
		logger.Info(ctx, "No playlists found on the source account.")

		return nil, nil
	}

	sortPlaylistsForSelection(playlists, user.ID)
	printPlaylistMenu(out, playlists, user.ID)

	answer, err := readLine(in)
	if err != nil {
		return nil, err
	}

	selected, err := selectPlaylists(ctx, playlists, user.ID, answer)
	if err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		logger.Info(ctx, "No playlists selected.")

		return nil, nil
	}

	logger.Infof(ctx, "Selected %d playlist(s) for migration", len(selected))

	return jobsFromPlaylists(selected), nil
}

// sortPlaylistsForSelection orders the menu: owned playlists first, then by
// case-insensitive name.
func sortPlaylistsForSelection(playlists []*spotify.Playlist, ownerID string) {
	sort.SliceStable(playlists, func(i, j int) bool {
		iOwned := playlists[i].Owner.ID == ownerID
		jOwned := playlists[j].Owner.ID == ownerID

		if iOwned != jOwned {
			return iOwned
		}

		return strings.ToLower(playlists[i].Name) < strings.ToLower(playlists[j].Name)
	})
}

// printPlaylistMenu writes the numbered playlist list and the selection help.
func printPlaylistMenu(out io.Writer, playlists []*spotify.Playlist, ownerID string) {
	owned := 0

	for _, playlist := range playlists {
		if playlist.Owner.ID == ownerID {
			owned++
		}
	}

	fmt.Fprintf(out, "Found %d playlist(s) on the source account (%d owned by you):\n\n",
		len(playlists), owned)

	for i, playlist := range playlists {
		marker := " "
		if playlist.Owner.ID == ownerID {
			marker = "*"
		}

		fmt.Fprintf(out, "%4d. %s %s (%d tracks)\n", i+1, marker, playlist.Name, playlist.Tracks.Total)
	}

	fmt.Fprint(out, "\nSelect playlists to migrate: numbers separated by commas (e.g. 1,3,5),\n")
	fmt.Fprint(out, "'all' for every playlist, 'mine' for owned only (*), 'none' to cancel.\n")
	fmt.Fprint(out, "Your selection [mine]: ")
}

// selectPlaylists applies an interactive answer to the menu's playlist list.
// Out-of-range numbers are skipped with a warning; a non-numeric token in an
// index list is an error.
func selectPlaylists(
	ctx context.Context,
	playlists []*spotify.Playlist,
	ownerID string,
	answer string,
) ([]*spotify.Playlist, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "none":
		return nil, nil
	case "all":
		return playlists, nil
	case "", "mine":
		var owned []*spotify.Playlist

		for _, playlist := range playlists {
			if playlist.Owner.ID == ownerID {
				owned = append(owned, playlist)
			}
		}

		return owned, nil
	}

	var selected []*spotify.Playlist

	for _, token := range strings.Split(answer, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		index, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSelection, token)
		}

		if index < 1 || index > len(playlists) {
			logger.Warnf(ctx, "Invalid playlist number %d, skipping", index)

			continue
		}

		selected = append(selected, playlists[index-1])
	}

	return selected, nil
}

// jobsFromPlaylists converts selected playlists into migration jobs.
func jobsFromPlaylists(playlists []*spotify.Playlist) []*migration.PlaylistJob {
	return utils.Map(playlists, func(playlist *spotify.Playlist) *migration.PlaylistJob {
		return &migration.PlaylistJob{
			ID:         playlist.ID,
			Name:       playlist.Name,
			TrackCount: playlist.Tracks.Total,
		}
	})
}

// likedSongsJob builds the saved-tracks pseudo-playlist job. The count is
// cosmetic (progress totals and download timeouts), so a failed lookup only
// warns.
func likedSongsJob(ctx context.Context, client spotify.Client) *migration.PlaylistJob {
	count, err := client.LikedTracksCount(ctx)
	if err != nil {
		logger.Warnf(ctx, "Failed to count saved tracks: %v", err)

		count = 0
	}

	return &migration.PlaylistJob{
		Name:       likedSongsPlaylistName,
		TrackCount: count,
		Liked:      true,
	}
}

// readLine reads one trimmed line, treating EOF as an empty answer so piped
// input falls back to the default selection.
func readLine(in io.Reader) (string, error) {
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}

		return "", nil
	}

	return strings.TrimSpace(scanner.Text()), nil
}

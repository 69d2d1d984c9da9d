package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/playlift/playlift/internal/client/tidal"
	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/logger"
	"github.com/playlift/playlift/internal/service/migration"
	"github.com/playlift/playlift/internal/utils"
)

// targetPlaylistUUIDRegexp extracts a playlist uuid from a bare value or a
// target catalog web link.
var targetPlaylistUUIDRegexp = regexp.MustCompile(
	`(?i)(?P<uuid>[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)

// ExecuteCleanupCommand removes duplicate tracks from target catalog
// playlists without migrating anything. With no uuids and no all flag it
// lists the account's playlists and prompts for a selection.
func ExecuteCleanupCommand(ctx context.Context, cfg *config.Config, args []string, dryRun, all bool) {
	tidalClient, err := tidal.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize target catalog client: %v", err)
	}

	playlistUUIDs, err := resolveCleanupTargets(ctx, tidalClient, args, all, os.Stdin, os.Stdout)
	if err != nil {
		logger.Fatalf(ctx, "Failed to resolve cleanup targets: %v", err)
	}

	if len(playlistUUIDs) == 0 {
		logger.Info(ctx, "Nothing to clean up.")

		return
	}

	// Cleanup needs only the mutator; the rest of the service's
	// collaborators stay unset.
	service := migration.NewService(cfg, nil, nil, migration.NewMutator(tidalClient), nil, nil, nil)
	service.CleanupPlaylists(ctx, playlistUUIDs, dryRun)
}

// resolveCleanupTargets turns the cleanup invocation into playlist uuids:
// the whole account with all set, parsed arguments when given, otherwise an
// interactive selection. An empty result means nothing to clean.
func resolveCleanupTargets(
	ctx context.Context,
	client tidal.Client,
	args []string,
	all bool,
	in io.Reader,
	out io.Writer,
) ([]string, error) {
	if !all && len(args) > 0 {
		return parseCleanupArgs(args)
	}

	playlists, err := client.UserPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list target account playlists: %w", err)
	}

	if len(playlists) == 0 {
		return nil, nil
	}

	if all {
		return utils.Map(playlists, func(playlist *tidal.Playlist) string {
			return playlist.UUID
		}), nil
	}

	fmt.Fprintf(out, "Found %d playlist(s) on the target account:\n\n", len(playlists))

	for i, playlist := range playlists {
		fmt.Fprintf(out, "%4d. %s (%d tracks)\n", i+1, playlist.Title, playlist.NumberOfTracks)
	}

	fmt.Fprint(out, "\nSelect playlists to clean: numbers separated by commas (e.g. 1,3,5),\n")
	fmt.Fprint(out, "'all' for every playlist, or press Enter to cancel.\n")
	fmt.Fprint(out, "Your selection []: ")

	answer, err := readLine(in)
	if err != nil {
		return nil, err
	}

	return selectCleanupTargets(ctx, playlists, answer)
}

// parseCleanupArgs extracts and deduplicates playlist uuids from arguments.
func parseCleanupArgs(args []string) ([]string, error) {
	var (
		seen  = make(map[string]struct{})
		uuids []string
	)

	for _, arg := range args {
		uuid := utils.ExtractNamedGroup(targetPlaylistUUIDRegexp, "uuid", arg)
		if uuid == "" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlaylistReference, arg)
		}

		uuid = strings.ToLower(uuid)
		if _, ok := seen[uuid]; ok {
			continue
		}

		seen[uuid] = struct{}{}

		uuids = append(uuids, uuid)
	}

	return uuids, nil
}

// selectCleanupTargets applies an interactive answer to the playlist list.
// An empty answer cancels; duplicate removal is destructive, so nothing is
// selected by default.
func selectCleanupTargets(ctx context.Context, playlists []*tidal.Playlist, answer string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "none":
		return nil, nil
	case "all":
		return utils.Map(playlists, func(playlist *tidal.Playlist) string {
			return playlist.UUID
		}), nil
	}

	var uuids []string

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

		uuids = append(uuids, playlists[index-1].UUID)
	}

	return uuids, nil
}

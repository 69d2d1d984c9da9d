package cmd

import (
	"github.com/spf13/cobra"

	"github.com/playlift/playlift/internal/app"
	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/logger"
)

var (
	//nolint:gochecknoglobals // Cobra flags are bound once at startup.
	cleanupDryRun bool

	//nolint:gochecknoglobals // Cobra flags are bound once at startup.
	cleanupAll bool

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	cleanupCmd = &cobra.Command{
		Use:   "cleanup [flags] [playlist-uuid|url ...]",
		Short: "Remove duplicate tracks from target catalog playlists.",
		Long: `Cleanup removes duplicate tracks from playlists on the target catalog
without migrating anything. For each playlist, the first occurrence of a
track is kept and later occurrences are removed.

Arguments may be playlist uuids or playlist links. With --all every playlist
on the account is cleaned; with no arguments and no --all, the account's
playlists are listed for interactive selection.`,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.ValidateConfig(appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Invalid configuration: %v", err)
			}

			app.ExecuteCleanupCommand(cmd.Context(), appConfig, args, cleanupDryRun, cleanupAll)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	cleanupCmd.Flags().BoolVar(
		&cleanupDryRun,
		"dry-run",
		false,
		"report duplicates without removing them.")

	cleanupCmd.Flags().BoolVar(
		&cleanupAll,
		"all",
		false,
		"clean every playlist on the target account.")

	rootCmd.AddCommand(cleanupCmd)
}

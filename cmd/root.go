package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/playlift/playlift/internal/app"
	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/logger"
	"github.com/playlift/playlift/internal/version"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "playlift [flags] [playlist-id|url|file ...]",
		Short: "Migrate playlists between streaming catalogs, then download and audit them.",
		Long: `Playlift migrates playlists from a source streaming catalog into a target
catalog, optionally drives an external downloader to materialize the migrated
playlists as local audio files, and writes a per-playlist audit CSV.

Arguments may be playlist ids, open.spotify.com/playlist/... links, or .txt
files with one of those per line. Without arguments, the source account's
playlists are listed for interactive selection.

Per-playlist failures are recorded in the run artifacts and do not abort the
run; the process exits non-zero only when it cannot start at all.`,
		Args:             cobra.ArbitraryArgs,
		Version:          version.Full(),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			app.ExecuteRootCommand(cmd.Context(), appConfig, args)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmdFlags := rootCmd.Flags()

	rootCmdFlags.Bool(
		"include-liked",
		false,
		"also migrate the account's saved tracks as a 'Liked Songs' playlist.")

	rootCmdFlags.Bool(
		"download",
		true,
		"invoke the external downloader for each migrated playlist.")

	rootCmdFlags.Bool(
		"parallel-download",
		true,
		"download playlists as they finish migrating instead of all at the end.")

	rootCmdFlags.Bool(
		"cleanup-duplicates",
		true,
		"remove duplicate tracks from each target playlist after migration.")

	rootCmdFlags.Bool(
		"fancy-ui",
		true,
		"render the live split-screen progress view instead of plain logs.")

	rootCmdFlags.Int64P(
		"workers",
		"w",
		0,
		"number of concurrent playlist migrations (default 4).")

	rootCmdFlags.Int64(
		"download-workers",
		0,
		"number of concurrent playlist downloads (default 2).")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	// Full validation runs after flag binding; the log level is applied
	// here already so early failures honor it. Unknown values are left
	// for ValidateConfig to reject.
	if level, ok := logger.ParseLogLevel(appConfig.LogLevel); ok {
		logger.SetLevel(level)
	}
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("include-liked"); flag != nil && flag.Changed {
		cfg.IncludeLiked, _ = flags.GetBool("include-liked")
	}

	if flag := flags.Lookup("download"); flag != nil && flag.Changed {
		cfg.DownloadEnabled, _ = flags.GetBool("download")
	}

	if flag := flags.Lookup("parallel-download"); flag != nil && flag.Changed {
		cfg.ParallelDownloads, _ = flags.GetBool("parallel-download")
	}

	if flag := flags.Lookup("cleanup-duplicates"); flag != nil && flag.Changed {
		cfg.CleanupDuplicates, _ = flags.GetBool("cleanup-duplicates")
	}

	if flag := flags.Lookup("fancy-ui"); flag != nil && flag.Changed {
		cfg.FancyUI, _ = flags.GetBool("fancy-ui")
	}

	if flag := flags.Lookup("workers"); flag != nil && flag.Changed {
		cfg.MigrationWorkers, _ = flags.GetInt64("workers")
	}

	if flag := flags.Lookup("download-workers"); flag != nil && flag.Changed {
		cfg.DownloadWorkers, _ = flags.GetInt64("download-workers")
	}

	return config.ValidateConfig(cfg)
}

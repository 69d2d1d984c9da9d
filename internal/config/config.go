package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/playlift/playlift/internal/constants"
	"github.com/playlift/playlift/internal/logger"
)

// Config holds all configuration settings.
type Config struct {
	// SpotifyClientID is the OAuth client id registered for the source catalog.
	SpotifyClientID string `mapstructure:"spotify_client_id"`
	// SpotifyClientSecret is the OAuth client secret for the source catalog.
	SpotifyClientSecret string `mapstructure:"spotify_client_secret"`
	// SpotifyAccessToken is the current source catalog bearer token, if any.
	SpotifyAccessToken string `mapstructure:"spotify_access_token"`
	// SpotifyRefreshToken is the long-lived token used to mint new access tokens.
	SpotifyRefreshToken string `mapstructure:"spotify_refresh_token"`
	// SpotifyTokenExpiry is the RFC 3339 expiry of SpotifyAccessToken. Empty means unknown.
	SpotifyTokenExpiry string `mapstructure:"spotify_token_expiry"`
	// TidalClientID is the OAuth client id for the target catalog.
	TidalClientID string `mapstructure:"tidal_client_id"`
	// TidalClientSecret is the OAuth client secret for the target catalog.
	TidalClientSecret string `mapstructure:"tidal_client_secret"`
	// TidalAccessToken is the current target catalog bearer token.
	TidalAccessToken string `mapstructure:"tidal_access_token"`
	// TidalRefreshToken is the token used for the one-shot refresh on a 401.
	TidalRefreshToken string `mapstructure:"tidal_refresh_token"`
	// TidalUserID is the numeric target catalog user id. Zero means discover via the session endpoint.
	TidalUserID int64 `mapstructure:"tidal_user_id"`
	// DownloadPath is the root directory the downloader materializes audio files into.
	DownloadPath string `mapstructure:"download_path"`
	// M3UPath is the directory the downloader writes playlist files into.
	// Empty defaults to "<download_path>/m3u".
	M3UPath string `mapstructure:"m3u_path"`
	// DownloaderBinary is the external downloader invoked per migrated playlist.
	DownloaderBinary string `mapstructure:"downloader_binary"`
	// ProbeBinary is the external tool used to extract audio metadata from files.
	ProbeBinary string `mapstructure:"probe_binary"`
	// DownloadEnabled toggles invoking the downloader after migration.
	DownloadEnabled bool `mapstructure:"download_enabled"`
	// ParallelDownloads dispatches downloads as playlists finish migrating
	// instead of draining the queue after all migrations complete.
	ParallelDownloads bool `mapstructure:"parallel_downloads"`
	// MigrationWorkers is the number of concurrent playlist migrations.
	MigrationWorkers int64 `mapstructure:"migration_workers"`
	// DownloadWorkers is the number of concurrent playlist downloads.
	DownloadWorkers int64 `mapstructure:"download_workers"`
	// CleanupDuplicates removes duplicate tracks from each target playlist after migration.
	CleanupDuplicates bool `mapstructure:"cleanup_duplicates"`
	// IncludeLiked migrates the user's saved tracks as a "Liked Songs" playlist.
	IncludeLiked bool `mapstructure:"include_liked"`
	// FancyUI renders the live split-screen progress view instead of plain logs.
	FancyUI bool `mapstructure:"fancy_ui"`
	// UserCountry is the two-letter country code sent to the universal-link service.
	UserCountry string `mapstructure:"user_country"`
	// LinkRequestsPerMinute caps universal-link lookups inside any sliding 60-second window.
	LinkRequestsPerMinute int64 `mapstructure:"link_requests_per_minute"`
	// SourceRequestsPerSecond paces source catalog calls.
	SourceRequestsPerSecond float64 `mapstructure:"source_requests_per_second"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// SpotifyAPIURL is the base URL for the source catalog API (set automatically).
	SpotifyAPIURL string
	// SpotifyTokenURL is the source catalog OAuth token endpoint (set automatically).
	SpotifyTokenURL string
	// TidalAPIURL is the base URL for the target catalog API (set automatically).
	TidalAPIURL string
	// TidalTokenURL is the target catalog OAuth token endpoint (set automatically).
	TidalTokenURL string
	// SonglinkAPIURL is the universal-link lookup endpoint (set automatically).
	SonglinkAPIURL string
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedSpotifyTokenExpiry is the parsed source token expiry; zero when unknown.
	ParsedSpotifyTokenExpiry time.Time
}

const (
	// SpotifyAPIURL is the base URL of the source catalog API.
	SpotifyAPIURL = "https://api.spotify.com/v1"

	// SpotifyTokenURL is the source catalog OAuth token endpoint.
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"

	// TidalAPIURL is the base URL of the target catalog API.
	TidalAPIURL = "https://api.tidal.com/v1"

	// TidalTokenURL is the target catalog OAuth token endpoint.
	TidalTokenURL = "https://auth.tidal.com/v1/oauth2/token"

	// SonglinkAPIURL is the universal-link lookup endpoint.
	SonglinkAPIURL = "https://api.song.link/v1-alpha.1/links"

	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".playlift.yaml"

	// DefaultDownloaderBinary is the downloader invoked when none is configured.
	DefaultDownloaderBinary = "tiddl"

	// DefaultProbeBinary is the audio metadata probe invoked when none is configured.
	DefaultProbeBinary = "ffprobe"

	// DefaultUserCountry is the country code sent to the universal-link service.
	DefaultUserCountry = "US"

	// DefaultMaxLogLength is the default maximum size (in bytes) for logged HTTP dumps.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// DefaultMigrationWorkers is the number of concurrent playlist migrations.
	DefaultMigrationWorkers = 4

	// DefaultDownloadWorkers is the number of concurrent playlist downloads.
	DefaultDownloadWorkers = 2

	// DefaultLinkRequestsPerMinute is the universal-link service rate limit.
	DefaultLinkRequestsPerMinute = 10

	// DefaultSourceRequestsPerSecond paces source catalog calls.
	DefaultSourceRequestsPerSecond = 5
)

// Static error definitions for better error handling.
var (
	// ErrEmptySpotifyCredentials indicates the source catalog credentials are missing.
	ErrEmptySpotifyCredentials = errors.New("spotify client id, client secret and refresh token must be set")
	// ErrEmptyTidalCredentials indicates the target catalog credentials are missing.
	ErrEmptyTidalCredentials = errors.New("tidal access token must be set")
	// ErrEmptyDownloadPath indicates the download root is not configured.
	ErrEmptyDownloadPath = errors.New("download path cannot be empty")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidMigrationWorkers indicates that the migration worker count is invalid.
	ErrInvalidMigrationWorkers = errors.New("migration workers must be a positive integer")
	// ErrInvalidDownloadWorkers indicates that the download worker count is invalid.
	ErrInvalidDownloadWorkers = errors.New("download workers must be a positive integer")
	// ErrInvalidLinkRate indicates that the universal-link rate limit is invalid.
	ErrInvalidLinkRate = errors.New("link requests per minute must be a positive integer")
	// ErrInvalidSourceRate indicates that the source catalog pacing is invalid.
	ErrInvalidSourceRate = errors.New("source requests per second must be positive")
)

// LoadConfig loads configuration settings from a YAML file.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	viper.SetConfigFile(configFilename)

	// Behavior toggles default to on; an explicit false in the file wins.
	viper.SetDefault("download_enabled", true)
	viper.SetDefault("parallel_downloads", true)
	viper.SetDefault("cleanup_duplicates", true)
	viper.SetDefault("fancy_ui", true)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:cyclop // Validation functions naturally have high complexity due to sequential checks.
func ValidateConfig(cfg *Config) error {
	cfg.SpotifyAPIURL = SpotifyAPIURL
	cfg.SpotifyTokenURL = SpotifyTokenURL
	cfg.TidalAPIURL = TidalAPIURL
	cfg.TidalTokenURL = TidalTokenURL
	cfg.SonglinkAPIURL = SonglinkAPIURL

	if strings.TrimSpace(cfg.SpotifyClientID) == "" ||
		strings.TrimSpace(cfg.SpotifyClientSecret) == "" ||
		strings.TrimSpace(cfg.SpotifyRefreshToken) == "" {
		return ErrEmptySpotifyCredentials
	}

	if strings.TrimSpace(cfg.TidalAccessToken) == "" {
		return ErrEmptyTidalCredentials
	}

	if strings.TrimSpace(cfg.DownloadPath) == "" {
		return ErrEmptyDownloadPath
	}

	if cfg.M3UPath == "" {
		cfg.M3UPath = filepath.Join(cfg.DownloadPath, "m3u")
	}

	if cfg.DownloaderBinary == "" {
		cfg.DownloaderBinary = DefaultDownloaderBinary
	}

	if cfg.ProbeBinary == "" {
		cfg.ProbeBinary = DefaultProbeBinary
	}

	if cfg.UserCountry == "" {
		cfg.UserCountry = DefaultUserCountry
	}

	if cfg.MigrationWorkers == 0 {
		cfg.MigrationWorkers = DefaultMigrationWorkers
	}

	if cfg.MigrationWorkers < 0 {
		return ErrInvalidMigrationWorkers
	}

	if cfg.DownloadWorkers == 0 {
		cfg.DownloadWorkers = DefaultDownloadWorkers
	}

	if cfg.DownloadWorkers < 0 {
		return ErrInvalidDownloadWorkers
	}

	if cfg.LinkRequestsPerMinute == 0 {
		cfg.LinkRequestsPerMinute = DefaultLinkRequestsPerMinute
	}

	if cfg.LinkRequestsPerMinute < 0 {
		return ErrInvalidLinkRate
	}

	if cfg.SourceRequestsPerSecond == 0 {
		cfg.SourceRequestsPerSecond = DefaultSourceRequestsPerSecond
	}

	if cfg.SourceRequestsPerSecond < 0 {
		return ErrInvalidSourceRate
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if cfg.SpotifyTokenExpiry != "" {
		expiry, err := time.Parse(time.RFC3339, cfg.SpotifyTokenExpiry)
		if err != nil {
			return fmt.Errorf("failed to parse spotify token expiry: %w", err)
		}

		cfg.ParsedSpotifyTokenExpiry = expiry
	}

	return nil
}

// saveMu serializes config file writes. Both catalog clients persist
// rotated tokens at runtime, possibly from concurrent workers.
var saveMu sync.Mutex

// SaveConfig saves the configuration to the file while preserving the original format and order.
// Only the token fields that rotate at runtime are rewritten.
func SaveConfig(cfg *Config) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	configFile := getConfigFilePath()

	rotated := map[string]string{
		"spotify_access_token":  cfg.SpotifyAccessToken,
		"spotify_refresh_token": cfg.SpotifyRefreshToken,
		"spotify_token_expiry":  cfg.SpotifyTokenExpiry,
		"tidal_access_token":    cfg.TidalAccessToken,
		"tidal_refresh_token":   cfg.TidalRefreshToken,
	}

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, rotated, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Update the rotated values in the node tree.
	updateStringValuesInNode(&node, rotated)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// Write the file back with preserved order.
	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile string, values map[string]string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// File doesn't exist, create it with viper.
	for key, value := range values {
		viper.Set(key, value)
	}

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// updateStringValuesInNode updates scalar values in the YAML node tree by key.
// Keys absent from the document are appended so rotated tokens are never lost.
func updateStringValuesInNode(node *yaml.Node, values map[string]string) {
	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]
	seen := make(map[string]struct{}, len(values))

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i < len(mapNode.Content); i += 2 {
		keyNode := mapNode.Content[i]
		valueNode := mapNode.Content[i+1]

		newValue, ok := values[keyNode.Value]
		if !ok {
			continue
		}

		seen[keyNode.Value] = struct{}{}

		// Update the value while preserving style.
		valueNode.Value = newValue
		valueNode.Tag = "!!str"

		// Ensure it's quoted if it contains special characters.
		if valueNode.Style == 0 {
			valueNode.Style = yaml.DoubleQuotedStyle
		}
	}

	for key, value := range values {
		if _, ok := seen[key]; ok || value == "" {
			continue
		}

		mapNode.Content = append(mapNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle},
		)
	}
}

package migration

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/playlift/playlift/internal/client/spotify"
	"github.com/playlift/playlift/internal/config"
	"github.com/playlift/playlift/internal/constants"
	"github.com/playlift/playlift/internal/logger"
)

// maxSanitizedNameLength caps sanitized playlist names so artifact file
// names stay within filesystem limits.
const maxSanitizedNameLength = 100

// playlistArtifactPrefix starts every per-playlist artifact file name.
const playlistArtifactPrefix = "pl-"

var spaceRunPattern = regexp.MustCompile(` +`)

// reportCSVHeader is the stable column order of playlist reports.
var reportCSVHeader = []string{
	"source_id",
	"source_url",
	"source_title",
	"source_artist",
	"source_album",
	"source_duration_ms",
	"source_track_number",
	"source_isrc",
	"migration_status",
	"migration_source",
	"target_id",
	"target_url",
	"target_title",
	"target_artist",
	"target_album",
	"target_duration_ms",
	"download_status",
	"download_file_path",
	"file_size_bytes",
	"file_format",
	"codec_name",
	"codec_long_name",
	"sample_rate",
	"channels",
	"channel_layout",
	"bit_depth",
	"bitrate_avg",
	"bitrate_max",
	"duration_seconds",
}

// FinalizeStats summarizes what report finalization wrote and found.
type FinalizeStats struct {
	// PlaylistsWritten is the number of CSV reports written.
	PlaylistsWritten int
	// RowsWritten is the total number of track rows written.
	RowsWritten int
	// FilesLocated is how many downloaded files were found on disk.
	FilesLocated int
	// BytesLocated is the combined size of the located files.
	BytesLocated int64
}

// Collector accumulates TrackReport rows per playlist during a run and
// writes the audit artifacts at the end: one CSV per playlist, placed next
// to the playlist's .m3u file when one exists, plus a plain-text log in the
// run log directory.
type Collector struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// prober extracts audio metadata from located files.
	prober Prober
	// runLogDir is this run's log directory.
	runLogDir string

	mu        sync.Mutex
	playlists map[string]*playlistReport
	order     []string
}

type playlistReport struct {
	name     string
	uuid     string
	rows     []*TrackReport
	logLines []string
	failure  string
}

// NewCollector creates and returns a new instance of Collector.
func NewCollector(cfg *config.Config, prober Prober, runLogDir string) *Collector {
	return &Collector{
		cfg:       cfg,
		prober:    prober,
		runLogDir: runLogDir,
		playlists: make(map[string]*playlistReport),
	}
}

// RunLogDir returns this run's log directory.
func (c *Collector) RunLogDir() string {
	return c.runLogDir
}

// StartPlaylist begins collecting rows for a playlist.
func (c *Collector) StartPlaylist(playlistName, playlistUUID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensurePlaylistLocked(playlistName, playlistUUID)
}

// AddTrack appends one row to a playlist's report, in arrival order.
func (c *Collector) AddTrack(playlistName string, report *TrackReport) {
	if report == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.ensurePlaylistLocked(playlistName, "")
	entry.rows = append(entry.rows, report)
	entry.logLines = append(entry.logLines, trackLogLine(report))
}

// RecordPlaylistFailure marks a playlist the run could not migrate. Every
// source track still gets a row, all of them not found, so the report stays
// complete.
func (c *Collector) RecordPlaylistFailure(playlistName, playlistUUID, reason string, tracks []*spotify.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.ensurePlaylistLocked(playlistName, playlistUUID)
	entry.failure = reason
	entry.logLines = append(entry.logLines, "FAILED: "+reason)

	for _, track := range tracks {
		entry.rows = append(entry.rows, NewTrackReport(track))
	}
}

// MarkPlaylistDownloaded records the playlist's download result on every row
// whose track made it onto the target playlist.
func (c *Collector) MarkPlaylistDownloaded(playlistName string, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.playlists[playlistName]
	if !ok {
		return
	}

	status := DownloadOutcomeDownloaded
	if !success {
		status = DownloadOutcomeFailed
	}

	for _, row := range entry.rows {
		if row.MigrationStatus == MigrationOutcomeAdded || row.MigrationStatus == MigrationOutcomeSkipped {
			row.DownloadStatus = status
		}
	}

	entry.logLines = append(entry.logLines, "download: "+string(status))
}

// Rows returns a copy of the playlist's rows collected so far.
func (c *Collector) Rows(playlistName string) []*TrackReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.playlists[playlistName]
	if !ok {
		return nil
	}

	rows := make([]*TrackReport, len(entry.rows))
	copy(rows, entry.rows)

	return rows
}

// FinalizeAndWrite locates and probes downloaded files, then writes every
// playlist's CSV and text log. Per-playlist write failures are logged and
// do not stop the remaining reports.
func (c *Collector) FinalizeAndWrite(ctx context.Context, scanDownloads bool) *FinalizeStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := &FinalizeStats{}

	for _, name := range c.order {
		entry := c.playlists[name]
		if entry == nil {
			continue
		}

		if len(entry.rows) == 0 && entry.failure == "" {
			logger.Warnf(ctx, "No tracks recorded for playlist '%s', skipping report", name)
			continue
		}

		if scanDownloads {
			c.enrichDownloadedRows(ctx, entry, stats)
		}

		c.writePlaylistArtifacts(ctx, entry, stats)
	}

	logger.Infof(ctx, "Wrote %d playlist report(s) to %s", stats.PlaylistsWritten, c.runLogDir)

	return stats
}

// ensurePlaylistLocked returns the playlist's report, creating it on first
// sight. Callers must hold the mutex.
func (c *Collector) ensurePlaylistLocked(playlistName, playlistUUID string) *playlistReport {
	entry, ok := c.playlists[playlistName]
	if !ok {
		entry = &playlistReport{name: playlistName}
		c.playlists[playlistName] = entry
		c.order = append(c.order, playlistName)
	}

	if playlistUUID != "" && entry.uuid == "" {
		entry.uuid = playlistUUID
		entry.logLines = append(entry.logLines, "target playlist: "+playlistUUID)
	}

	return entry
}

// enrichDownloadedRows locates each downloaded row's file on disk and fills
// in the probed audio metadata.
func (c *Collector) enrichDownloadedRows(ctx context.Context, entry *playlistReport, stats *FinalizeStats) {
	for _, row := range entry.rows {
		if row == nil || row.DownloadStatus != DownloadOutcomeDownloaded || row.TargetID == "" {
			continue
		}

		title := firstNonEmpty(row.TargetTitle, row.SourceTitle)
		artist := firstNonEmpty(row.TargetArtist, row.SourceArtist)

		path := LocateDownloadedFile(c.cfg.DownloadPath, title, artist)
		if path == "" {
			continue
		}

		row.DownloadFilePath = path
		stats.FilesLocated++

		attributes, err := c.prober.Probe(ctx, path)
		if err != nil {
			logger.Warnf(ctx, "Failed to probe %s: %v", path, err)
			continue
		}

		row.applyAudioAttributes(attributes)
		stats.BytesLocated += attributes.FileSizeBytes
	}
}

// writePlaylistArtifacts writes one playlist's CSV and text log.
func (c *Collector) writePlaylistArtifacts(ctx context.Context, entry *playlistReport, stats *FinalizeStats) {
	sanitized := SanitizePlaylistFileName(entry.name)

	csvDir := c.runLogDir
	if dir := LocatePlaylistFileDir(c.cfg.M3UPath, entry.name); dir != "" {
		csvDir = dir
	}

	csvPath := filepath.Join(csvDir, playlistArtifactPrefix+sanitized+constants.ExtensionCSV)
	if err := writeReportCSV(csvPath, entry.rows); err != nil {
		logger.Errorf(ctx, "Failed to write report %s: %v", csvPath, err)
	} else {
		stats.PlaylistsWritten++
		stats.RowsWritten += len(entry.rows)

		logger.Debugf(ctx, "Wrote report %s", csvPath)
	}

	logPath := filepath.Join(c.runLogDir, playlistArtifactPrefix+sanitized+constants.ExtensionTXT)
	if err := writePlaylistLog(logPath, entry); err != nil {
		logger.Errorf(ctx, "Failed to write playlist log %s: %v", logPath, err)
	}
}

func writeReportCSV(path string, rows []*TrackReport) error {
	var buffer bytes.Buffer

	writer := csv.NewWriter(&buffer)
	if err := writer.Write(reportCSVHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		if row == nil {
			continue
		}

		if err := writer.Write(row.csvRecord()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}

	return os.WriteFile(path, buffer.Bytes(), constants.DefaultFilePermissions)
}

func writePlaylistLog(path string, entry *playlistReport) error {
	var builder strings.Builder

	builder.WriteString("Playlist: " + entry.name + "\n\n")

	for _, line := range entry.logLines {
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(builder.String()), constants.DefaultFilePermissions)
}

// trackLogLine renders one row for the playlist's human-readable log.
func trackLogLine(report *TrackReport) string {
	line := fmt.Sprintf("%s: %s - %s", report.MigrationStatus, report.SourceArtist, report.SourceTitle)
	if report.TargetID != "" {
		line += fmt.Sprintf(" -> %s (%s)", report.TargetID, report.MigrationSource)
	}

	return line
}

// applyAudioAttributes fills the file-metadata columns from a probe result.
func (r *TrackReport) applyAudioAttributes(attributes *AudioAttributes) {
	if attributes == nil {
		return
	}

	r.FileSizeBytes = attributes.FileSizeBytes
	r.FileFormat = attributes.Format
	r.CodecName = attributes.CodecName
	r.CodecLongName = attributes.CodecLongName
	r.SampleRate = attributes.SampleRate
	r.Channels = attributes.Channels
	r.ChannelLayout = attributes.ChannelLayout
	r.BitDepth = attributes.BitDepth
	r.BitrateAvg = attributes.BitrateAvg
	r.BitrateMax = attributes.BitrateMax
	r.DurationSeconds = attributes.DurationSeconds
}

// csvRecord renders the row in reportCSVHeader column order.
func (r *TrackReport) csvRecord() []string {
	return []string{
		r.SourceID,
		r.SourceURL,
		r.SourceTitle,
		r.SourceArtist,
		r.SourceAlbum,
		strconv.FormatInt(r.SourceDurationMS, 10),
		strconv.Itoa(r.SourceTrackNumber),
		r.SourceISRC,
		string(r.MigrationStatus),
		string(r.MigrationSource),
		r.TargetID,
		r.TargetURL,
		r.TargetTitle,
		r.TargetArtist,
		r.TargetAlbum,
		strconv.FormatInt(r.TargetDurationMS, 10),
		string(r.DownloadStatus),
		r.DownloadFilePath,
		strconv.FormatInt(r.FileSizeBytes, 10),
		r.FileFormat,
		r.CodecName,
		r.CodecLongName,
		strconv.Itoa(r.SampleRate),
		strconv.Itoa(r.Channels),
		r.ChannelLayout,
		strconv.Itoa(r.BitDepth),
		strconv.FormatInt(r.BitrateAvg, 10),
		strconv.FormatInt(r.BitrateMax, 10),
		strconv.FormatFloat(r.DurationSeconds, 'f', -1, 64),
	}
}

// SanitizePlaylistFileName makes a playlist name safe for artifact file
// names: letters, digits, space, hyphen, and underscore survive, everything
// else becomes an underscore; space runs collapse to single hyphens; the
// result is capped at 100 runes.
func SanitizePlaylistFileName(name string) string {
	var builder strings.Builder

	builder.Grow(len(name))

	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			builder.WriteRune(r)
		} else {
			builder.WriteRune('_')
		}
	}

	sanitized := spaceRunPattern.ReplaceAllString(strings.TrimSpace(builder.String()), "-")

	runes := []rune(sanitized)
	if len(runes) > maxSanitizedNameLength {
		runes = runes[:maxSanitizedNameLength]
	}

	return string(runes)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}

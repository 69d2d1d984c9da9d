package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/playlift/playlift/internal/constants"
)

// pathTokenReplacer drops the separators download tools reshuffle freely,
// so "Dua Lipa" still matches "dua-lipa" and "Dua_Lipa".
var pathTokenReplacer = strings.NewReplacer(" ", "", "-", "", "_", "", "(", "", ")", "")

// LocateDownloadedFile searches the download root for the audio file backing
// a track. Directories matching the artist are tried first because downloads
// land in an artist/album/title layout; a full recursive walk is the
// fallback. Returns an empty string when nothing matches.
func LocateDownloadedFile(downloadRoot, title, artist string) string {
	titleKey := normalizePathToken(title)
	if titleKey == "" {
		return ""
	}

	artistKey := normalizePathToken(artist)

	if artistKey != "" {
		entries, err := os.ReadDir(downloadRoot)
		if err != nil {
			return ""
		}

		for _, entry := range entries {
			if !entry.IsDir() || !strings.Contains(normalizePathToken(entry.Name()), artistKey) {
				continue
			}

			if found := walkForTrack(filepath.Join(downloadRoot, entry.Name()), titleKey, artistKey); found != "" {
				return found
			}
		}
	}

	return walkForTrack(downloadRoot, titleKey, artistKey)
}

// LocatePlaylistFileDir finds the directory holding the playlist's .m3u file
// under the playlist-file root, so reports can be written next to it.
// Returns an empty string when no playlist file matches.
func LocatePlaylistFileDir(m3uRoot, playlistName string) string {
	nameKey := normalizePathToken(playlistName)
	if nameKey == "" {
		return ""
	}

	var found string

	_ = filepath.WalkDir(m3uRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		extension := filepath.Ext(base)

		if !strings.EqualFold(extension, constants.ExtensionM3U) {
			return nil
		}

		if normalizePathToken(strings.TrimSuffix(base, extension)) != nameKey {
			return nil
		}

		found = filepath.Dir(path)

		return filepath.SkipAll
	})

	return found
}

// walkForTrack walks one subtree for an audio file matching the track.
// Unreadable entries are skipped, not fatal.
func walkForTrack(root, titleKey, artistKey string) string {
	var found string

	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}

		if !isAudioFile(path) || !matchesTrackFile(path, titleKey, artistKey) {
			return nil
		}

		found = path

		return filepath.SkipAll
	})

	return found
}

func isAudioFile(path string) bool {
	return slices.Contains(constants.AudioFileExtensions, strings.ToLower(filepath.Ext(path)))
}

// matchesTrackFile applies the location predicate: the normalized file stem
// and title must contain one another, and when an artist is known it must
// appear in the file's parent or grandparent directory name.
func matchesTrackFile(path, titleKey, artistKey string) bool {
	base := filepath.Base(path)
	stemKey := normalizePathToken(strings.TrimSuffix(base, filepath.Ext(base)))

	if stemKey == "" {
		return false
	}

	if !strings.Contains(stemKey, titleKey) && !strings.Contains(titleKey, stemKey) {
		return false
	}

	if artistKey == "" {
		return true
	}

	parentKey := normalizePathToken(filepath.Base(filepath.Dir(path)))
	grandparentKey := normalizePathToken(filepath.Base(filepath.Dir(filepath.Dir(path))))

	if strings.Contains(parentKey, artistKey) || strings.Contains(grandparentKey, artistKey) {
		return true
	}

	// Joint billings keep their commas through normalization; any single
	// credited artist in the path is enough.
	for _, part := range strings.Split(artistKey, ",") {
		if part == "" {
			continue
		}

		if strings.Contains(parentKey, part) || strings.Contains(grandparentKey, part) {
			return true
		}
	}

	return false
}

// normalizePathToken reduces a name for path matching: lower-cased with
// spaces, hyphens, underscores, and parentheses removed.
func normalizePathToken(text string) string {
	return pathTokenReplacer.Replace(strings.ToLower(text))
}

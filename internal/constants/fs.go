package constants

import "os"

const (
	// DefaultFilePermissions sets the default permissions for regular files: (rw-r--r--).
	// Owner: read and write;
	// Group: read;
	// Others: read.
	DefaultFilePermissions os.FileMode = 0o644

	// DefaultFolderPermissions sets the default permissions for regular folders: (rwxr-xr-x).
	// Owner: read, write, and execute;
	// Group: read and execute;
	// Others: read and execute.
	DefaultFolderPermissions os.FileMode = 0o755
)

// File extension constants.
const (
	ExtensionCSV = ".csv"
	ExtensionTXT = ".txt"
	ExtensionM3U = ".m3u"
)

// AudioFileExtensions lists the suffixes the downloaded-file locator accepts.
//
//nolint:gochecknoglobals // Immutable lookup table.
var AudioFileExtensions = []string{".flac", ".m4a", ".mp3", ".ogg", ".opus", ".wav"}

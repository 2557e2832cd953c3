// Package fsutil holds the file system primitives shared by the publisher,
// the bundle manager and the CLI.
package fsutil

const (
	// FileModeMask keeps only the permission bits of a mode.
	FileModeMask = 0o777
	// FileModeDefault is used for files plugpub creates itself.
	FileModeDefault = 0o644
	// DirModeDefault is used for directories plugpub creates.
	DirModeDefault = 0o755
)

// Temporary file naming used by the atomic writers.
const (
	// TempFilePrefix hides in-flight files from directory listings on POSIX.
	TempFilePrefix = "."
	// TempFileSuffix keeps in-flight files from matching a plugin extension.
	TempFileSuffix = ".tmp"
)

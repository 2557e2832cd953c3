package cli

// Default values for CLI output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// ChecksumWorkers bounds concurrent hashing in list --checksum.
	ChecksumWorkers = 4
	// DefaultBundleName is the bundle file written when no path is given.
	DefaultBundleName = "plugins.tar.gz"
)

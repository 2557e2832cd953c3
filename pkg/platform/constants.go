// Package platform describes the target platforms a plugin can be published for
// and the file naming rules that go with them.
package platform

const (
	// OSWindows is the GOOS value for Windows.
	OSWindows = "windows"
	// OSLinux is the GOOS value for Linux.
	OSLinux = "linux"
	// OSDarwin is the GOOS value for macOS.
	OSDarwin = "darwin"

	// NameWindows is the configuration spelling of the Windows platform.
	NameWindows = "windows"
	// NamePOSIX is the configuration spelling of the POSIX platform.
	NamePOSIX = "posix"

	// ExtWindows is the shared library extension the host expects on Windows.
	ExtWindows = ".dll"
	// ExtPOSIX is the shared library extension the host expects everywhere else.
	ExtPOSIX = ".so"
)

// ValidNames returns the accepted platform names.
func ValidNames() []string {
	return []string{
		NameWindows,
		NamePOSIX,
	}
}

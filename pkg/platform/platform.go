package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrUnknownPlatform is returned for platform values other than Windows and POSIX.
var ErrUnknownPlatform = fmt.Errorf("unknown target platform")

// Platform is the target platform of a published plugin.
// The zero value is not a valid platform.
type Platform int

const (
	// Windows targets hosts loading .dll plugins.
	Windows Platform = iota + 1
	// POSIX targets hosts loading .so plugins (Linux, macOS, BSD).
	POSIX
)

// Parse converts a platform name into a Platform.
// Besides "windows" and "posix" it accepts GOOS-style aliases such as
// "win", "linux" or "darwin".
func Parse(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameWindows, "win", "nt":
		return Windows, nil
	case NamePOSIX, OSLinux, OSDarwin, "macos", "unix", "freebsd", "openbsd", "netbsd":
		return POSIX, nil
	default:
		return 0, fmt.Errorf("%w: %q, valid values are: %v", ErrUnknownPlatform, name, ValidNames())
	}
}

// FromGOOS maps a GOOS value to a Platform. Anything that is not Windows is POSIX.
func FromGOOS(goos string) Platform {
	if strings.EqualFold(goos, OSWindows) {
		return Windows
	}
	return POSIX
}

// Current returns the platform of the running process.
// Only the CLI uses this, to fill in a default when none is configured.
func Current() Platform {
	return FromGOOS(runtime.GOOS)
}

// Valid reports whether p is Windows or POSIX.
func (p Platform) Valid() bool {
	return p == Windows || p == POSIX
}

// LibraryExtension returns the file extension the host expects for plugins on p.
func (p Platform) LibraryExtension() string {
	if p == Windows {
		return ExtWindows
	}
	return ExtPOSIX
}

// String returns the configuration name of the platform.
func (p Platform) String() string {
	switch p {
	case Windows:
		return NameWindows
	case POSIX:
		return NamePOSIX
	default:
		return fmt.Sprintf("platform(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Platform) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlatform, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Platform) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

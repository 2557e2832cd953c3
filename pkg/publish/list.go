package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/plugpub/pkg/fsutil"
	"github.com/glorpus-work/plugpub/pkg/platform"
)

// ListPlugins returns the plugins in dir that a host on p would load,
// sorted by file name. A missing directory yields no plugins.
func ListPlugins(dir string, p platform.Platform) ([]PluginFile, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %s", platform.ErrUnknownPlatform, p)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, NewDestinationUnavailableError(dir, err)
	}

	ext := p.LibraryExtension()
	var plugins []PluginFile
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || fsutil.IsTempFile(name) {
			continue
		}
		if !HasLibraryExtension(name, p) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, NewDestinationUnavailableError(dir, err)
		}
		plugins = append(plugins, PluginFile{
			LogicalName: name[:len(name)-len(ext)],
			Path:        filepath.Join(dir, name),
			Size:        info.Size(),
		})
	}
	return plugins, nil
}

// HasLibraryExtension reports whether name is a library file a host on p would
// load: it ends in p's extension and has a non-empty logical name before it.
func HasLibraryExtension(name string, p platform.Platform) bool {
	ext := p.LibraryExtension()
	if len(name) <= len(ext) {
		return false
	}
	suffix := name[len(name)-len(ext):]
	// Windows file names are case-insensitive.
	if p == platform.Windows {
		return strings.EqualFold(suffix, ext)
	}
	return suffix == ext
}

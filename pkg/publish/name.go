package publish

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/plugpub/pkg/platform"
)

// ValidateLogicalName checks that name can be used as a plugin file name on every platform.
func ValidateLogicalName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return NewInvalidNameError(name, "name is empty")
	case strings.ContainsAny(name, `/\`):
		return NewInvalidNameError(name, "name contains a path separator")
	case strings.ContainsRune(name, 0):
		return NewInvalidNameError(name, "name contains a NUL byte")
	case name == "." || name == "..":
		return NewInvalidNameError(name, "name refers to a directory")
	}
	return nil
}

// FileName returns the plugin file name for name on p.
func FileName(name string, p platform.Platform) (string, error) {
	if err := ValidateLogicalName(name); err != nil {
		return "", err
	}
	if !p.Valid() {
		return "", fmt.Errorf("%w: %s", platform.ErrUnknownPlatform, p)
	}
	return name + p.LibraryExtension(), nil
}

// DestinationPath returns where a plugin named name is published for p inside dir.
// It depends on its arguments only.
func DestinationPath(name string, p platform.Platform, dir string) (string, error) {
	fileName, err := FileName(name, p)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureFileDir creates every missing directory above filePath.
func EnsureFileDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), DirModeDefault)
}

// EnsureChildDir creates path if it is missing, but only when its parent already exists.
func EnsureChildDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}

	parent := filepath.Dir(filepath.Clean(path))
	parentInfo, err := os.Stat(parent)
	if err != nil {
		return fmt.Errorf("parent directory %s is not accessible: %w", parent, err)
	}
	if !parentInfo.IsDir() {
		return fmt.Errorf("parent %s is not a directory", parent)
	}

	if err := os.Mkdir(path, DirModeDefault); err != nil && !os.IsExist(err) {
		return err
	}
	return nil
}

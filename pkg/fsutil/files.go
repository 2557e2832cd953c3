package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrTempCreate reports that the directory of an atomic write does not accept
// new files. Nothing was written when it is returned.
var ErrTempCreate = fmt.Errorf("failed to create temporary file")

// CopyFileAtomic copies srcFile to dstFile through WriteFileAtomic and gives the
// destination the permission bits of the source.
// It returns the number of bytes copied.
func CopyFileAtomic(srcFile, dstFile string) (int64, error) {
	src, err := os.Open(srcFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", srcFile, err)
	}

	return WriteFileAtomic(dstFile, src, info.Mode().Perm())
}

// WriteFileAtomic writes everything read from r to a temporary file next to dst
// and renames it over dst once the data is synced to disk.
// On any failure the temporary file is removed and dst keeps whatever it held before.
func WriteFileAtomic(dst string, r io.Reader, perm os.FileMode) (int64, error) {
	if dst == "" {
		return 0, fmt.Errorf("destination path cannot be empty")
	}

	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, TempFilePrefix+filepath.Base(dst)+".*"+TempFileSuffix)
	if err != nil {
		return 0, fmt.Errorf("%w in %s: %w", ErrTempCreate, dir, err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}

	// CreateTemp uses 0600; chmod is not subject to the umask.
	if err := tmp.Chmod(perm & FileModeMask); err != nil {
		return n, fmt.Errorf("failed to set permissions on %s: %w", tmpPath, err)
	}

	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}

	// Close before rename so Windows releases the handle.
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return n, fmt.Errorf("failed to rename %s to %s: %w", tmpPath, dst, err)
	}
	committed = true

	return n, nil
}

// IsTempFile reports whether name looks like an in-flight file written by WriteFileAtomic.
func IsTempFile(name string) bool {
	base := filepath.Base(name)
	return len(base) > len(TempFilePrefix)+len(TempFileSuffix) &&
		base[:len(TempFilePrefix)] == TempFilePrefix &&
		filepath.Ext(base) == TempFileSuffix
}

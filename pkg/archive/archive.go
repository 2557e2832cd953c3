// Package archive packs the plugins of a plugin directory into a tar.gz bundle
// and installs bundles back into a plugin directory.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/plugpub/internal/logger"
	"github.com/glorpus-work/plugpub/pkg/fsutil"
	"github.com/glorpus-work/plugpub/pkg/platform"
	"github.com/glorpus-work/plugpub/pkg/publish"
	"github.com/mholt/archives"
)

// Extension is the file extension of plugin bundles.
const Extension = ".tar.gz"

// Entry describes a file stored in a bundle.
type Entry struct {
	Name string      `json:"name"`
	Size int64       `json:"size"`
	Mode fs.FileMode `json:"mode"`
}

// Manager handles bundle creation, listing and extraction.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// Create packs every plugin in pluginDir that a host on p would load into a
// tar.gz at archivePath. Entries are stored flat under their file names.
// The archive is written atomically; it returns the bundled plugins.
func (am *Manager) Create(ctx context.Context, pluginDir string, p platform.Platform, archivePath string) ([]publish.PluginFile, error) {
	plugins, err := publish.ListPlugins(pluginDir, p)
	if err != nil {
		return nil, err
	}
	if len(plugins) == 0 {
		return nil, fmt.Errorf("no %s plugins found in %s", p, pluginDir)
	}

	filenames := make(map[string]string, len(plugins))
	for _, plugin := range plugins {
		filenames[plugin.Path] = filepath.Base(plugin.Path)
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, filenames)
	if err != nil {
		return nil, fmt.Errorf("failed to read files from disk: %w", err)
	}

	if err := fsutil.EnsureFileDir(archivePath); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", archivePath, err)
	}

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(format.Archive(ctx, pw, archiveFiles))
	}()

	n, err := fsutil.WriteFileAtomic(archivePath, pr, fsutil.FileModeDefault)
	_ = pr.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to create archive %s: %w", archivePath, err)
	}

	logger.Debug("Created plugin bundle", logger.Fields{
		"archive": archivePath,
		"plugins": len(plugins),
		"bytes":   n,
	})
	return plugins, nil
}

// List returns the entries of the bundle at archivePath, sorted by name.
func (am *Manager) List(ctx context.Context, archivePath string) ([]Entry, error) {
	fsys, closeFS, err := openArchive(ctx, archivePath)
	if err != nil {
		return nil, err
	}
	defer closeFS()

	var entries []Entry
	err = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info for %s: %w", name, err)
		}
		entries = append(entries, Entry{Name: name, Size: info.Size(), Mode: info.Mode()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", archivePath, err)
	}
	return entries, nil
}

// Extract installs the plugins for p found at the top level of the bundle into
// destDir, replacing each destination file atomically. Other entries are skipped.
// It returns the file names written.
func (am *Manager) Extract(ctx context.Context, archivePath, destDir string, p platform.Platform) ([]string, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %s", platform.ErrUnknownPlatform, p)
	}
	if err := fsutil.EnsureChildDir(destDir); err != nil {
		return nil, publish.NewDestinationUnavailableError(destDir, err)
	}

	fsys, closeFS, err := openArchive(ctx, archivePath)
	if err != nil {
		return nil, err
	}
	defer closeFS()

	var written []string
	err = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name == "." {
			return nil
		}
		if d.IsDir() {
			return fs.SkipDir
		}
		if !d.Type().IsRegular() || strings.Contains(name, "/") || !publish.HasLibraryExtension(name, p) {
			logger.Debug("Skipping bundle entry", logger.Fields{"entry": name})
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := am.writeEntry(fsys, name, filepath.Join(destDir, name)); err != nil {
			return err
		}
		written = append(written, name)
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("failed to extract %s: %w", archivePath, err)
	}
	return written, nil
}

func (am *Manager) writeEntry(fsys fs.FS, name, targetPath string) error {
	src, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = src.Close() }()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file info for %s: %w", name, err)
	}

	if _, err := fsutil.WriteFileAtomic(targetPath, src, info.Mode().Perm()); err != nil {
		return publish.NewCopyError(name, targetPath, err)
	}
	return nil
}

func openArchive(ctx context.Context, archivePath string) (fs.FS, func(), error) {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive file %s: %w", archivePath, err)
	}
	closeFS := func() {}
	if closer, ok := fsys.(io.Closer); ok {
		closeFS = func() { _ = closer.Close() }
	}
	return fsys, closeFS, nil
}

//go:generate mockgen -destination=./mocks/publish.go . Copier

package publish

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/glorpus-work/plugpub/internal/logger"
	"github.com/glorpus-work/plugpub/pkg/fsutil"
)

// Copier copies a file so that dst is either untouched or fully written.
type Copier interface {
	CopyFileAtomic(src, dst string) (int64, error)
}

type fsCopier struct{}

func (fsCopier) CopyFileAtomic(src, dst string) (int64, error) {
	return fsutil.CopyFileAtomic(src, dst)
}

// Publisher publishes build artifacts into a plugin directory.
type Publisher struct {
	copier Copier
}

// NewPublisher returns a Publisher that copies through the local file system.
func NewPublisher() *Publisher {
	return &Publisher{copier: fsCopier{}}
}

// NewPublisherWithCopier returns a Publisher using c for the copy step.
func NewPublisherWithCopier(c Copier) *Publisher {
	return &Publisher{copier: c}
}

// Publish publishes artifact with a default Publisher.
func Publish(ctx context.Context, artifact BuildArtifact) (*PublishResult, error) {
	return NewPublisher().Publish(ctx, artifact)
}

// Publish copies artifact.SourcePath to its destination path, replacing any
// earlier plugin of the same name. The logical name is validated before any
// file system access. Concurrent publishes to the same path are last writer wins.
func (p *Publisher) Publish(ctx context.Context, artifact BuildArtifact) (*PublishResult, error) {
	destPath, err := DestinationPath(artifact.LogicalName, artifact.TargetPlatform, artifact.DestinationDir)
	if err != nil {
		return nil, err
	}

	if err := CheckSource(artifact.SourcePath); err != nil {
		return nil, err
	}

	if err := fsutil.EnsureChildDir(artifact.DestinationDir); err != nil {
		return nil, NewDestinationUnavailableError(artifact.DestinationDir, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("Publishing plugin", logger.Fields{
		"source":      artifact.SourcePath,
		"destination": destPath,
		"platform":    artifact.TargetPlatform.String(),
	})

	n, err := p.copier.CopyFileAtomic(artifact.SourcePath, destPath)
	switch {
	case errors.Is(err, fsutil.ErrTempCreate):
		// The directory exists but refuses new files, e.g. it is read-only.
		return nil, NewDestinationUnavailableError(artifact.DestinationDir, err)
	case err != nil:
		return nil, NewCopyError(artifact.SourcePath, destPath, err)
	}

	return &PublishResult{DestinationPath: destPath, BytesCopied: n}, nil
}

// CheckSource returns a NotFoundError unless path is an existing regular file.
func CheckSource(path string) error {
	if path == "" {
		return NewNotFoundError(path, fmt.Errorf("source path is empty"))
	}
	info, err := os.Stat(path)
	if err != nil {
		return NewNotFoundError(path, err)
	}
	if !info.Mode().IsRegular() {
		return NewNotFoundError(path, fmt.Errorf("not a regular file"))
	}
	return nil
}

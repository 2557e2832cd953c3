// Package publish places a freshly built plugin library into the host's plugin
// directory under the file name the host expects for the target platform.
package publish

import (
	"github.com/glorpus-work/plugpub/pkg/platform"
)

// BuildArtifact describes one publish request. It is built right before
// publishing and is not kept afterwards.
type BuildArtifact struct {
	// SourcePath is the shared library produced by the toolchain.
	SourcePath string
	// LogicalName is the module name the host loads, without extension.
	LogicalName string
	// TargetPlatform selects the file extension.
	TargetPlatform platform.Platform
	// DestinationDir is the host's plugin directory.
	DestinationDir string
}

// PublishResult is returned by a successful publish.
type PublishResult struct {
	DestinationPath string `json:"destination_path"`
	BytesCopied     int64  `json:"bytes_copied"`
}

// PluginFile is a plugin found in a plugin directory.
type PluginFile struct {
	LogicalName string `json:"logical_name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	SHA256      string `json:"sha256,omitempty"`
}

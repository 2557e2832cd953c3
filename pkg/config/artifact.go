package config

import (
	"github.com/glorpus-work/plugpub/pkg/errors"
	"github.com/glorpus-work/plugpub/pkg/platform"
	"github.com/glorpus-work/plugpub/pkg/publish"
)

// Overrides replace configured plugin values for a single publish.
// Paths given here are used as is, not resolved against the config directory.
type Overrides struct {
	Source         string
	LogicalName    string
	Platform       string
	DestinationDir string
}

// Artifact builds the publish request from the configuration and overrides.
func (c *Config) Artifact(o Overrides) (publish.BuildArtifact, error) {
	source := c.ResolvePath(c.Plugin.Source)
	if o.Source != "" {
		source = o.Source
	}
	if source == "" {
		return publish.BuildArtifact{}, errors.ErrSourceEmpty
	}

	name := c.Plugin.LogicalName
	if o.LogicalName != "" {
		name = o.LogicalName
	}

	dest, target, err := c.PluginDir(o)
	if err != nil {
		return publish.BuildArtifact{}, err
	}

	return publish.BuildArtifact{
		SourcePath:     source,
		LogicalName:    name,
		TargetPlatform: target,
		DestinationDir: dest,
	}, nil
}

// PluginDir returns the plugin directory and target platform after overrides.
func (c *Config) PluginDir(o Overrides) (string, platform.Platform, error) {
	dest := c.ResolvePath(c.Plugin.DestinationDir)
	if o.DestinationDir != "" {
		dest = o.DestinationDir
	}
	if dest == "" {
		return "", 0, errors.ErrDestinationEmpty
	}

	target, err := c.TargetPlatform()
	if o.Platform != "" {
		target, err = platform.Parse(o.Platform)
	}
	if err != nil {
		return "", 0, err
	}
	return dest, target, nil
}

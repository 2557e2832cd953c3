package config

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/plugpub/pkg/errors"
)

// Keys lists the configuration keys accepted by SetValue and GetValue.
func Keys() []string {
	return []string{
		"version",
		"plugin.logical_name",
		"plugin.source",
		"plugin.destination_dir",
		"plugin.platform",
		"exports",
		"hooks.post_publish",
		"settings.output_format",
		"settings.log_level",
	}
}

// SetValue sets a configuration value by key.
// exports takes a comma separated list. The result is validated before it is kept.
func (c *Config) SetValue(key, value string) error {
	updated := *c
	switch key {
	case "version":
		updated.Version = value
	case "plugin.logical_name":
		updated.Plugin.LogicalName = value
	case "plugin.source":
		updated.Plugin.Source = value
	case "plugin.destination_dir":
		updated.Plugin.DestinationDir = value
	case "plugin.platform":
		updated.Plugin.Platform = value
	case "exports":
		updated.Exports = splitList(value)
	case "hooks.post_publish":
		updated.Hooks.PostPublish = value
	case "settings.output_format":
		updated.Settings.OutputFormat = value
	case "settings.log_level":
		updated.Settings.LogLevel = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	if err := updated.Validate(); err != nil {
		return errors.Wrapf(err, "invalid value for %s", key)
	}
	*c = updated
	return nil
}

// GetValue returns the value for key as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "version":
		return c.Version, nil
	case "plugin.logical_name":
		return c.Plugin.LogicalName, nil
	case "plugin.source":
		return c.Plugin.Source, nil
	case "plugin.destination_dir":
		return c.Plugin.DestinationDir, nil
	case "plugin.platform":
		return c.Plugin.Platform, nil
	case "exports":
		return strings.Join(c.Exports, ","), nil
	case "hooks.post_publish":
		return c.Hooks.PostPublish, nil
	case "settings.output_format":
		return c.Settings.OutputFormat, nil
	case "settings.log_level":
		return c.Settings.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// ToMap returns every key with its current value, for display.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(Keys()))
	for _, key := range Keys() {
		value, _ := c.GetValue(key)
		result[key] = value
	}
	return result
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

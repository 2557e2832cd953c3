// Package config provides the build configuration for plugpub.
// A configuration names the plugin to publish, where the toolchain leaves it,
// the plugin directory of the host, the export symbols the host binds to and
// optional hook scripts. It is loaded from a YAML file and is not changed
// once a publish starts.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/plugpub/pkg/errors"
	"github.com/glorpus-work/plugpub/pkg/fsutil"
	"github.com/glorpus-work/plugpub/pkg/platform"
	"github.com/glorpus-work/plugpub/pkg/publish"
	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// Version is the schema version of the file.
	Version string `yaml:"version"`

	// Plugin describes the artifact to publish.
	Plugin PluginConfig `yaml:"plugin"`

	// Exports lists the C-callable symbols the host binds to. A missing key
	// means DefaultExports; an empty list turns export checks off, and is
	// written back as [] so that survives a save.
	Exports []string `yaml:"exports"`

	// Hooks holds optional scripts run around a publish.
	Hooks HooksConfig `yaml:"hooks,omitempty"`

	// General settings
	Settings Settings `yaml:"settings"`

	// baseDir anchors relative paths; it is the directory of the loaded file.
	baseDir string
}

// PluginConfig describes where the plugin comes from and where it goes.
type PluginConfig struct {
	LogicalName    string `yaml:"logical_name"`
	Source         string `yaml:"source,omitempty"`
	DestinationDir string `yaml:"destination_dir"`
	// Platform is "windows" or "posix". Empty means the platform plugpub runs on.
	Platform string `yaml:"platform,omitempty"`
}

// HooksConfig holds hook script paths.
type HooksConfig struct {
	PostPublish string `yaml:"post_publish,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

// Default configuration values.
const (
	// SchemaVersion is written into new configuration files.
	SchemaVersion = "1.0"

	// SchemaConstraint is the range of schema versions this build reads.
	SchemaConstraint = ">= 1.0, < 2.0"

	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "plugpub.yaml"

	// DefaultLogicalName is the module name the simulation host loads.
	DefaultLogicalName = "robotpy_sim_core"

	// DefaultDestinationDir is the host's plugin directory next to the build workspace.
	DefaultDestinationDir = "../Plugins"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultExports returns the entry points the simulation host binds to.
func DefaultExports() []string {
	return []string{
		"load_robot",
		"finalize_python",
		"robot_step",
		"set_logging_function",
		"set_robot_mode",
		"get_pwm_value",
		"set_joystick_axis",
		"set_joystick_button",
	}
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: SchemaVersion,
		Plugin: PluginConfig{
			LogicalName:    DefaultLogicalName,
			DestinationDir: DefaultDestinationDir,
		},
		Exports: DefaultExports(),
		Settings: Settings{
			OutputFormat: "text",
			LogLevel:     "info",
		},
		baseDir: ".",
	}
}

// LoadConfig loads configuration from a file.
// A missing file yields the defaults, anchored at the file's directory.
func LoadConfig(path string) (*Config, error) {
	absPath, err := absConfigPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.baseDir = filepath.Dir(absPath)
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	cfg, err := LoadConfigFromReader(file)
	if err != nil {
		return nil, err
	}
	cfg.baseDir = filepath.Dir(absPath)
	return cfg, nil
}

func absConfigPath(path string) (string, error) {
	if path == "" {
		return "", errors.ErrEmptyConfigPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}
	return abs, nil
}

// LoadConfigFromReader loads configuration from an io.Reader.
// Relative paths are resolved against the working directory.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = SchemaVersion
	}
	if c.Plugin.DestinationDir == "" {
		c.Plugin.DestinationDir = DefaultDestinationDir
	}
	if c.Exports == nil {
		c.Exports = DefaultExports()
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = "text"
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = "info"
	}
	if c.baseDir == "" {
		c.baseDir = "."
	}
}

// SaveConfig saves configuration to a file, replacing it atomically.
func (c *Config) SaveConfig(path string) error {
	absPath, err := absConfigPath(path)
	if err != nil {
		return err
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := encoder.Close(); err != nil {
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	if _, err := fsutil.WriteFileAtomic(absPath, &buf, fsutil.FileModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
// Source may be left empty here; it can still come from the command line.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateVersion(c.Version); err != nil {
		return err
	}
	if err := validatePlugin(c.Plugin); err != nil {
		return err
	}
	if err := validateExports(c.Exports); err != nil {
		return err
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	return nil
}

func validateVersion(v string) error {
	parsed, err := version.NewVersion(v)
	if err != nil {
		return errors.ErrInvalidSchemaVersionWithDetails(v, SchemaConstraint)
	}
	constraint, err := version.NewConstraint(SchemaConstraint)
	if err != nil {
		return errors.Wrap(err, "invalid schema constraint")
	}
	if !constraint.Check(parsed) {
		return errors.ErrInvalidSchemaVersionWithDetails(v, SchemaConstraint)
	}
	return nil
}

func validatePlugin(p PluginConfig) error {
	if p.LogicalName == "" {
		return errors.ErrLogicalNameEmpty
	}
	if err := publish.ValidateLogicalName(p.LogicalName); err != nil {
		return err
	}
	if p.DestinationDir == "" {
		return errors.ErrDestinationEmpty
	}
	if p.Platform != "" {
		if _, err := platform.Parse(p.Platform); err != nil {
			return err
		}
	}
	return nil
}

func validateExports(exports []string) error {
	seen := make(map[string]bool, len(exports))
	for _, name := range exports {
		if strings.TrimSpace(name) == "" {
			return errors.Wrap(errors.ErrConfigValidation, "export symbol cannot be empty")
		}
		if seen[name] {
			return errors.ErrDuplicateExportWithName(name)
		}
		seen[name] = true
	}
	return nil
}

func validateSettings(s Settings) error {
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns DefaultConfigFile in the working directory.
func GetDefaultConfigPath() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get working directory")
	}
	return filepath.Join(wd, DefaultConfigFile), nil
}

// BaseDir returns the directory relative paths in the configuration are resolved against.
func (c *Config) BaseDir() string {
	if c.baseDir == "" {
		return "."
	}
	return c.baseDir
}

// ResolvePath anchors a relative path at BaseDir. Absolute and empty paths are returned as is.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BaseDir(), path)
}

// TargetPlatform returns the configured platform, or the running one when unset.
func (c *Config) TargetPlatform() (platform.Platform, error) {
	if c.Plugin.Platform == "" {
		return platform.Current(), nil
	}
	return platform.Parse(c.Plugin.Platform)
}

// HookScript returns the resolved post-publish hook path, or "" when none is set.
func (c *Config) HookScript() string {
	return c.ResolvePath(c.Hooks.PostPublish)
}

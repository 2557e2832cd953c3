package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/plugpub/pkg/errors"
	"github.com/glorpus-work/plugpub/pkg/fsutil"
	"github.com/glorpus-work/plugpub/pkg/platform"
	"github.com/glorpus-work/plugpub/pkg/publish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, SchemaVersion, cfg.Version)
	assert.Equal(t, "robotpy_sim_core", cfg.Plugin.LogicalName)
	assert.Equal(t, "../Plugins", cfg.Plugin.DestinationDir)
	assert.Equal(t, DefaultExports(), cfg.Exports)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "plugpub.yaml")

	configContent := `version: "1.2"
plugin:
  logical_name: robotpy_sim_core
  source: build/lib/robotpy_sim_core.so
  destination_dir: ../Plugins
  platform: windows
exports:
  - load_robot
  - robot_step
hooks:
  post_publish: scripts/notify.tengo
settings:
  log_level: debug
  output_format: json`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "1.2", cfg.Version)
	assert.Equal(t, "robotpy_sim_core", cfg.Plugin.LogicalName)
	assert.Equal(t, []string{"load_robot", "robot_step"}, cfg.Exports)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, "json", cfg.Settings.OutputFormat)

	absDir, err := filepath.Abs(tempDir)
	require.NoError(t, err)
	assert.Equal(t, absDir, cfg.BaseDir())
	assert.Equal(t, filepath.Join(absDir, "scripts", "notify.tengo"), cfg.HookScript())

	target, err := cfg.TargetPlatform()
	require.NoError(t, err)
	assert.Equal(t, platform.Windows, target)
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	tempDir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(tempDir, "plugpub.yaml"))
	require.NoError(t, err)

	absDir, err := filepath.Abs(tempDir)
	require.NoError(t, err)
	assert.Equal(t, absDir, cfg.BaseDir())
	assert.Equal(t, DefaultLogicalName, cfg.Plugin.LogicalName)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestLoadConfigFromReader_AppliesDefaults(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader("plugin:\n  logical_name: sim\n"))
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, cfg.Version)
	assert.Equal(t, DefaultDestinationDir, cfg.Plugin.DestinationDir)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	assert.Equal(t, DefaultExports(), cfg.Exports)
	assert.Equal(t, ".", cfg.BaseDir())
}

func TestLoadConfigFromReader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sentinel error
		errMsg   string
	}{
		{
			name:     "malformed yaml",
			content:  "plugin: [unclosed",
			sentinel: errors.ErrConfigParse,
		},
		{
			name:     "future schema",
			content:  "version: \"2.0\"\nplugin:\n  logical_name: sim\n",
			sentinel: errors.ErrConfigValidation,
			errMsg:   "unsupported config schema version",
		},
		{
			name:     "bad logical name",
			content:  "plugin:\n  logical_name: bad/name\n",
			sentinel: errors.ErrConfigValidation,
			errMsg:   "invalid logical name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Plugin.Platform = "posix"
	cfg.Plugin.Source = "build/robotpy_sim_core.so"

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "plugpub.yaml")

	err := cfg.SaveConfig(configPath)
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logical_name: robotpy_sim_core")

	loadedCfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", loadedCfg.Settings.LogLevel)
	assert.Equal(t, "posix", loadedCfg.Plugin.Platform)
	assert.Equal(t, cfg.Exports, loadedCfg.Exports)

	entries, err := os.ReadDir(filepath.Dir(configPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files may be left behind")
}

func TestSaveConfig_EmptyExportsSurvive(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "plugpub.yaml")

	cfg, err := LoadConfigFromReader(strings.NewReader("version: \"1.0\"\nplugin:\n  logical_name: robotpy_sim_core\nexports: []\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Exports)
	assert.Empty(t, cfg.Exports)

	// Changing an unrelated key rewrites the whole file.
	require.NoError(t, cfg.SetValue("settings.log_level", "debug"))
	require.NoError(t, cfg.SaveConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "exports: []")

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Settings.LogLevel)
	assert.NotNil(t, loaded.Exports)
	assert.Empty(t, loaded.Exports)

	// Clearing the list through SetValue survives a reload too.
	loaded.Exports = DefaultExports()
	require.NoError(t, loaded.SetValue("exports", ""))
	require.NoError(t, loaded.SaveConfig(configPath))

	reloaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.Exports)
	assert.Empty(t, reloaded.Exports)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "invalid platform",
			mutate:  func(c *Config) { c.Plugin.Platform = "amiga" },
			wantErr: true,
			errMsg:  "unknown target platform",
		},
		{
			name:    "unparseable version",
			mutate:  func(c *Config) { c.Version = "one" },
			wantErr: true,
			errMsg:  "unsupported config schema version",
		},
		{
			name:    "too old version",
			mutate:  func(c *Config) { c.Version = "0.9" },
			wantErr: true,
			errMsg:  "unsupported config schema version",
		},
		{
			name:    "empty logical name",
			mutate:  func(c *Config) { c.Plugin.LogicalName = "" },
			wantErr: true,
			errMsg:  "logical_name cannot be empty",
		},
		{
			name:    "empty destination",
			mutate:  func(c *Config) { c.Plugin.DestinationDir = "" },
			wantErr: true,
			errMsg:  "destination_dir cannot be empty",
		},
		{
			name:    "duplicate export",
			mutate:  func(c *Config) { c.Exports = []string{"robot_step", "robot_step"} },
			wantErr: true,
			errMsg:  "duplicate export symbol",
		},
		{
			name:    "blank export",
			mutate:  func(c *Config) { c.Exports = []string{" "} },
			wantErr: true,
			errMsg:  "export symbol cannot be empty",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Settings.LogLevel = "trace" },
			wantErr: true,
			errMsg:  "invalid log level",
		},
		{
			name:    "invalid output format",
			mutate:  func(c *Config) { c.Settings.OutputFormat = "xml" },
			wantErr: true,
			errMsg:  "invalid output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestArtifact(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "workspace", "plugpub.yaml"))
	require.NoError(t, err)
	cfg.Plugin.Source = "build/robotpy_sim_core.so"
	cfg.Plugin.Platform = "posix"

	artifact, err := cfg.Artifact(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.BaseDir(), "build", "robotpy_sim_core.so"), artifact.SourcePath)
	assert.Equal(t, "robotpy_sim_core", artifact.LogicalName)
	assert.Equal(t, platform.POSIX, artifact.TargetPlatform)
	assert.Equal(t, filepath.Join(cfg.BaseDir(), "..", "Plugins"), artifact.DestinationDir)

	dest, err := publish.DestinationPath(artifact.LogicalName, artifact.TargetPlatform, artifact.DestinationDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(cfg.BaseDir()), "Plugins", "robotpy_sim_core.so"), dest)
}

func TestArtifact_Overrides(t *testing.T) {
	cfg := DefaultConfig()

	artifact, err := cfg.Artifact(Overrides{
		Source:         "out/lib.dll",
		LogicalName:    "custom",
		Platform:       "windows",
		DestinationDir: "dist",
	})
	require.NoError(t, err)
	assert.Equal(t, publish.BuildArtifact{
		SourcePath:     "out/lib.dll",
		LogicalName:    "custom",
		TargetPlatform: platform.Windows,
		DestinationDir: "dist",
	}, artifact)
}

func TestArtifact_Errors(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Artifact(Overrides{})
	assert.ErrorIs(t, err, errors.ErrSourceEmpty)

	_, err = cfg.Artifact(Overrides{Source: "lib.so", Platform: "beos"})
	assert.ErrorIs(t, err, platform.ErrUnknownPlatform)
}

func TestPluginDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.baseDir = filepath.FromSlash("/work/sim")
	cfg.Plugin.Platform = "windows"

	dir, target, err := cfg.PluginDir(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/work/Plugins"), dir)
	assert.Equal(t, platform.Windows, target)

	dir, target, err = cfg.PluginDir(Overrides{DestinationDir: "dist", Platform: "linux"})
	require.NoError(t, err)
	assert.Equal(t, "dist", dir)
	assert.Equal(t, platform.POSIX, target)

	cfg.Plugin.DestinationDir = ""
	_, _, err = cfg.PluginDir(Overrides{})
	assert.ErrorIs(t, err, errors.ErrDestinationEmpty)
}

func TestTargetPlatform_DefaultsToRunningOS(t *testing.T) {
	cfg := DefaultConfig()
	target, err := cfg.TargetPlatform()
	require.NoError(t, err)
	assert.Equal(t, platform.Current(), target)
}

func TestResolvePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.baseDir = filepath.FromSlash("/work/sim")

	assert.Equal(t, "", cfg.ResolvePath(""))
	assert.Equal(t, filepath.Join(cfg.baseDir, "build"), cfg.ResolvePath("build"))

	abs, err := filepath.Abs("elsewhere")
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.ResolvePath(abs))
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigFile, filepath.Base(path))
	assert.True(t, filepath.IsAbs(path))
}

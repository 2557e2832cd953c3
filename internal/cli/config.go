package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/glorpus-work/plugpub/internal/logger"
	"github.com/glorpus-work/plugpub/pkg/config"
	"github.com/glorpus-work/plugpub/pkg/errors"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the build configuration",
		Long: `Inspect and edit plugpub.yaml. Keys use dotted names, for example
plugin.destination_dir or hooks.post_publish.`,
	}

	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigShowCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force bool
		seed  = map[string]*string{}
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := map[string]string{}
			for key, v := range seed {
				if *v != "" {
					values[key] = *v
				}
			}
			return runConfigInit(cmd.OutOrStdout(), force, values)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	seed["plugin.logical_name"] = cmd.Flags().String("name", "", "Logical module name")
	seed["plugin.source"] = cmd.Flags().String("source", "", "Build output to publish")
	seed["plugin.destination_dir"] = cmd.Flags().String("dest", "", "Plugin directory")
	seed["plugin.platform"] = cmd.Flags().String("platform", "", "Target platform: windows or posix")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.OutOrStdout(), asYAML)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the configuration as YAML")

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get KEY",
		Short:     "Print one configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			value, err := cfg.GetValue(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one configuration value",
		Long: `Change one configuration value and save the file. The whole configuration
is validated first, so an invalid value leaves the file untouched.
exports takes a comma separated list.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func runConfigInit(out io.Writer, force bool, values map[string]string) error {
	path := getConfigPath()

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s (use --force to overwrite): %w", path, errors.ErrConfigFileExists)
	}

	cfg := config.DefaultConfig()
	for _, key := range config.Keys() {
		if value, ok := values[key]; ok {
			if err := cfg.SetValue(key, value); err != nil {
				return err
			}
		}
	}
	if err := cfg.SaveConfig(path); err != nil {
		return err
	}

	logger.Debug("Configuration file created", logger.Fields{"path": path})
	_, _ = fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

func runConfigShow(out io.Writer, asYAML bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	settings := cfg.ToMap()
	switch {
	case asYAML:
		data, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case jsonOutput(cfg):
		return writeJSON(out, settings)
	}

	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEY\tVALUE")
	for _, key := range config.Keys() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", key, settings[key])
	}
	return tw.Flush()
}

func runConfigSet(out io.Writer, key, value string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.SetValue(key, value); err != nil {
		return err
	}
	path := getConfigPath()
	if err := cfg.SaveConfig(path); err != nil {
		return err
	}

	stored, err := cfg.GetValue(key)
	if err != nil {
		return err
	}
	logger.Debug("Configuration updated", logger.Fields{"path": path, "key": key})
	_, _ = fmt.Fprintf(out, "%s = %s\n", key, stored)
	return nil
}

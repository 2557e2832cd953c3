package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/glorpus-work/plugpub/internal/logger"
	"github.com/glorpus-work/plugpub/pkg/archive"
	"github.com/glorpus-work/plugpub/pkg/config"
	"github.com/spf13/cobra"
)

// NewBundleCmd creates the bundle command with subcommands.
func NewBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Pack and unpack plugin bundles",
		Long:  "Pack the plugins of the plugin directory into a tar.gz bundle, inspect bundles and install them",
	}

	cmd.AddCommand(
		newBundleCreateCmd(),
		newBundleListCmd(),
		newBundleExtractCmd(),
	)

	return cmd
}

func newBundleCreateCmd() *cobra.Command {
	var dest, platformName string

	cmd := &cobra.Command{
		Use:   "create [ARCHIVE]",
		Short: "Pack the plugin directory into a bundle",
		Long:  "Pack every plugin with the platform's extension into ARCHIVE (default " + DefaultBundleName + ")",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath := DefaultBundleName
			if len(args) == 1 {
				archivePath = args[0]
			}
			return runBundleCreate(cmd.Context(), cmd.OutOrStdout(), archivePath, dest, platformName)
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "Plugin directory (defaults to plugin.destination_dir)")
	cmd.Flags().StringVar(&platformName, "platform", "", "Platform whose plugins to pack (windows or posix)")

	return cmd
}

func newBundleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list ARCHIVE",
		Short: "List the entries of a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundleList(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func newBundleExtractCmd() *cobra.Command {
	var dest, platformName string

	cmd := &cobra.Command{
		Use:   "extract ARCHIVE",
		Short: "Install the plugins of a bundle into the plugin directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundleExtract(cmd.Context(), cmd.OutOrStdout(), args[0], dest, platformName)
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "Plugin directory (defaults to plugin.destination_dir)")
	cmd.Flags().StringVar(&platformName, "platform", "", "Platform whose plugins to install (windows or posix)")

	return cmd
}

func runBundleCreate(ctx context.Context, out io.Writer, archivePath, dest, platformName string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, target, err := cfg.PluginDir(config.Overrides{Platform: platformName, DestinationDir: dest})
	if err != nil {
		return err
	}

	plugins, err := archive.NewManager().Create(ctx, dir, target, archivePath)
	if err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}

	logger.Success("Bundle created", logger.Fields{"archive": archivePath, "plugins": len(plugins)})
	if jsonOutput(cfg) {
		return writeJSON(out, plugins)
	}
	_, _ = fmt.Fprintf(out, "Bundled %d plugin(s) into %s\n", len(plugins), archivePath)
	return nil
}

func runBundleList(ctx context.Context, out io.Writer, archivePath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entries, err := archive.NewManager().List(ctx, archivePath)
	if err != nil {
		return err
	}

	if jsonOutput(cfg) {
		if entries == nil {
			entries = []archive.Entry{}
		}
		return writeJSON(out, entries)
	}

	tabWriter := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "ENTRY\tSIZE\tMODE")
	_, _ = fmt.Fprintln(tabWriter, "-----\t----\t----")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tabWriter, "%s\t%d\t%s\n", e.Name, e.Size, e.Mode)
	}
	return tabWriter.Flush()
}

func runBundleExtract(ctx context.Context, out io.Writer, archivePath, dest, platformName string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, target, err := cfg.PluginDir(config.Overrides{Platform: platformName, DestinationDir: dest})
	if err != nil {
		return err
	}

	written, err := archive.NewManager().Extract(ctx, archivePath, dir, target)
	if err != nil {
		return err
	}

	logger.Success("Bundle extracted", logger.Fields{"archive": archivePath, "plugins": len(written), "dest": dir})
	if jsonOutput(cfg) {
		if written == nil {
			written = []string{}
		}
		return writeJSON(out, written)
	}
	_, _ = fmt.Fprintf(out, "Installed %d plugin(s) into %s\n", len(written), dir)
	return nil
}

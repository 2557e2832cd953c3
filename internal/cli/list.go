package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/glorpus-work/plugpub/pkg/config"
	"github.com/glorpus-work/plugpub/pkg/fsutil"
	"github.com/glorpus-work/plugpub/pkg/publish"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var (
		dest         string
		platformName string
		checksum     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plugins in the plugin directory",
		Long: `List the plugins the host will load at startup: every file in the plugin
directory carrying the platform's library extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.OutOrStdout(), dest, platformName, checksum)
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "Plugin directory (defaults to plugin.destination_dir)")
	cmd.Flags().StringVar(&platformName, "platform", "", "Platform whose extension to match (windows or posix)")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "Show the SHA-256 of each plugin")

	return cmd
}

func runList(out io.Writer, dest, platformName string, checksum bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir, target, err := cfg.PluginDir(config.Overrides{Platform: platformName, DestinationDir: dest})
	if err != nil {
		return err
	}

	plugins, err := publish.ListPlugins(dir, target)
	if err != nil {
		return fmt.Errorf("failed to list plugins: %w", err)
	}
	if checksum {
		if err := fillChecksums(plugins); err != nil {
			return err
		}
	}

	if jsonOutput(cfg) {
		if plugins == nil {
			plugins = []publish.PluginFile{}
		}
		return writeJSON(out, plugins)
	}

	if len(plugins) == 0 {
		_, _ = fmt.Fprintf(out, "No %s plugins in %s\n", target, dir)
		return nil
	}

	tabWriter := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	if checksum {
		_, _ = fmt.Fprintln(tabWriter, "NAME\tSIZE\tSHA256\tPATH")
		_, _ = fmt.Fprintln(tabWriter, "----\t----\t------\t----")
	} else {
		_, _ = fmt.Fprintln(tabWriter, "NAME\tSIZE\tPATH")
		_, _ = fmt.Fprintln(tabWriter, "----\t----\t----")
	}
	for _, p := range plugins {
		if checksum {
			_, _ = fmt.Fprintf(tabWriter, "%s\t%d\t%s\t%s\n", p.LogicalName, p.Size, p.SHA256, p.Path)
			continue
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%d\t%s\n", p.LogicalName, p.Size, p.Path)
	}
	return tabWriter.Flush()
}

func fillChecksums(plugins []publish.PluginFile) error {
	var g errgroup.Group
	g.SetLimit(ChecksumWorkers)
	for i := range plugins {
		g.Go(func() error {
			sum, err := fsutil.FileSHA256(plugins[i].Path)
			plugins[i].SHA256 = sum
			return err
		})
	}
	return g.Wait()
}

package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/glorpus-work/plugpub/internal/logger"
	"github.com/glorpus-work/plugpub/pkg/watch"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	var (
		flags    publishFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [SOURCE]",
		Short: "Republish the plugin every time it is rebuilt",
		Long: `Publish the plugin once, then watch SOURCE and publish again after each
rebuild settles. Failed publishes are reported and watching continues.
Stop with Ctrl+C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			return runWatch(cmd.Context(), cmd.OutOrStdout(), source, flags, debounce)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Logical module name (defaults to plugin.logical_name)")
	cmd.Flags().StringVar(&flags.platform, "platform", "", "Target platform: windows or posix")
	cmd.Flags().StringVar(&flags.dest, "dest", "", "Plugin directory (defaults to plugin.destination_dir)")
	cmd.Flags().BoolVar(&flags.verifyExports, "verify-exports", false, "Check the configured exports before each publish")
	cmd.Flags().BoolVar(&flags.noHooks, "no-hooks", false, "Skip the post-publish hook")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period after the last write before publishing")

	return cmd
}

func runWatch(ctx context.Context, out io.Writer, source string, flags publishFlags, debounce time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	job, err := preparePublish(source, flags)
	if err != nil {
		return err
	}

	w, err := watch.New(job.artifact.SourcePath, debounce)
	if err != nil {
		return err
	}

	if _, err := os.Stat(job.artifact.SourcePath); err == nil {
		if err := job.run(ctx, out); err != nil {
			logger.Error("Initial publish failed", logger.Fields{"error": err.Error()})
		}
	}

	logger.Info("Watching for rebuilds", logger.Fields{"source": w.Path()})
	return w.Run(ctx, func(ctx context.Context) error {
		return job.run(ctx, out)
	})
}

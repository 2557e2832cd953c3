package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/glorpus-work/plugpub/internal/logger"
	"github.com/glorpus-work/plugpub/pkg/config"
	"github.com/glorpus-work/plugpub/pkg/hooks"
	"github.com/glorpus-work/plugpub/pkg/orchestrator"
	"github.com/glorpus-work/plugpub/pkg/publish"
	"github.com/glorpus-work/plugpub/pkg/symbols"
	"github.com/spf13/cobra"
)

type publishFlags struct {
	name          string
	platform      string
	dest          string
	verifyExports bool
	noHooks       bool
	dryRun        bool
}

// NewPublishCmd creates the publish command.
func NewPublishCmd() *cobra.Command {
	var flags publishFlags

	cmd := &cobra.Command{
		Use:   "publish [SOURCE]",
		Short: "Publish a built plugin into the plugin directory",
		Long: `Copy a freshly built shared library into the host's plugin directory
under the file name the host expects (<name>.dll on Windows, <name>.so elsewhere).
The previous plugin is replaced atomically. SOURCE defaults to plugin.source from
the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			return runPublish(cmd.Context(), cmd.OutOrStdout(), source, flags)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Logical module name (defaults to plugin.logical_name)")
	cmd.Flags().StringVar(&flags.platform, "platform", "", "Target platform: windows or posix (defaults to config, then the running OS)")
	cmd.Flags().StringVar(&flags.dest, "dest", "", "Plugin directory (defaults to plugin.destination_dir)")
	cmd.Flags().BoolVar(&flags.verifyExports, "verify-exports", false, "Check the configured exports before publishing")
	cmd.Flags().BoolVar(&flags.noHooks, "no-hooks", false, "Skip the post-publish hook")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the destination without copying")

	return cmd
}

type publishJob struct {
	cfg      *config.Config
	orch     *orchestrator.Orchestrator
	artifact publish.BuildArtifact
	opts     orchestrator.PublishOptions
}

// preparePublish loads the configuration and builds the orchestrated publish
// described by source and flags.
func preparePublish(source string, flags publishFlags) (*publishJob, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	artifact, err := cfg.Artifact(config.Overrides{
		Source:         source,
		LogicalName:    flags.name,
		Platform:       flags.platform,
		DestinationDir: flags.dest,
	})
	if err != nil {
		return nil, err
	}

	opts := orchestrator.PublishOptions{
		VerifyExports: flags.verifyExports,
		Exports:       cfg.Exports,
		DryRun:        flags.dryRun,
	}
	if !flags.noHooks {
		opts.HookScript = cfg.HookScript()
	}

	orch := &orchestrator.Orchestrator{
		Verifier:  symbols.NewVerifier(),
		Publisher: publish.NewPublisher(),
		Hooks:     hooks.NewHookExecutor(),
		Events: orchestrator.Events{OnEvent: func(e orchestrator.Event) {
			logger.Debug(e.Msg, logger.Fields{"phase": e.Phase})
		}},
	}

	return &publishJob{cfg: cfg, orch: orch, artifact: artifact, opts: opts}, nil
}

func (j *publishJob) run(ctx context.Context, out io.Writer) error {
	res, err := j.orch.Publish(ctx, j.artifact, j.opts)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", j.artifact.LogicalName, err)
	}

	if jsonOutput(j.cfg) {
		return writeJSON(out, res)
	}
	if j.opts.DryRun {
		_, _ = fmt.Fprintf(out, "Would publish %s to %s\n", j.artifact.SourcePath, res.DestinationPath)
		return nil
	}
	logger.Success("Plugin published", logger.Fields{
		"plugin":      j.artifact.LogicalName,
		"destination": res.DestinationPath,
		"bytes":       res.BytesCopied,
	})
	_, _ = fmt.Fprintf(out, "Published %s (%d bytes)\n", res.DestinationPath, res.BytesCopied)
	return nil
}

func runPublish(ctx context.Context, out io.Writer, source string, flags publishFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	job, err := preparePublish(source, flags)
	if err != nil {
		return err
	}
	return job.run(ctx, out)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/plugpub/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	verbose      bool
	outputFormat string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugpub",
		Short: "Publish built native plugins into a simulation host's plugin directory",
		Long: `plugpub places a freshly built shared library into the plugin directory a
simulation host scans at startup, under the file name the host expects:
- publish: atomic copy to <name>.dll on Windows or <name>.so elsewhere
- verify: check the library exports the entry points the host binds to
- list, bundle: inspect and ship the plugin directory`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ./plugpub.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.OutputFormat = &outputFormat

	// Add subcommands
	cmd.AddCommand(
		cli.NewPublishCmd(),
		cli.NewVerifyCmd(),
		cli.NewListCmd(),
		cli.NewBundleCmd(),
		cli.NewConfigCmd(),
		cli.NewWatchCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}

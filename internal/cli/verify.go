package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/glorpus-work/plugpub/internal/logger"
	"github.com/glorpus-work/plugpub/pkg/errors"
	"github.com/glorpus-work/plugpub/pkg/symbols"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	var exports []string

	cmd := &cobra.Command{
		Use:   "verify [LIBRARY]",
		Short: "Check that a library exports the symbols the host binds to",
		Long: `Read the exported symbols of an ELF, PE or Mach-O library and check that
every configured export is present. LIBRARY defaults to plugin.source.
An empty exports list in the configuration turns the check off.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			library := ""
			if len(args) == 1 {
				library = args[0]
			}
			return runVerify(cmd.OutOrStdout(), library, exports)
		},
	}

	cmd.Flags().StringSliceVar(&exports, "exports", nil, "Required exports (defaults to the configured list)")

	return cmd
}

type verifyReport struct {
	Library  string   `json:"library"`
	Format   string   `json:"format"`
	Required []string `json:"required"`
	Missing  []string `json:"missing"`
	OK       bool     `json:"ok"`
}

func runVerify(out io.Writer, library string, exports []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if library == "" {
		library = cfg.ResolvePath(cfg.Plugin.Source)
	}
	if library == "" {
		return fmt.Errorf("no library given and plugin.source is not configured: %w", errors.ErrValidation)
	}
	if len(exports) == 0 {
		exports = cfg.Exports
	}

	format, err := symbols.Detect(library)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", library, err)
	}

	report := verifyReport{Library: library, Format: string(format), Required: exports, OK: true}
	verr := symbols.Verify(library, exports)
	var missing *symbols.MissingExportsError
	switch {
	case verr == nil:
	case errors.As(verr, &missing):
		report.OK = false
		report.Missing = missing.Missing
	default:
		return verr
	}

	if jsonOutput(cfg) {
		if err := writeJSON(out, report); err != nil {
			return err
		}
		return verr
	}

	if len(exports) == 0 {
		logger.Warn("No exports configured", logger.Fields{"library": library})
		_, _ = fmt.Fprintf(out, "%s (%s): no exports configured, nothing to check\n", library, format)
		return nil
	}
	if report.OK {
		logger.Success("All exports present", logger.Fields{"library": library, "count": len(exports)})
		_, _ = fmt.Fprintf(out, "%s (%s): all %d exports present\n", library, format, len(exports))
		return nil
	}
	_, _ = fmt.Fprintf(out, "%s (%s): missing %s\n", library, format, strings.Join(report.Missing, ", "))
	return verr
}

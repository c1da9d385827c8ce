package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reoring/wirejson/internal/diag"
)

func newCheckCommand(logger *slog.Logger) *cobra.Command {
	var config SourceConfig

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a schema and list its diagnostics without generating code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Check(&config, logger, cmd.OutOrStdout())
		},
	}
	addSourceFlags(cmd, &config)
	return cmd
}

// Check resolves the configured schema and prints every diagnostic. It fails
// when the schema has errors.
func Check(config *SourceConfig, logger *slog.Logger, out io.Writer) error {
	fc, err := readConfigFile(config.ConfigPath)
	if err != nil {
		return err
	}
	config.merge(fc)

	set, diags, err := resolveSource(config, logger)
	if diags == nil {
		return err
	}
	printDiagnostics(out, diags)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "ok: %d types, %d families, %d warnings\n", len(set.Types), len(set.Families), len(diags.Warnings))
	return nil
}

func printDiagnostics(out io.Writer, d *diag.Diagnostics) {
	for _, list := range [][]diag.Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, x := range list {
			fmt.Fprintf(out, "%s: %s\n", x.Severity, x)
		}
	}
}

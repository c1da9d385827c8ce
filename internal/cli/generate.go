package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reoring/wirejson/internal/diag"
	"github.com/reoring/wirejson/internal/gen"
	"github.com/reoring/wirejson/internal/ir"
	"github.com/reoring/wirejson/internal/resolve"
)

// GenerateConfig holds configuration for code generation.
type GenerateConfig struct {
	SourceConfig
	// OutputDir receives the generated file; "-" writes to stdout. Defaults
	// to the source directory, or the working directory for schema files.
	OutputDir      string
	Filename       string
	FailOnWarnings bool
}

func newGenerateCommand(logger *slog.Logger) *cobra.Command {
	var config GenerateConfig

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate serialize and parse routines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Generate(cmd.Context(), &config, logger, cmd.OutOrStdout())
		},
	}

	addSourceFlags(cmd, &config.SourceConfig)
	cmd.Flags().StringVar(&config.OutputDir, "out", "", "Output directory or '-' for stdout")
	cmd.Flags().StringVar(&config.Filename, "filename", "", "Generated file name (default <package>_wirejson.go)")
	cmd.Flags().BoolVar(&config.FailOnWarnings, "fail-on-warnings", false, "Treat schema warnings as errors")

	return cmd
}

func addSourceFlags(cmd *cobra.Command, c *SourceConfig) {
	cmd.Flags().StringVar(&c.SchemaPath, "schema", "", "Schema file (.yaml, .json or .toml)")
	cmd.Flags().StringVar(&c.SourceDir, "dir", "", "Go package directory with //wirejson: directives")
	cmd.Flags().StringVar(&c.Package, "package", "", "Override the package name")
	cmd.Flags().BoolVar(&c.EmitTypes, "emit-types", false, "Also emit the Go type declarations")
	cmd.Flags().StringVar(&c.ConfigPath, "config", "", "Path to "+DefaultConfigFile+" config file")
}

// Generate resolves the configured schema and writes the generated file.
func Generate(ctx context.Context, config *GenerateConfig, logger *slog.Logger, stdout io.Writer) error {
	fc, err := readConfigFile(config.ConfigPath)
	if err != nil {
		return err
	}
	config.merge(fc)
	if config.OutputDir == "" {
		config.OutputDir = fc.Wirejson.Out
	}
	if config.Filename == "" {
		config.Filename = fc.Wirejson.Filename
	}

	set, diags, err := resolveSource(&config.SourceConfig, logger)
	if err != nil {
		return err
	}
	if config.FailOnWarnings && len(diags.Warnings) > 0 {
		return fmt.Errorf("%d schema warning(s), first: %s", len(diags.Warnings), diags.Warnings[0])
	}

	g := gen.New(gen.Config{Filename: config.Filename, Source: config.source()}, logger)
	file, err := g.Generate(ctx, set)
	if err != nil {
		return err
	}

	out := config.OutputDir
	if out == "" {
		out = config.SourceDir
	}
	if out == "" {
		out = "."
	}
	if out == "-" {
		_, err := stdout.Write(file.Content)
		return err
	}
	if err := gen.WriteFile(file, out); err != nil {
		return err
	}
	logger.Info("wrote generated codecs", "path", filepath.Join(out, file.Filename), "types", len(set.Types))
	return nil
}

func resolveSource(c *SourceConfig, logger *slog.Logger) (*ir.Set, *diag.Diagnostics, error) {
	f, err := c.load()
	if err != nil {
		return nil, nil, err
	}
	return resolve.Resolve(f, resolve.WithLogger(logger))
}

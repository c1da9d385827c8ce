package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	js "github.com/reoring/wirejson/jsonschema"
)

// JSONSchemaConfig holds configuration for JSON Schema export.
type JSONSchemaConfig struct {
	SourceConfig
	TypeName   string
	Format     string
	OutputPath string
}

func newJSONSchemaCommand(logger *slog.Logger) *cobra.Command {
	var config JSONSchemaConfig

	cmd := &cobra.Command{
		Use:   "jsonschema",
		Short: "Export the JSON Schema of the described types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ExportJSONSchema(&config, logger, cmd.OutOrStdout())
		},
	}
	addSourceFlags(cmd, &config.SourceConfig)
	cmd.Flags().StringVar(&config.TypeName, "type", "", "Root type; all types when empty")
	cmd.Flags().StringVar(&config.Format, "format", "json", "Output format: json or yaml")
	cmd.Flags().StringVar(&config.OutputPath, "output", "-", "Path to output file or '-' for stdout")
	return cmd
}

// ExportJSONSchema writes the JSON Schema of the configured schema.
func ExportJSONSchema(config *JSONSchemaConfig, logger *slog.Logger, stdout io.Writer) error {
	fc, err := readConfigFile(config.ConfigPath)
	if err != nil {
		return err
	}
	config.merge(fc)

	set, _, err := resolveSource(&config.SourceConfig, logger)
	if err != nil {
		return err
	}
	doc := js.ExportAll(set)
	if config.TypeName != "" {
		if doc, err = js.Export(set, config.TypeName); err != nil {
			return err
		}
	}
	data, err := js.Marshal(doc, config.Format)
	if err != nil {
		return err
	}
	if config.OutputPath == "-" || config.OutputPath == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(filepath.Clean(config.OutputPath), data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("wrote json schema", "path", config.OutputPath)
	return nil
}

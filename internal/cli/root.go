// Package cli provides the command-line interface of the wirejson generator.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Execute creates and runs the root command.
func Execute() error {
	return NewRootCommand(os.Stdout, os.Stderr).Execute()
}

type logFlags struct {
	level  string
	format string
}

// NewRootCommand builds the command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	var lf logFlags
	logger := slog.New(slog.NewTextHandler(errOut, nil))

	rootCmd := &cobra.Command{
		Use:           "wirejson",
		Short:         "Generate reflection-free JSON codecs for Go types",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			l, err := newLogger(errOut, lf)
			if err != nil {
				return err
			}
			*logger = *l
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().StringVar(&lf.level, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&lf.format, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(newGenerateCommand(logger))
	rootCmd.AddCommand(newCheckCommand(logger))
	rootCmd.AddCommand(newJSONSchemaCommand(logger))
	return rootCmd
}

func newLogger(w io.Writer, lf logFlags) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lf.level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", lf.level)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(lf.format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid --log-format %q", lf.format)
}

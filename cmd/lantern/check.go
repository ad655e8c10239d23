package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"mercator-hq/lantern/pkg/cli"
	"mercator-hq/lantern/pkg/config"
)

var checkFlags struct {
	output     string
	skipMounts bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration",
	Long: `Load and validate the configuration, including environment overrides.

Unless --skip-mounts is given, every static mount is opened as well, so a
missing directory or an unreadable bundle is reported before the server starts.

Examples:
  # Validate a configuration file
  lantern check --config lantern.yaml

  # Machine readable result
  lantern check --config lantern.yaml --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(checkFlags.output)
		if err != nil {
			return err
		}
		return checkConfig(cmd.OutOrStdout(), cfgFile, format, !checkFlags.skipMounts)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.output, "output", "o", "text", "output format: text, json")
	checkCmd.Flags().BoolVar(&checkFlags.skipMounts, "skip-mounts", false, "do not open static mounts")
}

// checkResult is the outcome of a configuration check.
type checkResult struct {
	Valid  bool               `json:"valid"`
	Path   string             `json:"path,omitempty"`
	Mounts int                `json:"mounts"`
	Errors []*cli.ConfigError `json:"errors,omitempty"`
}

// errInvalidConfig is returned after the errors were printed.
var errInvalidConfig = errors.New("configuration is invalid")

func checkConfig(w io.Writer, path string, format cli.OutputFormat, withMounts bool) error {
	result := checkResult{Path: path}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		result.Errors = cli.ConfigErrors(err)
	} else {
		result.Mounts = len(cfg.Static.Mounts)
		if withMounts {
			mounts, err := openMounts(cfg.Static.Mounts, slog.New(slog.DiscardHandler))
			if err != nil {
				result.Errors = append(result.Errors, cli.NewConfigError("static", err.Error()))
			} else {
				closeMounts(mounts)
			}
		}
	}
	result.Valid = len(result.Errors) == 0

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(w, result); err != nil {
			return err
		}
	} else {
		printCheckResult(w, result)
	}

	if !result.Valid {
		return errInvalidConfig
	}
	return nil
}

func printCheckResult(w io.Writer, result checkResult) {
	if result.Valid {
		fmt.Fprintf(w, "✓ Configuration valid (%d static mounts)\n", result.Mounts)
		return
	}
	fmt.Fprintf(w, "✗ Configuration invalid:\n")
	for _, e := range result.Errors {
		if e.Field == "" {
			fmt.Fprintf(w, "  - %s\n", e.Message)
			continue
		}
		fmt.Fprintf(w, "  - %s: %s\n", e.Field, e.Message)
	}
}

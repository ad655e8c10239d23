package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lantern",
	Short: "Lantern - embeddable HTTP/1.1 server",
	Long: `Lantern is a small HTTP/1.1 server that serves static content from
directories or SQLite bundles next to custom routes.

It provides:
  - Hand-rolled HTTP/1.1 parsing with one request per connection
  - A route table of groups, routes and static mounts
  - Bounded, fair admission of concurrent connections
  - Prometheus metrics, health probes and OpenTelemetry tracing`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

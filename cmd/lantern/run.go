package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/lantern/pkg/cli"
	"mercator-hq/lantern/pkg/config"
	"mercator-hq/lantern/pkg/server"
	"mercator-hq/lantern/pkg/telemetry"
	"mercator-hq/lantern/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Lantern server",
	Long: `Start the Lantern server with the specified configuration.

The server binds the configured address, serves the configured static mounts
and, when enabled, the metrics and health routes. SIGINT or SIGTERM stop the
server after in-flight requests finish. SIGHUP reloads the configuration;
only the log level is applied to the running server.

Examples:
  # Start with default config
  lantern run

  # Start with custom config
  lantern run --config /etc/lantern/lantern.yaml

  # Override listen address
  lantern run --listen 0.0.0.0:8080

  # Validate config without starting server
  lantern run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	tel, err := telemetry.New(&cfg.Telemetry, telemetry.BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	logger := tel.Logger().Slog()
	slog.SetDefault(logger)

	mounts, err := openMounts(cfg.Static.Mounts, logger.With("component", "static"))
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		if err := closeMounts(mounts); err != nil {
			slog.Warn("failed to close static mounts", "error", err)
		}
	}()

	srv, err := server.New(cfg.Server, newEndpoint(cfg, tel, mounts))
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	srv.SetLogger(logger.With("component", "server"))
	srv.SetMetrics(tel.Metrics())
	srv.SetTracer(tel.Tracer())
	tel.Health().RegisterCheck("server", srv.Health)

	ctx := cli.SetupSignalHandler()
	cli.OnReload(ctx, func() { reloadConfig(tel.Logger()) })

	if err := srv.Start(); err != nil {
		return cli.NewCommandError("run", err)
	}
	printBanner(cmd, cfg, srv)

	stopped := make(chan error, 1)
	go func() { stopped <- srv.Wait() }()

	select {
	case err := <-stopped:
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		return nil
	case <-ctx.Done():
		fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down gracefully...")
		srv.Stop()
		if err := <-stopped; err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
		return nil
	}
}

// reloadConfig re-reads the configuration file and applies the settings
// that can change at runtime.
func reloadConfig(logger *logging.Logger) {
	if err := config.ReloadConfig(cfgFile); err != nil {
		slog.Error("configuration reload failed", "error", err)
		return
	}
	cfg := config.GetConfig()
	if err := logger.SetLevel(cfg.Telemetry.Logging.Level); err != nil {
		slog.Error("failed to apply log level", "level", cfg.Telemetry.Logging.Level, "error", err)
		return
	}
	slog.Info("configuration reloaded", "log_level", cfg.Telemetry.Logging.Level)
}

func printBanner(cmd *cobra.Command, cfg *config.Config, srv *server.Server) {
	out := cmd.OutOrStdout()
	address := fmt.Sprintf("%s:%d", srv.Address(), srv.Port())

	fmt.Fprintf(out, "Lantern v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "✓ Configuration loaded from %s\n", cfgFile)
	}
	fmt.Fprintf(out, "✓ Static mounts: %d\n", len(cfg.Static.Mounts))
	fmt.Fprintf(out, "✓ Server listening on %s (max %d concurrent)\n", address, cfg.Server.MaxConcurrent)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", address, cfg.Telemetry.Metrics.Path)
	}
	if cfg.Telemetry.Health.Enabled {
		fmt.Fprintf(out, "✓ Health endpoint: http://%s%s\n", address, cfg.Telemetry.Health.LivenessPath)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}

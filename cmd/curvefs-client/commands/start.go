package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/curvefs/curvefs-client/internal/logger"
	"github.com/curvefs/curvefs-client/internal/telemetry"
	"github.com/curvefs/curvefs-client/pkg/config"
	"github.com/curvefs/curvefs-client/pkg/debugapi"
	"github.com/curvefs/curvefs-client/pkg/metrics"
	promcollectors "github.com/curvefs/curvefs-client/pkg/metrics/prometheus"
	"github.com/curvefs/curvefs-client/pkg/volume"
	"github.com/curvefs/curvefs-client/pkg/volume/extentcache"
)

var pidFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the curvefs-client daemon",
	Long: `Start the curvefs-client daemon with the specified configuration.

The daemon wires together the block I/O engine, allocator, and metadata
service chosen in the configuration file, constructs the extent cache
against them, and serves the debug API (health check and Prometheus
metrics) until interrupted.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/curvefs-client/config.yaml.

Examples:
  # Start with the default config
  curvefs-client start

  # Start with a custom config file
  curvefs-client start --config /etc/curvefs-client/config.yaml

  # Start with environment variable overrides
  CURVEFS_LOGGING_LEVEL=DEBUG curvefs-client start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/curvefs-client/curvefs-client.pid)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "curvefs-client",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "curvefs-client",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	fmt.Println("curvefs-client - volume extent cache daemon")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	var cacheMetrics extentcache.Metrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		cacheMetrics = promcollectors.NewCacheMetrics()
		logger.Info("Metrics enabled")
	} else {
		logger.Info("Metrics disabled")
	}

	vol, err := volume.Build(ctx, cfg, cacheMetrics, logger.With("component", "volume"))
	if err != nil {
		return fmt.Errorf("failed to build volume: %w", err)
	}
	defer func() {
		if err := vol.Close(); err != nil {
			logger.Error("error closing volume collaborators", "error", err)
		}
	}()

	logger.Info("Volume ready",
		"block_io_backend", cfg.Volume.BlockIO.Backend,
		"allocator_backend", cfg.Volume.Allocator.Backend,
		"metadata_service_backend", cfg.Volume.MetadataService.Backend,
		"block_size", uint64(cfg.Alignment.BlockSize),
		"range_size", uint64(cfg.Alignment.RangeSize))

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	var debugSrv *http.Server
	debugDone := make(chan error, 1)
	if cfg.DebugAPI.Enabled {
		addr := cfg.DebugAPI.Addr
		if addr == "" {
			addr = "localhost:8080"
		}
		debugSrv = &http.Server{Addr: addr, Handler: debugapi.New()}
		go func() {
			logger.Info("Debug API listening", "addr", addr)
			if err := debugSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				debugDone <- err
				return
			}
			debugDone <- nil
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("curvefs-client is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
	case err := <-debugDone:
		if err != nil {
			logger.Error("debug API server error", "error", err)
			return err
		}
	}

	cancel()

	if debugSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := debugSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("debug API shutdown error", "error", err)
		}
	}

	logger.Info("curvefs-client stopped gracefully")
	return nil
}

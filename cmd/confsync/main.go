// Package main implements the confsync binary: it keeps the local
// configuration files under the installation root synchronized with the
// composite configuration document held in a remote configuration store,
// and can publish the local composite back.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/c360/confsync/health"
	"github.com/c360/confsync/materializer"
	"github.com/c360/confsync/metric"
	"github.com/c360/confsync/nacosclient"
	"github.com/c360/confsync/natsstore"
	"github.com/c360/confsync/pkg/security"
	"github.com/c360/confsync/syncer"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "confsync"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	ctx := context.Background()

	monitor := health.NewMonitor()
	registry := metric.NewMetricsRegistry()

	store, closeStore, err := buildStore(ctx, cliCfg, logger, monitor, registry.CoreMetrics())
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	defer closeStore()

	writer := materializer.NewWriter(materializer.NewResolverFromEnv(), cliCfg.FileName, logger)
	sync, err := syncer.New(store, writer, cliCfg.DataID, cliCfg.Group,
		syncer.WithLogger(logger),
		syncer.WithMetrics(registry.CoreMetrics()),
		syncer.WithMonitor(monitor),
	)
	if err != nil {
		return fmt.Errorf("build syncer: %w", err)
	}

	switch {
	case cliCfg.Publish:
		if !sync.PublishLocal(ctx) {
			return fmt.Errorf("publish failed")
		}
		return nil
	case cliCfg.Once:
		return sync.SyncOnce(ctx)
	default:
		return runService(ctx, cliCfg, sync, monitor, registry)
	}
}

// runService is the default mode: initial pass, subscription, metrics
// server, and signal-driven shutdown.
func runService(ctx context.Context, cliCfg *CLIConfig, sync *syncer.Syncer,
	monitor *health.Monitor, registry *metric.MetricsRegistry,
) error {
	// The initial pass materializes current state before the subscription
	// takes over; its failure is logged, not fatal, because the store may
	// simply hold nothing yet.
	if err := sync.SyncOnce(ctx); err != nil {
		slog.Warn("Initial sync pass failed", "error", err)
	}

	if err := sync.Start(ctx); err != nil {
		return fmt.Errorf("start syncer: %w", err)
	}
	defer func() {
		if err := sync.Stop(cliCfg.ShutdownTimeout); err != nil {
			slog.Warn("Syncer stop", "error", err)
		}
	}()

	var metricsServer *metric.Server
	if cliCfg.MetricsPort > 0 {
		metricsServer = metric.NewServer(cliCfg.MetricsPort, "/metrics", registry, security.Config{})
		metricsServer.SetHealthHandler(health.Handler(monitor, appName))
		go func() {
			if err := metricsServer.Start(); err != nil {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			if err := metricsServer.Stop(); err != nil {
				slog.Warn("Metrics server stop", "error", err)
			}
		}()
		slog.Info("Metrics server listening", "port", cliCfg.MetricsPort)
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("Shutdown signal received", "signal", sig.String())

	return nil
}

// buildStore constructs the selected store backend, wired to the monitor
// and metrics so connection state shows up on /healthz and /metrics. The
// returned closer is safe to call even after a partial failure.
func buildStore(ctx context.Context, cliCfg *CLIConfig, logger *slog.Logger,
	monitor *health.Monitor, metrics *metric.Metrics,
) (syncer.Store, func(), error) {
	adapterLog := &slogAdapter{logger: logger}

	switch cliCfg.StoreBackend {
	case storeNATS:
		opts := []natsstore.Option{
			natsstore.WithTimeout(cliCfg.Timeout),
			natsstore.WithLogger(adapterLog),
			natsstore.WithMetrics(metrics),
			natsstore.WithConnHandler(func(err error) {
				monitor.Update("store", health.FromError("store", err))
			}),
		}
		if cliCfg.Bucket != "" {
			opts = append(opts, natsstore.WithBucket(cliCfg.Bucket))
		}
		client, err := natsstore.New(cliCfg.Addr, opts...)
		if err != nil {
			return nil, func() {}, err
		}
		if err := client.Connect(ctx); err != nil {
			return nil, func() {}, err
		}
		return client, client.Close, nil

	default: // storeNacos, enforced by validateFlags
		client, err := nacosclient.New(cliCfg.Addr,
			nacosclient.WithTimeout(cliCfg.Timeout),
			nacosclient.WithLogger(adapterLog),
			nacosclient.WithMetrics(metrics),
		)
		if err != nil {
			return nil, func() {}, err
		}
		monitor.Update("store", health.FromError("store", nil))
		return client, client.Close, nil
	}
}

func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting confsync",
		"version", Version,
		"build_time", BuildTime,
		"store", cliCfg.StoreBackend,
		"data_id", cliCfg.DataID,
		"group", cliCfg.Group)

	return cliCfg, logger, false, nil
}

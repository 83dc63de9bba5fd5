package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backend selectors
const (
	storeNacos = "nacos"
	storeNATS  = "nats"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Addr     string
	DataID   string
	Group    string
	Timeout  time.Duration
	FileName string

	StoreBackend string
	Bucket       string

	MetricsPort     int
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	Once        bool
	Publish     bool
	Validate    bool
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.Addr, "addr",
		getEnv("CONFIG_CENTER_ADDR", ""),
		"Remote configuration store address, required (env: CONFIG_CENTER_ADDR)")

	flag.StringVar(&cfg.DataID, "data-id",
		getEnv("CONFIG_DATA_ID", "configs.xml"),
		"Composite document data id (env: CONFIG_DATA_ID)")

	flag.StringVar(&cfg.Group, "group",
		getEnv("CONFIG_GROUP", "DEFAULT_GROUP"),
		"Composite document group (env: CONFIG_GROUP)")

	flag.DurationVar(&cfg.Timeout, "timeout",
		time.Duration(getEnvInt("CONFIG_TIMEOUT_MS", 3000))*time.Millisecond,
		"Store request timeout (env: CONFIG_TIMEOUT_MS, milliseconds)")

	flag.StringVar(&cfg.FileName, "file-name",
		getEnv("CONFIG_FILE_NAME", "configs.xml"),
		"Local file name for the composite document (env: CONFIG_FILE_NAME)")

	flag.StringVar(&cfg.StoreBackend, "store",
		getEnv("CONFSYNC_STORE", storeNacos),
		"Store backend: nacos, nats (env: CONFSYNC_STORE)")

	flag.StringVar(&cfg.Bucket, "bucket",
		getEnv("CONFSYNC_BUCKET", ""),
		"KV bucket name for the nats backend (env: CONFSYNC_BUCKET)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("CONFSYNC_METRICS_PORT", 9090),
		"Metrics/health port, 0 to disable (env: CONFSYNC_METRICS_PORT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("CONFSYNC_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: CONFSYNC_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("CONFSYNC_LOG_FORMAT", "json"),
		"Log format: json, text (env: CONFSYNC_LOG_FORMAT)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("CONFSYNC_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: CONFSYNC_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.Once, "once", false, "Run a single pull-and-materialize pass and exit")
	flag.BoolVar(&cfg.Publish, "publish", false, "Publish the local composite document and exit")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate bootstrap configuration and exit")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	// Custom usage
	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	// The store address has no default; everything else does
	if cfg.Addr == "" {
		return fmt.Errorf("store address not set (use -addr or CONFIG_CENTER_ADDR)")
	}

	if cfg.StoreBackend != storeNacos && cfg.StoreBackend != storeNATS {
		return fmt.Errorf("invalid store backend: %s", cfg.StoreBackend)
	}

	if cfg.DataID == "" {
		return fmt.Errorf("data id cannot be empty")
	}

	if cfg.Group == "" {
		return fmt.Errorf("group cannot be empty")
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// Validate log format
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	// Validate metrics port
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	if cfg.Once && cfg.Publish {
		return fmt.Errorf("-once and -publish are mutually exclusive")
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Configuration file synchronizer

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Watch the store and keep local files current
  %s --addr=nacos.internal:8848

  # One pull-and-materialize pass
  %s --addr=nacos.internal:8848 --once

  # Publish the local composite back to the store
  %s --addr=nacos.internal:8848 --publish

  # Use a NATS JetStream KV bucket as the store
  %s --store=nats --addr=nats://localhost:4222 --bucket=confsync

The installation root comes from the APUSIC_HOME environment variable;
materialized files land under $APUSIC_HOME/conf/.

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

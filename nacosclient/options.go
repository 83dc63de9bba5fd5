package nacosclient

import (
	"log"
	"time"

	"github.com/c360/confsync/pkg/retry"
)

// Logger interface for injecting custom loggers
type Logger interface {
	Printf(format string, v ...any)
	Errorf(format string, v ...any)
	Debugf(format string, v ...any)
}

// defaultLogger implements Logger using standard log package
type defaultLogger struct{}

func (l *defaultLogger) Printf(format string, v ...any) {
	log.Printf("[NACOS] "+format, v...)
}

func (l *defaultLogger) Errorf(format string, v ...any) {
	log.Printf("[NACOS ERROR] "+format, v...)
}

func (l *defaultLogger) Debugf(_ string, _ ...any) {
	// Silent by default
}

// StatusRecorder receives client availability transitions. The SDK exposes
// no reconnect events, so only ready (after construction) and closed are
// reported.
type StatusRecorder interface {
	RecordStoreStatus(connected bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordStoreStatus(bool) {}

// ClientOption is a functional option for configuring the Client
type ClientOption func(*Client) error

// WithTimeout sets the request timeout for store operations
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d > 0 {
			c.timeout = d
		}
		return nil
	}
}

// WithNamespace sets the Nacos namespace id (empty means the default
// namespace)
func WithNamespace(namespace string) ClientOption {
	return func(c *Client) error {
		c.namespace = namespace
		return nil
	}
}

// WithLogDir sets the directory the SDK writes its own logs to
func WithLogDir(dir string) ClientOption {
	return func(c *Client) error {
		c.logDir = dir
		return nil
	}
}

// WithCacheDir sets the directory the SDK uses for its local snapshot cache
func WithCacheDir(dir string) ClientOption {
	return func(c *Client) error {
		c.cacheDir = dir
		return nil
	}
}

// WithSDKLogLevel sets the SDK's internal log level (debug, info, warn,
// error)
func WithSDKLogLevel(level string) ClientOption {
	return func(c *Client) error {
		c.sdkLogLevel = level
		return nil
	}
}

// WithLogger sets a custom logger for the client
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			logger = &defaultLogger{}
		}
		c.logger = logger
		return nil
	}
}

// WithRetryConfig overrides the retry policy for fetch and publish calls
func WithRetryConfig(cfg retry.Config) ClientOption {
	return func(c *Client) error {
		c.retryCfg = cfg
		return nil
	}
}

// WithMetrics sets the recorder fed by client availability changes
func WithMetrics(r StatusRecorder) ClientOption {
	return func(c *Client) error {
		if r != nil {
			c.metrics = r
		}
		return nil
	}
}

package natsstore

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
	log.Printf("[NATS] "+format, v...)
}

func (l *defaultLogger) Errorf(format string, v ...any) {
	log.Printf("[NATS ERROR] "+format, v...)
}

func (l *defaultLogger) Debugf(_ string, _ ...any) {
	// Silent by default
}

// StatusRecorder receives connection state transitions, typically the
// process-wide metrics set.
type StatusRecorder interface {
	RecordStoreStatus(connected bool)
	RecordStoreReconnect()
}

// nopRecorder is the default when no recorder is configured.
type nopRecorder struct{}

func (nopRecorder) RecordStoreStatus(bool) {}
func (nopRecorder) RecordStoreReconnect()  {}

// Option is a functional option for configuring the Client
type Option func(*Client) error

// WithBucket sets the KV bucket name holding composite documents
func WithBucket(name string) Option {
	return func(c *Client) error {
		if name != "" {
			c.bucket = name
		}
		return nil
	}
}

// WithTimeout sets the per-operation timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d > 0 {
			c.timeout = d
		}
		return nil
	}
}

// WithCredentials sets the NATS credentials file
func WithCredentials(file string) Option {
	return func(c *Client) error {
		c.credsFile = file
		return nil
	}
}

// WithMaxReconnects sets the maximum number of reconnection attempts (-1 for
// infinite)
func WithMaxReconnects(n int) Option {
	return func(c *Client) error {
		c.maxReconnects = n
		return nil
	}
}

// WithReconnectWait sets the wait time between reconnection attempts
func WithReconnectWait(d time.Duration) Option {
	return func(c *Client) error {
		if d > 0 {
			c.reconnectWait = d
		}
		return nil
	}
}

// WithMetrics sets the recorder fed by connect, disconnect, and reconnect
// events
func WithMetrics(r StatusRecorder) Option {
	return func(c *Client) error {
		if r != nil {
			c.metrics = r
		}
		return nil
	}
}

// WithConnHandler sets a callback invoked with nil when the connection is
// established or recovered, and with the cause when it drops
func WithConnHandler(h func(err error)) Option {
	return func(c *Client) error {
		c.connHandler = h
		return nil
	}
}

// WithLogger sets a custom logger for the client
func WithLogger(logger Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = &defaultLogger{}
		}
		c.logger = logger
		return nil
	}
}

// WithRetryConfig overrides the retry policy for fetch and publish calls
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) error {
		c.retryCfg = cfg
		return nil
	}
}

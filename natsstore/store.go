// Package natsstore is a syncer.Store backed by a NATS JetStream key-value
// bucket, for deployments that already run NATS instead of a dedicated
// config service. One composite document lives under the key
// "<group>.<dataID>"; change subscription rides the bucket's watch stream.
package natsstore

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	cerrors "github.com/c360/confsync/errors"
	"github.com/c360/confsync/pkg/retry"
)

// Defaults mirroring typical deployment settings.
const (
	DefaultBucket        = "confsync"
	DefaultTimeout       = 3 * time.Second
	DefaultMaxReconnects = 10
	DefaultReconnectWait = 2 * time.Second
)

// Client is a syncer.Store backed by a JetStream KV bucket.
type Client struct {
	url    string
	bucket string

	timeout       time.Duration
	credsFile     string
	maxReconnects int
	reconnectWait time.Duration

	logger      Logger
	retryCfg    retry.Config
	metrics     StatusRecorder
	connHandler func(err error)

	conn *nats.Conn
	kv   jetstream.KeyValue

	mu       sync.Mutex
	watchers []jetstream.KeyWatcher
	wg       sync.WaitGroup
	stopCh   chan struct{}
	closed   bool
}

// New creates a Client for the NATS server at url. The URL is required; the
// connection is established by Connect, not here.
func New(url string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, cerrors.WrapInvalid(cerrors.ErrMissingConfig, "natsstore", "new", "validate server url")
	}

	c := &Client{
		url:           url,
		bucket:        DefaultBucket,
		timeout:       DefaultTimeout,
		maxReconnects: DefaultMaxReconnects,
		reconnectWait: DefaultReconnectWait,
		logger:        &defaultLogger{},
		retryCfg:      retry.DefaultConfig(),
		metrics:       nopRecorder{},
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, cerrors.WrapInvalid(err, "natsstore", "new", "apply option")
		}
	}
	return c, nil
}

// Connect dials the server and ensures the KV bucket exists. Reconnects
// after that are the NATS client's own concern, bounded by the configured
// reconnect settings.
func (c *Client) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.MaxReconnects(c.maxReconnects),
		nats.ReconnectWait(c.reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err == nil {
				// Clean disconnect during shutdown.
				return
			}
			c.logger.Errorf("disconnected: %v", err)
			c.metrics.RecordStoreStatus(false)
			c.notifyConn(err)
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			c.logger.Printf("reconnected to %s", conn.ConnectedUrl())
			c.metrics.RecordStoreStatus(true)
			c.metrics.RecordStoreReconnect()
			c.notifyConn(nil)
		}),
	}
	if c.credsFile != "" {
		opts = append(opts, nats.UserCredentials(c.credsFile))
	}

	conn, err := nats.Connect(c.url, opts...)
	if err != nil {
		return cerrors.WrapTransient(err, "natsstore", "connect", "establish connection")
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return cerrors.WrapTransient(err, "natsstore", "connect", "initialize jetstream")
	}

	kv, err := c.ensureBucket(ctx, js)
	if err != nil {
		conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.kv = kv
	c.mu.Unlock()

	c.metrics.RecordStoreStatus(true)
	c.notifyConn(nil)
	c.logger.Printf("connected to %s, bucket %s", c.url, c.bucket)
	return nil
}

// notifyConn reports a connection state change to the configured handler.
func (c *Client) notifyConn(err error) {
	if c.connHandler != nil {
		c.connHandler(err)
	}
}

// Key returns the bucket key for a (dataID, group) pair.
func Key(dataID, group string) string {
	return group + "." + dataID
}

// Fetch returns the composite document for (dataID, group). A missing key
// maps to an empty document, not an error: first-run deployments have no
// key yet and must not report failures forever.
func (c *Client) Fetch(ctx context.Context, dataID, group string) (string, error) {
	kv, err := c.store()
	if err != nil {
		return "", err
	}

	content, err := retry.DoWithResult(ctx, c.retryCfg, func() (string, error) {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		entry, err := kv.Get(opCtx, Key(dataID, group))
		if err != nil {
			if stderrors.Is(err, jetstream.ErrKeyNotFound) {
				return "", retry.NonRetryable(err)
			}
			return "", err
		}
		return string(entry.Value()), nil
	})
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			c.logger.Debugf("no document for %s/%s yet", group, dataID)
			return "", nil
		}
		return "", cerrors.WrapTransient(err, "natsstore", "fetch", "get key")
	}
	return content, nil
}

// Publish stores the composite document under the pair's key. Last writer
// wins; no revision check.
func (c *Client) Publish(ctx context.Context, dataID, group, content string) error {
	kv, err := c.store()
	if err != nil {
		return err
	}

	err = retry.Do(ctx, c.retryCfg, func() error {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		_, err := kv.Put(opCtx, Key(dataID, group), []byte(content))
		return err
	})
	if err != nil {
		return cerrors.WrapTransient(err, "natsstore", "publish", "put key")
	}

	c.logger.Printf("published %s/%s (%d bytes)", group, dataID, len(content))
	return nil
}

// Subscribe watches the pair's key and pumps updates onto onChange. Only
// updates after registration are delivered; the initial state comes from
// Fetch. A deleted or purged key is delivered as an empty document, which
// the consumer treats as a no-op pass.
func (c *Client) Subscribe(ctx context.Context, dataID, group string, onChange func(content string)) error {
	kv, err := c.store()
	if err != nil {
		return err
	}

	watcher, err := kv.Watch(ctx, Key(dataID, group), jetstream.UpdatesOnly())
	if err != nil {
		return cerrors.WrapTransient(err, "natsstore", "subscribe", "create watcher")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = watcher.Stop()
		return cerrors.WrapInvalid(cerrors.ErrAlreadyStopped, "natsstore", "subscribe", "register watcher")
	}
	c.watchers = append(c.watchers, watcher)
	c.wg.Add(1)
	c.mu.Unlock()

	go c.pump(watcher, onChange)

	c.logger.Printf("watching %s/%s", group, dataID)
	return nil
}

// pump forwards watch entries to the subscriber callback until the watcher
// or the client shuts down.
func (c *Client) pump(watcher jetstream.KeyWatcher, onChange func(content string)) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			return
		case entry, ok := <-watcher.Updates():
			if !ok {
				return
			}
			if entry == nil {
				// Initial-values marker; UpdatesOnly should not send one,
				// but skip it either way.
				continue
			}
			switch entry.Operation() {
			case jetstream.KeyValueDelete, jetstream.KeyValuePurge:
				onChange("")
			default:
				onChange(string(entry.Value()))
			}
		}
	}
}

// Close stops every watcher and drains the connection. Safe to call more
// than once.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.stopCh)
	watchers := c.watchers
	c.watchers = nil
	conn := c.conn
	c.mu.Unlock()

	for _, w := range watchers {
		_ = w.Stop()
	}
	c.wg.Wait()

	if conn != nil {
		if err := conn.Drain(); err != nil {
			c.logger.Errorf("drain: %v", err)
		}
	}
	c.metrics.RecordStoreStatus(false)
	c.logger.Printf("store client closed")
}

func (c *Client) store() (jetstream.KeyValue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv == nil {
		return nil, cerrors.WrapInvalid(cerrors.ErrStoreUnavailable, "natsstore", "store", "check connection")
	}
	return c.kv, nil
}

func (c *Client) ensureBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	kv, err := js.CreateKeyValue(opCtx, jetstream.KeyValueConfig{
		Bucket:      c.bucket,
		Description: "confsync composite documents",
		History:     5,
	})
	if err == nil {
		return kv, nil
	}

	// Bucket may already exist with a different configuration.
	if stderrors.Is(err, jetstream.ErrBucketExists) || strings.Contains(err.Error(), "already in use") {
		kv, getErr := js.KeyValue(opCtx, c.bucket)
		if getErr == nil {
			return kv, nil
		}
		err = getErr
	}
	return nil, cerrors.WrapTransient(err, "natsstore", "ensureBucket", "create bucket")
}

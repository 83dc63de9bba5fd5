// Package nacosclient adapts the Nacos config service SDK to the syncer.Store
// capability contract: fetch, publish, subscribe. Connection management,
// server fail-over, and the local snapshot cache belong to the SDK; this
// package adds fail-fast validation, classified errors, and bounded retries.
package nacosclient

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nacos-group/nacos-sdk-go/v2/clients"
	"github.com/nacos-group/nacos-sdk-go/v2/clients/config_client"
	"github.com/nacos-group/nacos-sdk-go/v2/common/constant"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"

	cerrors "github.com/c360/confsync/errors"
	"github.com/c360/confsync/pkg/retry"
)

// DefaultPort is used for server addresses that carry no explicit port.
const DefaultPort = 8848

// DefaultTimeout bounds individual config-service requests.
const DefaultTimeout = 3 * time.Second

// Client is a syncer.Store backed by a Nacos config service.
type Client struct {
	addr      string
	namespace string
	timeout   time.Duration

	logDir      string
	cacheDir    string
	sdkLogLevel string

	svc      config_client.IConfigClient
	logger   Logger
	retryCfg retry.Config
	metrics  StatusRecorder

	mu       sync.Mutex
	listened []vo.ConfigParam
	closed   bool
}

// New creates a Client connected to the config service at addr. The address
// is required: a config center whose location is unknown cannot be fetched
// from, so an empty addr fails construction rather than the first call.
// addr accepts one or more comma-separated host[:port] entries.
func New(addr string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, cerrors.WrapInvalid(cerrors.ErrMissingConfig, "nacosclient", "new", "validate server address")
	}

	c := &Client{
		addr:        addr,
		timeout:     DefaultTimeout,
		logDir:      "/tmp/nacos/log",
		cacheDir:    "/tmp/nacos/cache",
		sdkLogLevel: "warn",
		logger:      &defaultLogger{},
		retryCfg:    retry.DefaultConfig(),
		metrics:     nopRecorder{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, cerrors.WrapInvalid(err, "nacosclient", "new", "apply option")
		}
	}

	servers, err := parseServers(addr)
	if err != nil {
		return nil, err
	}

	clientCfg := constant.ClientConfig{
		NamespaceId:         c.namespace,
		TimeoutMs:           uint64(c.timeout.Milliseconds()),
		NotLoadCacheAtStart: true,
		LogDir:              c.logDir,
		CacheDir:            c.cacheDir,
		LogLevel:            c.sdkLogLevel,
	}

	svc, err := clients.NewConfigClient(vo.NacosClientParam{
		ClientConfig:  &clientCfg,
		ServerConfigs: servers,
	})
	if err != nil {
		return nil, cerrors.WrapTransient(err, "nacosclient", "new", "create config client")
	}
	c.svc = svc

	c.metrics.RecordStoreStatus(true)
	c.logger.Printf("config client initialized: %s", addr)
	return c, nil
}

// Fetch returns the composite document for (dataID, group). A document the
// store does not hold yet maps to an empty string, not an error, so first
// deployments do not log failures forever. Transient errors are retried.
func (c *Client) Fetch(ctx context.Context, dataID, group string) (string, error) {
	content, err := retry.DoWithResult(ctx, c.retryCfg, func() (string, error) {
		data, err := c.svc.GetConfig(vo.ConfigParam{
			DataId: dataID,
			Group:  group,
		})
		if err != nil {
			if isNotFound(err) {
				return "", retry.NonRetryable(err)
			}
			return "", err
		}
		return data, nil
	})
	if err != nil {
		if isNotFound(err) {
			c.logger.Debugf("no document for %s/%s yet", group, dataID)
			return "", nil
		}
		c.logger.Errorf("fetch %s/%s failed: %v", group, dataID, err)
		return "", cerrors.WrapTransient(err, "nacosclient", "fetch", "get config")
	}
	return content, nil
}

// Publish pushes a composite document to the store. A false acknowledgement
// from the service is an error; the caller sees success only when the store
// accepted the content.
func (c *Client) Publish(ctx context.Context, dataID, group, content string) error {
	err := retry.Do(ctx, c.retryCfg, func() error {
		ok, err := c.svc.PublishConfig(vo.ConfigParam{
			DataId:  dataID,
			Group:   group,
			Content: content,
		})
		if err != nil {
			return err
		}
		if !ok {
			return retry.NonRetryable(cerrors.ErrPublishRejected)
		}
		return nil
	})
	if err != nil {
		c.logger.Errorf("publish %s/%s failed: %v", group, dataID, err)
		return cerrors.WrapTransient(err, "nacosclient", "publish", "publish config")
	}

	c.logger.Printf("published %s/%s (%d bytes)", group, dataID, len(content))
	return nil
}

// Subscribe registers onChange for every change to (dataID, group). The SDK
// owns the delivery goroutine and the reconnect policy; the subscription
// lives until Close.
func (c *Client) Subscribe(_ context.Context, dataID, group string, onChange func(content string)) error {
	param := vo.ConfigParam{
		DataId: dataID,
		Group:  group,
		OnChange: func(_, group, dataID, data string) {
			onChange(data)
		},
	}

	if err := c.svc.ListenConfig(param); err != nil {
		return cerrors.WrapTransient(err, "nacosclient", "subscribe", "listen config")
	}

	c.mu.Lock()
	c.listened = append(c.listened, param)
	c.mu.Unlock()

	c.logger.Printf("listening %s/%s", group, dataID)
	return nil
}

// Close cancels every registered listener and shuts the SDK client down.
// Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	listened := c.listened
	c.listened = nil
	c.mu.Unlock()

	for _, param := range listened {
		if err := c.svc.CancelListenConfig(vo.ConfigParam{
			DataId: param.DataId,
			Group:  param.Group,
		}); err != nil {
			c.logger.Errorf("cancel listener %s/%s: %v", param.Group, param.DataId, err)
		}
	}
	c.svc.CloseClient()
	c.metrics.RecordStoreStatus(false)
	c.logger.Printf("config client closed")
}

// parseServers splits a comma-separated address list into SDK server
// configs, defaulting the port when an entry carries none.
func parseServers(addr string) ([]constant.ServerConfig, error) {
	entries := strings.Split(addr, ",")
	servers := make([]constant.ServerConfig, 0, len(entries))

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		host := entry
		port := uint64(DefaultPort)
		if h, p, err := net.SplitHostPort(entry); err == nil {
			parsed, err := strconv.ParseUint(p, 10, 16)
			if err != nil {
				return nil, cerrors.WrapInvalid(err, "nacosclient", "parseServers", "parse port")
			}
			host = h
			port = parsed
		}

		servers = append(servers, constant.ServerConfig{
			IpAddr: host,
			Port:   port,
		})
	}

	if len(servers) == 0 {
		return nil, cerrors.WrapInvalid(cerrors.ErrMissingConfig, "nacosclient", "parseServers", "validate server list")
	}
	return servers, nil
}

// isNotFound matches the SDK's absent-config failure. The SDK reports it as
// a plain error string, not a typed error.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not exist") || strings.Contains(msg, "not found")
}

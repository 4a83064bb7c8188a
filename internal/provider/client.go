// Package provider reaches an external wallet agent over JSON-RPC and
// exposes it as a wallet.Provider.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
	"walletconn/internal/wallet"
)

// ErrNotConfigured is returned by Detect when no endpoint is set
var ErrNotConfigured = errors.New("no wallet provider endpoint configured")

const (
	DefaultPollInterval = 2 * time.Second
	DefaultProbeTimeout = 3 * time.Second
)

// Options configures a Client
type Options struct {
	// PollInterval is the minimum time between two observations of the
	// agent's accounts and chain. Zero disables the watcher.
	PollInterval time.Duration
	ProbeTimeout time.Duration
	Logger       logrus.FieldLogger
}

// Client is a wallet.Provider backed by a go-ethereum rpc.Client
type Client struct {
	rpc     *rpc.Client
	url     string
	log     logrus.FieldLogger
	emitter *emitter

	stop    context.CancelFunc
	done    chan struct{}
	closeMu sync.Once
}

var _ wallet.Provider = (*Client)(nil)

// NewClient wraps an established rpc connection and starts the watcher
func NewClient(c *rpc.Client, url string, opts Options) *Client {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		rpc:     c,
		url:     url,
		log:     log.WithField("component", "provider"),
		emitter: newEmitter(),
		stop:    cancel,
		done:    make(chan struct{}),
	}

	if opts.PollInterval > 0 {
		w := newWatcher(client, opts.PollInterval, client.log)
		go func() {
			defer close(client.done)
			w.run(ctx)
		}()
	} else {
		close(client.done)
	}
	return client
}

// Detect dials url and verifies an agent answers eth_chainId within the probe
// timeout. Any error means the provider is absent.
func Detect(ctx context.Context, url string, opts Options) (*Client, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := rpc.DialContext(probeCtx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet provider %s: %w", url, err)
	}

	var chainID string
	if err := c.CallContext(probeCtx, &chainID, wallet.MethodChainID); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to probe wallet provider %s: %w", url, err)
	}
	return NewClient(c, url, opts), nil
}

// URL returns the endpoint the client is connected to
func (c *Client) URL() string {
	return c.url
}

// Request implements wallet.Provider
func (c *Client) Request(ctx context.Context, result any, method string, params ...any) error {
	return c.rpc.CallContext(ctx, result, method, params...)
}

// Subscribe implements wallet.Provider. The handler runs on a goroutine owned
// by the subscription.
func (c *Client) Subscribe(name string, handler func(wallet.Event)) wallet.Subscription {
	return c.emitter.subscribe(name, handler)
}

// Close stops the watcher and closes the connection. It is safe to call more
// than once.
func (c *Client) Close() {
	c.closeMu.Do(func() {
		c.stop()
		<-c.done
		c.rpc.Close()
	})
}

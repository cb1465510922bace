// Package client is a Go client for lander session servers, over websocket
// or QUIC.
package client

import (
	"context"
	"crypto/tls"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/zeusync/lander/internal/core/lander"
	"github.com/zeusync/lander/internal/core/observability/log"
	"github.com/zeusync/lander/internal/server"
)

const (
	TransportWebSocket = "websocket"
	TransportQUIC      = "quic"
)

// Config holds configuration for the client
type Config struct {
	Transport string
	// Addr is host:port of the HTTP listener for websocket, or of the QUIC
	// listener.
	Addr string
	// Path of the websocket endpoint.
	Path string
	// TLSConfig for QUIC. Nil trusts any certificate, which suits the
	// server's self-signed development certificate.
	TLSConfig *tls.Config
	// Timeout bounds each request when the context has no deadline, and
	// the whole dial including retries.
	Timeout time.Duration
	// Retries is how many times a failed dial is retried with exponential
	// backoff.
	Retries uint64
	Logger  log.Log
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	return Config{
		Transport: TransportWebSocket,
		Addr:      "127.0.0.1:8080",
		Path:      "/ws",
		Timeout:   10 * time.Second,
		Retries:   3,
	}
}

// frameConn is one session's request/reply channel.
type frameConn interface {
	send(ctx context.Context, req server.Request) error
	recv(ctx context.Context) (server.Frame, error)
	close() error
}

// Client drives one remote session. Requests are serialised; a Client is
// safe for concurrent use.
type Client struct {
	conn   frameConn
	config Config
	logger log.Log

	mu     sync.Mutex
	state  server.Frame
	closed bool
}

// Dial connects and waits for the session's initial state.
func Dial(ctx context.Context, config Config) (*Client, error) {
	if config.Addr == "" {
		return nil, errors.Wrap(ErrInvalidConfig, "addr is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultClientConfig().Timeout
	}
	if config.Logger == nil {
		config.Logger = log.Provide()
	}

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	var dial func(context.Context) (frameConn, error)
	switch config.Transport {
	case TransportWebSocket, "":
		path := config.Path
		if path == "" {
			path = DefaultClientConfig().Path
		}
		u := url.URL{Scheme: "ws", Host: config.Addr, Path: path}
		dial = func(ctx context.Context) (frameConn, error) { return dialWebSocket(ctx, u.String()) }
	case TransportQUIC:
		tlsConfig := config.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{InsecureSkipVerify: true}
		}
		tlsConfig = tlsConfig.Clone()
		tlsConfig.NextProtos = []string{server.QUICProtocol}
		dial = func(ctx context.Context) (frameConn, error) { return dialQUIC(ctx, config.Addr, tlsConfig) }
	default:
		return nil, errors.Wrapf(ErrUnknownTransport, "%q", config.Transport)
	}

	var conn frameConn
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), config.Retries), ctx)
	err := backoff.RetryNotify(func() error {
		var err error
		conn, err = dial(ctx)
		return err
	}, policy, func(err error, wait time.Duration) {
		config.Logger.Debug("Dial failed, retrying",
			log.String("addr", config.Addr),
			log.Duration("wait", wait),
			log.Error(err))
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.Wrap(ErrConnectionTimeout, err.Error())
		}
		return nil, errors.Wrapf(err, "dial %s %s", config.Transport, config.Addr)
	}

	hello, err := conn.recv(ctx)
	if err != nil {
		_ = conn.close()
		return nil, errors.Wrap(err, "read session state")
	}
	if hello.Error != "" {
		_ = conn.close()
		config.Logger.Warn("Session rejected", log.String("addr", config.Addr), log.String("error", hello.Error))
		return nil, errors.Wrap(ErrRejected, hello.Error)
	}

	c := &Client{conn: conn, config: config, state: hello}
	c.logger = config.Logger.With(log.String("component", "client"), log.String("session", hello.Session))
	c.logger.Info("Connected to server", log.String("addr", config.Addr), log.String("transport", config.Transport))
	return c, nil
}

// Session is the server-assigned session id.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Session
}

// State is the last frame received.
func (c *Client) State() server.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) Step(ctx context.Context, a lander.Action) (server.Frame, error) {
	return c.do(ctx, server.Request{Action: a.String()})
}

func (c *Client) StepNamed(ctx context.Context, name string) (server.Frame, error) {
	return c.do(ctx, server.Request{Action: name})
}

func (c *Client) Reset(ctx context.Context) (server.Frame, error) {
	return c.do(ctx, server.Request{Reset: true})
}

func (c *Client) do(ctx context.Context, req server.Request) (server.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return server.Frame{}, ErrClientClosed
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	if err := c.conn.send(ctx, req); err != nil {
		return server.Frame{}, errors.Wrap(err, "send request")
	}
	f, err := c.conn.recv(ctx)
	if err != nil {
		return server.Frame{}, errors.Wrap(err, "read reply")
	}
	if f.Error != "" {
		c.logger.Debug("Request rejected", log.String("action", req.Action), log.String("error", f.Error))
		return f, errors.Wrap(ErrRejected, f.Error)
	}
	c.state = f
	return f, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.logger.Info("Client closed")
	return c.conn.close()
}

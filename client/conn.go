package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/strata/protocol"
)

var (
	// ErrNotConnected is returned when a command is issued before
	// Connect has succeeded.
	ErrNotConnected = errors.New("client is not connected")

	// ErrClosed is returned when a command is issued after the
	// connection was closed, either locally or by the server.
	ErrClosed = errors.New("connection is closed")

	// ErrBusy is returned when a command is issued while another
	// command is still awaiting its response. The wire protocol has no
	// request id, so only one request may be in flight per connection.
	ErrBusy = errors.New("a request is already in flight on this connection")
)

type frameResult struct {
	resp *protocol.Response
	err  error
}

// Conn is a client connection to a strata tick database server.
//
// The server correlates responses to commands purely by order, so a
// Conn allows exactly one request in flight: overlapping calls from
// other goroutines fail with ErrBusy instead of racing for the next
// frame. Responses are delivered to waiters in FIFO issuance order by
// a dedicated read loop.
type Conn struct {
	timeout time.Duration
	dialer  *net.Dialer

	// reqMu serializes request/response round trips
	reqMu sync.Mutex

	conn net.Conn

	pendingMu sync.Mutex
	pending   []chan frameResult

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error

	log *zap.Logger
}

type Option func(*Conn)

// WithTimeout sets a default per-request timeout, applied whenever the
// caller's context carries no deadline of its own. Zero means no
// default timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Conn) {
		c.timeout = d
	}
}

// WithDialer overrides the net.Dialer used by Connect.
func WithDialer(d *net.Dialer) Option {
	return func(c *Conn) {
		c.dialer = d
	}
}

func New(log *zap.Logger, opts ...Option) *Conn {
	c := &Conn{
		log:     log,
		dialer:  &net.Dialer{},
		closed:  make(chan struct{}),
		pending: make([]chan frameResult, 0, 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Connect dials the server and starts the read loop.
func (c *Conn) Connect(ctx context.Context, addr string) error {
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("Failed to connect to %s: %w", addr, err)
	}

	c.conn = conn

	go c.readLoop()

	return nil
}

// Close closes the connection and fails any pending request with
// ErrClosed. Closing an already-closed connection is a no-op.
func (c *Conn) Close() error {
	c.shutdown(ErrClosed)
	return c.closeErr
}

// Exit closes the connection. The strata protocol has no goodbye
// command; hanging up is the goodbye.
func (c *Conn) Exit() error {
	return c.Close()
}

// Do writes the command as a newline-terminated line and waits for the
// next response frame on the connection.
//
// A protocol failure (success=0) is not an error: the returned
// Response carries Success=false and the server's diagnostic payload.
// Errors are reserved for the transport, framing, cancellation and
// in-flight violations.
func (c *Conn) Do(ctx context.Context, command string) (*protocol.Response, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}

	if !c.reqMu.TryLock() {
		return nil, ErrBusy
	}
	defer c.reqMu.Unlock()

	select {
	case <-c.closed:
		return nil, ErrClosed
	default:
	}

	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	waiter := c.enqueueWaiter()

	if err := protocol.WriteCommand(c.conn, command); err != nil {
		c.shutdown(ErrClosed)
		return nil, fmt.Errorf("Failed to send '%s': %w", command, err)
	}

	select {
	case res := <-waiter:
		if res.err != nil {
			return nil, res.err
		}
		return res.resp, nil

	case <-ctx.Done():
		// A response may still arrive for this command. It can no
		// longer be matched to any request, so the connection cannot
		// be reused.
		c.shutdown(ErrClosed)
		return nil, ctx.Err()
	}
}

func (c *Conn) readLoop() {
	log := c.log.Named("readLoop")

	for {
		resp, err := protocol.ReadResponse(c.conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Warn("Failed to read server response", zap.Error(err))
			}

			c.failPending(fmt.Errorf("connection lost: %w", err))
			c.shutdown(ErrClosed)
			return
		}

		quit := endsInExit(resp.Text())

		c.dispatch(resp, log)

		if quit {
			log.Info("Server asked us to exit, closing connection")
			c.shutdown(ErrClosed)
			return
		}
	}
}

// dispatch delivers a frame to the oldest waiter.
func (c *Conn) dispatch(resp *protocol.Response, log *zap.Logger) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	if len(c.pending) == 0 {
		log.Warn("Discarding frame that no request is waiting for",
			zap.Bool("success", resp.Success),
			zap.Int("payloadSize", len(resp.Payload)))
		return
	}

	waiter := c.pending[0]
	c.pending = c.pending[1:]

	waiter <- frameResult{resp: resp}
	close(waiter)
}

func (c *Conn) enqueueWaiter() <-chan frameResult {
	waiter := make(chan frameResult, 1)

	c.pendingMu.Lock()
	c.pending = append(c.pending, waiter)
	c.pendingMu.Unlock()

	return waiter
}

func (c *Conn) failPending(err error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	for _, waiter := range c.pending {
		waiter <- frameResult{err: err}
		close(waiter)
	}

	c.pending = c.pending[:0]
}

func (c *Conn) shutdown(reason error) {
	c.closeOnce.Do(func() {
		close(c.closed)

		if c.conn != nil {
			c.closeErr = multierr.Append(c.closeErr, c.conn.Close())
		}

		c.failPending(reason)
	})
}

// endsInExit reports whether the decoded response text ends with the
// literal `exit` token, which the server sends when it wants the
// client to hang up.
func endsInExit(text string) bool {
	return strings.HasSuffix(strings.TrimSpace(text), "exit")
}

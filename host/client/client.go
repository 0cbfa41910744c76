// Package client talks to a pinctl daemon over the framed link protocol.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pinctl/core"
	"pinctl/host/serial"
	"pinctl/protocol"
)

// ErrClosed is returned for requests on a closed client or a dead link
var ErrClosed = errors.New("link closed")

// DefaultTimeout bounds one request/reply exchange when the context has no
// earlier deadline
const DefaultTimeout = time.Second

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the client logger
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client is a connection to a daemon. Requests are sent one at a time.
type Client struct {
	rwc     io.ReadWriteCloser
	conn    *protocol.Conn
	log     *slog.Logger
	timeout time.Duration

	mu  sync.Mutex // one exchange in flight
	seq uint8

	frames  chan protocol.Frame
	done    chan struct{}
	readErr error

	commands map[string]uint16
	dict     string

	closeOnce sync.Once
}

// Dial opens the serial port described by cfg and retrieves the daemon's
// command dictionary
func Dial(ctx context.Context, cfg *serial.Config, opts ...Option) (*Client, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("flush %s: %w", cfg.Device, err)
	}
	c := New(port, opts...)
	if err := c.Identify(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// New wraps an open stream. Call Identify before using named operations.
func New(rwc io.ReadWriteCloser, opts ...Option) *Client {
	c := &Client{
		rwc:     rwc,
		conn:    protocol.NewConn(rwc),
		timeout: DefaultTimeout,
		seq:     protocol.MessageDest,
		frames:  make(chan protocol.Frame, 4),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	go c.readLoop()
	return c
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		f, err := c.conn.ReadFrame()
		if err != nil {
			c.readErr = err
			return
		}
		select {
		case c.frames <- f:
		default:
			// nobody is waiting; a reply to a request that already timed out
			c.log.Debug("dropping unsolicited reply", "seq", f.Seq)
		}
	}
}

// Close shuts the link down
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.rwc.Close()
	})
	return err
}

// Identify retrieves the command dictionary in chunks
func (c *Client) Identify(ctx context.Context) error {
	var b strings.Builder
	for offset := 0; ; {
		r, err := c.exchange(ctx, protocol.IdentifyCommandID, []any{offset, protocol.IdentifyChunkSize})
		if err != nil {
			return fmt.Errorf("identify at offset %d: %w", offset, err)
		}
		if _, err := r.Result(); err != nil {
			return fmt.Errorf("identify at offset %d: %w", offset, err)
		}
		if int(r.Value) != offset {
			return fmt.Errorf("identify offset mismatch: expected %d, got %d", offset, r.Value)
		}
		if r.Detail == "" {
			break
		}
		b.WriteString(r.Detail)
		offset += len(r.Detail)
		if len(r.Detail) < protocol.IdentifyChunkSize {
			break
		}
	}

	dict := b.String()
	header, _, _ := strings.Cut(dict, "\n")
	if header != protocol.Version {
		return fmt.Errorf("unsupported link version %q (want %q)", header, protocol.Version)
	}
	commands, err := core.ParseDictionary(dict)
	if err != nil {
		return fmt.Errorf("parse dictionary: %w", err)
	}

	c.mu.Lock()
	c.dict = dict
	c.commands = commands
	c.mu.Unlock()
	c.log.Debug("dictionary retrieved", "bytes", len(dict), "commands", len(commands))
	return nil
}

// Dictionary returns the raw dictionary text from the last Identify
func (c *Client) Dictionary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dict
}

// Commands returns the name to ID map from the last Identify
func (c *Client) Commands() map[string]uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint16, len(c.commands))
	for k, v := range c.commands {
		out[k] = v
	}
	return out
}

// Call invokes an operation by name. Failures reported by the daemon come
// back as the same typed errors a local core.Dispatcher returns.
func (c *Client) Call(ctx context.Context, name string, args ...any) (any, error) {
	c.mu.Lock()
	id, ok := c.commands[name]
	c.mu.Unlock()
	if !ok {
		return nil, &core.UnknownCommandError{Name: name}
	}
	r, err := c.exchange(ctx, id, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return r.Result()
}

func (c *Client) NumPins(ctx context.Context) (int, error) {
	return c.callInt(ctx, core.OpNumPins)
}

// Setup initializes the daemon's driver and returns its status code
func (c *Client) Setup(ctx context.Context) (int, error) {
	return c.callInt(ctx, core.OpSetup)
}

func (c *Client) PinMode(ctx context.Context, pin int, mode core.Mode) error {
	_, err := c.Call(ctx, core.OpPinMode, pin, mode)
	return err
}

func (c *Client) DigitalWrite(ctx context.Context, pin int, level core.Level) error {
	_, err := c.Call(ctx, core.OpDigitalWrite, pin, level)
	return err
}

func (c *Client) DigitalRead(ctx context.Context, pin int) (int, error) {
	return c.callInt(ctx, core.OpDigitalRead, pin)
}

// DelayMicroseconds makes the daemon busy-wait; the exchange timeout is
// extended by the delay
func (c *Client) DelayMicroseconds(ctx context.Context, us int) error {
	if us > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout+time.Duration(us)*time.Microsecond)
		defer cancel()
	}
	_, err := c.Call(ctx, core.OpDelayMicroseconds, us)
	return err
}

func (c *Client) callInt(ctx context.Context, name string, args ...any) (int, error) {
	v, err := c.Call(ctx, name, args...)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("%s: reply carries no value", name)
	}
	return n, nil
}

// exchange sends one request and waits for the reply with the same sequence
func (c *Client) exchange(ctx context.Context, id uint16, args []any) (protocol.Reply, error) {
	payload, err := protocol.EncodeRequest(protocol.Request{CommandID: id, Args: args})
	if err != nil {
		return protocol.Reply{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.seq = protocol.NextSeq(c.seq)
	seq := c.seq
	if err := c.conn.WriteFrame(seq, payload); err != nil {
		return protocol.Reply{}, fmt.Errorf("send: %w", err)
	}

	for {
		select {
		case f := <-c.frames:
			if f.Seq != seq {
				c.log.Debug("discarding stale reply", "seq", f.Seq, "want", seq)
				continue
			}
			r, err := protocol.DecodeReply(f.Payload)
			if err != nil {
				return protocol.Reply{}, fmt.Errorf("decode reply: %w", err)
			}
			return r, nil
		case <-c.done:
			if c.readErr != nil && !errors.Is(c.readErr, io.EOF) {
				return protocol.Reply{}, fmt.Errorf("%w: %v", ErrClosed, c.readErr)
			}
			return protocol.Reply{}, ErrClosed
		case <-ctx.Done():
			return protocol.Reply{}, ctx.Err()
		}
	}
}

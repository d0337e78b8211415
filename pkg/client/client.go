package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/time/rate"

	"github.com/robotalks/hardsync.go/pkg/contract"
	"github.com/robotalks/hardsync.go/pkg/protocol"
	"github.com/robotalks/hardsync.go/pkg/transport"
)

// DefaultTimeout bounds a round trip when the context has no deadline.
const DefaultTimeout = 2 * time.Second

// Response is a decoded response line.
type Response struct {
	protocol.Call
	Line string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout, zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.Timeout = timeout
	}
}

// WithRateLimit paces requests to r per second with bursts of burst.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		c.Limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// Client sends requests and waits for their responses.
// Concurrent calls are serialized, there is only one outstanding
// request on the line.
type Client struct {
	Transport transport.LineTransport
	Encoding  protocol.Encoding
	Timeout   time.Duration
	Limiter   *rate.Limiter

	lock sync.Mutex
	buf  []byte
}

// New creates a Client.
func New(t transport.LineTransport, enc protocol.Encoding, opts ...Option) *Client {
	c := &Client{Transport: t, Encoding: enc, Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call sends name with the request suffix and returns the decoded response.
// ErrorResponse is returned as *RemoteError.
func (c *Client) Call(ctx context.Context, name string, args ...protocol.Argument) (*Response, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.Timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.Timeout)
			defer cancel()
		}
	}
	c.buf = c.Encoding.AppendEncode(c.buf[:0], name, protocol.Request, args...)
	if glog.V(2) {
		glog.Infof("SND %q", c.buf)
	}
	if err := c.Transport.WriteLine(c.buf); err != nil {
		return nil, err
	}
	line, err := c.Transport.ReadLine(ctx)
	if err != nil {
		return nil, err
	}
	if glog.V(2) {
		glog.Infof("RCV %q", line)
	}
	call, err := c.Encoding.Decode(line)
	if err != nil {
		return nil, err
	}
	resp := &Response{Call: call, Line: line}
	if call.Name == c.Encoding.WireName(contract.ErrorName, protocol.Response) {
		msg, _ := call.Args.Lookup(contract.MessageKey)
		return resp, &RemoteError{Msg: msg}
	}
	if expected := c.Encoding.WireName(name, protocol.Response); call.Name != expected {
		return resp, &UnexpectedResponseError{Expected: expected, Got: call.Name}
	}
	return resp, nil
}

// Invoke calls a contract with values in declared argument order and
// returns the declared return value, the zero Value if there is none.
func (c *Client) Invoke(ctx context.Context, ct *contract.Contract, vals ...protocol.Value) (protocol.Value, error) {
	if len(vals) != len(ct.Args) {
		return protocol.Value{}, fmt.Errorf("%s: %d arguments given, %d declared", ct.Name, len(vals), len(ct.Args))
	}
	args := make([]protocol.Argument, len(vals))
	for n, val := range vals {
		if val.Type() != ct.Args[n].Type {
			return protocol.Value{}, fmt.Errorf("%s: argument %s is %v, declared %v", ct.Name, ct.Args[n].Name, val.Type(), ct.Args[n].Type)
		}
		args[n] = protocol.Argument{Key: ct.Args[n].Name, Value: val.String()}
	}
	resp, err := c.Call(ctx, ct.Name, args...)
	if err != nil || !ct.HasReturn() {
		return protocol.Value{}, err
	}
	val, err := resp.Extract(ct.Return.Name, ct.Return.Type)
	if err != nil {
		return protocol.Value{}, fmt.Errorf("%w: %v", ErrMissingReturn, err)
	}
	return val, nil
}

// Identify asks for the identity of the device.
func (c *Client) Identify(ctx context.Context) (string, error) {
	resp, err := c.Call(ctx, contract.IdentifyName)
	if err != nil {
		return "", err
	}
	id, err := resp.String(contract.IdentityKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingReturn, err)
	}
	return id, nil
}

// Ping checks the device speaks the protocol.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Call(ctx, contract.PingName)
	return err
}

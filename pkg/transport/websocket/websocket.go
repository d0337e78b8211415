// Package websocket carries protocol lines as websocket messages.
package websocket

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/hardsync.go/pkg/framework"
	"github.com/robotalks/hardsync.go/pkg/transport"
)

// Transport implements transport.LineTransport, one text message per line.
type Transport struct {
	Conn       *websocket.Conn
	Terminator string

	lines     *transport.LineQueue
	writeLock sync.Mutex
}

// New wraps a websocket connection.
func New(conn *websocket.Conn, terminator string) *Transport {
	return &Transport{Conn: conn, Terminator: terminator, lines: transport.NewLineQueue(0)}
}

// Dial connects to a websocket endpoint like ws://host:port/path.
func Dial(url, origin, terminator string) (*Transport, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return New(conn, terminator), nil
}

// Available implements transport.LineTransport.
func (t *Transport) Available() bool {
	return t.lines.Available()
}

// ReadLine implements transport.LineTransport.
func (t *Transport) ReadLine(ctx context.Context) (string, error) {
	return t.lines.ReadLine(ctx)
}

// WriteLine implements transport.LineTransport.
func (t *Transport) WriteLine(line []byte) error {
	t.writeLock.Lock()
	defer t.writeLock.Unlock()
	return websocket.Message.Send(t.Conn, string(line))
}

// Run implements fx.Runnable. It receives until the connection fails or
// ctx is done, and closes the connection on return.
func (t *Transport) Run(ctx context.Context) error {
	err := fx.RunWithContextCloser(ctx, t.Conn, func() error {
		for {
			var msg string
			if err := websocket.Message.Receive(t.Conn, &msg); err != nil {
				return err
			}
			line := transport.TrimTerminator(msg, t.Terminator)
			glog.V(2).Infof("RCV %q", line)
			if err := t.lines.Push(ctx, line); err != nil {
				return err
			}
		}
	})
	if errors.Is(err, io.EOF) {
		t.lines.Close()
		return nil
	}
	t.lines.CloseWithError(err)
	return err
}

// Close closes the connection.
func (t *Transport) Close() error {
	t.lines.Close()
	return t.Conn.Close()
}

// ServeFunc serves a single connection until it's closed.
type ServeFunc func(ctx context.Context, t *Transport) error

// Handler creates an http.Handler serving each connection with fn.
func Handler(ctx context.Context, terminator string, fn ServeFunc) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		t := New(conn, terminator)
		glog.Infof("websocket %s connected", conn.Request().RemoteAddr)
		if err := fn(ctx, t); err != nil && !errors.Is(err, context.Canceled) {
			glog.Warningf("websocket %s: %v", conn.Request().RemoteAddr, err)
		}
		glog.Infof("websocket %s disconnected", conn.Request().RemoteAddr)
	})
}

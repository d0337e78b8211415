package stream

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/hardsync.go/pkg/framework"
)

// ServeFunc serves a single connection until it's closed.
type ServeFunc func(ctx context.Context, t *Transport) error

// Serve accepts connections on ln and serves each with fn until ctx is
// done or ln fails. Connections are closed before Serve returns.
func Serve(ctx context.Context, ln net.Listener, terminator string, fn ServeFunc) error {
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer wg.Wait()
	defer cancel()
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				addr := conn.RemoteAddr()
				glog.Infof("%s connected", addr)
				t := New(conn, terminator)
				if err := fn(ctx, t); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
					glog.Warningf("%s: %v", addr, err)
				}
				t.Close()
				glog.Infof("%s disconnected", addr)
			}()
		}
	})
}

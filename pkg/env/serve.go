package env

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/golang/glog"

	"github.com/robotalks/hardsync.go/pkg/dispatch"
	fx "github.com/robotalks/hardsync.go/pkg/framework"
	"github.com/robotalks/hardsync.go/pkg/protocol"
	"github.com/robotalks/hardsync.go/pkg/transport"
	"github.com/robotalks/hardsync.go/pkg/transport/stream"
	"github.com/robotalks/hardsync.go/pkg/transport/websocket"
)

// DispatcherFunc creates a dispatcher for one connection.
type DispatcherFunc func() (*dispatch.Dispatcher, error)

// ServeDevice serves the device side of rawURL until ctx is done.
// tcp://host:port and ws://host:port/path listen and serve every
// connection with its own dispatcher; other schemes open a single link.
func ServeDevice(ctx context.Context, rawURL string, opts LinkOptions, newDispatcher DispatcherFunc) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if opts.Terminator == "" {
		opts.Terminator = protocol.DefaultEncoding().Terminator
	}
	serve := func(ctx context.Context, t transport.LineTransport) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		return d.Serve(t).Run(ctx)
	}

	switch u.Scheme {
	case "tcp":
		ln, err := net.Listen("tcp", u.Host)
		if err != nil {
			return err
		}
		glog.Infof("listening %s", ln.Addr())
		return stream.Serve(ctx, ln, opts.Terminator, func(ctx context.Context, t *stream.Transport) error {
			return serve(ctx, t)
		})
	case "ws":
		ln, err := net.Listen("tcp", u.Host)
		if err != nil {
			return err
		}
		path := u.Path
		if path == "" {
			path = "/"
		}
		mux := http.NewServeMux()
		mux.Handle(path, websocket.Handler(ctx, opts.Terminator, func(ctx context.Context, t *websocket.Transport) error {
			return serve(ctx, t)
		}))
		srv := &http.Server{Handler: mux}
		glog.Infof("listening ws://%s%s", ln.Addr(), path)
		err = fx.RunWithContextCancel(ctx, func() { srv.Close() }, func() error { return srv.Serve(ln) })
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case "wss":
		return fmt.Errorf("%w: %q devices can't listen", ErrUnknownScheme, u.Scheme)
	}

	link, err := OpenLink(ctx, rawURL, DeviceSide, opts)
	if err != nil {
		return err
	}
	defer link.Close()
	glog.Infof("serving %s", rawURL)
	return serve(ctx, link)
}

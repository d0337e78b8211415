package stream

import (
	"context"
	"net"

	"github.com/golang/glog"
)

// Dial connects to a TCP endpoint.
func Dial(ctx context.Context, addr, terminator string) (*Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	glog.Infof("connected %s", conn.RemoteAddr())
	return New(conn, terminator), nil
}

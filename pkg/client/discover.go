package client

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/hardsync.go/pkg/protocol"
	"github.com/robotalks/hardsync.go/pkg/transport"
)

// OpenFunc opens the transport of a candidate device.
type OpenFunc func(ctx context.Context) (transport.LineTransport, error)

// Candidate is a place where a device may be found.
type Candidate struct {
	Name string
	Open OpenFunc
}

// Found is a device answering the handshake.
type Found struct {
	Name     string
	Identity string
	Client   *Client
}

// Discover tries every candidate in order: a candidate is a device if it
// answers Ping and Identify. Transports of other candidates are closed.
func Discover(ctx context.Context, enc protocol.Encoding, candidates []Candidate, opts ...Option) []Found {
	var found []Found
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}
		glog.Infof("trying candidate device %s", candidate.Name)
		t, err := candidate.Open(ctx)
		if err != nil {
			glog.Warningf("candidate %s: %v", candidate.Name, err)
			continue
		}
		c := New(t, enc, opts...)
		id, err := handshake(ctx, c)
		if err != nil {
			glog.Infof("incompatible device %s: %v", candidate.Name, err)
			if closer, ok := t.(io.Closer); ok {
				closer.Close()
			}
			continue
		}
		glog.Infof("found device %s at %s", id, candidate.Name)
		found = append(found, Found{Name: candidate.Name, Identity: id, Client: c})
	}
	if len(found) == 0 {
		if len(candidates) == 0 {
			glog.Error("no candidate devices, is the device connected?")
		} else {
			glog.Error("unable to find a compatible device, is the firmware uploaded?")
		}
	}
	return found
}

func handshake(ctx context.Context, c *Client) (string, error) {
	if err := c.Ping(ctx); err != nil {
		return "", err
	}
	return c.Identify(ctx)
}

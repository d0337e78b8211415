package env

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/robotalks/hardsync.go/pkg/client"
	fx "github.com/robotalks/hardsync.go/pkg/framework"
	"github.com/robotalks/hardsync.go/pkg/protocol"
	"github.com/robotalks/hardsync.go/pkg/transport"
	"github.com/robotalks/hardsync.go/pkg/transport/mqtt"
	"github.com/robotalks/hardsync.go/pkg/transport/serial"
	"github.com/robotalks/hardsync.go/pkg/transport/stream"
	"github.com/robotalks/hardsync.go/pkg/transport/websocket"
)

// ErrUnknownScheme indicates a transport URL scheme without transport.
var ErrUnknownScheme = errors.New("env: unknown transport scheme")

// Link is an opened transport. Lines are received while Run is running.
type Link interface {
	transport.LineTransport
	fx.Runnable
	io.Closer
}

// Side tells which end of the link is opened.
type Side int

// Sides.
const (
	HostSide Side = iota
	DeviceSide
)

// LinkOptions are the parameters not carried by the URL.
type LinkOptions struct {
	Terminator string
	// Baud applies to serial URLs without baud parameter.
	Baud int
	// Origin of websocket connections.
	Origin string
}

// OpenLink opens the transport in rawURL.
func OpenLink(ctx context.Context, rawURL string, side Side, opts LinkOptions) (Link, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if opts.Terminator == "" {
		opts.Terminator = protocol.DefaultEncoding().Terminator
	}
	switch u.Scheme {
	case "serial":
		conf := serial.Config{Device: u.Path, Baud: opts.Baud, Terminator: opts.Terminator}
		if val := u.Query().Get("baud"); val != "" {
			if conf.Baud, err = strconv.Atoi(val); err != nil {
				return nil, fmt.Errorf("invalid baud %q: %w", val, err)
			}
		}
		return linkOf(serial.Open(conf))
	case "tcp":
		if side == DeviceSide {
			return nil, fmt.Errorf("%w: tcp devices listen, see ServeDevice", ErrUnknownScheme)
		}
		return linkOf(stream.Dial(ctx, u.Host, opts.Terminator))
	case "mqtt", "mqtts", "ssl", "ws+mqtt":
		role := mqtt.HostRole
		if side == DeviceSide {
			role = mqtt.DeviceRole
		}
		return linkOf(mqtt.Dial(rawURL, role, opts.Terminator))
	case "ws", "wss":
		origin := opts.Origin
		if origin == "" {
			origin = "http://localhost/"
		}
		return linkOf(websocket.Dial(rawURL, origin, opts.Terminator))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, u.Scheme)
}

func linkOf[T Link](link T, err error) (Link, error) {
	if err != nil {
		return nil, err
	}
	return link, nil
}

// SerialPatterns are the device paths probed by SerialCandidates.
var SerialPatterns = []string{
	"/dev/ttyACM*",
	"/dev/ttyUSB*",
	"/dev/cu.usbmodem*",
	"/dev/cu.usbserial*",
}

// SerialCandidates lists the serial ports present, preferred first.
func (c *Config) SerialCandidates(ctx context.Context, enc protocol.Encoding, preferred string) []client.Candidate {
	var ports []string
	for _, pattern := range SerialPatterns {
		matches, _ := filepath.Glob(pattern)
		ports = append(ports, matches...)
	}
	sort.SliceStable(ports, func(i, j int) bool {
		return ports[i] == preferred && ports[j] != preferred
	})
	candidates := make([]client.Candidate, 0, len(ports))
	for _, port := range ports {
		candidates = append(candidates, c.Candidate(ctx, "serial://"+port, enc))
	}
	return candidates
}

// Candidate creates a discovery candidate for a transport URL. The link
// receives in the background until ctx is done.
func (c *Config) Candidate(ctx context.Context, rawURL string, enc protocol.Encoding) client.Candidate {
	return client.Candidate{
		Name: rawURL,
		Open: func(openCtx context.Context) (transport.LineTransport, error) {
			link, err := OpenLink(openCtx, rawURL, HostSide, LinkOptions{Terminator: enc.Terminator, Baud: c.Baud})
			if err != nil {
				return nil, err
			}
			go link.Run(ctx)
			return link, nil
		},
	}
}

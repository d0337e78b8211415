// Package env provides the common configuration of the commands: flags,
// environment variables and opening transports from URLs.
package env

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/hardsync.go/pkg/client"
	"github.com/robotalks/hardsync.go/pkg/contract"
	"github.com/robotalks/hardsync.go/pkg/dispatch"
	"github.com/robotalks/hardsync.go/pkg/protocol"
)

// ErrNoContract indicates no contract document is configured.
var ErrNoContract = errors.New("env: contract document not specified")

// Config provides the common options of the commands.
type Config struct {
	// Transport is the URL of the device link, e.g.
	// serial:///dev/ttyACM0?baud=9600, tcp://localhost:7878,
	// mqtt://broker:1883/lab/?device=bench-01 or ws://localhost:7879/line.
	Transport string
	// Contract is the path of the contract document.
	Contract string
	// DeviceID is the identity of a simulated device, the machine ID by default.
	DeviceID string
	// Baud is the serial baud rate when neither the URL nor the document specify it.
	Baud int
	// Timeout bounds a request/response round trip.
	Timeout time.Duration
	// Rate paces requests per second, zero disables pacing.
	Rate float64
}

var defaultConfig = Config{
	Transport: "tcp://localhost:7878",
	Baud:      contract.DefaultBaud,
	Timeout:   client.DefaultTimeout,
}

func init() {
	if val := os.Getenv("HARDSYNC_TRANSPORT"); val != "" {
		defaultConfig.Transport = val
	}
	if val := os.Getenv("HARDSYNC_CONTRACT"); val != "" {
		defaultConfig.Contract = val
	}
	if val := os.Getenv("HARDSYNC_DEVICE_ID"); val != "" {
		defaultConfig.DeviceID = val
	}
	if val := os.Getenv("HARDSYNC_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		}
	}
}

// SetupFlags sets up command line flags on the default config.
func SetupFlags() {
	SetupFlagsOn(flag.CommandLine, &defaultConfig)
}

// SetupFlagsOn sets up flags of conf on fs.
func SetupFlagsOn(fs *flag.FlagSet, conf *Config) {
	fs.StringVar(&conf.Transport, "transport", conf.Transport, "Transport URL of the device.")
	fs.StringVar(&conf.Contract, "contract", conf.Contract, "Contract document (.yaml, .toml or .json).")
	fs.StringVar(&conf.DeviceID, "device-id", conf.DeviceID, "Device identity, machine ID by default.")
	fs.IntVar(&conf.Baud, "baud", conf.Baud, "Serial baud rate.")
	fs.DurationVar(&conf.Timeout, "timeout", conf.Timeout, "Request timeout.")
	fs.Float64Var(&conf.Rate, "rate", conf.Rate, "Max requests per second, 0 for unlimited.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Identity returns DeviceID or the machine ID.
func (c *Config) Identity() dispatch.Identifier {
	if c.DeviceID != "" {
		return dispatch.StaticIdentity(c.DeviceID)
	}
	return dispatch.StaticIdentity(MachineID(dispatch.DefaultIdentity))
}

// LoadContracts loads and builds the contract document.
func (c *Config) LoadContracts() (*contract.Document, *contract.Set, error) {
	if c.Contract == "" {
		return nil, nil, ErrNoContract
	}
	doc, err := contract.LoadFile(c.Contract)
	if err != nil {
		return nil, nil, err
	}
	set, err := doc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", c.Contract, err)
	}
	if doc.Baud != 0 {
		c.Baud = doc.Baud
	}
	glog.V(3).Infof("%s: %d commands", c.Contract, set.Len())
	return doc, set, nil
}

// ClientOptions converts the config to client options.
func (c *Config) ClientOptions() []client.Option {
	opts := []client.Option{client.WithTimeout(c.Timeout)}
	if c.Rate > 0 {
		opts = append(opts, client.WithRateLimit(c.Rate, 1))
	}
	return opts
}

// Connect opens the transport as host and creates a client on it.
// The link receives in the background until ctx is done or it's closed.
func (c *Config) Connect(ctx context.Context, enc protocol.Encoding) (*client.Client, Link, error) {
	link, err := OpenLink(ctx, c.Transport, HostSide, LinkOptions{Terminator: enc.Terminator, Baud: c.Baud})
	if err != nil {
		return nil, nil, err
	}
	go func() {
		if err := link.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			glog.Warningf("link %s: %v", c.Transport, err)
		}
	}()
	return client.New(link, enc, c.ClientOptions()...), link, nil
}

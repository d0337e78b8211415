// devsim simulates a device on any transport: the bench instrument by
// default, or a register device for the commands of -contract.
package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/hardsync.go/pkg/device/bench"
	"github.com/robotalks/hardsync.go/pkg/device/stub"
	"github.com/robotalks/hardsync.go/pkg/dispatch"
	"github.com/robotalks/hardsync.go/pkg/env"
	fx "github.com/robotalks/hardsync.go/pkg/framework"
	"github.com/robotalks/hardsync.go/pkg/protocol"
)

var benchConf = bench.DefaultConfig()

func init() {
	env.SetupFlags()
	flag.IntVar(&benchConf.Channels, "channels", benchConf.Channels, "Bench output channels.")
	flag.Float64Var(&benchConf.MaxVolts, "max-volts", benchConf.MaxVolts, "Bench max output voltage.")
	flag.Float64Var(&benchConf.LoadOhms, "load", benchConf.LoadOhms, "Bench load resistance in ohms.")
	flag.Float64Var(&benchConf.NoiseVolts, "noise", benchConf.NoiseVolts, "Bench measurement noise in volts.")
	flag.Int64Var(&benchConf.Seed, "seed", benchConf.Seed, "Bench noise seed.")
}

// newDevice creates the dispatcher factory of the simulated device.
// Connections share the device, each gets its own dispatcher.
func newDevice(conf *env.Config, benchConf bench.Config) (protocol.Encoding, env.DispatcherFunc, error) {
	identity := dispatch.WithIdentity(conf.Identity())
	if conf.Contract == "" {
		inst := bench.New(benchConf)
		return protocol.DefaultEncoding(), func() (*dispatch.Dispatcher, error) {
			return bench.NewDispatcher(inst, identity, dispatch.WithLogPrefix("bench: "))
		}, nil
	}
	_, set, err := conf.LoadContracts()
	if err != nil {
		return protocol.Encoding{}, nil, err
	}
	dev := stub.New()
	return set.Encoding(), func() (*dispatch.Dispatcher, error) {
		return dev.Dispatcher(set, identity, dispatch.WithLogPrefix("stub: "))
	}, nil
}

func main() {
	flag.Parse()

	conf := env.Default()
	enc, newDispatcher, err := newDevice(conf, benchConf)
	if err != nil {
		glog.Exit(err)
	}
	opts := env.LinkOptions{Terminator: enc.Terminator, Baud: conf.Baud}
	err = fx.NewRunner().HandleSignals().Go(fx.NamedRun("devsim", fx.RunFunc(func(ctx context.Context) error {
		return env.ServeDevice(ctx, conf.Transport, opts, newDispatcher)
	}))).Wait()
	if err != nil {
		glog.Exit(err)
	}
}

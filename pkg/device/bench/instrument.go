// Package bench simulates a bench instrument: a few output channels
// driving resistive loads, with noisy voltage and current measurements.
package bench

//go:generate go run ../../../cmd/hsgen generate -p bench -o bench_gen.go bench.yaml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/hardsync.go/pkg/contract"
	"github.com/robotalks/hardsync.go/pkg/dispatch"
	"github.com/robotalks/hardsync.go/pkg/protocol"
)

// Default parameters of an Instrument.
const (
	DefaultChannels   = 4
	DefaultMaxVolts   = 24.0
	DefaultLoadOhms   = 100.0
	DefaultNoiseVolts = 0.002
	DefaultCelsius    = 23.5
	MaxLabelLength    = 32
)

var (
	// ErrChannel indicates a channel number out of range.
	ErrChannel = errors.New("bench: no such channel")
	// ErrOverVoltage indicates an output beyond the limit.
	ErrOverVoltage = errors.New("bench: over voltage")
	// ErrIntegrationTime indicates a non-positive integration time.
	ErrIntegrationTime = errors.New("bench: integration time must be positive")
	// ErrLabelTooLong indicates a label longer than MaxLabelLength.
	ErrLabelTooLong = errors.New("bench: label too long")
)

// Config configures an Instrument.
type Config struct {
	Channels   int
	MaxVolts   float64
	LoadOhms   float64
	NoiseVolts float64
	Seed       int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Channels:   DefaultChannels,
		MaxVolts:   DefaultMaxVolts,
		LoadOhms:   DefaultLoadOhms,
		NoiseVolts: DefaultNoiseVolts,
		Seed:       1,
	}
}

// Instrument implements Device.
type Instrument struct {
	conf    Config
	lock    sync.Mutex
	outputs []float64
	label   string
	rnd     *rand.Rand
}

// New creates an Instrument.
func New(conf Config) *Instrument {
	if conf.Channels <= 0 {
		conf.Channels = DefaultChannels
	}
	if conf.LoadOhms <= 0 {
		conf.LoadOhms = DefaultLoadOhms
	}
	return &Instrument{
		conf:    conf,
		outputs: make([]float64, conf.Channels),
		rnd:     rand.New(rand.NewSource(conf.Seed)),
	}
}

// NewDispatcher creates a woven dispatcher serving inst with the default encoding.
func NewDispatcher(inst *Instrument, opts ...dispatch.Option) (*dispatch.Dispatcher, error) {
	enc := protocol.DefaultEncoding()
	set, err := contract.BuildSet(enc, Contracts())
	if err != nil {
		return nil, err
	}
	d := dispatch.New(enc, set, opts...)
	if err := Bind(d, inst); err != nil {
		return nil, err
	}
	return d, nil
}

func (i *Instrument) channel(n int) error {
	if n < 0 || n >= len(i.outputs) {
		return fmt.Errorf("%w: %d", ErrChannel, n)
	}
	return nil
}

// noise averages out with longer integration times.
func (i *Instrument) noise(integrationTime float64) float64 {
	if i.conf.NoiseVolts == 0 {
		return 0
	}
	return i.rnd.NormFloat64() * i.conf.NoiseVolts / math.Sqrt(integrationTime)
}

func (i *Instrument) measure(channel int, integrationTime float64) (float64, error) {
	if err := i.channel(channel); err != nil {
		return 0, err
	}
	if integrationTime <= 0 {
		return 0, ErrIntegrationTime
	}
	return i.outputs[channel] + i.noise(integrationTime), nil
}

// MeasureVoltage implements Device.
func (i *Instrument) MeasureVoltage(channel int, integrationTime float64) (float64, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	return i.measure(channel, integrationTime)
}

// MeasureCurrent implements Device.
func (i *Instrument) MeasureCurrent(channel int, integrationTime float64) (float64, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	v, err := i.measure(channel, integrationTime)
	return v / i.conf.LoadOhms, err
}

// SetOutput implements Device.
func (i *Instrument) SetOutput(channel int, volts float64) error {
	i.lock.Lock()
	defer i.lock.Unlock()
	if err := i.channel(channel); err != nil {
		return err
	}
	if i.conf.MaxVolts > 0 && math.Abs(volts) > i.conf.MaxVolts {
		return fmt.Errorf("%w: %g V", ErrOverVoltage, volts)
	}
	i.outputs[channel] = volts
	glog.V(1).Infof("channel %d set to %g V", channel, volts)
	return nil
}

// SetLabel implements Device.
func (i *Instrument) SetLabel(text string) error {
	if len(text) > MaxLabelLength {
		return ErrLabelTooLong
	}
	i.lock.Lock()
	defer i.lock.Unlock()
	i.label = text
	return nil
}

// GetLabel implements Device.
func (i *Instrument) GetLabel() (string, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	return i.label, nil
}

// Temperature implements Device. Power dissipated in the loads warms up
// the instrument.
func (i *Instrument) Temperature() (float32, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	var watts float64
	for _, v := range i.outputs {
		watts += v * v / i.conf.LoadOhms
	}
	return float32(DefaultCelsius + watts*0.5), nil
}

// Reset implements Device.
func (i *Instrument) Reset() error {
	i.lock.Lock()
	defer i.lock.Unlock()
	for n := range i.outputs {
		i.outputs[n] = 0
	}
	i.label = ""
	glog.Info("instrument reset")
	return nil
}

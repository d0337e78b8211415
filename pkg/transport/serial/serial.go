// Package serial opens line transports on serial ports.
package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	tarm "github.com/tarm/serial"

	"github.com/robotalks/hardsync.go/pkg/transport/stream"
)

// DefaultBaud matches the default of most boards.
const DefaultBaud = 9600

// Config specifies the serial port.
type Config struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
	Terminator  string
}

// device is the part of *tarm.Port a Port uses.
type device interface {
	io.ReadWriteCloser
	Flush() error
}

var openDevice = func(conf *tarm.Config) (device, error) {
	p, err := tarm.OpenPort(conf)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Port is a line transport over a serial port.
type Port struct {
	*stream.Transport
	Config Config

	port device
}

// Open opens the serial port. Run must be started to receive lines.
// Bytes the board sent before the port opened, like a boot banner,
// are flushed so the first line read is a response.
func Open(conf Config) (*Port, error) {
	if conf.Baud == 0 {
		conf.Baud = DefaultBaud
	}
	if conf.Terminator == "" {
		conf.Terminator = "\n"
	}
	p, err := openDevice(&tarm.Config{
		Name:        conf.Device,
		Baud:        conf.Baud,
		ReadTimeout: conf.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", conf.Device, err)
	}
	glog.Infof("serial %s opened at %d baud", conf.Device, conf.Baud)
	port := &Port{Transport: stream.New(p, conf.Terminator), Config: conf, port: p}
	port.RetryEOF = conf.ReadTimeout > 0
	if err := port.Flush(); err != nil {
		p.Close()
		return nil, fmt.Errorf("flush serial %s: %w", conf.Device, err)
	}
	return port, nil
}

// Flush discards data written but not transmitted and data received but not read.
func (p *Port) Flush() error {
	return p.port.Flush()
}

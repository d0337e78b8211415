package serial

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	tarm "github.com/tarm/serial"
)

type fakeDevice struct {
	*strings.Reader
	out      bytes.Buffer
	flushErr error
	flushed  int
	closed   bool
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	return d.out.Write(p)
}

func (d *fakeDevice) Flush() error {
	d.flushed++
	return d.flushErr
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func withDevice(t *testing.T, dev *fakeDevice, openErr error) *tarm.Config {
	var conf tarm.Config
	saved := openDevice
	openDevice = func(c *tarm.Config) (device, error) {
		conf = *c
		if openErr != nil {
			return nil, openErr
		}
		return dev, nil
	}
	t.Cleanup(func() { openDevice = saved })
	return &conf
}

func TestOpen(t *testing.T) {
	testCases := []struct {
		name     string
		flushErr error
		openErr  error
		expect   error
	}{
		{"flushed on open", nil, nil, nil},
		{"flush failure", errors.New("flush failed"), nil, errors.New("flush serial /dev/ttyUSB0: flush failed")},
		{"open failure", nil, errors.New("no such device"), errors.New("open serial /dev/ttyUSB0: no such device")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dev := &fakeDevice{Reader: strings.NewReader("PingResponse()\n"), flushErr: tc.flushErr}
			conf := withDevice(t, dev, tc.openErr)
			port, err := Open(Config{Device: "/dev/ttyUSB0"})
			require.Equal(t, "/dev/ttyUSB0", conf.Name)
			require.Equal(t, DefaultBaud, conf.Baud)
			if tc.expect != nil {
				require.EqualError(t, err, tc.expect.Error())
				require.Nil(t, port)
				require.Equal(t, tc.openErr == nil, dev.closed)
				return
			}
			require.NoError(t, err)
			require.Equal(t, 1, dev.flushed)
			require.Equal(t, "\n", port.Config.Terminator)
			require.False(t, port.RetryEOF)
		})
	}
}

func TestPortLines(t *testing.T) {
	dev := &fakeDevice{Reader: strings.NewReader("PingResponse()\r\n")}
	withDevice(t, dev, nil)
	port, err := Open(Config{Device: "/dev/ttyACM0", Baud: 115200})
	require.NoError(t, err)

	require.NoError(t, port.WriteLine([]byte("PingRequest()\n")))
	require.Equal(t, "PingRequest()\n", dev.out.String())

	require.NoError(t, port.Run(context.Background()))
	line, err := port.ReadLine(context.Background())
	require.NoError(t, err)
	require.Equal(t, "PingResponse()", line)
	require.True(t, dev.closed)
}

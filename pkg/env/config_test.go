package env

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/hardsync.go/pkg/protocol"
)

func TestSetupFlagsOn(t *testing.T) {
	conf := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	SetupFlagsOn(fs, conf)
	require.NoError(t, fs.Parse([]string{
		"-transport", "serial:///dev/ttyUSB0?baud=115200",
		"-contract", "bench.yaml",
		"-device-id", "bench-01",
		"-timeout", "3s",
		"-rate", "20",
	}))
	assert.Equal(t, "serial:///dev/ttyUSB0?baud=115200", conf.Transport)
	assert.Equal(t, "bench.yaml", conf.Contract)
	assert.Equal(t, 3*time.Second, conf.Timeout)
	assert.Equal(t, "bench-01", conf.Identity().Identity())
	assert.Len(t, conf.ClientOptions(), 2)
	assert.NotEqual(t, conf, Default())
}

func TestIdentityFallsBack(t *testing.T) {
	conf := &Config{}
	assert.NotEmpty(t, conf.Identity().Identity())
}

func TestLoadContracts(t *testing.T) {
	conf := &Config{}
	_, _, err := conf.LoadContracts()
	assert.True(t, errors.Is(err, ErrNoContract))

	path := filepath.Join(t.TempDir(), "dev.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baud: 57600\ncommands:\n  - name: Beep\n"), 0644))
	conf.Contract = path
	doc, set, err := conf.LoadContracts()
	require.NoError(t, err)
	assert.Equal(t, 57600, doc.Baud)
	assert.Equal(t, 57600, conf.Baud)
	assert.Equal(t, 1, set.Len())

	require.NoError(t, os.WriteFile(path, []byte("commands:\n  - name: Beep\n  - name: Beep\n"), 0644))
	_, _, err = conf.LoadContracts()
	assert.Error(t, err)
}

func TestOpenLinkErrors(t *testing.T) {
	ctx := context.Background()
	_, err := OpenLink(ctx, "gopher://host/", HostSide, LinkOptions{})
	assert.True(t, errors.Is(err, ErrUnknownScheme))
	_, err = OpenLink(ctx, "tcp://localhost:1", DeviceSide, LinkOptions{})
	assert.True(t, errors.Is(err, ErrUnknownScheme))
	_, err = OpenLink(ctx, "serial:///dev/null?baud=fast", HostSide, LinkOptions{})
	assert.Error(t, err)
}

func TestConnectTCP(t *testing.T) {
	ln, srv := listenEcho(t)
	defer ln.Close()
	conf := &Config{Transport: "tcp://" + ln.Addr().String(), Timeout: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c, link, err := conf.Connect(ctx, protocol.DefaultEncoding())
	require.NoError(t, err)
	defer link.Close()
	require.NoError(t, c.Ping(ctx))
	<-srv
}

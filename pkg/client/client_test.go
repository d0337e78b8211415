package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/hardsync.go/pkg/contract"
	"github.com/robotalks/hardsync.go/pkg/dispatch"
	"github.com/robotalks/hardsync.go/pkg/protocol"
	"github.com/robotalks/hardsync.go/pkg/transport"
)

func startDevice(t *testing.T, id string) (*Client, *contract.Set) {
	enc := protocol.DefaultEncoding()
	set, err := contract.BuildSet(enc, []contract.Spec{
		{
			Name:    "Scale",
			Args:    []contract.ArgDoc{{Name: "value", Type: "Double"}, {Name: "factor", Type: "Int"}},
			Returns: &contract.ArgDoc{Name: "result", Type: "Double"},
		},
		{Name: "Reset"},
	})
	require.NoError(t, err)
	d := dispatch.New(enc, set, dispatch.WithIdentity(dispatch.StaticIdentity(id)))
	require.NoError(t, d.Handle("Scale", func(in *dispatch.Inputs) (protocol.Value, error) {
		return protocol.DoubleValue(in.Double(0) * float64(in.Int(1))), nil
	}))
	require.NoError(t, d.Handle("Reset", func(in *dispatch.Inputs) (protocol.Value, error) {
		return protocol.Value{}, nil
	}))

	host, dev := transport.Pipe(enc.Terminator)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Serve(dev).Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return New(host, enc, WithTimeout(time.Second)), set
}

func TestCall(t *testing.T) {
	c, _ := startDevice(t, "bench-01")
	ctx := context.Background()

	resp, err := c.Call(ctx, "Scale", protocol.Argument{Key: "value", Value: "1.5"}, protocol.Argument{Key: "factor", Value: "4"})
	require.NoError(t, err)
	require.Equal(t, "ScaleResponse", resp.Name)
	require.Equal(t, "ScaleResponse(result=6)", resp.Line)
	v, err := resp.Double("result")
	require.NoError(t, err)
	require.Equal(t, 6.0, v)

	id, err := c.Identify(ctx)
	require.NoError(t, err)
	require.Equal(t, "bench-01", id)
	require.NoError(t, c.Ping(ctx))
}

func TestCallRemoteError(t *testing.T) {
	c, _ := startDevice(t, "bench-01")
	_, err := c.Call(context.Background(), "Scale", protocol.Argument{Key: "value", Value: "1"})
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	require.Equal(t, "Invalid argument factor: missing", remote.Msg)

	_, err = c.Call(context.Background(), "Launch")
	require.True(t, errors.As(err, &remote))
	require.Equal(t, "Unidentified command: LaunchRequest", remote.Msg)
}

func TestInvoke(t *testing.T) {
	c, set := startDevice(t, "bench-01")
	ctx := context.Background()
	scale, ok := set.LookupName("Scale")
	require.True(t, ok)
	v, err := c.Invoke(ctx, scale, protocol.DoubleValue(0.25), protocol.IntValue(2))
	require.NoError(t, err)
	require.Equal(t, protocol.TypeDouble, v.Type())
	require.Equal(t, 0.5, v.AsDouble())

	_, err = c.Invoke(ctx, scale, protocol.DoubleValue(0.25))
	require.Error(t, err)
	_, err = c.Invoke(ctx, scale, protocol.IntValue(1), protocol.IntValue(2))
	require.Error(t, err)

	reset, ok := set.LookupName("Reset")
	require.True(t, ok)
	v, err = c.Invoke(ctx, reset)
	require.NoError(t, err)
	require.Equal(t, protocol.TypeNone, v.Type())
}

func TestCallUnexpectedResponse(t *testing.T) {
	enc := protocol.DefaultEncoding()
	host, dev := transport.Pipe(enc.Terminator)
	c := New(host, enc)
	go func() {
		dev.ReadLine(context.Background())
		dev.WriteLine([]byte("OtherResponse()\n"))
	}()
	_, err := c.Call(context.Background(), "Ping")
	var unexpected *UnexpectedResponseError
	require.True(t, errors.As(err, &unexpected))
	require.Equal(t, "PingResponse", unexpected.Expected)
	require.Equal(t, "OtherResponse", unexpected.Got)
}

func TestCallMalformedResponse(t *testing.T) {
	enc := protocol.DefaultEncoding()
	host, dev := transport.Pipe(enc.Terminator)
	c := New(host, enc)
	go func() {
		dev.ReadLine(context.Background())
		dev.WriteLine([]byte("garbage\n"))
	}()
	_, err := c.Call(context.Background(), "Ping")
	var malformed *protocol.MalformedError
	require.True(t, errors.As(err, &malformed))
}

func TestCallTimeout(t *testing.T) {
	enc := protocol.DefaultEncoding()
	host, _ := transport.Pipe(enc.Terminator)
	c := New(host, enc, WithTimeout(20*time.Millisecond))
	_, err := c.Call(context.Background(), "Ping")
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestCallRateLimit(t *testing.T) {
	c, _ := startDevice(t, "bench-01")
	WithRateLimit(50, 1)(c)
	start := time.Now()
	for n := 0; n < 3; n++ {
		require.NoError(t, c.Ping(context.Background()))
	}
	require.True(t, time.Since(start) >= 30*time.Millisecond)
}

func TestDiscover(t *testing.T) {
	good, _ := startDevice(t, "bench-02")
	enc := protocol.DefaultEncoding()
	silent, _ := transport.Pipe(enc.Terminator)
	candidates := []Candidate{
		{Name: "missing", Open: func(context.Context) (transport.LineTransport, error) {
			return nil, errors.New("no such port")
		}},
		{Name: "silent", Open: func(context.Context) (transport.LineTransport, error) {
			return silent, nil
		}},
		{Name: "bench", Open: func(context.Context) (transport.LineTransport, error) {
			return good.Transport, nil
		}},
	}
	found := Discover(context.Background(), enc, candidates, WithTimeout(50*time.Millisecond))
	require.Len(t, found, 1)
	require.Equal(t, "bench", found[0].Name)
	require.Equal(t, "bench-02", found[0].Identity)
	require.True(t, silent.Available())
}

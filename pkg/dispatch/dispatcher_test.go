package dispatch

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/hardsync.go/pkg/contract"
	fx "github.com/robotalks/hardsync.go/pkg/framework"
	"github.com/robotalks/hardsync.go/pkg/protocol"
	"github.com/robotalks/hardsync.go/pkg/transport"
)

func benchSet(t *testing.T) *contract.Set {
	set, err := contract.BuildSet(protocol.DefaultEncoding(), []contract.Spec{
		{
			Name:    "MeasureVoltage",
			Args:    []contract.ArgDoc{{Name: "channel", Type: "Int"}, {Name: "integration_time", Type: "Double"}},
			Returns: &contract.ArgDoc{Name: "voltage", Type: "Double"},
		},
		{
			Name: "SetLabel",
			Args: []contract.ArgDoc{{Name: "text", Type: "String"}},
		},
		{
			Name:    "Temperature",
			Returns: &contract.ArgDoc{Name: "celsius", Type: "Float"},
		},
		{
			Name: "Fail",
		},
	})
	require.NoError(t, err)
	return set
}

func newBench(t *testing.T, opts ...Option) (*Dispatcher, *string) {
	label := new(string)
	d := New(protocol.DefaultEncoding(), benchSet(t), opts...)
	require.NoError(t, d.Handle("MeasureVoltageRequest", func(in *Inputs) (protocol.Value, error) {
		return protocol.DoubleValue(float64(in.Int(0)) * in.Double(1)), nil
	}))
	require.NoError(t, d.Handle("SetLabel", func(in *Inputs) (protocol.Value, error) {
		*label = in.String(0)
		return protocol.Value{}, nil
	}))
	require.NoError(t, d.Handle("TemperatureRequest", func(in *Inputs) (protocol.Value, error) {
		return protocol.FloatValue(21.5), nil
	}))
	require.NoError(t, d.Handle("FailRequest", func(in *Inputs) (protocol.Value, error) {
		return protocol.Value{}, errors.New("relay stuck")
	}))
	require.NoError(t, d.Weave())
	return d, label
}

func TestRespond(t *testing.T) {
	d, label := newBench(t, WithIdentity(StaticIdentity("bench-01")))
	testCases := []struct {
		name   string
		line   string
		expect string
	}{
		{"identify", "IdentifyRequest()", "IdentifyResponse(id=bench-01)\n"},
		{"ping", "PingRequest()", "PingResponse()\n"},
		{"return value", "MeasureVoltageRequest(channel=2,integration_time=0.25)", "MeasureVoltageResponse(voltage=0.5)\n"},
		{"argument order free", "MeasureVoltageRequest(integration_time=1.5,channel=3)", "MeasureVoltageResponse(voltage=4.5)\n"},
		{"extra args ignored", "MeasureVoltageRequest(channel=1,integration_time=2,x=9)", "MeasureVoltageResponse(voltage=2)\n"},
		{"no return value", "SetLabelRequest(text=hello world)", "SetLabelResponse()\n"},
		{"float return", "TemperatureRequest()", "TemperatureResponse(celsius=21.5)\n"},
		{"missing argument", "MeasureVoltageRequest(channel=1)",
			"ErrorResponse(msg=Invalid argument integration_time: missing)\n"},
		{"invalid argument", "MeasureVoltageRequest(channel=abc,integration_time=1)",
			"ErrorResponse(msg=Invalid argument channel: \"abc\" is not an Int)\n"},
		{"handler failure", "FailRequest()", "ErrorResponse(msg=Fail failed: relay stuck)\n"},
		{"unidentified", "ExplodeRequest()", "ErrorResponse(msg=Unidentified command: ExplodeRequest)\n"},
		{"base name only", "MeasureVoltage(channel=1,integration_time=1)",
			"ErrorResponse(msg=Unidentified command: MeasureVoltage)\n"},
		{"bad format", "garbage",
			"ErrorResponse(msg=Unable to parse command. Message should be of format XXXRequest(key=val). Raw message received: garbage)\n"},
		{"empty line", "",
			"ErrorResponse(msg=Unable to parse command. Message should be of format XXXRequest(key=val). Raw message received: )\n"},
		{"empty name", "(a=1)",
			"ErrorResponse(msg=Unable to parse command. Message should be of format XXXRequest(key=val). Raw message received: (a=1))\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, string(d.Respond(nil, tc.line)))
			require.Equal(t, Idle, d.State())
		})
	}
	require.Equal(t, "hello world", *label)
}

func TestRespondDefaultIdentity(t *testing.T) {
	d, _ := newBench(t)
	require.Equal(t, "IdentifyResponse(id=hardsync)\n", string(d.Respond(nil, "IdentifyRequest()")))
	d, _ = newBench(t, WithIdentity(IdentifierFunc(func() string { return "dyn" })))
	require.Equal(t, "IdentifyResponse(id=dyn)\n", string(d.Respond(nil, "IdentifyRequest()")))
}

func TestRespondAppends(t *testing.T) {
	d, _ := newBench(t)
	buf := []byte("PingResponse()\n")
	buf = d.Respond(buf, "PingRequest()")
	require.Equal(t, "PingResponse()\nPingResponse()\n", string(buf))
}

func TestRespondReturnTypeMismatch(t *testing.T) {
	set, err := contract.BuildSet(protocol.DefaultEncoding(), []contract.Spec{
		{Name: "Count", Returns: &contract.ArgDoc{Name: "n", Type: "Int"}},
	})
	require.NoError(t, err)
	d := New(protocol.DefaultEncoding(), set)
	require.NoError(t, d.Handle("Count", func(*Inputs) (protocol.Value, error) {
		return protocol.StringValue("many"), nil
	}))
	d.MustWeave()
	require.Equal(t, "ErrorResponse(msg=Count failed: dispatch: unexpected return type: String  declared Int)\n",
		string(d.Respond(nil, "CountRequest()")))
}

func TestRespondHandlerErrorSanitized(t *testing.T) {
	set, err := contract.BuildSet(protocol.DefaultEncoding(), []contract.Spec{{Name: "Move"}})
	require.NoError(t, err)
	d := New(protocol.DefaultEncoding(), set)
	require.NoError(t, d.Handle("Move", func(*Inputs) (protocol.Value, error) {
		return protocol.Value{}, errors.New("limit (x,y)\nhit")
	}))
	d.MustWeave()
	require.Equal(t, "ErrorResponse(msg=Move failed: limit  x y  hit)\n", string(d.Respond(nil, "MoveRequest()")))
}

func TestHandleErrors(t *testing.T) {
	d := New(protocol.DefaultEncoding(), benchSet(t))
	noop := func(*Inputs) (protocol.Value, error) { return protocol.Value{}, nil }
	err := d.Handle("UnknownRequest", noop)
	require.True(t, errors.Is(err, ErrUnknownCommand))
	err = d.Handle("SetLabel", nil)
	require.True(t, errors.Is(err, ErrNilHandler))

	require.NoError(t, d.Handle("SetLabel", noop))
	err = d.Weave()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingHandler))
	var agg *fx.AggregatedError
	require.True(t, errors.As(err, &agg))
	require.Equal(t, 3, agg.Len())
	require.False(t, d.Woven())
	require.Panics(t, func() { d.MustWeave() })

	for _, name := range []string{"MeasureVoltage", "Temperature", "Fail"} {
		require.NoError(t, d.Handle(name, noop))
	}
	require.NoError(t, d.Weave())
	require.True(t, d.Woven())
	require.Equal(t, ErrWoven, d.Handle("SetLabel", noop))
}

func TestWeaveEncodingMismatch(t *testing.T) {
	enc := protocol.DefaultEncoding()
	enc.Terminator = "\r\n"
	d := New(enc, benchSet(t))
	err := d.Weave()
	require.True(t, errors.Is(err, ErrEncodingMismatch))
}

func TestRespondDoesNotAllocate(t *testing.T) {
	d, _ := newBench(t)
	buf := make([]byte, 0, 128)
	line := "MeasureVoltageRequest(channel=2,integration_time=0.25)"
	allocs := testing.AllocsPerRun(100, func() {
		buf = d.Respond(buf[:0], line)
	})
	require.Zero(t, allocs)
	require.Equal(t, "MeasureVoltageResponse(voltage=0.5)\n", string(buf))
}

func TestPoll(t *testing.T) {
	d, _ := newBench(t)
	host, dev := transport.Pipe("\n")
	ctx := context.Background()

	busy, err := d.Poll(ctx, dev)
	require.NoError(t, err)
	require.False(t, busy)

	require.NoError(t, host.WriteLine([]byte("PingRequest()\nIdentifyRequest()\n")))
	for n := 0; n < 2; n++ {
		busy, err = d.Poll(ctx, dev)
		require.NoError(t, err)
		require.True(t, busy)
	}
	line, err := host.ReadLine(ctx)
	require.NoError(t, err)
	require.Equal(t, "PingResponse()", line)
	line, err = host.ReadLine(ctx)
	require.NoError(t, err)
	require.Equal(t, "IdentifyResponse(id=hardsync)", line)

	host.Close()
	_, err = d.Poll(ctx, dev)
	require.Equal(t, io.EOF, err)
}

func TestPollAnswersOverlongLine(t *testing.T) {
	d, _ := newBench(t)
	host, dev := transport.Pipe("\n")
	ctx := context.Background()

	long := "SetLabelRequest(text=" + strings.Repeat("x", 5000) + ")\nPingRequest()\n"
	require.NoError(t, host.WriteLine([]byte(long)))
	for n := 0; n < 2; n++ {
		busy, err := d.Poll(ctx, dev)
		require.NoError(t, err)
		require.True(t, busy)
	}
	line, err := host.ReadLine(ctx)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "ErrorResponse(msg="+badFormatText), line)
	line, err = host.ReadLine(ctx)
	require.NoError(t, err)
	require.Equal(t, "PingResponse()", line)
}

func TestServerRun(t *testing.T) {
	d, _ := newBench(t)
	host, dev := transport.Pipe("\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- d.Serve(dev).Run(ctx) }()

	require.NoError(t, host.WriteLine([]byte("TemperatureRequest()\n")))
	line, err := host.ReadLine(ctx)
	require.NoError(t, err)
	require.Equal(t, "TemperatureResponse(celsius=21.5)", line)

	host.Close()
	require.Equal(t, io.EOF, <-errCh)
}

func TestInputs(t *testing.T) {
	in := InputsOf(protocol.IntValue(3), protocol.FloatValue(0.5), protocol.DoubleValue(1.25), protocol.StringValue("x"))
	require.Equal(t, 4, in.Len())
	require.Equal(t, 3, in.Int(0))
	require.Equal(t, float32(0.5), in.Float(1))
	require.Equal(t, 1.25, in.Double(2))
	require.Equal(t, "x", in.String(3))
	require.Panics(t, func() { in.Value(4) })
}

func TestStateString(t *testing.T) {
	require.Equal(t, "Idle", Idle.String())
	require.Equal(t, "Dispatching", Dispatching.String())
	require.Equal(t, "Responding", Responding.String())
}

package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodingValidate(t *testing.T) {
	require.NoError(t, DefaultEncoding().Validate())

	testCases := []struct {
		name   string
		modify func(*Encoding)
		expect error
	}{
		{"ambiguous separators", func(e *Encoding) { e.KVSeparator = "," }, ErrAmbiguousEncoding},
		{"empty opener", func(e *Encoding) { e.Opener = "" }, ErrInvalidEncoding},
		{"opener equals closer", func(e *Encoding) { e.Closer = "(" }, ErrInvalidEncoding},
		{"terminator overlaps", func(e *Encoding) { e.Terminator = ",\n" }, ErrInvalidEncoding},
		{"letter separator", func(e *Encoding) { e.KVSeparator = "x" }, ErrInvalidEncoding},
		{"underscore separator", func(e *Encoding) { e.ArgSeparator = "_" }, ErrInvalidEncoding},
		{"digit in closer", func(e *Encoding) { e.Closer = ")0" }, ErrInvalidEncoding},
		{"letter terminator", func(e *Encoding) { e.Terminator = "END" }, ErrInvalidEncoding},
		{"same suffixes", func(e *Encoding) { e.ResponseSuffix = "Request" }, ErrInvalidEncoding},
		{"empty suffix", func(e *Encoding) { e.RequestSuffix = "" }, ErrInvalidEncoding},
		{"suffix with delimiter", func(e *Encoding) { e.ResponseSuffix = "Re(sp" }, ErrInvalidEncoding},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			enc := DefaultEncoding()
			tc.modify(&enc)
			err := enc.Validate()
			require.True(t, errors.Is(err, tc.expect), "got %v", err)
		})
	}
}

func TestSplitName(t *testing.T) {
	enc := DefaultEncoding()
	testCases := []struct {
		wire string
		name string
		kind Kind
		ok   bool
	}{
		{"PingRequest", "Ping", Request, true},
		{"PingResponse", "Ping", Response, true},
		{"Request", "Request", Request, false},
		{"measure_voltage", "measure_voltage", Request, false},
	}
	for _, tc := range testCases {
		t.Run(tc.wire, func(t *testing.T) {
			name, kind, ok := enc.SplitName(tc.wire)
			require.Equal(t, tc.name, name)
			require.Equal(t, tc.kind, kind)
			require.Equal(t, tc.ok, ok)
		})
	}
	require.Equal(t, "PingResponse", enc.WireName("Ping", Response))
}

package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeOrFail(t *testing.T, line string) Call {
	call, err := DefaultEncoding().Decode(line)
	require.NoError(t, err)
	return call
}

func TestExtract(t *testing.T) {
	call := decodeOrFail(t, "f(n=42,x=1.5,d=-0.25,s=hello,bad=abc,n=7)")

	n, err := call.Int("n")
	require.NoError(t, err)
	require.Equal(t, 42, n)

	x, err := call.Float("x")
	require.NoError(t, err)
	require.Equal(t, float32(1.5), x)

	d, err := call.Double("d")
	require.NoError(t, err)
	require.Equal(t, -0.25, d)

	s, err := call.String("s")
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	v, err := call.Extract("d", TypeDouble)
	require.NoError(t, err)
	require.Equal(t, TypeDouble, v.Type())
	require.Equal(t, "-0.25", v.String())
}

func TestExtractErrors(t *testing.T) {
	call := decodeOrFail(t, "f(bad=abc,empty=)")
	testCases := []struct {
		name   string
		key    string
		typ    Type
		expect error
	}{
		{"missing int", "missing", TypeInt, ErrArgNotFound},
		{"missing string", "missing", TypeString, ErrArgNotFound},
		{"invalid int", "bad", TypeInt, ErrArgInvalid},
		{"invalid float", "bad", TypeFloat, ErrArgInvalid},
		{"invalid double", "bad", TypeDouble, ErrArgInvalid},
		{"empty int", "empty", TypeInt, ErrArgInvalid},
		{"none type", "bad", TypeNone, ErrUnknownType},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := call.Extract(tc.key, tc.typ)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.expect), "got %v", err)
			var argErr *ArgError
			require.True(t, errors.As(err, &argErr))
			require.Equal(t, tc.key, argErr.Key)
		})
	}
}

func TestExtractFallbacks(t *testing.T) {
	call := decodeOrFail(t, "f(n=-1,bad=abc)")
	require.Equal(t, -1, ExtractInt(&call, "missing"))
	require.Equal(t, float32(-1.0), ExtractFloat(&call, "missing"))
	require.Equal(t, -1.0, ExtractDouble(&call, "missing"))
	require.Equal(t, "", ExtractString(&call, "missing"))
	require.Equal(t, MissingInt, ExtractInt(&call, "bad"))

	// a legitimate -1 looks the same through the fallback form
	require.Equal(t, ExtractInt(&call, "n"), ExtractInt(&call, "missing"))
	n, err := call.Int("n")
	require.NoError(t, err)
	require.Equal(t, -1, n)
	_, err = call.Int("missing")
	require.Error(t, err)
}

func TestParseType(t *testing.T) {
	for _, tag := range []string{"Int", "Float", "Double", "String"} {
		typ, err := ParseType(tag)
		require.NoError(t, err)
		require.Equal(t, tag, typ.String())
		require.True(t, typ.IsValue())
	}
	for _, tag := range []string{"", "int", "None", "Bool", "List"} {
		_, err := ParseType(tag)
		require.True(t, errors.Is(err, ErrUnknownType), "tag %q", tag)
	}
	require.False(t, TypeNone.IsValue())
}

func TestValueText(t *testing.T) {
	testCases := []struct {
		val    Value
		expect string
	}{
		{IntValue(12), "12"},
		{IntValue(-3), "-3"},
		{FloatValue(0.1), "0.1"},
		{DoubleValue(3.3), "3.3"},
		{DoubleValue(1e21), "1e+21"},
		{StringValue("ok"), "ok"},
		{Value{}, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.expect, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.val.String())
			if tc.val.Type().IsValue() {
				parsed, err := ParseValue(tc.val.Type(), tc.val.String())
				require.NoError(t, err)
				require.Equal(t, tc.val, parsed)
			}
		})
	}
}

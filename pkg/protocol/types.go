package protocol

import (
	"fmt"
	"strconv"
)

// Type is the closed set of argument and return value types.
type Type int

// Supported types.
const (
	// TypeNone is only meaningful as "no return value".
	TypeNone Type = iota
	TypeInt
	TypeFloat
	TypeDouble
	TypeString
)

var typeTags = [...]string{
	TypeNone:   "None",
	TypeInt:    "Int",
	TypeFloat:  "Float",
	TypeDouble: "Double",
	TypeString: "String",
}

// String returns the type tag.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeTags) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeTags[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsValue indicates t can carry a value.
func (t Type) IsValue() bool {
	return t >= TypeInt && t <= TypeString
}

// ParseType maps a tag (Int, Float, Double or String) to a Type.
func ParseType(tag string) (Type, error) {
	for t := TypeInt; t <= TypeString; t++ {
		if typeTags[t] == tag {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("%w: %q", ErrUnknownType, tag)
}

// Value holds one typed argument or return value.
type Value struct {
	typ Type
	num int
	flt float64
	str string
}

// IntValue creates an Int value.
func IntValue(v int) Value { return Value{typ: TypeInt, num: v} }

// FloatValue creates a Float value.
func FloatValue(v float32) Value { return Value{typ: TypeFloat, flt: float64(v)} }

// DoubleValue creates a Double value.
func DoubleValue(v float64) Value { return Value{typ: TypeDouble, flt: v} }

// StringValue creates a String value.
func StringValue(v string) Value { return Value{typ: TypeString, str: v} }

// Type returns the type of the value, TypeNone for the zero Value.
func (v Value) Type() Type { return v.typ }

// AsInt returns the Int payload.
func (v Value) AsInt() int { return v.num }

// AsFloat returns the Float payload.
func (v Value) AsFloat() float32 { return float32(v.flt) }

// AsDouble returns the Double payload.
func (v Value) AsDouble() float64 { return v.flt }

// AsString returns the String payload.
func (v Value) AsString() string { return v.str }

// AppendTo appends the wire text of the value.
func (v Value) AppendTo(dst []byte) []byte {
	switch v.typ {
	case TypeInt:
		return strconv.AppendInt(dst, int64(v.num), 10)
	case TypeFloat:
		return strconv.AppendFloat(dst, v.flt, 'g', -1, 32)
	case TypeDouble:
		return strconv.AppendFloat(dst, v.flt, 'g', -1, 64)
	case TypeString:
		return append(dst, v.str...)
	}
	return dst
}

// String returns the wire text of the value.
func (v Value) String() string {
	if v.typ == TypeString {
		return v.str
	}
	return string(v.AppendTo(nil))
}

// ParseValue converts wire text to a value of type t.
func ParseValue(t Type, text string) (Value, error) {
	switch t {
	case TypeInt:
		n, err := strconv.Atoi(text)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an Int", ErrArgInvalid, text)
		}
		return IntValue(n), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a Float", ErrArgInvalid, text)
		}
		return FloatValue(float32(f)), nil
	case TypeDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a Double", ErrArgInvalid, text)
		}
		return DoubleValue(f), nil
	case TypeString:
		return StringValue(text), nil
	}
	return Value{}, fmt.Errorf("%w: %v", ErrUnknownType, t)
}

package protocol

// Fallbacks returned by the Extract* functions when an argument is
// missing or can't be converted. They are indistinguishable from an
// argument legitimately holding the same value; use the Call methods
// to tell the cases apart.
const (
	MissingInt            = -1
	MissingFloat  float32 = -1.0
	MissingDouble         = -1.0
	MissingString         = ""
)

// Extract returns the first argument with key converted to t.
// Errors are *ArgError wrapping ErrArgNotFound or ErrArgInvalid.
func (c *Call) Extract(key string, t Type) (Value, error) {
	text, ok := c.Args.Lookup(key)
	if !ok {
		return Value{}, &ArgError{Key: key, Err: ErrArgNotFound}
	}
	v, err := ParseValue(t, text)
	if err != nil {
		return Value{}, &ArgError{Key: key, Value: text, Err: err}
	}
	return v, nil
}

// Int extracts an Int argument.
func (c *Call) Int(key string) (int, error) {
	v, err := c.Extract(key, TypeInt)
	return v.AsInt(), err
}

// Float extracts a Float argument.
func (c *Call) Float(key string) (float32, error) {
	v, err := c.Extract(key, TypeFloat)
	return v.AsFloat(), err
}

// Double extracts a Double argument.
func (c *Call) Double(key string) (float64, error) {
	v, err := c.Extract(key, TypeDouble)
	return v.AsDouble(), err
}

// String extracts a String argument.
func (c *Call) String(key string) (string, error) {
	v, err := c.Extract(key, TypeString)
	return v.AsString(), err
}

// ExtractInt returns the Int argument or MissingInt.
func ExtractInt(c *Call, key string) int {
	if v, err := c.Int(key); err == nil {
		return v
	}
	return MissingInt
}

// ExtractFloat returns the Float argument or MissingFloat.
func ExtractFloat(c *Call, key string) float32 {
	if v, err := c.Float(key); err == nil {
		return v
	}
	return MissingFloat
}

// ExtractDouble returns the Double argument or MissingDouble.
func ExtractDouble(c *Call, key string) float64 {
	if v, err := c.Double(key); err == nil {
		return v
	}
	return MissingDouble
}

// ExtractString returns the String argument or MissingString.
func ExtractString(c *Call, key string) string {
	if v, err := c.String(key); err == nil {
		return v
	}
	return MissingString
}

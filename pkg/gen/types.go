package gen

import (
	"fmt"

	"github.com/robotalks/hardsync.go/pkg/protocol"
)

// goType describes how a protocol type appears in generated code.
type goType struct {
	Name   string
	Ctor   string
	Getter string
	Input  string
}

var goTypes = map[protocol.Type]goType{
	protocol.TypeInt:    {"int", "protocol.IntValue", "AsInt", "Int"},
	protocol.TypeFloat:  {"float32", "protocol.FloatValue", "AsFloat", "Float"},
	protocol.TypeDouble: {"float64", "protocol.DoubleValue", "AsDouble", "Double"},
	protocol.TypeString: {"string", "protocol.StringValue", "AsString", "String"},
}

func goTypeOf(t protocol.Type) (goType, error) {
	gt, ok := goTypes[t]
	if !ok {
		return goType{}, fmt.Errorf("%w: %v", ErrUnsupportedType, t)
	}
	return gt, nil
}

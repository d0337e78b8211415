package sh

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/protobuf/jsonpb"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/hardsync.go/pkg/client"
	"github.com/robotalks/hardsync.go/pkg/contract"
	"github.com/robotalks/hardsync.go/pkg/protocol"
)

// ParseArgs parses KEY=VALUE words.
func ParseArgs(words []string) ([]protocol.Argument, error) {
	args := make([]protocol.Argument, 0, len(words))
	for _, word := range words {
		eq := strings.Index(word, "=")
		if eq <= 0 {
			return nil, fmt.Errorf("invalid argument %q, expecting KEY=VALUE", word)
		}
		args = append(args, protocol.Argument{Key: word[:eq], Value: word[eq+1:]})
	}
	if len(args) > protocol.MaxArgs {
		return nil, fmt.Errorf("%w: %d", protocol.ErrTooManyArgs, len(args))
	}
	return args, nil
}

// CheckArgs validates args against the declared arguments of ct.
// Any args pass when ct is nil.
func CheckArgs(ct *contract.Contract, args []protocol.Argument) error {
	if ct == nil {
		return nil
	}
	call := protocol.Call{Name: ct.RequestName}
	for _, arg := range args {
		call.Args.Add(arg.Key, arg.Value)
	}
	for _, spec := range ct.Args {
		if _, err := call.Extract(spec.Name, spec.Type); err != nil {
			return err
		}
	}
	return nil
}

// valueOf types a value for JSON. Floats keep their wire digits, and
// NaN or infinities, which JSON numbers can't hold, stay strings.
func valueOf(v protocol.Value) *structpb.Value {
	switch v.Type() {
	case protocol.TypeInt:
		return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: float64(v.AsInt())}}
	case protocol.TypeFloat, protocol.TypeDouble:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: f}}
		}
	}
	return stringValue(v.String())
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

// ResponseStruct converts a response to a Struct. Arguments are typed
// according to ct when the response carries the declared return value.
func ResponseStruct(resp *client.Response, ct *contract.Contract) *structpb.Struct {
	args := &structpb.Struct{Fields: make(map[string]*structpb.Value)}
	for _, arg := range resp.Args.Slice() {
		val := stringValue(arg.Value)
		if ct != nil && ct.HasReturn() && arg.Key == ct.Return.Name {
			if v, err := protocol.ParseValue(ct.Return.Type, arg.Value); err == nil {
				val = valueOf(v)
			}
		}
		args.Fields[arg.Key] = val
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"name": stringValue(resp.Name),
		"args": {Kind: &structpb.Value_StructValue{StructValue: args}},
	}}
}

// FormatResponse prints a response as JSON or as the response line.
func FormatResponse(resp *client.Response, ct *contract.Contract, asJSON bool) (string, error) {
	if !asJSON {
		return resp.Line, nil
	}
	return (&jsonpb.Marshaler{}).MarshalToString(ResponseStruct(resp, ct))
}

// FormatFound prints discovered devices as a JSON list.
func FormatFound(found []client.Found) (string, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(found))}
	for _, f := range found {
		list.Values = append(list.Values, &structpb.Value{Kind: &structpb.Value_StructValue{
			StructValue: &structpb.Struct{Fields: map[string]*structpb.Value{
				"id":        stringValue(f.Identity),
				"transport": stringValue(f.Name),
			}},
		}})
	}
	return (&jsonpb.Marshaler{}).MarshalToString(list)
}

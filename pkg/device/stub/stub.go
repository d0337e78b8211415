// Package stub simulates any device described by a contract document.
//
// Every argument received is remembered by name. A command returning a
// value answers the last value remembered under the return name, or the
// zero value of the declared type. SetLabel(text=x) followed by
// GetLabel() returning text thus answers x.
package stub

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/hardsync.go/pkg/contract"
	"github.com/robotalks/hardsync.go/pkg/dispatch"
	"github.com/robotalks/hardsync.go/pkg/protocol"
)

// Device is a register file keyed by argument names.
type Device struct {
	lock   sync.Mutex
	values map[string]string
	calls  map[string]int
}

// New creates a Device.
func New() *Device {
	return &Device{values: make(map[string]string), calls: make(map[string]int)}
}

// Store sets a remembered value.
func (d *Device) Store(name string, v protocol.Value) {
	d.lock.Lock()
	d.values[name] = v.String()
	d.lock.Unlock()
}

// Calls returns how many times the command was handled.
func (d *Device) Calls(name string) int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.calls[name]
}

// Dispatcher creates a woven dispatcher handling every contract of set.
func (d *Device) Dispatcher(set *contract.Set, opts ...dispatch.Option) (*dispatch.Dispatcher, error) {
	disp := dispatch.New(set.Encoding(), set, opts...)
	for _, ct := range set.Contracts() {
		if err := disp.Handle(ct.RequestName, d.handler(ct)); err != nil {
			return nil, err
		}
	}
	if err := disp.Weave(); err != nil {
		return nil, err
	}
	return disp, nil
}

func (d *Device) handler(ct *contract.Contract) dispatch.HandlerFunc {
	return func(in *dispatch.Inputs) (protocol.Value, error) {
		d.lock.Lock()
		defer d.lock.Unlock()
		d.calls[ct.Name]++
		for n, arg := range ct.Args {
			d.values[arg.Name] = in.Value(n).String()
		}
		if !ct.HasReturn() {
			return protocol.Value{}, nil
		}
		if text, ok := d.values[ct.Return.Name]; ok {
			if v, err := protocol.ParseValue(ct.Return.Type, text); err == nil {
				return v, nil
			}
			glog.Warningf("%s: remembered %s=%q is not %v", ct.Name, ct.Return.Name, text, ct.Return.Type)
		}
		return Zero(ct.Return.Type), nil
	}
}

// Zero returns the zero value of t.
func Zero(t protocol.Type) protocol.Value {
	switch t {
	case protocol.TypeInt:
		return protocol.IntValue(0)
	case protocol.TypeFloat:
		return protocol.FloatValue(0)
	case protocol.TypeDouble:
		return protocol.DoubleValue(0)
	case protocol.TypeString:
		return protocol.StringValue("")
	}
	return protocol.Value{}
}

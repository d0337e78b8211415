package dispatch

import "github.com/robotalks/hardsync.go/pkg/protocol"

// Inputs are the arguments of a request, converted to the declared
// types and ordered as declared by the contract.
type Inputs struct {
	vals [protocol.MaxArgs]protocol.Value
	n    int
}

// InputsOf creates Inputs from values.
func InputsOf(vals ...protocol.Value) *Inputs {
	in := &Inputs{}
	in.n = copy(in.vals[:], vals)
	return in
}

// Len returns the number of inputs.
func (in *Inputs) Len() int { return in.n }

// Value returns the i-th input.
func (in *Inputs) Value(i int) protocol.Value { return in.vals[:in.n][i] }

// Int returns the i-th input declared as Int.
func (in *Inputs) Int(i int) int { return in.Value(i).AsInt() }

// Float returns the i-th input declared as Float.
func (in *Inputs) Float(i int) float32 { return in.Value(i).AsFloat() }

// Double returns the i-th input declared as Double.
func (in *Inputs) Double(i int) float64 { return in.Value(i).AsDouble() }

// String returns the i-th input declared as String.
func (in *Inputs) String(i int) string { return in.Value(i).AsString() }

func (in *Inputs) reset() {
	*in = Inputs{}
}

func (in *Inputs) add(v protocol.Value) {
	in.vals[in.n] = v
	in.n++
}

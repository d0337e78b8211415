package protocol

// MaxArgs is the capacity of Args.
const MaxArgs = 10

// Argument is a single key/value pair of a call.
type Argument struct {
	Key   string
	Value string
}

// Args is an ordered, fixed-capacity argument store.
// Keys are not required to be unique; lookups return the first match.
type Args struct {
	items [MaxArgs]Argument
	n     int
}

// ArgsOf builds Args from arguments. ok is false if there are more than MaxArgs.
func ArgsOf(args ...Argument) (a Args, ok bool) {
	for _, arg := range args {
		if !a.Add(arg.Key, arg.Value) {
			return a, false
		}
	}
	return a, true
}

// Len returns the number of arguments.
func (a *Args) Len() int {
	return a.n
}

// At returns the i-th argument.
func (a *Args) At(i int) Argument {
	return a.items[:a.n][i]
}

// Add appends an argument, returns false when the store is full.
func (a *Args) Add(key, value string) bool {
	if a.n >= MaxArgs {
		return false
	}
	a.items[a.n] = Argument{Key: key, Value: value}
	a.n++
	return true
}

// Lookup returns the value of the first argument with key.
func (a *Args) Lookup(key string) (string, bool) {
	for i := 0; i < a.n; i++ {
		if a.items[i].Key == key {
			return a.items[i].Value, true
		}
	}
	return "", false
}

// Slice returns the arguments in order. The slice aliases the store.
func (a *Args) Slice() []Argument {
	return a.items[:a.n]
}

// Call is a decoded line: a wire name and its arguments.
// The zero Call, with an empty name, is what a malformed line decodes to.
type Call struct {
	Name string
	Args Args
}

// Malformed indicates the call carries no name.
func (c *Call) Malformed() bool {
	return c.Name == ""
}

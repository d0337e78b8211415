package contract

import (
	"fmt"
	"strings"

	"github.com/golang/glog"

	fx "github.com/robotalks/hardsync.go/pkg/framework"
	"github.com/robotalks/hardsync.go/pkg/protocol"
)

// Builder builds contracts sharing one encoding and one name space.
type Builder struct {
	enc      protocol.Encoding
	names    map[string]struct{}
	reserved map[string]struct{}
	built    []*Contract
}

// NewBuilder creates a Builder.
func NewBuilder(enc protocol.Encoding) *Builder {
	b := &Builder{
		enc:      enc,
		names:    make(map[string]struct{}),
		reserved: make(map[string]struct{}),
	}
	for _, name := range []string{IdentifyName, PingName, ErrorName} {
		b.reserved[enc.WireName(name, protocol.Request)] = struct{}{}
	}
	return b
}

// Build validates and records one contract. name may carry the request
// suffix already; the response name swaps it for the response suffix.
func (b *Builder) Build(name string, args []ArgSpec, ret *ReturnSpec) (*Contract, error) {
	base := strings.TrimSuffix(name, b.enc.RequestSuffix)
	if !IsIdentifier(base) {
		return nil, &BuildError{Command: name, Err: ErrInvalidName}
	}
	c := &Contract{
		Name:         base,
		RequestName:  b.enc.WireName(base, protocol.Request),
		ResponseName: b.enc.WireName(base, protocol.Response),
	}
	if _, ok := b.reserved[c.RequestName]; ok {
		return nil, &BuildError{Command: name, Err: ErrReservedName}
	}
	if _, ok := b.names[c.RequestName]; ok {
		return nil, &BuildError{Command: name, Err: ErrDuplicateName}
	}
	if len(args) > protocol.MaxArgs {
		return nil, &BuildError{
			Command: name,
			Err:     fmt.Errorf("%w: %d > %d", ErrTooManyArgs, len(args), protocol.MaxArgs),
		}
	}
	seen := make(map[string]struct{}, len(args))
	for _, arg := range args {
		if !IsIdentifier(arg.Name) {
			return nil, &BuildError{Command: name, Err: fmt.Errorf("%w: argument %q", ErrInvalidName, arg.Name)}
		}
		if !arg.Type.IsValue() {
			return nil, &BuildError{Command: name, Err: fmt.Errorf("%w: argument %q is %v", ErrInvalidType, arg.Name, arg.Type)}
		}
		if _, ok := seen[arg.Name]; ok {
			return nil, &BuildError{Command: name, Err: fmt.Errorf("%w: %q", ErrDuplicateArg, arg.Name)}
		}
		seen[arg.Name] = struct{}{}
	}
	c.Args = append([]ArgSpec(nil), args...)
	if ret != nil && ret.Type != protocol.TypeNone {
		if !ret.Type.IsValue() {
			return nil, &BuildError{Command: name, Err: fmt.Errorf("%w: return is %v", ErrInvalidType, ret.Type)}
		}
		c.Return = *ret
		if c.Return.Name == "" {
			c.Return.Name = DefaultReturnName
		}
		if !IsIdentifier(c.Return.Name) {
			return nil, &BuildError{Command: name, Err: fmt.Errorf("%w: return %q", ErrInvalidName, c.Return.Name)}
		}
	}
	b.names[c.RequestName] = struct{}{}
	b.built = append(b.built, c)
	glog.V(3).Infof("contract %s: %d args, returns %v", c.RequestName, len(c.Args), c.Return.Type)
	return c, nil
}

// Set returns the contracts built so far, in build order.
func (b *Builder) Set() *Set {
	return newSet(b.enc, b.built)
}

// BuildSet builds all specs. Every failure is reported, and no Set is
// returned unless all specs are valid.
func BuildSet(enc protocol.Encoding, specs []Spec) (*Set, error) {
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	b := NewBuilder(enc)
	var errs fx.AggregatedError
	for _, spec := range specs {
		args, ret, err := spec.resolve()
		if err != nil {
			errs.Add(err)
			continue
		}
		_, err = b.Build(spec.Name, args, ret)
		errs.Add(err)
	}
	if err := errs.Aggregate(); err != nil {
		return nil, err
	}
	return b.Set(), nil
}

func (s Spec) resolve() ([]ArgSpec, *ReturnSpec, error) {
	var errs fx.AggregatedError
	args := make([]ArgSpec, 0, len(s.Args))
	for _, doc := range s.Args {
		typ, err := protocol.ParseType(doc.Type)
		if err != nil {
			errs.Add(&BuildError{Command: s.Name, Err: fmt.Errorf("argument %q: %w", doc.Name, err)})
			continue
		}
		args = append(args, ArgSpec{Name: doc.Name, Type: typ})
	}
	var ret *ReturnSpec
	if s.Returns != nil {
		typ, err := protocol.ParseType(s.Returns.Type)
		if err != nil {
			errs.Add(&BuildError{Command: s.Name, Err: fmt.Errorf("return: %w", err)})
		} else {
			ret = &ReturnSpec{Name: s.Returns.Name, Type: typ}
		}
	}
	return args, ret, errs.Aggregate()
}

// Set is an ordered, immutable list of contracts.
type Set struct {
	enc       protocol.Encoding
	contracts []*Contract
	index     map[string]int
}

func newSet(enc protocol.Encoding, contracts []*Contract) *Set {
	s := &Set{
		enc:       enc,
		contracts: append([]*Contract(nil), contracts...),
		index:     make(map[string]int, len(contracts)),
	}
	for n, c := range s.contracts {
		s.index[c.RequestName] = n
	}
	return s
}

// Encoding returns the encoding the contracts were named with.
func (s *Set) Encoding() protocol.Encoding {
	return s.enc
}

// Len returns the number of contracts.
func (s *Set) Len() int {
	return len(s.contracts)
}

// At returns the n-th contract in declaration order.
func (s *Set) At(n int) *Contract {
	return s.contracts[n]
}

// Contracts returns the contracts in declaration order.
func (s *Set) Contracts() []*Contract {
	return append([]*Contract(nil), s.contracts...)
}

// Lookup finds a contract by request name.
func (s *Set) Lookup(requestName string) (*Contract, bool) {
	n, ok := s.index[requestName]
	if !ok {
		return nil, false
	}
	return s.contracts[n], true
}

// LookupName finds a contract by base name.
func (s *Set) LookupName(name string) (*Contract, bool) {
	return s.Lookup(s.enc.WireName(name, protocol.Request))
}

// Specs converts the set back to document form.
func (s *Set) Specs() []Spec {
	specs := make([]Spec, len(s.contracts))
	for n, c := range s.contracts {
		specs[n] = c.Spec()
	}
	return specs
}

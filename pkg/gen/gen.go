// Package gen generates Go bindings for a contract set: the device
// interface to implement on the firmware side, the binder wiring it to a
// dispatcher and a typed host client.
package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"go/types"
	"strconv"

	"github.com/robotalks/hardsync.go/pkg/contract"
)

const modulePath = "github.com/robotalks/hardsync.go"

// DefaultPackage names the generated package when Options.Package is empty.
const DefaultPackage = "device"

var (
	// ErrInvalidPackage indicates the package name isn't a Go identifier.
	ErrInvalidPackage = errors.New("gen: invalid package name")
	// ErrInvalidIdentifier indicates a name that can't be turned into Go.
	ErrInvalidIdentifier = errors.New("gen: invalid identifier")
	// ErrUnsupportedType indicates a type without Go mapping.
	ErrUnsupportedType = errors.New("gen: unsupported type")
)

// Options controls the generated file.
type Options struct {
	Package string
	// Source is mentioned in the header, usually the contract document.
	Source string
}

// locals are the names used inside generated function bodies.
var locals = map[string]bool{
	"c": true, "ctx": true, "ct": true, "d": true, "dev": true,
	"err": true, "in": true, "ok": true, "ret": true, "v": true,
}

type param struct {
	Name string
	Type goType
}

type method struct {
	Contract *contract.Contract
	Name     string
	Params   []param
	Return   *goType
}

// Generate emits the bindings of set as a formatted Go file.
func Generate(set *contract.Set, opts Options) ([]byte, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = DefaultPackage
	}
	if !token.IsIdentifier(pkg) || pkg == "_" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPackage, pkg)
	}
	methods, err := resolve(set)
	if err != nil {
		return nil, err
	}
	w := &writer{}
	w.header(pkg, opts.Source, len(methods) > 0)
	w.contracts(set)
	w.device(methods)
	w.bind(methods)
	w.client(methods)
	src, err := format.Source(w.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gen: invalid output: %w", err)
	}
	return src, nil
}

func resolve(set *contract.Set) ([]method, error) {
	methods := make([]method, 0, set.Len())
	seen := make(map[string]string)
	for _, c := range set.Contracts() {
		m := method{Contract: c, Name: contract.ToPascal(c.Name)}
		if !token.IsExported(m.Name) || !token.IsIdentifier(m.Name) {
			return nil, fmt.Errorf("%w: command %q", ErrInvalidIdentifier, c.Name)
		}
		if other, ok := seen[m.Name]; ok {
			return nil, fmt.Errorf("%w: commands %q and %q are both %s", ErrInvalidIdentifier, other, c.Name, m.Name)
		}
		seen[m.Name] = c.Name
		names := make(map[string]bool)
		for _, arg := range c.Args {
			gt, err := goTypeOf(arg.Type)
			if err != nil {
				return nil, err
			}
			name := paramName(arg.Name)
			if !token.IsIdentifier(name) || name == "_" || names[name] {
				return nil, fmt.Errorf("%w: argument %q of %q", ErrInvalidIdentifier, arg.Name, c.Name)
			}
			names[name] = true
			m.Params = append(m.Params, param{Name: name, Type: gt})
		}
		if c.HasReturn() {
			gt, err := goTypeOf(c.Return.Type)
			if err != nil {
				return nil, err
			}
			m.Return = &gt
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func paramName(name string) string {
	p := contract.ToCamel(name)
	if token.IsKeyword(p) || locals[p] || types.Universe.Lookup(p) != nil || p == "protocol" || p == "client" ||
		p == "contract" || p == "dispatch" || p == "context" {
		p += "Arg"
	}
	return p
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) p(format string, args ...interface{}) {
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *writer) header(pkg, source string, commands bool) {
	if source != "" {
		w.p("// Code generated by hsgen from %s. DO NOT EDIT.", source)
	} else {
		w.p("// Code generated by hsgen. DO NOT EDIT.")
	}
	w.p("")
	w.p("package %s", pkg)
	w.p("")
	w.p("import (")
	subs := []string{"client", "contract", "dispatch"}
	if commands {
		w.p("%q", "context")
		w.p("")
		subs = append(subs, "protocol")
	}
	for _, sub := range subs {
		w.p("%q", modulePath+"/pkg/"+sub)
	}
	w.p(")")
	w.p("")
}

func (w *writer) contracts(set *contract.Set) {
	w.p("// Contracts returns the declared commands.")
	w.p("func Contracts() []contract.Spec {")
	w.p("return []contract.Spec{")
	for _, spec := range set.Specs() {
		w.buf.WriteString("{Name: " + strconv.Quote(spec.Name))
		if len(spec.Args) > 0 {
			w.buf.WriteString(", Args: []contract.ArgDoc{")
			for n, arg := range spec.Args {
				if n > 0 {
					w.buf.WriteString(", ")
				}
				w.buf.WriteString(argDoc(arg))
			}
			w.buf.WriteString("}")
		}
		if spec.Returns != nil {
			w.buf.WriteString(", Returns: &contract.ArgDoc" + argDoc(*spec.Returns))
		}
		w.p("},")
	}
	w.p("}")
	w.p("}")
	w.p("")
}

func argDoc(arg contract.ArgDoc) string {
	return "{Name: " + strconv.Quote(arg.Name) + ", Type: " + strconv.Quote(arg.Type) + "}"
}

func (w *writer) signature(m method, ctx bool) string {
	var b bytes.Buffer
	b.WriteString(m.Name + "(")
	if ctx {
		b.WriteString("ctx context.Context")
	}
	for n, p := range m.Params {
		if n > 0 || ctx {
			b.WriteString(", ")
		}
		b.WriteString(p.Name + " " + p.Type.Name)
	}
	b.WriteString(") ")
	if m.Return != nil {
		b.WriteString("(" + m.Return.Name + ", error)")
	} else {
		b.WriteString("error")
	}
	return b.String()
}

func (w *writer) device(methods []method) {
	w.p("// Device is implemented by the device, one method per command.")
	w.p("type Device interface {")
	for _, m := range methods {
		w.p("%s", w.signature(m, false))
	}
	w.p("}")
	w.p("")
}

func (w *writer) bind(methods []method) {
	w.p("// Bind registers dev as the handlers of d and weaves d.")
	w.p("func Bind(d *dispatch.Dispatcher, dev Device) error {")
	for _, m := range methods {
		var args bytes.Buffer
		for n, p := range m.Params {
			if n > 0 {
				args.WriteString(", ")
			}
			fmt.Fprintf(&args, "in.%s(%d)", p.Type.Input, n)
		}
		w.p("if err := d.Handle(%q, func(in *dispatch.Inputs) (protocol.Value, error) {", m.Contract.RequestName)
		if m.Return != nil {
			w.p("ret, err := dev.%s(%s)", m.Name, args.String())
			w.p("return %s(ret), err", m.Return.Ctor)
		} else {
			w.p("return protocol.Value{}, dev.%s(%s)", m.Name, args.String())
		}
		w.p("}); err != nil {")
		w.p("return err")
		w.p("}")
	}
	w.p("return d.Weave()")
	w.p("}")
	w.p("")
}

func (w *writer) client(methods []method) {
	w.p("// Client calls the commands on a device.")
	w.p("type Client struct {")
	w.p("conn *client.Client")
	w.p("set *contract.Set")
	w.p("}")
	w.p("")
	w.p("// NewClient wraps c, the contracts are built with the encoding of c.")
	w.p("func NewClient(c *client.Client) (*Client, error) {")
	w.p("set, err := contract.BuildSet(c.Encoding, Contracts())")
	w.p("if err != nil {")
	w.p("return nil, err")
	w.p("}")
	w.p("return &Client{conn: c, set: set}, nil")
	w.p("}")
	for _, m := range methods {
		var vals bytes.Buffer
		for _, p := range m.Params {
			fmt.Fprintf(&vals, ", %s(%s)", p.Type.Ctor, p.Name)
		}
		w.p("")
		w.p("// %s sends %s.", m.Name, m.Contract.RequestName)
		w.p("func (c *Client) %s {", w.signature(m, true))
		w.p("ct, _ := c.set.LookupName(%q)", m.Contract.Name)
		if m.Return != nil {
			w.p("v, err := c.conn.Invoke(ctx, ct%s)", vals.String())
			w.p("return v.%s(), err", m.Return.Getter)
		} else {
			w.p("_, err := c.conn.Invoke(ctx, ct%s)", vals.String())
			w.p("return err")
		}
		w.p("}")
	}
}

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/hardsync.go/pkg/contract"
	fx "github.com/robotalks/hardsync.go/pkg/framework"
	"github.com/robotalks/hardsync.go/pkg/protocol"
	"github.com/robotalks/hardsync.go/pkg/transport"
)

// State is the processing state of a Dispatcher.
type State int

// States.
const (
	Idle State = iota
	Dispatching
	Responding
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Dispatching:
		return "Dispatching"
	case Responding:
		return "Responding"
	}
	return "Idle"
}

// HandlerFunc executes one command. The returned value is ignored for
// commands without return value.
type HandlerFunc func(in *Inputs) (protocol.Value, error)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithIdentity sets the identity reported to IdentifyRequest.
func WithIdentity(id Identifier) Option {
	return func(d *Dispatcher) {
		d.identity = id
	}
}

// WithLogPrefix prefixes the log lines of the dispatcher.
func WithLogPrefix(prefix string) Option {
	return func(d *Dispatcher) {
		d.logPrefix = prefix
	}
}

const badFormatText = "Unable to parse command. Message should be of format XXXRequest(key=val). Raw message received: "

// Dispatcher routes request lines to handlers.
type Dispatcher struct {
	enc       protocol.Encoding
	set       *contract.Set
	handlers  []HandlerFunc
	identity  Identifier
	logPrefix string
	woven     bool
	state     State

	identifyName string
	pingName     string
	in           Inputs
	buf          []byte
}

// New creates a Dispatcher for the contract set.
func New(enc protocol.Encoding, set *contract.Set, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		enc:          enc,
		set:          set,
		handlers:     make([]HandlerFunc, set.Len()),
		identity:     StaticIdentity(DefaultIdentity),
		identifyName: enc.WireName(contract.IdentifyName, protocol.Request),
		pingName:     enc.WireName(contract.PingName, protocol.Request),
		buf:          make([]byte, 0, 256),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Encoding returns the encoding of the dispatcher.
func (d *Dispatcher) Encoding() protocol.Encoding {
	return d.enc
}

// Contracts returns the contract set.
func (d *Dispatcher) Contracts() *contract.Set {
	return d.set
}

// State returns the current state.
func (d *Dispatcher) State() State {
	return d.state
}

// Woven indicates the handler table is frozen.
func (d *Dispatcher) Woven() bool {
	return d.woven
}

// Handle registers the handler of a contract, by request name or base name.
func (d *Dispatcher) Handle(requestName string, fn HandlerFunc) error {
	if d.woven {
		return ErrWoven
	}
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, requestName)
	}
	n, ok := d.indexOf(requestName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, requestName)
	}
	d.handlers[n] = fn
	return nil
}

func (d *Dispatcher) indexOf(name string) (int, bool) {
	c, ok := d.set.Lookup(name)
	if !ok {
		if c, ok = d.set.LookupName(name); !ok {
			return 0, false
		}
	}
	for n := 0; n < d.set.Len(); n++ {
		if d.set.At(n) == c {
			return n, true
		}
	}
	return 0, false
}

// Weave verifies every contract has a handler and freezes the table.
func (d *Dispatcher) Weave() error {
	if d.woven {
		return nil
	}
	var errs fx.AggregatedError
	if d.set.Encoding() != d.enc {
		errs.Add(ErrEncodingMismatch)
	}
	for n, fn := range d.handlers {
		if fn == nil {
			errs.Add(fmt.Errorf("%w: %s", ErrMissingHandler, d.set.At(n).RequestName))
		}
	}
	if err := errs.Aggregate(); err != nil {
		return err
	}
	d.woven = true
	glog.Infof("%sdispatcher woven: %d commands", d.logPrefix, len(d.handlers))
	return nil
}

// MustWeave is Weave which panics on error.
func (d *Dispatcher) MustWeave() *Dispatcher {
	if err := d.Weave(); err != nil {
		panic(err)
	}
	return d
}

// Respond appends the response to one request line, terminator
// included, to dst. line is expected without terminator.
func (d *Dispatcher) Respond(dst []byte, line string) []byte {
	d.state = Dispatching
	defer d.setIdle()
	call, err := d.enc.Decode(line)
	if err != nil {
		if glog.V(2) {
			glog.Infof("%smalformed %q: %v", d.logPrefix, line, err)
		}
		return d.appendError(dst, badFormatText, d.sanitize(line, false))
	}
	switch call.Name {
	case d.identifyName:
		d.state = Responding
		return d.enc.AppendEncodeValue(dst, contract.IdentifyName, protocol.Response,
			contract.IdentityKey, protocol.StringValue(d.identity.Identity()))
	case d.pingName:
		d.state = Responding
		return d.enc.AppendEncode(dst, contract.PingName, protocol.Response)
	}
	for n := 0; n < d.set.Len(); n++ {
		if c := d.set.At(n); c.RequestName == call.Name {
			return d.invoke(dst, c, d.handlers[n], &call)
		}
	}
	if glog.V(2) {
		glog.Infof("%sunidentified %q", d.logPrefix, call.Name)
	}
	return d.appendError(dst, "Unidentified command: ", call.Name)
}

func (d *Dispatcher) invoke(dst []byte, c *contract.Contract, fn HandlerFunc, call *protocol.Call) []byte {
	d.in.reset()
	for _, arg := range c.Args {
		v, err := call.Extract(arg.Name, arg.Type)
		if err != nil {
			return d.appendError(dst, "Invalid argument "+arg.Name+": ", d.sanitize(argReason(err), true))
		}
		d.in.add(v)
	}
	if fn == nil {
		return d.appendError(dst, c.Name+" failed: ", ErrMissingHandler.Error())
	}
	ret, err := fn(&d.in)
	if err == nil && c.HasReturn() && ret.Type() != c.Return.Type {
		err = fmt.Errorf("%w: %v, declared %v", ErrReturnType, ret.Type(), c.Return.Type)
	}
	if err != nil {
		glog.Warningf("%s%s failed: %v", d.logPrefix, c.Name, err)
		return d.appendError(dst, c.Name+" failed: ", d.sanitize(err.Error(), true))
	}
	d.state = Responding
	if c.HasReturn() {
		return d.enc.AppendEncodeValue(dst, c.Name, protocol.Response, c.Return.Name, ret)
	}
	return d.enc.AppendEncode(dst, c.Name, protocol.Response)
}

func (d *Dispatcher) appendError(dst []byte, text, detail string) []byte {
	d.state = Responding
	dst = append(dst, contract.ErrorName...)
	dst = append(dst, d.enc.ResponseSuffix...)
	dst = append(dst, d.enc.Opener...)
	dst = append(dst, contract.MessageKey...)
	dst = append(dst, d.enc.KVSeparator...)
	dst = append(dst, text...)
	dst = append(dst, detail...)
	dst = append(dst, d.enc.Closer...)
	return append(dst, d.enc.Terminator...)
}

// sanitize keeps generated text on one line. With strict, the delimiters
// that would cut the message short are replaced as well.
func (d *Dispatcher) sanitize(text string, strict bool) string {
	delims := []string{d.enc.Terminator}
	if strict {
		delims = append(delims, d.enc.Opener, d.enc.Closer, d.enc.ArgSeparator)
	}
	for _, delim := range delims {
		if strings.Contains(text, delim) {
			text = strings.ReplaceAll(text, delim, " ")
		}
	}
	return text
}

func (d *Dispatcher) setIdle() {
	d.state = Idle
}

func argReason(err error) string {
	var argErr *protocol.ArgError
	if !errors.As(err, &argErr) {
		return err.Error()
	}
	if errors.Is(argErr.Err, protocol.ErrArgNotFound) {
		return "missing"
	}
	if errors.Is(argErr.Err, protocol.ErrArgInvalid) {
		return strings.TrimPrefix(argErr.Err.Error(), protocol.ErrArgInvalid.Error()+": ")
	}
	return argErr.Err.Error()
}

// Poll handles at most one line from t without blocking when nothing is
// available. busy reports whether a line was handled. Only transport
// errors are returned.
func (d *Dispatcher) Poll(ctx context.Context, t transport.LineTransport) (busy bool, err error) {
	if !t.Available() {
		return false, nil
	}
	line, err := t.ReadLine(ctx)
	if err != nil {
		return false, err
	}
	d.buf = d.Respond(d.buf[:0], line)
	if glog.V(2) {
		glog.Infof("%s%q -> %q", d.logPrefix, line, d.buf)
	}
	return true, t.WriteLine(d.buf)
}

// Server binds a Dispatcher to a transport as a framework.Stepper.
type Server struct {
	Dispatcher *Dispatcher
	Transport  transport.LineTransport
}

// Serve creates a Server on t.
func (d *Dispatcher) Serve(t transport.LineTransport) *Server {
	return &Server{Dispatcher: d, Transport: t}
}

// Step implements fx.Stepper.
func (s *Server) Step(ctx context.Context) (bool, error) {
	return s.Dispatcher.Poll(ctx, s.Transport)
}

// AddToLoop implements fx.LoopAdder. A transport which is also a
// Runnable runs in the background of the loop.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.AddStepper(s)
	if r, ok := s.Transport.(fx.Runnable); ok {
		l.AddRunnable(r)
	}
}

// Run weaves the dispatcher and serves t until ctx is done or the
// transport fails.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Dispatcher.Weave(); err != nil {
		return err
	}
	return fx.NewLoop().Add(s).Run(ctx)
}

package sh

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/hardsync.go/pkg/client"
	"github.com/robotalks/hardsync.go/pkg/contract"
	"github.com/robotalks/hardsync.go/pkg/env"
	"github.com/robotalks/hardsync.go/pkg/protocol"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell     *ishell.Shell
	Config    *env.Config
	Encoding  protocol.Encoding
	Contracts *contract.Set
	Conn      *Conn
}

// Conn is the current device connection.
type Conn struct {
	Ctx    context.Context
	Cancel func()
	URL    string
	Link   env.Link
	Client *client.Client
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

// ErrNotConnected indicates a command requiring a device connection.
var ErrNotConnected = errors.New("not connected")

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&IdentifyCmd,
		&PingCmd,
		&CallCmd,
		&ContractsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell. The contract document of conf, if any, is
// loaded to type the arguments and the responses.
func New(conf *env.Config) (*Shell, error) {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:    ishell.New(),
		Config:   conf,
		Encoding: protocol.DefaultEncoding(),
	}
	if conf.Contract != "" {
		doc, set, err := conf.LoadContracts()
		if err != nil {
			return nil, err
		}
		if s.Encoding, err = doc.ProtocolEncoding(); err != nil {
			return nil, err
		}
		s.Contracts = set
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s, nil
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Candidates returns the places to look for devices: the given URLs, or
// the configured transport followed by the serial ports present.
func (s *Shell) Candidates(ctx context.Context, urls ...string) []client.Candidate {
	var candidates []client.Candidate
	if len(urls) == 0 {
		if s.Config.Transport != "" {
			candidates = append(candidates, s.Config.Candidate(ctx, s.Config.Transport, s.Encoding))
		}
		return append(candidates, s.Config.SerialCandidates(ctx, s.Encoding, "")...)
	}
	for _, u := range urls {
		candidates = append(candidates, s.Config.Candidate(ctx, u, s.Encoding))
	}
	return candidates
}

// Discover probes the candidates and closes the links of found devices.
func (s *Shell) Discover(urls ...string) []client.Found {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	found := client.Discover(ctx, s.Encoding, s.Candidates(ctx, urls...), s.Config.ClientOptions()...)
	for _, f := range found {
		if link, ok := f.Client.Transport.(env.Link); ok {
			link.Close()
		}
	}
	return found
}

// Connect connects the device at the transport URL.
func (s *Shell) Connect(url string) error {
	conn := &Conn{URL: url}
	conn.Ctx, conn.Cancel = context.WithCancel(context.Background())
	conf := *s.Config
	conf.Transport = url
	var err error
	if conn.Client, conn.Link, err = conf.Connect(conn.Ctx, s.Encoding); err != nil {
		conn.Cancel()
		return err
	}
	s.Disconnect()
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", url))
	return nil
}

// Disconnect disconnects current device.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Cancel()
		s.Conn.Link.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Call sends a request and prints the response.
func (s *Shell) Call(c *ishell.Context, name string, args ...protocol.Argument) error {
	if s.Conn == nil {
		c.Err(ErrNotConnected)
		return ErrNotConnected
	}
	ct, _ := s.lookup(name)
	if err := CheckArgs(ct, args); err != nil {
		c.Err(err)
		return err
	}
	resp, err := s.Conn.Client.Call(s.Conn.Ctx, name, args...)
	if err != nil {
		c.Err(err)
		return err
	}
	out, err := FormatResponse(resp, ct, s.OutputJSON)
	if err != nil {
		c.Err(err)
		return err
	}
	c.Println(out)
	return nil
}

func (s *Shell) lookup(name string) (*contract.Contract, bool) {
	if s.Contracts == nil {
		return nil, false
	}
	return s.Contracts.LookupName(name)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Transport != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Transport)
		}
		if err := s.Connect(s.Config.Transport); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Transport, err)
		}
		defer s.Disconnect()
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	s, err := New(env.Default())
	if err != nil {
		log.Fatalln(err)
	}
	s.WithAutoConnect(true).Run(flag.Args()...)
}

package sh

import (
	"errors"
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/hardsync.go/pkg/contract"
)

var (
	// DiscoverCmd discovers devices.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "[URL...]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			found := s.Discover(c.Args...)
			if s.OutputJSON {
				out, err := FormatFound(found)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(out)
				return
			}
			if len(found) == 0 {
				c.Println("No devices found")
				return
			}
			for _, f := range found {
				c.Printf("%s: %s\n", f.Identity, f.Name)
			}
		},
	}

	// ConnectCmd connects a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var url string
			if len(c.Args) > 0 {
				url = c.Args[0]
			} else {
				found := s.Discover()
				if len(found) == 0 {
					c.Err(errors.New("no device discovered"))
					return
				}
				var index int
				if len(found) > 1 {
					if !s.Interactive {
						c.Err(errors.New("more than 1 device discovered in non-interactive mode"))
						return
					}
					items := make([]string, len(found))
					for n, f := range found {
						items[n] = f.Identity + ": " + f.Name
					}
					index = s.Shell.MultiChoice(items, "Which one to connect?")
				}
				url = found[index].Name
			}
			if err := s.Connect(url); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// IdentifyCmd asks the identity.
	IdentifyCmd = ishell.Cmd{
		Name:    "identify",
		Aliases: []string{"id"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			ShellFrom(c).Call(c, contract.IdentifyName)
		}),
	}

	// PingCmd checks the device answers.
	PingCmd = ishell.Cmd{
		Name:    "ping",
		Aliases: []string{"p"},
		Help:    "",
		Func: MustBeConnected(func(c *ishell.Context) {
			ShellFrom(c).Call(c, contract.PingName)
		}),
	}

	// CallCmd sends any command.
	CallCmd = ishell.Cmd{
		Name:    "call",
		Aliases: []string{"x"},
		Help:    "NAME [KEY=VALUE...]",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(errors.New("NAME required"))
				return
			}
			args, err := ParseArgs(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			ShellFrom(c).Call(c, c.Args[0], args...)
		}),
	}

	// ContractsCmd lists the loaded contracts.
	ContractsCmd = ishell.Cmd{
		Name:    "contracts",
		Aliases: []string{"cs"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.Contracts == nil {
				c.Err(errors.New("no contract document, see -contract"))
				return
			}
			for _, ct := range s.Contracts.Contracts() {
				c.Println(FormatContract(ct))
			}
		},
	}
)

// FormatContract prints a contract as a call signature.
func FormatContract(ct *contract.Contract) string {
	sig := ct.Name + "("
	for n, arg := range ct.Args {
		if n > 0 {
			sig += ", "
		}
		sig += fmt.Sprintf("%s %v", arg.Name, arg.Type)
	}
	sig += ")"
	if ct.HasReturn() {
		sig += fmt.Sprintf(" %s %v", ct.Return.Name, ct.Return.Type)
	}
	return sig
}

package contract

import "github.com/robotalks/hardsync.go/pkg/protocol"

// Names of the built-in commands every dispatcher answers.
const (
	IdentifyName = "Identify"
	PingName     = "Ping"
	ErrorName    = "Error"

	// IdentityKey carries the identity in an identification response.
	IdentityKey = "id"
	// MessageKey carries the text of an error response.
	MessageKey = "msg"
)

// DefaultReturnName is used when a return value is declared without a name.
const DefaultReturnName = "value"

// ArgSpec declares one argument.
type ArgSpec struct {
	Name string
	Type protocol.Type
}

// ReturnSpec declares the return value.
type ReturnSpec struct {
	Name string
	Type protocol.Type
}

// Contract is the immutable description of one command.
type Contract struct {
	Name         string
	RequestName  string
	ResponseName string
	Args         []ArgSpec
	Return       ReturnSpec
}

// HasReturn indicates the response carries a value.
func (c *Contract) HasReturn() bool {
	return c.Return.Type.IsValue()
}

// Spec converts the contract back to its document form.
func (c *Contract) Spec() Spec {
	s := Spec{Name: c.Name}
	for _, arg := range c.Args {
		s.Args = append(s.Args, ArgDoc{Name: arg.Name, Type: arg.Type.String()})
	}
	if c.HasReturn() {
		s.Returns = &ArgDoc{Name: c.Return.Name, Type: c.Return.Type.String()}
	}
	return s
}

// Spec is the textual declaration of a command, as found in documents.
type Spec struct {
	Name    string   `yaml:"name" toml:"name" json:"name"`
	Args    []ArgDoc `yaml:"args,omitempty" toml:"args,omitempty" json:"args,omitempty"`
	Returns *ArgDoc  `yaml:"returns,omitempty" toml:"returns,omitempty" json:"returns,omitempty"`
}

// ArgDoc is a named value with a type tag.
type ArgDoc struct {
	Name string `yaml:"name" toml:"name" json:"name"`
	Type string `yaml:"type" toml:"type" json:"type"`
}

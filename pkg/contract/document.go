package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/hardsync.go/pkg/protocol"
)

// DefaultBaud is used when a document doesn't specify a baud rate.
const DefaultBaud = 9600

// BaudRates lists the supported serial baud rates.
var BaudRates = []int{
	300, 1200, 2400, 4800, 9600, 19200, 38400, 57600,
	115200, 230400, 460800, 921600, 1000000, 2000000,
}

// ValidBaud checks baud is one of BaudRates.
func ValidBaud(baud int) bool {
	for _, b := range BaudRates {
		if b == baud {
			return true
		}
	}
	return false
}

// Format is a document serialization format.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// EncodingDoc overrides delimiters of the default encoding.
// Empty fields keep the default.
type EncodingDoc struct {
	Opener         string `yaml:"opener,omitempty" toml:"opener,omitempty" json:"opener,omitempty"`
	Closer         string `yaml:"closer,omitempty" toml:"closer,omitempty" json:"closer,omitempty"`
	KVSeparator    string `yaml:"kv_separator,omitempty" toml:"kv_separator,omitempty" json:"kv_separator,omitempty"`
	ArgSeparator   string `yaml:"arg_separator,omitempty" toml:"arg_separator,omitempty" json:"arg_separator,omitempty"`
	Terminator     string `yaml:"terminator,omitempty" toml:"terminator,omitempty" json:"terminator,omitempty"`
	RequestSuffix  string `yaml:"request_suffix,omitempty" toml:"request_suffix,omitempty" json:"request_suffix,omitempty"`
	ResponseSuffix string `yaml:"response_suffix,omitempty" toml:"response_suffix,omitempty" json:"response_suffix,omitempty"`
}

// Document is the host-side declaration of a device's commands.
type Document struct {
	Device   string       `yaml:"device,omitempty" toml:"device,omitempty" json:"device,omitempty"`
	Baud     int          `yaml:"baud,omitempty" toml:"baud,omitempty" json:"baud,omitempty"`
	Encoding *EncodingDoc `yaml:"encoding,omitempty" toml:"encoding,omitempty" json:"encoding,omitempty"`
	Commands []Spec       `yaml:"commands" toml:"commands" json:"commands"`
}

// LoadFile reads a document, the format is inferred from the extension.
func LoadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("contract load failed (%s): %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("contract parse failed (%s): %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown field %q", undecoded[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &doc, nil
}

// Marshal encodes the document.
func (d *Document) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(d)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(d, "", "  ")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// BaudRate returns the configured baud rate or DefaultBaud.
func (d *Document) BaudRate() (int, error) {
	if d.Baud == 0 {
		return DefaultBaud, nil
	}
	if !ValidBaud(d.Baud) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBaud, d.Baud)
	}
	return d.Baud, nil
}

// ProtocolEncoding applies the overrides to the default encoding and validates it.
func (d *Document) ProtocolEncoding() (protocol.Encoding, error) {
	enc := protocol.DefaultEncoding()
	if o := d.Encoding; o != nil {
		override(&enc.Opener, o.Opener)
		override(&enc.Closer, o.Closer)
		override(&enc.KVSeparator, o.KVSeparator)
		override(&enc.ArgSeparator, o.ArgSeparator)
		override(&enc.Terminator, o.Terminator)
		override(&enc.RequestSuffix, o.RequestSuffix)
		override(&enc.ResponseSuffix, o.ResponseSuffix)
	}
	if err := enc.Validate(); err != nil {
		return protocol.Encoding{}, err
	}
	return enc, nil
}

// Build validates the whole document and builds its contract set.
func (d *Document) Build() (*Set, error) {
	if _, err := d.BaudRate(); err != nil {
		return nil, err
	}
	enc, err := d.ProtocolEncoding()
	if err != nil {
		return nil, err
	}
	return BuildSet(enc, d.Commands)
}

// NewDocument creates a document describing a set.
func NewDocument(device string, set *Set) *Document {
	doc := &Document{Device: device, Commands: set.Specs()}
	enc, def := set.Encoding(), protocol.DefaultEncoding()
	if enc != def {
		doc.Encoding = &EncodingDoc{
			Opener:         enc.Opener,
			Closer:         enc.Closer,
			KVSeparator:    enc.KVSeparator,
			ArgSeparator:   enc.ArgSeparator,
			Terminator:     enc.Terminator,
			RequestSuffix:  enc.RequestSuffix,
			ResponseSuffix: enc.ResponseSuffix,
		}
	}
	return doc
}

func override(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

package protocol

import (
	"fmt"
	"strings"
)

// Kind tells a request line from a response line.
type Kind int

const (
	// Request is sent by the host.
	Request Kind = iota
	// Response is sent back by the device.
	Response
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == Response {
		return "response"
	}
	return "request"
}

// Encoding defines the delimiters of the line protocol.
// It's built once at startup and passed around by value.
type Encoding struct {
	Opener         string
	Closer         string
	KVSeparator    string
	ArgSeparator   string
	Terminator     string
	RequestSuffix  string
	ResponseSuffix string
}

// DefaultEncoding returns the encoding used by default:
// Name(key=value,key=value) terminated by a newline.
func DefaultEncoding() Encoding {
	return Encoding{
		Opener:         "(",
		Closer:         ")",
		KVSeparator:    "=",
		ArgSeparator:   ",",
		Terminator:     "\n",
		RequestSuffix:  "Request",
		ResponseSuffix: "Response",
	}
}

type delimiter struct {
	name string
	val  string
}

// Validate checks the delimiters are non-empty, distinct from each other
// and free of identifier characters, which names and keys are made of.
func (e Encoding) Validate() error {
	delims := []delimiter{
		{"opener", e.Opener},
		{"closer", e.Closer},
		{"key/value separator", e.KVSeparator},
		{"argument separator", e.ArgSeparator},
		{"terminator", e.Terminator},
	}
	for i, d := range delims {
		if d.val == "" {
			return fmt.Errorf("%w: empty %s", ErrInvalidEncoding, d.name)
		}
		if strings.ContainsFunc(d.val, isWordRune) {
			return fmt.Errorf("%w: %s %q contains identifier characters", ErrInvalidEncoding, d.name, d.val)
		}
		for _, o := range delims[:i] {
			if !strings.Contains(o.val, d.val) && !strings.Contains(d.val, o.val) {
				continue
			}
			if (o.val == e.KVSeparator && d.val == e.ArgSeparator) ||
				(o.val == e.ArgSeparator && d.val == e.KVSeparator) {
				return fmt.Errorf("%w: %q and %q", ErrAmbiguousEncoding, e.ArgSeparator, e.KVSeparator)
			}
			return fmt.Errorf("%w: %s %q overlaps %s %q", ErrInvalidEncoding, o.name, o.val, d.name, d.val)
		}
	}
	if e.RequestSuffix == "" || e.ResponseSuffix == "" {
		return fmt.Errorf("%w: empty suffix", ErrInvalidEncoding)
	}
	if e.RequestSuffix == e.ResponseSuffix {
		return fmt.Errorf("%w: request and response suffix are both %q", ErrInvalidEncoding, e.RequestSuffix)
	}
	for _, suffix := range []string{e.RequestSuffix, e.ResponseSuffix} {
		for _, d := range delims {
			if strings.Contains(suffix, d.val) {
				return fmt.Errorf("%w: suffix %q contains %s", ErrInvalidEncoding, suffix, d.name)
			}
		}
	}
	return nil
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Suffix returns the name suffix of the kind.
func (e Encoding) Suffix(kind Kind) string {
	if kind == Response {
		return e.ResponseSuffix
	}
	return e.RequestSuffix
}

// WireName appends the kind suffix to a base name.
func (e Encoding) WireName(name string, kind Kind) string {
	return name + e.Suffix(kind)
}

// SplitName splits a wire name into base name and kind.
// ok is false if the name carries neither suffix.
func (e Encoding) SplitName(wire string) (name string, kind Kind, ok bool) {
	if base := strings.TrimSuffix(wire, e.RequestSuffix); base != wire && base != "" {
		return base, Request, true
	}
	if base := strings.TrimSuffix(wire, e.ResponseSuffix); base != wire && base != "" {
		return base, Response, true
	}
	return wire, Request, false
}

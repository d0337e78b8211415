package protocol

import "strings"

// Decode parses one line (without terminator) into a Call.
//
// The name is everything before the first opener and the arguments are
// between the first opener and the first closer. An argument without a
// key/value separator ends decoding and the arguments collected so far
// are kept. Anything after the closer is ignored.
//
// On structural failure the zero Call is returned with a *MalformedError.
func (e Encoding) Decode(raw string) (call Call, err error) {
	open := strings.Index(raw, e.Opener)
	if open < 0 {
		return Call{}, &MalformedError{Line: raw, Reason: ErrNoOpener}
	}
	end := strings.Index(raw, e.Closer)
	if end < 0 {
		return Call{}, &MalformedError{Line: raw, Reason: ErrNoCloser}
	}
	start := open + len(e.Opener)
	if end < start {
		return Call{}, &MalformedError{Line: raw, Reason: ErrCloserFirst}
	}
	if open == 0 {
		return Call{}, &MalformedError{Line: raw, Reason: ErrEmptyName}
	}
	call.Name = raw[:open]
	for rest := raw[start:end]; rest != ""; {
		part := rest
		if i := strings.Index(rest, e.ArgSeparator); i >= 0 {
			part, rest = rest[:i], rest[i+len(e.ArgSeparator):]
		} else {
			rest = ""
		}
		eq := strings.Index(part, e.KVSeparator)
		if eq < 0 {
			break
		}
		if !call.Args.Add(part[:eq], part[eq+len(e.KVSeparator):]) {
			return Call{}, &MalformedError{Line: raw, Reason: ErrTooManyArgs}
		}
	}
	return call, nil
}

// AppendEncode appends the encoded line, terminator included, to dst.
// Keys and values are written verbatim: they must not contain delimiters.
func (e Encoding) AppendEncode(dst []byte, name string, kind Kind, args ...Argument) []byte {
	dst = e.appendHead(dst, name, kind)
	for i, arg := range args {
		if i > 0 {
			dst = append(dst, e.ArgSeparator...)
		}
		dst = append(dst, arg.Key...)
		dst = append(dst, e.KVSeparator...)
		dst = append(dst, arg.Value...)
	}
	return e.appendTail(dst)
}

// AppendEncodeArgs is AppendEncode over an Args store.
func (e Encoding) AppendEncodeArgs(dst []byte, name string, kind Kind, args *Args) []byte {
	return e.AppendEncode(dst, name, kind, args.Slice()...)
}

// AppendEncodeValue appends a line carrying a single typed value under key.
func (e Encoding) AppendEncodeValue(dst []byte, name string, kind Kind, key string, val Value) []byte {
	dst = e.appendHead(dst, name, kind)
	dst = append(dst, key...)
	dst = append(dst, e.KVSeparator...)
	dst = val.AppendTo(dst)
	return e.appendTail(dst)
}

// Encode returns the encoded line, terminator included.
func (e Encoding) Encode(name string, kind Kind, args ...Argument) string {
	return string(e.AppendEncode(nil, name, kind, args...))
}

func (e Encoding) appendHead(dst []byte, name string, kind Kind) []byte {
	dst = append(dst, name...)
	dst = append(dst, e.Suffix(kind)...)
	return append(dst, e.Opener...)
}

func (e Encoding) appendTail(dst []byte) []byte {
	dst = append(dst, e.Closer...)
	return append(dst, e.Terminator...)
}

package transport

import (
	"bytes"
	"strings"

	"github.com/golang/glog"
)

// DefaultMaxLineLength bounds the size of a received line.
const DefaultMaxLineLength = 4096

// LineSplitter cuts a byte stream into lines on a terminator.
// A trailing carriage return is removed from each line. A line longer
// than MaxLineLength is cut to its first MaxLineLength bytes, so every
// terminated line is still delivered once.
type LineSplitter struct {
	Terminator    string
	MaxLineLength int

	buf        []byte
	truncating bool
	truncated  string
}

// NewLineSplitter creates a LineSplitter.
func NewLineSplitter(terminator string) *LineSplitter {
	return &LineSplitter{Terminator: terminator, MaxLineLength: DefaultMaxLineLength}
}

// Feed appends data and calls emit for every completed line.
// Overlong lines are truncated with a warning. Feeding stops at the first
// error returned by emit.
func (s *LineSplitter) Feed(data []byte, emit func(string) error) error {
	s.buf = append(s.buf, data...)
	term := []byte(s.Terminator)
	for {
		n := bytes.Index(s.buf, term)
		if n < 0 {
			break
		}
		line := s.buf[:n]
		s.buf = s.buf[n+len(term):]
		var text string
		if s.truncating {
			text, s.truncating, s.truncated = s.truncated, false, ""
		} else {
			if s.overlong(len(line)) {
				glog.Warningf("line truncated: %v (%d bytes)", ErrLineTooLong, len(line))
				line = line[:s.MaxLineLength]
			}
			text = string(line)
		}
		if err := emit(strings.TrimSuffix(text, "\r")); err != nil {
			s.compact()
			return err
		}
	}
	if s.truncating {
		s.keepTail(len(term) - 1)
	} else if s.overlong(len(s.buf) - len(term)) {
		glog.Warningf("line truncated: %v (more than %d bytes)", ErrLineTooLong, s.MaxLineLength)
		s.truncated, s.truncating = string(s.buf[:s.MaxLineLength]), true
		s.keepTail(len(term) - 1)
	}
	s.compact()
	return nil
}

// Pending returns the number of buffered bytes of the incomplete line.
func (s *LineSplitter) Pending() int {
	return len(s.buf)
}

func (s *LineSplitter) overlong(size int) bool {
	return s.MaxLineLength > 0 && size > s.MaxLineLength
}

// keepTail keeps the last n bytes, a terminator may start in them.
func (s *LineSplitter) keepTail(n int) {
	if len(s.buf) > n {
		s.buf = append(s.buf[:0], s.buf[len(s.buf)-n:]...)
	}
}

func (s *LineSplitter) compact() {
	if len(s.buf) == 0 {
		s.buf = s.buf[:0:0]
		return
	}
	if cap(s.buf) > 2*len(s.buf)+DefaultMaxLineLength {
		s.buf = append([]byte(nil), s.buf...)
	}
}

// TrimTerminator strips the terminator, and a carriage return before it,
// from a line received as a whole message.
func TrimTerminator(line, terminator string) string {
	return strings.TrimSuffix(strings.TrimSuffix(line, terminator), "\r")
}

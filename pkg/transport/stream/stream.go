package stream

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/hardsync.go/pkg/framework"
	"github.com/robotalks/hardsync.go/pkg/transport"
)

// DefaultReadSize is the size of a single read from the underlying stream.
const DefaultReadSize = 256

// Transport implements transport.LineTransport over an io.ReadWriter.
// Lines are only received while Run is running.
type Transport struct {
	// RetryEOF treats io.EOF as a read timeout instead of the end of
	// the stream, serial ports with a read timeout report it this way.
	RetryEOF bool

	rw        io.ReadWriter
	splitter  *transport.LineSplitter
	lines     *transport.LineQueue
	writeLock sync.Mutex
}

// New creates a Transport splitting lines on terminator.
func New(rw io.ReadWriter, terminator string) *Transport {
	return &Transport{
		rw:       rw,
		splitter: transport.NewLineSplitter(terminator),
		lines:    transport.NewLineQueue(0),
	}
}

// WithMaxLineLength overrides transport.DefaultMaxLineLength.
func (t *Transport) WithMaxLineLength(size int) *Transport {
	t.splitter.MaxLineLength = size
	return t
}

// Available implements transport.LineTransport.
func (t *Transport) Available() bool {
	return t.lines.Available()
}

// ReadLine implements transport.LineTransport.
func (t *Transport) ReadLine(ctx context.Context) (string, error) {
	return t.lines.ReadLine(ctx)
}

// WriteLine implements transport.LineTransport.
func (t *Transport) WriteLine(line []byte) error {
	t.writeLock.Lock()
	defer t.writeLock.Unlock()
	for len(line) > 0 {
		n, err := t.rw.Write(line)
		if err != nil {
			return err
		}
		line = line[n:]
	}
	return nil
}

// Run implements fx.Runnable. It reads until the stream fails or ctx is
// done. The stream is closed on return if it's an io.Closer.
func (t *Transport) Run(ctx context.Context) error {
	var err error
	if closer, ok := t.rw.(io.Closer); ok {
		err = fx.RunWithContextCloser(ctx, closer, func() error { return t.readLoop(ctx) })
	} else {
		err = fx.RunWithContextCancel(ctx, nil, func() error { return t.readLoop(ctx) })
	}
	if errors.Is(err, io.EOF) {
		t.lines.Close()
		return nil
	}
	t.lines.CloseWithError(err)
	return err
}

// Close closes the line queue, and the stream if it's an io.Closer.
func (t *Transport) Close() error {
	t.lines.Close()
	if closer, ok := t.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *Transport) readLoop(ctx context.Context) error {
	buf := make([]byte, DefaultReadSize)
	push := func(line string) error {
		glog.V(2).Infof("RCV %q", line)
		return t.lines.Push(ctx, line)
	}
	for {
		n, err := t.rw.Read(buf)
		if n > 0 {
			if ferr := t.splitter.Feed(buf[:n], push); ferr != nil {
				return ferr
			}
		}
		if err != nil {
			if err == io.EOF && t.RetryEOF {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			}
			return err
		}
	}
}

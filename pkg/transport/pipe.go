package transport

import (
	"context"
	"sync"
)

// Endpoint is one side of an in-memory pipe.
type Endpoint struct {
	*LineQueue

	peer     *Endpoint
	splitter *LineSplitter
	lock     sync.Mutex
}

// Pipe creates two connected endpoints. Lines written to one side are
// split on terminator and become readable on the other side.
func Pipe(terminator string) (*Endpoint, *Endpoint) {
	a := &Endpoint{LineQueue: NewLineQueue(0), splitter: NewLineSplitter(terminator)}
	b := &Endpoint{LineQueue: NewLineQueue(0), splitter: NewLineSplitter(terminator)}
	a.peer, b.peer = b, a
	return a, b
}

// WriteLine implements LineTransport.
func (e *Endpoint) WriteLine(line []byte) error {
	select {
	case <-e.Done():
		return ErrClosed
	default:
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.splitter.Feed(line, func(s string) error {
		return e.peer.Push(context.Background(), s)
	})
}

// Close closes both directions.
func (e *Endpoint) Close() error {
	e.LineQueue.Close()
	e.peer.LineQueue.Close()
	return nil
}

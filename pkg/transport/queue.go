package transport

import (
	"context"
	"io"
	"sync"
)

// DefaultQueueSize is the number of lines buffered by a LineQueue.
const DefaultQueueSize = 16

// LineQueue buffers received lines for a reader.
// Transports push lines from their receiving goroutine.
type LineQueue struct {
	lines    chan string
	closed   chan struct{}
	closeErr error
	once     sync.Once
}

// NewLineQueue creates a LineQueue buffering up to size lines.
func NewLineQueue(size int) *LineQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &LineQueue{
		lines:  make(chan string, size),
		closed: make(chan struct{}),
	}
}

// Push queues a line, it blocks while the queue is full.
func (q *LineQueue) Push(ctx context.Context, line string) error {
	select {
	case <-q.closed:
		return ErrClosed
	default:
	}
	select {
	case q.lines <- line:
		return nil
	case <-q.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Available implements LineTransport.
func (q *LineQueue) Available() bool {
	if len(q.lines) > 0 {
		return true
	}
	select {
	case <-q.closed:
		return true
	default:
		return false
	}
}

// ReadLine implements LineTransport. Lines queued before Close are
// still delivered.
func (q *LineQueue) ReadLine(ctx context.Context) (string, error) {
	select {
	case line := <-q.lines:
		return line, nil
	default:
	}
	select {
	case line := <-q.lines:
		return line, nil
	case <-q.closed:
		select {
		case line := <-q.lines:
			return line, nil
		default:
			return "", q.closeErr
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close closes the queue, readers get io.EOF.
func (q *LineQueue) Close() error {
	return q.CloseWithError(nil)
}

// CloseWithError closes the queue, readers get err, or io.EOF if err is nil.
// Only the first call has effect.
func (q *LineQueue) CloseWithError(err error) error {
	q.once.Do(func() {
		if err == nil {
			err = io.EOF
		}
		q.closeErr = err
		close(q.closed)
	})
	return nil
}

// Done is closed when the queue is closed.
func (q *LineQueue) Done() <-chan struct{} {
	return q.closed
}

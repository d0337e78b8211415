package transport

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLineQueue(t *testing.T) {
	q := NewLineQueue(2)
	ctx := context.Background()
	require.False(t, q.Available())
	require.NoError(t, q.Push(ctx, "a()"))
	require.NoError(t, q.Push(ctx, "b()"))
	require.True(t, q.Available())

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, q.Push(timeoutCtx, "c()"))

	line, err := q.ReadLine(ctx)
	require.NoError(t, err)
	require.Equal(t, "a()", line)

	q.Close()
	require.True(t, q.Available())
	require.Equal(t, ErrClosed, q.Push(ctx, "c()"))
	line, err = q.ReadLine(ctx)
	require.NoError(t, err)
	require.Equal(t, "b()", line)
	_, err = q.ReadLine(ctx)
	require.Equal(t, io.EOF, err)
}

func TestLineQueueCloseWithError(t *testing.T) {
	q := NewLineQueue(0)
	failure := errors.New("port gone")
	q.CloseWithError(failure)
	q.CloseWithError(errors.New("ignored"))
	_, err := q.ReadLine(context.Background())
	require.Equal(t, failure, err)
}

func TestLineQueueReadWaits(t *testing.T) {
	q := NewLineQueue(0)
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push(context.Background(), "late()")
	}()
	line, err := q.ReadLine(context.Background())
	require.NoError(t, err)
	require.Equal(t, "late()", line)
}

func TestLineSplitter(t *testing.T) {
	s := NewLineSplitter("\r\n")
	var lines []string
	emit := func(line string) error {
		lines = append(lines, line)
		return nil
	}
	require.NoError(t, s.Feed([]byte("a()\r"), emit))
	require.Empty(t, lines)
	require.NoError(t, s.Feed([]byte("\nb(x=1)\r\nc("), emit))
	require.Equal(t, []string{"a()", "b(x=1)"}, lines)
	require.Equal(t, 2, s.Pending())
}

func TestLineSplitterStopsOnError(t *testing.T) {
	s := NewLineSplitter("\n")
	failure := errors.New("full")
	var lines []string
	err := s.Feed([]byte("a()\nb()\n"), func(line string) error {
		lines = append(lines, line)
		return failure
	})
	require.Equal(t, failure, err)
	require.Equal(t, []string{"a()"}, lines)
}

func TestLineSplitterTruncates(t *testing.T) {
	testCases := []struct {
		name   string
		term   string
		chunks []string
		expect []string
	}{
		{"whole line", "\n", []string{"abcdefghij\nk()\n"}, []string{"abcdefgh", "k()"}},
		{"split line", "\n", []string{"abcdef", "ghijkl", "mnop", "\nk()\n"}, []string{"abcdefgh", "k()"}},
		{"split terminator", "\r\n", []string{"abcdefghijkl\r", "\nk()\r\n"}, []string{"abcdefgh", "k()"}},
		{"at limit", "\n", []string{"abcdefgh\n"}, []string{"abcdefgh"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewLineSplitter(tc.term)
			s.MaxLineLength = 8
			var lines []string
			for _, chunk := range tc.chunks {
				require.NoError(t, s.Feed([]byte(chunk), func(line string) error {
					lines = append(lines, line)
					return nil
				}))
				require.LessOrEqual(t, s.Pending(), s.MaxLineLength+len(tc.term))
			}
			require.Equal(t, tc.expect, lines)
			require.Zero(t, s.Pending())
		})
	}
}

func TestTrimTerminator(t *testing.T) {
	require.Equal(t, "a()", TrimTerminator("a()\n", "\n"))
	require.Equal(t, "a()", TrimTerminator("a()\r\n", "\n"))
	require.Equal(t, "a()", TrimTerminator("a()", "\n"))
}

func TestPipe(t *testing.T) {
	host, dev := Pipe("\n")
	ctx := context.Background()
	require.NoError(t, host.WriteLine([]byte("PingRequest()\nIdentifyReq")))
	require.True(t, dev.Available())
	line, err := dev.ReadLine(ctx)
	require.NoError(t, err)
	require.Equal(t, "PingRequest()", line)
	require.False(t, dev.Available())
	require.NoError(t, host.WriteLine([]byte("uest()\n")))
	line, err = dev.ReadLine(ctx)
	require.NoError(t, err)
	require.Equal(t, "IdentifyRequest()", line)

	require.NoError(t, dev.WriteLine([]byte("PingResponse()\n")))
	line, err = host.ReadLine(ctx)
	require.NoError(t, err)
	require.Equal(t, "PingResponse()", line)

	dev.Close()
	require.True(t, host.Available())
	_, err = host.ReadLine(ctx)
	require.Equal(t, io.EOF, err)
	require.Equal(t, ErrClosed, host.WriteLine([]byte("x()\n")))
}

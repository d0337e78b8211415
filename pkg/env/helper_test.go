package env

import (
	"bufio"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// listenEcho answers a single request line with the matching empty response.
func listenEcho(t *testing.T) (net.Listener, <-chan struct{}) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			return
		}
		name := strings.TrimSuffix(line[:strings.Index(line, "(")], "Request")
		conn.Write([]byte(name + "Response()\n"))
	}()
	return ln, done
}

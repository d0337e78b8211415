// Package transport defines how the dispatcher and the host client
// exchange lines with the other side.
//
// A LineTransport never blocks in Available, so a device can poll it from
// its main loop. Concrete transports live in the sub packages: stream
// wraps any io.ReadWriter (TCP, serial ports), mqtt maps the lines to
// topics of a broker and websocket sends one message per line.
package transport

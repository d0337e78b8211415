// Package dispatch answers request lines with response lines.
//
// A Dispatcher owns a contract set and one handler per contract. After
// Weave, every line given to Respond produces exactly one response line:
// the built-in identification and ping, the response of the first
// matching contract, or an ErrorResponse. Errors from handlers and
// malformed input never escape Respond, they become error responses.
//
// A Dispatcher is driven from a single goroutine: the device main loop
// calls Poll, or a framework.Loop steps a Server.
package dispatch

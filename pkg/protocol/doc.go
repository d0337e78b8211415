// Package protocol provides the line codec spoken between a host and device firmware.
package protocol

// A line carries exactly one call:
//
//   <name><Request|Response><opener>[<key><sep><value>(<argSep><key><sep><value>)*]<closer><terminator>
//
// With the default encoding a request looks like
//
//   MeasureVoltageRequest(channel=1,integration_time=0.5)
//
// The format has no escaping. A delimiter embedded in a key or value
// changes how the line is split and the result is undefined; callers must
// keep delimiters out of names, keys and values.
//
// Decoding never allocates on success: names, keys and values are
// substrings of the decoded line and arguments live in a fixed-capacity
// store bounded by MaxArgs. Encoding appends to caller-provided buffers.
//
// Producer: host client and device dispatcher
// Consumer: host client and device dispatcher

// Package contract models the commands a device understands.
//
// A contract is the fixed shape of one command: its name, its ordered
// typed arguments and an optional typed return value. Contracts are built
// once, at startup or code generation time, and are immutable afterwards.
// Every build error (duplicate name, too many arguments, unknown type) is
// fatal: a Set is only ever returned when all of its contracts are valid.
package contract

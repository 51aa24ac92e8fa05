// Package protocol defines the wire format between external build tools and
// the kiln daemon.
//
// Every exchange is a single newline-delimited JSON envelope in each
// direction: the client sends a command with a payload, the daemon replies
// with "ok" or "error". The payload stays raw until the command has been
// inspected, so unknown commands can be rejected without guessing a type.
package protocol

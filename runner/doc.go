// Package runner contains the top-level job state machine. A Runner reads a
// decoded job, optionally downloads the referenced source code, provisions
// MCP tools, resolves or builds the execution context (reusing cached
// sessions when permitted), dispatches to the agent or team flow against the
// configured backend, and emits the terminal completed event with the
// accumulated thinking steps. Tool teardown runs unconditionally on every
// exit path; cancellation is observed cooperatively between backend events
// through a Token shared with the signal handler.
package runner

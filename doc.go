// Package vsp implements a client for the VSP debug protocol: a
// TCP-based, packet-framed request/response protocol used to introspect
// and control a SystemC/VCML simulator from an external debugger or
// scripting tool.
//
// A typical client dials a running simulator with Session.Connect, walks
// the downloaded Module hierarchy with FindModule/FindAttribute/
// FindCommand, operates on Targets for registers, memory, and
// breakpoints/watchpoints, and drives execution with Session.Run/Stop/
// Step. Registry discovers simulators advertising themselves via
// rendezvous files on disk.
//
// Fallible operations report failure as a *vsp.Error tagged with a Kind,
// so callers can distinguish a transport failure from a protocol refusal
// from a simple "no such module" lookup miss without string matching.
// The exceptions are the plain sentinel errors ErrNotConnected and
// ErrAlreadyConnected, and Registry.Dump, which passes YAML encoding
// errors through unchanged.
package vsp

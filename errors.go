package vsp

import (
	"errors"
	"fmt"
)

// Kind classifies why a VSP operation failed. The kinds are never
// conflated — a transport loss is never reported as a semantic lookup
// miss, and vice versa.
type Kind int

const (
	// KindTransportClosed: the socket was closed or could not be opened.
	KindTransportClosed Kind = iota
	// KindTransportCorruption: checksum retries exhausted or malformed framing.
	KindTransportCorruption
	// KindTransportOverflow: response exceeded the safety cap.
	KindTransportOverflow
	// KindProtocolRefused: response well-formed but resp[0] == "E".
	KindProtocolRefused
	// KindProtocolShape: response well-formed but field count/prefix disagrees.
	KindProtocolShape
	// KindSemantic: lookup found no such module/attribute/command/target/register.
	KindSemantic
	// KindArgumentMismatch: Command.Execute called with the wrong argument
	// count, or CpuReg.Set given more bytes than the register holds.
	KindArgumentMismatch
)

func (k Kind) String() string {
	switch k {
	case KindTransportClosed:
		return "transport_closed"
	case KindTransportCorruption:
		return "transport_corruption"
	case KindTransportOverflow:
		return "transport_overflow"
	case KindProtocolRefused:
		return "protocol_refused"
	case KindProtocolShape:
		return "protocol_shape"
	case KindSemantic:
		return "semantic"
	case KindArgumentMismatch:
		return "argument_mismatch"
	default:
		return "unknown"
	}
}

// Error is the tagged result type fallible operations in this package
// return (ErrNotConnected and ErrAlreadyConnected below are plain
// errors, not *Error values). Command.Execute is the only operation whose
// Error carries a simulator-supplied message in Msg; everywhere else Msg
// is empty and the caller is expected to consult Kind alone.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "geta", "mkbp"
	Msg  string // simulator-supplied message, populated only for Execute
	Err  error  // wrapped transport-level cause, if any
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("vsp: %s: %s", e.Op, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("vsp: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("vsp: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, &vsp.Error{Kind: vsp.KindSemantic}).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func newErr(op string, kind Kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// Sentinel errors for errors.Is against a well-known transport failure
// independent of which operation raised it.
var (
	ErrTransportClosed     = &Error{Kind: KindTransportClosed}
	ErrTransportCorruption = &Error{Kind: KindTransportCorruption}
	ErrTransportOverflow   = &Error{Kind: KindTransportOverflow}
	ErrNotConnected        = errors.New("vsp: not connected")
	ErrAlreadyConnected    = errors.New("vsp: already connected")
)

package vsp

import (
	"strconv"
	"strings"
)

// StopKind tags the cause of the last transition to stopped.
type StopKind int

const (
	StopUser StopKind = iota
	StopStepComplete
	StopBreakpoint
	StopReadWatchpoint
	StopWriteWatchpoint
	StopUnknown
)

func (k StopKind) String() string {
	switch k {
	case StopUser:
		return "user"
	case StopStepComplete:
		return "step_complete"
	case StopBreakpoint:
		return "breakpoint"
	case StopReadWatchpoint:
		return "rwatchpoint"
	case StopWriteWatchpoint:
		return "wwatchpoint"
	default:
		return "unknown"
	}
}

// StopReason records why the simulator last stopped: a Kind
// discriminator plus payload fields meaningful only for certain kinds.
type StopReason struct {
	Kind StopKind

	// TimeNS is the simulator-reported time of the stop, where available.
	TimeNS uint64

	// BreakpointID is set for StopBreakpoint.
	BreakpointID uint64

	// WatchID and WatchAddr are set for StopReadWatchpoint and
	// StopWriteWatchpoint; WatchSize is set only for StopReadWatchpoint.
	WatchID   uint64
	WatchAddr uint64
	WatchSize uint64

	// WatchData holds up to 16 bytes of written data, set only for
	// StopWriteWatchpoint.
	WatchData []byte
}

// parseStopReason defensively parses the tail of a "stopped:<reason>"
// status word (everything after "stopped:") into a StopReason. Unknown
// or malformed reason strings map to StopUnknown, never a panic or
// error — simulators disagree on the exact reason-string grammar.
func parseStopReason(reason string, timeNS uint64) StopReason {
	sr := StopReason{Kind: StopUnknown, TimeNS: timeNS}

	tag, rest, _ := strings.Cut(reason, ",")

	switch tag {
	case "user":
		sr.Kind = StopUser
	case "step_complete", "step":
		sr.Kind = StopStepComplete
	case "breakpoint":
		sr.Kind = StopBreakpoint
		sr.BreakpointID = parseKV(rest, "id")
	case "rwatchpoint":
		sr.Kind = StopReadWatchpoint
		sr.WatchID = parseKV(rest, "id")
		sr.WatchAddr = parseKV(rest, "addr")
		sr.WatchSize = parseKV(rest, "size")
	case "wwatchpoint":
		sr.Kind = StopWriteWatchpoint
		sr.WatchID = parseKV(rest, "id")
		sr.WatchAddr = parseKV(rest, "addr")
		sr.WatchData = parseHexData(rest, "data", 16)
	}

	return sr
}

// parseKV finds "key=value" in a comma-separated list of such pairs and
// parses value as a base-10 (or 0x-prefixed hex) unsigned integer.
func parseKV(s, key string) uint64 {
	for _, part := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k != key {
			continue
		}
		v = strings.TrimSpace(v)
		base := 10
		if strings.HasPrefix(v, "0x") {
			v = v[2:]
			base = 16
		}
		n, err := strconv.ParseUint(v, base, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// parseHexData finds "key=<hex bytes>" and decodes up to maxLen bytes.
func parseHexData(s, key string, maxLen int) []byte {
	for _, part := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k != key {
			continue
		}
		v = strings.TrimPrefix(v, "0x")
		if len(v)%2 != 0 {
			return nil
		}
		out := make([]byte, 0, len(v)/2)
		for i := 0; i < len(v) && len(out) < maxLen; i += 2 {
			n, err := strconv.ParseUint(v[i:i+2], 16, 8)
			if err != nil {
				return out
			}
			out = append(out, byte(n))
		}
		return out
	}
	return nil
}

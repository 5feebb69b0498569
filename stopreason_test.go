package vsp

import "testing"

func TestParseStopReasonKnownKinds(t *testing.T) {
	cases := []struct {
		reason string
		want   StopKind
	}{
		{"user", StopUser},
		{"step_complete", StopStepComplete},
		{"breakpoint,id=3", StopBreakpoint},
		{"rwatchpoint,id=1,addr=0x100,size=4", StopReadWatchpoint},
		{"wwatchpoint,id=1,addr=0x100,data=deadbeef", StopWriteWatchpoint},
	}
	for _, c := range cases {
		got := parseStopReason(c.reason, 0)
		if got.Kind != c.want {
			t.Errorf("parseStopReason(%q).Kind = %v, want %v", c.reason, got.Kind, c.want)
		}
	}
}

func TestParseStopReasonUnknownNeverPanics(t *testing.T) {
	cases := []string{"", "garbage", "breakpoint", "wwatchpoint,data=zz", ",,,", "🙂"}
	for _, c := range cases {
		got := parseStopReason(c, 0)
		if c == "" || c == "garbage" || c == "🙂" {
			if got.Kind != StopUnknown {
				t.Errorf("parseStopReason(%q).Kind = %v, want StopUnknown", c, got.Kind)
			}
		}
	}
}

func TestParseStopReasonBreakpointID(t *testing.T) {
	got := parseStopReason("breakpoint,id=12", 100)
	if got.BreakpointID != 12 {
		t.Errorf("BreakpointID = %d, want 12", got.BreakpointID)
	}
	if got.TimeNS != 100 {
		t.Errorf("TimeNS = %d, want 100", got.TimeNS)
	}
}

func TestParseStopReasonWriteWatchpointData(t *testing.T) {
	got := parseStopReason("wwatchpoint,id=2,addr=0x200,data=deadbeef", 0)
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if len(got.WatchData) != len(want) {
		t.Fatalf("WatchData = %x, want %x", got.WatchData, want)
	}
	for i := range want {
		if got.WatchData[i] != want[i] {
			t.Errorf("byte %d = %x, want %x", i, got.WatchData[i], want[i])
		}
	}
}

package vsp

import (
	"strconv"
	"strings"
)

// Target is a named simulated CPU, borrowing the Session's Connection.
// It owns an ordered list of CpuRegs (declared order preserved) and maps
// breakpoint/watchpoint keys to the simulator-acknowledged ids that back
// them.
type Target struct {
	conn *Connection
	name string

	regs []*CpuReg

	bpByAddr map[uint64]uint64   // addr -> id
	wpByKey  map[watchKey]uint64 // (base,size,access) -> id
}

type watchKey struct {
	base, size uint64
	access     WatchAccess
}

// newTarget constructs a Target and populates its register list by
// sending "lreg,<target>", then probing each register's size in turn.
func newTarget(conn *Connection, name string) *Target {
	t := &Target{
		conn:     conn,
		name:     name,
		bpByAddr: make(map[uint64]uint64),
		wpByKey:  make(map[watchKey]uint64),
	}
	t.loadRegs()
	return t
}

func (t *Target) loadRegs() {
	resp, err := t.conn.Command("lreg," + t.name)
	if err != nil || len(resp) == 0 || resp[0] != "OK" {
		return
	}
	for _, name := range resp[1:] {
		t.regs = append(t.regs, newCpuReg(t.conn, name, t))
	}
}

// Name returns the target's name.
func (t *Target) Name() string { return t.name }

// Regs returns the target's registers in declared order.
func (t *Target) Regs() []*CpuReg { return t.regs }

// FindReg returns the register named name, or nil.
func (t *Target) FindReg(name string) *CpuReg {
	for _, r := range t.regs {
		if r.name == name {
			return r
		}
	}
	return nil
}

// PC reads the "pc" or "PC" register and interprets its bytes as a
// little-endian unsigned integer.
func (t *Target) PC() (uint64, error) {
	reg := t.FindReg("pc")
	if reg == nil {
		reg = t.FindReg("PC")
	}
	if reg == nil {
		return 0, newErr("pc", KindSemantic, nil)
	}

	data, err := reg.Get()
	if err != nil {
		return 0, err
	}

	var pc uint64
	for i := len(data) - 1; i >= 0; i-- {
		pc = (pc << 8) | uint64(data[i])
	}
	return pc, nil
}

// Step advances the target by one instruction via "step,<target>". It
// does not itself block on the simulator actually halting — the caller
// polls Session status.
func (t *Target) Step() error {
	_, err := t.conn.Command("step," + t.name)
	return err
}

// StepN repeats Step n times.
func (t *Target) StepN(n int) error {
	for i := 0; i < n; i++ {
		if err := t.Step(); err != nil {
			return err
		}
	}
	return nil
}

// VirtToPhys translates a virtual address via "vapa,<target>,<vaddr>".
// The simulator returns 0 both on error and when the address
// legitimately maps to physical 0 — the returned bool reports whether
// the wire call succeeded, so callers can disambiguate by also
// consulting Session state.
func (t *Target) VirtToPhys(vaddr uint64) (uint64, bool) {
	resp, err := t.conn.Command("vapa," + t.name + "," + strconv.FormatUint(vaddr, 10))
	if err != nil || !checkResponse(resp, 2) {
		return 0, false
	}

	paddr, err := strconv.ParseUint(strings.TrimPrefix(resp[1], "0x"), 16, 64)
	if err != nil {
		return 0, false
	}
	return paddr, true
}

// ReadVMem reads size bytes of virtual memory via
// "vread,<target>,<vaddr>,<size>". An empty slice signals failure — the
// caller treats empty as error.
func (t *Target) ReadVMem(vaddr uint64, size int) []byte {
	cmd := "vread," + t.name + "," + strconv.FormatUint(vaddr, 10) + "," + strconv.Itoa(size)
	resp, err := t.conn.Command(cmd)
	if err != nil || !checkResponse(resp, size+1) {
		return nil
	}

	data, err := decodeHexBytes(resp[1:])
	if err != nil {
		return nil
	}
	return data
}

// WriteVMem writes data to virtual memory via
// "vwrite,<target>,<vaddr>,<b0>,...", where bytes are sent as decimal.
func (t *Target) WriteVMem(vaddr uint64, data []byte) bool {
	cmd := "vwrite," + t.name + "," + strconv.FormatUint(vaddr, 10)
	for _, b := range data {
		cmd += "," + strconv.Itoa(int(b))
	}
	resp, err := t.conn.Command(cmd)
	if err != nil {
		return false
	}
	return checkResponse(resp, 2)
}

// InsertBreakpoint inserts a breakpoint at addr via
// "mkbp,<target>,<addr>". If addr already has a recorded breakpoint, the
// existing id is returned without issuing a second mkbp.
func (t *Target) InsertBreakpoint(addr uint64) (Breakpoint, error) {
	if id, ok := t.bpByAddr[addr]; ok {
		return Breakpoint{Addr: addr, ID: id}, nil
	}

	resp, err := t.conn.Command("mkbp," + t.name + "," + strconv.FormatUint(addr, 10))
	if err != nil {
		return Breakpoint{}, err
	}
	if !checkResponse(resp, 2) {
		return Breakpoint{}, shapeOrRefusalErr("mkbp", resp)
	}

	id, err := parseTrailingDecimalID(resp[1])
	if err != nil {
		return Breakpoint{}, newErr("mkbp", KindProtocolShape, err)
	}

	t.bpByAddr[addr] = id
	return Breakpoint{Addr: addr, ID: id}, nil
}

// RemoveBreakpoint removes a previously inserted breakpoint via
// "rmbp,<id>", clearing the local record on success.
func (t *Target) RemoveBreakpoint(bp Breakpoint) bool {
	if _, ok := t.bpByAddr[bp.Addr]; !ok {
		return false
	}

	resp, err := t.conn.Command("rmbp," + strconv.FormatUint(bp.ID, 10))
	if err != nil || !checkResponse(resp, 1) {
		return false
	}

	delete(t.bpByAddr, bp.Addr)
	return true
}

// InsertWatchpoint inserts a watchpoint via
// "mkwp,<target>,<base>,<size>,<r|w|rw>".
func (t *Target) InsertWatchpoint(base, size uint64, access WatchAccess) (Watchpoint, error) {
	key := watchKey{base: base, size: size, access: access}
	if id, ok := t.wpByKey[key]; ok {
		return Watchpoint{Base: base, Size: size, ID: id, Access: access}, nil
	}

	cmd := "mkwp," + t.name + "," + strconv.FormatUint(base, 10) + "," +
		strconv.FormatUint(size, 10) + "," + access.String()
	resp, err := t.conn.Command(cmd)
	if err != nil {
		return Watchpoint{}, err
	}
	if !checkResponse(resp, 2) {
		return Watchpoint{}, shapeOrRefusalErr("mkwp", resp)
	}

	id, err := parseTrailingDecimalID(resp[1])
	if err != nil {
		return Watchpoint{}, newErr("mkwp", KindProtocolShape, err)
	}

	t.wpByKey[key] = id
	return Watchpoint{Base: base, Size: size, ID: id, Access: access}, nil
}

// RemoveWatchpoint removes a previously inserted watchpoint via
// "rmwp,<id>,<access>".
func (t *Target) RemoveWatchpoint(wp Watchpoint) bool {
	key := watchKey{base: wp.Base, size: wp.Size, access: wp.Access}
	if _, ok := t.wpByKey[key]; !ok {
		return false
	}

	cmd := "rmwp," + strconv.FormatUint(wp.ID, 10) + "," + wp.Access.String()
	resp, err := t.conn.Command(cmd)
	if err != nil || !checkResponse(resp, 1) {
		return false
	}

	delete(t.wpByKey, key)
	return true
}

// parseTrailingDecimalID parses the decimal integer following the last
// space in s. The simulator's convention is decimal-after-last-space,
// not hex.
func parseTrailingDecimalID(s string) (uint64, error) {
	idx := strings.LastIndex(s, " ")
	tail := s
	if idx >= 0 {
		tail = s[idx+1:]
	}
	return strconv.ParseUint(strings.TrimSpace(tail), 10, 64)
}

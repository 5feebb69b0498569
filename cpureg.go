package vsp

import (
	"strconv"
	"strings"
)

// CpuReg is one named register of a Target. SizeBytes is established by
// a single getr probe at construction time and is invariant thereafter:
// it always equals the number of data bytes getr returns.
type CpuReg struct {
	conn      *Connection
	name      string
	sizeBytes int
	target    *Target
}

func newCpuReg(conn *Connection, name string, target *Target) *CpuReg {
	r := &CpuReg{conn: conn, name: name, target: target}
	r.probeSize()
	return r
}

func (r *CpuReg) probeSize() {
	resp, err := r.conn.Command("getr," + r.target.name + "," + r.name)
	if err != nil || len(resp) == 0 || resp[0] != "OK" {
		return
	}
	r.sizeBytes = len(resp) - 1
}

// Name returns the register's name.
func (r *CpuReg) Name() string { return r.name }

// SizeBytes returns the register's fixed size, probed at construction.
func (r *CpuReg) SizeBytes() int { return r.sizeBytes }

// Get reads the register's current value as SizeBytes little-endian
// bytes (index 0 is the lowest byte), via "getr,<target>,<reg>".
func (r *CpuReg) Get() ([]byte, error) {
	resp, err := r.conn.Command("getr," + r.target.name + "," + r.name)
	if err != nil {
		return nil, err
	}
	if !checkResponse(resp, r.sizeBytes+1) {
		return nil, shapeOrRefusalErr("getr", resp)
	}

	return decodeHexBytes(resp[1:])
}

// Set writes data (which must not exceed SizeBytes) via
// "setr,<target>,<reg>,<b0>,<b1>,...", where each byte is sent as
// decimal 0-255. The simulator may reject the write (e.g. a
// hardwired-zero register). Simulator versions disagree on whether the
// success response has one or two fields, so both are tolerated here.
func (r *CpuReg) Set(data []byte) error {
	if len(data) > r.sizeBytes {
		return newErr("setr", KindArgumentMismatch, nil)
	}

	cmd := "setr," + r.target.name + "," + r.name
	for _, b := range data {
		cmd += "," + strconv.Itoa(int(b))
	}

	resp, err := r.conn.Command(cmd)
	if err != nil {
		return err
	}
	if len(resp) < 1 || len(resp) > 2 || resp[0] != "OK" {
		return shapeOrRefusalErr("setr", resp)
	}
	return nil
}

// decodeHexBytes parses each field as a hex byte (0-255).
func decodeHexBytes(fields []string) ([]byte, error) {
	out := make([]byte, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(strings.TrimSpace(f), 16, 8)
		if err != nil {
			return nil, newErr("getr", KindProtocolShape, err)
		}
		out = append(out, byte(n))
	}
	return out, nil
}

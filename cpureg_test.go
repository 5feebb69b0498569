package vsp

import (
	"testing"

	"github.com/machineware-gmbh/vsp/internal/vspconfig"
)

func TestCpuRegSizeProbedAtConstruction(t *testing.T) {
	host, port := fakeServer(t, func(fields []string) []string {
		if fields[0] == "getr" {
			return []string{"OK", "00", "00", "00", "01"} // 4 bytes
		}
		return []string{"OK"}
	})

	conn := NewConnection(vspconfig.Default())
	if err := conn.Connect(host, port); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	target := &Target{conn: conn, name: "cpu0"}
	reg := newCpuReg(conn, "pc", target)

	if reg.SizeBytes() != 4 {
		t.Errorf("SizeBytes() = %d, want 4", reg.SizeBytes())
	}
}

func TestCpuRegGetDecodesLittleEndianBytes(t *testing.T) {
	host, port := fakeServer(t, func(fields []string) []string {
		return []string{"OK", "ef", "be", "ad", "de"}
	})

	conn := NewConnection(vspconfig.Default())
	if err := conn.Connect(host, port); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	target := &Target{conn: conn, name: "cpu0"}
	reg := newCpuReg(conn, "pc", target)

	data, err := reg.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []byte{0xef, 0xbe, 0xad, 0xde}
	if len(data) != len(want) {
		t.Fatalf("Get() = %x, want %x", data, want)
	}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("byte %d = %x, want %x", i, data[i], want[i])
		}
	}
}

func TestCpuRegSetTooLargeRejectedLocally(t *testing.T) {
	calls := 0
	host, port := fakeServer(t, func(fields []string) []string {
		calls++
		return []string{"OK", "00"}
	})

	conn := NewConnection(vspconfig.Default())
	if err := conn.Connect(host, port); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	target := &Target{conn: conn, name: "cpu0"}
	reg := newCpuReg(conn, "flags", target) // sizeBytes = 1, from the getr probe above

	if err := reg.Set([]byte{1, 2}); err == nil {
		t.Fatal("expected KindArgumentMismatch error")
	}
	// probeSize() itself issues one wire request; Set must not issue another.
	if calls != 1 {
		t.Errorf("server saw %d requests, want 1 (the size probe only)", calls)
	}
}

func TestCpuRegSetToleratesOneOrTwoFieldSuccess(t *testing.T) {
	host, port := fakeServer(t, func(fields []string) []string {
		if fields[0] == "getr" {
			return []string{"OK", "00"}
		}
		return []string{"OK", "ack"} // two-field success variant
	})

	conn := NewConnection(vspconfig.Default())
	if err := conn.Connect(host, port); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	target := &Target{conn: conn, name: "cpu0"}
	reg := newCpuReg(conn, "flags", target)

	if err := reg.Set([]byte{0x01}); err != nil {
		t.Errorf("Set: %v", err)
	}
}

package vsp

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/machineware-gmbh/vsp/internal/vspconfig"
)

func writeRendezvous(t *testing.T, dir, name, host string, port int) {
	t.Helper()
	content := host + "\n" + strconv.Itoa(port) + "\n12345\n2026-01-01T00:00:00Z\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestRegistryScanFindsRendezvousFiles(t *testing.T) {
	dir := t.TempDir()
	writeRendezvous(t, dir, "vcml_session_1234", "localhost", 5555)
	writeRendezvous(t, dir, "not_a_session_file", "localhost", 9999)

	reg := NewRegistry()
	found, err := reg.Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found %d rendezvous entries, want 1", len(found))
	}
	if found[0].Host != "localhost" || found[0].Port != 5555 {
		t.Errorf("found[0] = %+v", found[0])
	}
}

func TestRegistryScanDedupesByHostPort(t *testing.T) {
	dir := t.TempDir()
	writeRendezvous(t, dir, "vcml_session_aaa", "localhost", 5555)

	reg := NewRegistry()
	first, err := reg.Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	writeRendezvous(t, dir, "vcml_session_bbb", "localhost", 5555) // same host:port, different file

	second, err := reg.Scan(dir)
	if err != nil {
		t.Fatalf("Scan (second): %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("second scan found %d entries, want 2 (one per file observed)", len(second))
	}
	if first[0].ID != second[0].ID {
		t.Error("rescanning an already-known host:port should return the same Rendezvous identity")
	}
}

func TestRendezvousConnectBuildsLiveSession(t *testing.T) {
	host, port := fakeServer(t, func(fields []string) []string {
		switch fields[0] {
		case "version":
			return []string{"OK", "2.3.4", "2024.06"}
		case "getq":
			return []string{"OK", "1000"}
		case "status":
			return []string{"OK", "stopped:user", "0", "0"}
		case "list":
			return []string{"OK", "<hierarchy></hierarchy>"}
		}
		return []string{"E", "unhandled"}
	})

	dir := t.TempDir()
	writeRendezvous(t, dir, "vcml_session_live", host, int(port))

	reg := NewRegistry()
	found, err := reg.Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found %d entries, want 1", len(found))
	}

	s, err := found[0].Connect(vspconfig.Default(), nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Disconnect()

	if s.Host() != host || s.Port() != port {
		t.Errorf("session bound to %s:%d, want %s:%d", s.Host(), s.Port(), host, port)
	}
}

func TestRegistryDumpRendersKnownSessions(t *testing.T) {
	dir := t.TempDir()
	writeRendezvous(t, dir, "vcml_session_yaml", "localhost", 4242)

	reg := NewRegistry()
	if _, err := reg.Scan(dir); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	out, err := reg.Dump()
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.Contains(out, "localhost") || !strings.Contains(out, "4242") {
		t.Errorf("Dump output missing host/port:\n%s", out)
	}
}

func TestRegistryScanSkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "vcml_session_bad"), []byte("localhost\n5555\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	reg := NewRegistry()
	found, err := reg.Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("found %d entries for a malformed (2-line) file, want 0", len(found))
	}
}

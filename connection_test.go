package vsp

import (
	"strings"
	"testing"

	"github.com/machineware-gmbh/vsp/internal/vspconfig"
)

func TestConnectionCommandRoundTrip(t *testing.T) {
	host, port := fakeServer(t, func(fields []string) []string {
		if fields[0] == "geta" {
			return []string{"OK", "42"}
		}
		return []string{"E", "unknown"}
	})

	conn := NewConnection(vspconfig.Default())
	if err := conn.Connect(host, port); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	resp, err := conn.Command("geta,cpu0.pc")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if strings.Join(resp, ",") != "OK,42" {
		t.Errorf("resp = %v, want [OK 42]", resp)
	}
}

func TestConnectionCommandWithoutConnect(t *testing.T) {
	conn := NewConnection(vspconfig.Default())
	if _, err := conn.Command("version"); err != ErrNotConnected {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

func TestConnectionDoubleConnectIsIdempotent(t *testing.T) {
	host, port := fakeServer(t, func(fields []string) []string { return []string{"OK"} })

	conn := NewConnection(vspconfig.Default())
	if err := conn.Connect(host, port); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()

	if err := conn.Connect(host, port); err != nil {
		t.Errorf("second Connect to the same peer: err = %v, want nil", err)
	}
}

func TestConnectionDisconnectIdempotent(t *testing.T) {
	conn := NewConnection(vspconfig.Default())
	if err := conn.Disconnect(); err != nil {
		t.Errorf("Disconnect on fresh Connection: %v", err)
	}
	if err := conn.Disconnect(); err != nil {
		t.Errorf("second Disconnect: %v", err)
	}
}

func TestConnectionClosedPeerReturnsTransportError(t *testing.T) {
	host, port := fakeServer(t, func(fields []string) []string { return []string{"OK"} })

	conn := NewConnection(vspconfig.Default())
	if err := conn.Connect(host, port); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if _, err := conn.Command("version"); err != nil {
		t.Fatalf("first Command: %v", err)
	}

	conn.conn.Close() // simulate the peer vanishing mid-session

	if _, err := conn.Command("version"); err == nil {
		t.Error("expected error after peer close, got nil")
	}
	if conn.IsConnected() {
		t.Error("Connection should auto-disconnect after a transport failure")
	}
}

package vsp

import (
	"net"
	"testing"

	"github.com/machineware-gmbh/vsp/internal/wire"
)

// fakeServer is a minimal in-process VSP peer: it accepts one connection,
// decodes each framed command, hands the split fields to handle, and
// sends back whatever fields handle returns, joined and framed the same
// way. It lets every package test drive Connection/Session/Target
// against real TCP sockets and real wire framing without a real
// simulator.
func fakeServer(t *testing.T, handle func(fields []string) []string) (host string, port uint16) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	addr := ln.Addr().(*net.TCPAddr)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		ch := wire.NewChannel(conn, conn, wire.DefaultMaxRetries, wire.DefaultMaxPayload)
		for {
			payload, err := ch.Decode()
			if err != nil {
				return
			}
			fields := wire.SplitFields(payload)
			resp := handle(fields)
			if err := ch.Send(wire.JoinFields(resp)); err != nil {
				return
			}
		}
	}()

	return "127.0.0.1", uint16(addr.Port)
}

package vsp

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/machineware-gmbh/vsp/internal/vspconfig"
	"github.com/machineware-gmbh/vsp/internal/wire"
)

// Connection is one TCP socket to a VSP peer, serializing every request/
// response round trip behind a single mutex: at most one command is in
// flight per Connection. VSP has no server-initiated push, so there is
// nothing to read outside of a caller-issued Command.
type Connection struct {
	cfg vspconfig.Config

	mu   sync.Mutex
	conn net.Conn
	ch   *wire.Channel

	host string
	port uint16
}

// NewConnection creates an unconnected Connection using cfg for dial/
// command timeouts and the NACK-retry/payload-overflow limits.
func NewConnection(cfg vspconfig.Config) *Connection {
	return &Connection{cfg: cfg}
}

// Connect dials host:port and establishes the framing channel. Calling
// Connect again for the peer it is already connected to is a no-op that
// succeeds; calling it for a different peer while connected returns
// ErrAlreadyConnected.
func (c *Connection) Connect(host string, port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		if c.host == host && c.port == port {
			return nil
		}
		return ErrAlreadyConnected
	}

	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))

	var (
		conn net.Conn
		err  error
	)
	if c.cfg.DialTimeout > 0 {
		conn, err = net.DialTimeout("tcp", addr, c.cfg.DialTimeout)
	} else {
		conn, err = net.Dial("tcp", addr)
	}
	if err != nil {
		return newErr("connect", KindTransportClosed, err)
	}

	c.conn = conn
	c.ch = wire.NewChannel(conn, conn, c.cfg.MaxNACKRetries, c.cfg.MaxFrameBytes)
	c.host = host
	c.port = port
	return nil
}

// Disconnect closes the underlying socket. It is idempotent: calling it
// on an already-disconnected Connection is a no-op.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnectLocked()
}

func (c *Connection) disconnectLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.ch = nil
	if err != nil {
		return newErr("disconnect", KindTransportClosed, err)
	}
	return nil
}

// IsConnected reports whether the socket is currently open.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Host returns the peer host from the last successful Connect.
func (c *Connection) Host() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.host
}

// Port returns the peer port from the last successful Connect.
func (c *Connection) Port() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port
}

// Notify sends payload without waiting for a response beyond the framing
// ACK. The one command that behaves this way is "quit", which elicits no
// reply — the simulator just exits.
func (c *Connection) Notify(payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}

	if err := c.ch.Send([]byte(payload)); err != nil {
		c.disconnectLocked()
		return &Error{Op: "notify", Kind: KindTransportClosed, Err: err}
	}
	return nil
}

// Command sends payload (a bare command string, not yet comma-escaped)
// and returns the decoded response fields. It holds the Connection's
// mutex for the entire round trip, and treats any transport failure as
// fatal: the socket is torn down and KindTransportClosed,
// KindTransportCorruption, or KindTransportOverflow is returned.
func (c *Connection) Command(payload string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	if c.cfg.CommandTimeout > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(c.cfg.CommandTimeout))
		defer c.conn.SetDeadline(time.Time{})
	}

	fields, err := c.ch.Command([]byte(payload))
	if err == nil {
		return fields, nil
	}

	c.disconnectLocked()

	switch err {
	case wire.ErrOverflow:
		return nil, &Error{Op: "command", Kind: KindTransportOverflow, Err: err}
	case wire.ErrCorruption:
		return nil, &Error{Op: "command", Kind: KindTransportCorruption, Err: err}
	default:
		return nil, &Error{Op: "command", Kind: KindTransportClosed, Err: err}
	}
}

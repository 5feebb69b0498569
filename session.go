package vsp

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/machineware-gmbh/vsp/internal/vspconfig"
	"github.com/machineware-gmbh/vsp/internal/vsplog"
	"github.com/machineware-gmbh/vsp/internal/xmltree"
)

// sessionState is the run-state machine a Session moves through: a brand
// new or disconnected Session starts in disconnected, Connect always
// lands it in stopped (the hierarchy is only ever walked while the
// simulator is quiescent), and Run/Stop toggle between running and
// stopped thereafter.
type sessionState int

const (
	stateDisconnected sessionState = iota
	stateStopped
	stateRunning
)

func (s sessionState) String() string {
	switch s {
	case stateDisconnected:
		return "disconnected"
	case stateStopped:
		return "stopped"
	case stateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Session is the top-level handle to one running simulator: it owns the
// Connection, the root of the module hierarchy, and the Target list, and
// tracks the simulator's run state and last stop reason. A Session is
// not safe for concurrent use by multiple goroutines beyond what
// Connection itself serializes.
type Session struct {
	conn *Connection
	log  *slog.Logger

	state     sessionState
	timeNS    uint64
	cycle     uint64
	quantumNS uint64
	reason    StopReason

	sysCVersion string
	vcmlVersion string

	root    *Module
	targets []*Target
}

// NewSession creates a disconnected Session. cfg supplies dial/command
// timeouts and framing limits; a nil logger falls back to slog.Default().
func NewSession(cfg vspconfig.Config, logger *slog.Logger) *Session {
	return &Session{
		conn: NewConnection(cfg),
		log:  vsplog.OrDefault(logger),
	}
}

// Connect dials host:port, forces the simulator to a stopped state so
// the hierarchy walk observes a quiescent tree, downloads and parses
// "list,xml", and builds the Module tree and Target list.
func (s *Session) Connect(host string, port uint16) error {
	if err := s.conn.Connect(host, port); err != nil {
		return err
	}

	verResp, err := s.conn.Command("version")
	if err != nil {
		s.conn.Disconnect()
		return err
	}
	if !checkResponse(verResp, 3) {
		s.conn.Disconnect()
		return shapeOrRefusalErr("version", verResp)
	}
	s.sysCVersion = verResp[1]
	s.vcmlVersion = verResp[2]

	qResp, err := s.conn.Command("getq")
	if err != nil {
		s.conn.Disconnect()
		return err
	}
	if !checkResponse(qResp, 2) {
		s.conn.Disconnect()
		return shapeOrRefusalErr("getq", qResp)
	}
	quantumNS, err := strconv.ParseUint(qResp[1], 10, 64)
	if err != nil {
		s.conn.Disconnect()
		return newErr("getq", KindProtocolShape, err)
	}
	s.quantumNS = quantumNS

	if err := s.refreshStatus(); err != nil {
		s.conn.Disconnect()
		return err
	}

	if s.state == stateRunning {
		if _, err := s.conn.Command("stop"); err != nil {
			s.conn.Disconnect()
			return err
		}
		if err := s.spinUntilStopped(); err != nil {
			s.conn.Disconnect()
			return err
		}
	}

	if err := s.loadHierarchy(); err != nil {
		s.conn.Disconnect()
		return err
	}

	s.log.Info("session connected", "host", host, "port", port, "targets", len(s.targets))
	return nil
}

// spinUntilStopped polls status until the simulator reports stopped —
// stop is a request, not a synchronous action.
func (s *Session) spinUntilStopped() error {
	for i := 0; i < 100; i++ {
		if err := s.refreshStatus(); err != nil {
			return err
		}
		if s.state == stateStopped {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return newErr("stop", KindProtocolShape, nil)
}

func (s *Session) loadHierarchy() error {
	resp, err := s.conn.Command("list,xml")
	if err != nil {
		return err
	}
	if len(resp) < 2 || resp[0] != "OK" {
		return shapeOrRefusalErr("list", resp)
	}

	doc, err := xmltree.Parse(strings.Join(resp[1:], ","))
	if err != nil {
		return newErr("list", KindProtocolShape, err)
	}

	root := newModule("", "root", "", nil, s.conn)
	for _, obj := range doc.Roots {
		root.addModule(buildModule(obj, root, s.conn))
	}

	targets := make([]*Target, 0, len(doc.Targets))
	for _, name := range doc.Targets {
		targets = append(targets, newTarget(s.conn, name))
	}

	s.root = root
	s.targets = targets
	return nil
}

// buildModule recursively translates one xmltree.Object (and its
// descendants) into a *Module, wiring parent back-references as it goes.
func buildModule(obj xmltree.Object, parent *Module, conn *Connection) *Module {
	m := newModule(obj.Name, obj.Kind, obj.Version, parent, conn)
	for _, a := range obj.Attrs {
		m.addAttribute(newAttribute(a.Name, a.Type, a.Count, m, conn))
	}
	for _, c := range obj.Cmds {
		m.addCommand(newCommand(c.Name, c.Argc, c.Desc, m, conn))
	}
	for _, child := range obj.Objects {
		m.addModule(buildModule(child, m, conn))
	}
	return m
}

// Disconnect closes the underlying socket, releases the module tree and
// target list, and resets the Session to disconnected. The tree is
// rebuilt from scratch on the next Connect.
func (s *Session) Disconnect() error {
	s.state = stateDisconnected
	s.root = nil
	s.targets = nil
	return s.conn.Disconnect()
}

// Quit asks the simulator to terminate via "quit" and disconnects. The
// quit command elicits no reply — the frame is sent best-effort and a
// send failure is not an error, since the simulator tearing the socket
// down underneath us is the expected outcome either way.
func (s *Session) Quit() error {
	_ = s.conn.Notify("quit")
	return s.Disconnect()
}

// Run resumes the simulator via "resume", if currently stopped. It does
// not block until the simulator actually stops again — callers poll
// Running or use Reason after a subsequent Stop/stop-triggering event.
func (s *Session) Run() error {
	s.pollStatus()
	if s.state != stateStopped {
		return nil
	}
	resp, err := s.conn.Command("resume")
	if err != nil {
		return err
	}
	if !checkResponse(resp, 1) {
		return shapeOrRefusalErr("resume", resp)
	}
	s.state = stateRunning
	return nil
}

// Stop asks a running simulator to halt via "stop". It does not block on
// the simulator actually halting — the halt and its reason arrive via
// subsequent status polls, not in the stop response itself. A no-op if
// the simulator is not running.
func (s *Session) Stop() error {
	s.pollStatus()
	if s.state != stateRunning {
		return nil
	}
	_, err := s.conn.Command("stop")
	return err
}

// Step advances the whole simulator by ns nanoseconds of simulated time
// via "resume,<ns>ns", if currently stopped. When block is true it
// additionally spins on status until the simulator reports stopped.
func (s *Session) Step(ns uint64, block bool) error {
	s.pollStatus()
	if s.state != stateStopped {
		return nil
	}
	resp, err := s.conn.Command("resume," + strconv.FormatUint(ns, 10) + "ns")
	if err != nil {
		return err
	}
	if !checkResponse(resp, 1) {
		return shapeOrRefusalErr("resume", resp)
	}
	s.state = stateRunning
	if block {
		return s.spinUntilStopped()
	}
	return s.refreshStatus()
}

// StepQuantum is equivalent to Step(quantum, true), using the quantum
// reported by "getq" at Connect time.
func (s *Session) StepQuantum() error {
	return s.Step(s.quantumNS, true)
}

// Stepi advances a single target by one instruction via Target.Step, if
// currently stopped, then polls status until the simulator halts again
// so Reason/TimeNS reflect the new stop.
func (s *Session) Stepi(t *Target) error {
	s.pollStatus()
	if s.state != stateStopped {
		return nil
	}
	s.state = stateRunning
	if err := t.Step(); err != nil {
		return err
	}
	return s.spinUntilStopped()
}

// refreshStatus sends "status" and updates state, timeNS, cycle, and
// reason from the four-field response: OK, a state word ("running" or
// "stopped:<reason>"), time_ns, and cycle. A stop reason's payload
// (breakpoint/watchpoint details) rides inside the state word with its
// commas escaped, so it is still one field.
func (s *Session) refreshStatus() error {
	resp, err := s.conn.Command("status")
	if err != nil {
		return err
	}
	if !checkResponse(resp, 4) {
		return shapeOrRefusalErr("status", resp)
	}

	timeNS, err := strconv.ParseUint(resp[2], 10, 64)
	if err != nil {
		return newErr("status", KindProtocolShape, err)
	}
	cycle, err := strconv.ParseUint(resp[3], 10, 64)
	if err != nil {
		return newErr("status", KindProtocolShape, err)
	}
	s.timeNS = timeNS
	s.cycle = cycle

	word := resp[1]
	if word == "running" {
		s.state = stateRunning
		return nil
	}

	s.state = stateStopped
	tag, rest, _ := strings.Cut(word, ":")
	if tag != "stopped" {
		s.reason = StopReason{Kind: StopUnknown, TimeNS: timeNS}
		return nil
	}
	s.reason = parseStopReason(rest, timeNS)
	return nil
}

// pollStatus refreshes the running/stopped view before an accessor read
// or a run-control decision. Errors are swallowed — a dead connection
// simply leaves the last observed state in place, and the next explicit
// operation will surface the transport failure.
func (s *Session) pollStatus() {
	if s.state == stateDisconnected {
		return
	}
	_ = s.refreshStatus()
}

// Running re-polls status and reports whether the simulator is running.
func (s *Session) Running() bool {
	s.pollStatus()
	return s.state == stateRunning
}

// State returns the Session's current state string ("disconnected",
// "stopped", or "running") without issuing a wire request.
func (s *Session) State() string { return s.state.String() }

// TimeNS re-polls status and returns the simulated time in nanoseconds.
func (s *Session) TimeNS() uint64 {
	s.pollStatus()
	return s.timeNS
}

// Cycle re-polls status and returns the simulator's cycle count.
func (s *Session) Cycle() uint64 {
	s.pollStatus()
	return s.cycle
}

// QuantumNS returns the simulator's untimed-step quantum, in
// nanoseconds, as reported by "getq" at Connect time.
func (s *Session) QuantumNS() uint64 { return s.quantumNS }

// SysCVersion returns the SystemC version string reported by "version"
// at Connect time.
func (s *Session) SysCVersion() string { return s.sysCVersion }

// VCMLVersion returns the VCML version string reported by "version" at
// Connect time.
func (s *Session) VCMLVersion() string { return s.vcmlVersion }

// Reason returns the StopReason recorded by the last status refresh
// that observed the simulator stopped.
func (s *Session) Reason() StopReason { return s.reason }

// Root returns the synthetic root Module of the hierarchy downloaded at
// Connect time.
func (s *Session) Root() *Module { return s.root }

// FindModule, FindAttribute, and FindCommand resolve a dot-path from the
// root of the hierarchy, returning nil when disconnected.
func (s *Session) FindModule(path string) *Module {
	if s.root == nil {
		return nil
	}
	return s.root.FindModule(path)
}

func (s *Session) FindAttribute(path string) *Attribute {
	if s.root == nil {
		return nil
	}
	return s.root.FindAttribute(path)
}

func (s *Session) FindCommand(path string) *Command {
	if s.root == nil {
		return nil
	}
	return s.root.FindCommand(path)
}

// Targets returns the Session's Target list, in the order the simulator
// declared them.
func (s *Session) Targets() []*Target { return s.targets }

// FindTarget returns the Target named name, or nil.
func (s *Session) FindTarget(name string) *Target {
	for _, t := range s.targets {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Host returns the peer host from the last successful Connect.
func (s *Session) Host() string { return s.conn.Host() }

// Port returns the peer port from the last successful Connect.
func (s *Session) Port() uint16 { return s.conn.Port() }

// Dump returns a human-readable rendering of the module hierarchy,
// delegating to Module.Dump.
func (s *Session) Dump() string {
	if s.root == nil {
		return ""
	}
	return s.root.Dump()
}

package vsp

import (
	"fmt"
	"strings"
)

// Command belongs to exactly one Module and has a fixed expected
// argument count (Argc) used only as a local guard — a mismatch never
// touches the wire.
type Command struct {
	element

	argc uint64
	desc string
}

func newCommand(name string, argc uint64, desc string, parent *Module, conn *Connection) *Command {
	return &Command{
		element: element{name: name, parent: parent, conn: conn},
		argc:    argc,
		desc:    desc,
	}
}

// Argc returns the command's expected argument count.
func (c *Command) Argc() uint64 { return c.argc }

// Desc returns the command's human-readable description.
func (c *Command) Desc() string { return c.desc }

// Execute runs the command with args. If len(args) != Argc, it returns a
// KindArgumentMismatch error without issuing a wire request. Otherwise it
// sends "exec,<module.hierarchy>,<name>[,args...]"; a transport failure
// is a hard error, and an "E"-prefixed response raises a
// KindProtocolRefused error carrying the simulator's message — Execute
// is the sole operation in this package that returns a populated Msg.
func (c *Command) Execute(args []string) (string, error) {
	if uint64(len(args)) != c.argc {
		return "", &Error{
			Op:   "exec",
			Kind: KindArgumentMismatch,
			Msg: fmt.Sprintf("need %d arguments for %s, have %d",
				c.argc, c.name, len(args)),
		}
	}

	cmd := "exec," + c.parent.HierarchyName() + "," + c.name
	if len(args) > 0 {
		cmd += "," + strings.Join(args, ",")
	}

	resp, err := c.conn.Command(cmd)
	if err != nil {
		return "", err
	}
	if len(resp) == 0 {
		return "", newErr("exec", KindProtocolShape, nil)
	}

	tail := strings.Join(resp[1:], ",")
	if resp[0] == "E" {
		return "", &Error{Op: "exec", Kind: KindProtocolRefused, Msg: tail}
	}
	return tail, nil
}

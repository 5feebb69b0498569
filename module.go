package vsp

import (
	"fmt"
	"strings"
)

// Module is a node in the simulator's hierarchy, owning its subtree of
// child modules, attributes, and commands. Dropping the root releases
// the whole tree at once; per-entity deletion between connects is not a
// supported operation.
//
// The synthetic root Module has an empty local name and never appears as
// a name component in any hierarchy name.
type Module struct {
	element

	kind    string
	version string

	modules []*Module
	attrs   []*Attribute
	cmds    []*Command
}

func newModule(name, kind, version string, parent *Module, conn *Connection) *Module {
	return &Module{
		element: element{name: name, parent: parent, conn: conn},
		kind:    kind,
		version: version,
	}
}

// Kind returns the module's kind string, as reported by the simulator.
func (m *Module) Kind() string { return m.kind }

// Version returns the module's version string.
func (m *Module) Version() string { return m.version }

// Modules returns the module's direct children, in declaration order.
func (m *Module) Modules() []*Module { return m.modules }

// Attributes returns the module's direct attributes, in declaration order.
func (m *Module) Attributes() []*Attribute { return m.attrs }

// Commands returns the module's direct commands, in declaration order.
func (m *Module) Commands() []*Command { return m.cmds }

func (m *Module) addModule(c *Module)       { m.modules = append(m.modules, c) }
func (m *Module) addAttribute(a *Attribute) { m.attrs = append(m.attrs, a) }
func (m *Module) addCommand(c *Command)     { m.cmds = append(m.cmds, c) }

// FindModule resolves a dot-path descending from the receiver: split at
// the first '.', find a direct child whose local name matches the head,
// recurse on the tail. The empty string denotes the receiver itself.
func (m *Module) FindModule(path string) *Module {
	if path == "" {
		return m
	}

	head, tail, hasMore := strings.Cut(path, ".")
	for _, child := range m.modules {
		if child.name == head {
			if !hasMore {
				return child
			}
			return child.FindModule(tail)
		}
	}
	return nil
}

// FindAttribute resolves path's last dot segment as the attribute's leaf
// name, and the prefix as a module path from the receiver.
func (m *Module) FindAttribute(path string) *Attribute {
	modPath, leaf := splitLeaf(path)

	mod := m
	if modPath != "" {
		mod = m.FindModule(modPath)
		if mod == nil {
			return nil
		}
	}

	for _, a := range mod.attrs {
		if a.name == leaf {
			return a
		}
	}
	return nil
}

// FindCommand resolves path the same way as FindAttribute, but for commands.
func (m *Module) FindCommand(path string) *Command {
	modPath, leaf := splitLeaf(path)

	mod := m
	if modPath != "" {
		mod = m.FindModule(modPath)
		if mod == nil {
			return nil
		}
	}

	for _, c := range mod.cmds {
		if c.name == leaf {
			return c
		}
	}
	return nil
}

// splitLeaf splits path at its last '.', returning ("", path) when there
// is no module prefix.
func splitLeaf(path string) (modPath, leaf string) {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// Dump returns a human-readable listing of the module and its subtree:
// hierarchy name, kind, then attributes and child modules.
func (m *Module) Dump() string {
	var b strings.Builder
	m.dump(&b)
	return b.String()
}

func (m *Module) dump(b *strings.Builder) {
	name := m.HierarchyName()
	if name == "" {
		name = "<root>"
	}
	fmt.Fprintf(b, "%s (%s)\n", name, m.kind)

	for _, a := range m.attrs {
		fmt.Fprintf(b, "  %s: %s\n", a.name, a.typ)
	}
	for _, child := range m.modules {
		child.dump(b)
	}
}

package vsp

// element is the shared state of Module, Attribute, and Command: a name,
// a borrowed connection, and a borrowed parent module.
//
// parent is a plain unexported pointer, never a shared-ownership handle:
// the root Module owns its entire subtree, and back-references exist
// only to build hierarchy names and support cd-style navigation.
type element struct {
	name   string
	parent *Module
	conn   *Connection
}

// Name returns the element's local (non-hierarchical) name.
func (e *element) Name() string { return e.name }

// Parent returns the owning module, or nil if this element has no parent
// (only the synthetic root Module itself has a nil parent).
func (e *element) Parent() *Module { return e.parent }

// HierarchyName returns the dot-joined chain of local names from the
// top-level child down to this element. The synthetic root contributes
// no segment.
func (e *element) HierarchyName() string {
	if e.parent == nil {
		return ""
	}
	if e.parent.parent == nil {
		return e.name
	}
	return e.parent.HierarchyName() + "." + e.name
}

// Package xmltree walks the <hierarchy> document the simulator returns
// from "list,xml" into a generic tree the vsp package turns into
// Modules, Attributes, and Commands.
package xmltree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Object mirrors one <object> element: a module with its attributes,
// commands, and ordered child objects.
type Object struct {
	Name    string
	Kind    string
	Version string
	Attrs   []Attr
	Cmds    []Cmd
	Objects []Object
}

// Attr mirrors one <attribute> element attached to an <object>.
type Attr struct {
	Name  string
	Type  string
	Count uint64
}

// Cmd mirrors one <command> element attached to an <object>.
type Cmd struct {
	Name string
	Argc uint64
	Desc string
}

// Document is the parsed top-level <hierarchy>: its top-level <object>
// children plus the <target> names it declares.
type Document struct {
	Roots   []Object
	Targets []string
}

// Parse parses the raw XML document returned by "list,xml" into a
// Document. Children are walked in declaration order so iteration over
// the resulting tree is deterministic.
func Parse(xml string) (*Document, error) {
	root, err := xmlquery.Parse(strings.NewReader(xml))
	if err != nil {
		return nil, fmt.Errorf("xmltree: parse: %w", err)
	}

	hierarchy := xmlquery.FindOne(root, "//hierarchy")
	if hierarchy == nil {
		return nil, fmt.Errorf("xmltree: no <hierarchy> element")
	}

	doc := &Document{}
	for _, n := range xmlquery.Find(hierarchy, "./object") {
		doc.Roots = append(doc.Roots, parseObject(n))
	}
	for _, n := range xmlquery.Find(hierarchy, "./target") {
		doc.Targets = append(doc.Targets, strings.TrimSpace(n.InnerText()))
	}
	return doc, nil
}

func parseObject(n *xmlquery.Node) Object {
	obj := Object{
		Name:    n.SelectAttr("name"),
		Kind:    n.SelectAttr("kind"),
		Version: n.SelectAttr("version"),
	}

	for _, c := range xmlquery.Find(n, "./object") {
		obj.Objects = append(obj.Objects, parseObject(c))
	}
	for _, a := range xmlquery.Find(n, "./attribute") {
		obj.Attrs = append(obj.Attrs, Attr{
			Name:  a.SelectAttr("name"),
			Type:  a.SelectAttr("type"),
			Count: parseUint(a.SelectAttr("count")),
		})
	}
	for _, c := range xmlquery.Find(n, "./command") {
		obj.Cmds = append(obj.Cmds, Cmd{
			Name: c.SelectAttr("name"),
			Argc: parseUint(c.SelectAttr("argc")),
			Desc: c.SelectAttr("desc"),
		})
	}

	return obj
}

func parseUint(s string) uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

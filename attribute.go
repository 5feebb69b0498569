package vsp

import (
	"strconv"
	"strings"
)

// Attribute belongs to exactly one Module. Count == 0 means "unreadable":
// Get returns a KindSemantic error without ever issuing a wire request.
type Attribute struct {
	element

	typ   string
	count uint64
}

func newAttribute(name, typ string, count uint64, parent *Module, conn *Connection) *Attribute {
	return &Attribute{
		element: element{name: name, parent: parent, conn: conn},
		typ:     typ,
		count:   count,
	}
}

// Type returns the attribute's semantic type token (e.g. "i32", "bool", "string").
func (a *Attribute) Type() string { return a.typ }

// Count returns the attribute's array length; 0 means unreadable.
func (a *Attribute) Count() uint64 { return a.count }

// Get reads the attribute's current value as its raw string fields via
// "geta,<hierarchy_name>". If Count == 0 no wire request is issued and a
// KindSemantic error is returned.
func (a *Attribute) Get() ([]string, error) {
	if a.count == 0 {
		return nil, newErr("geta", KindSemantic, nil)
	}

	resp, err := a.conn.Command("geta," + a.HierarchyName())
	if err != nil {
		return nil, err
	}
	if !checkResponse(resp, int(a.count)+1) {
		return nil, shapeOrRefusalErr("geta", resp)
	}

	return resp[1:], nil
}

// GetString reads the attribute's value and joins its fields with
// commas, returning the "<error>" sentinel on any failure.
func (a *Attribute) GetString() string {
	vals, err := a.Get()
	if err != nil {
		return "<error>"
	}
	return strings.Join(vals, ",")
}

// Set writes val (already stringified per the attribute's semantic type)
// via "seta,<hierarchy_name>,<val>". Success requires exactly one field
// equal to "OK".
func (a *Attribute) Set(val string) error {
	resp, err := a.conn.Command("seta," + a.HierarchyName() + "," + val)
	if err != nil {
		return err
	}
	if !checkResponse(resp, 1) {
		return shapeOrRefusalErr("seta", resp)
	}
	return nil
}

// SetBool, SetInt, SetUint, SetFloat, and SetString are typed
// convenience wrappers around Set.
func (a *Attribute) SetBool(v bool) error {
	if v {
		return a.Set("true")
	}
	return a.Set("false")
}

func (a *Attribute) SetInt(v int64) error {
	return a.Set(strconv.FormatInt(v, 10))
}

func (a *Attribute) SetUint(v uint64) error {
	return a.Set(strconv.FormatUint(v, 10))
}

func (a *Attribute) SetFloat(v float64) error {
	return a.Set(strconv.FormatFloat(v, 'g', -1, 64))
}

func (a *Attribute) SetString(v string) error {
	return a.Set(v)
}

// checkResponse reports whether resp has exactly n fields with
// resp[0] == "OK".
func checkResponse(resp []string, n int) bool {
	return len(resp) == n && resp[0] == "OK"
}

// shapeOrRefusalErr classifies a well-formed-but-wrong response: "E" is
// a protocol refusal (the simulator's message is not kept), anything
// else is a shape mismatch.
func shapeOrRefusalErr(op string, resp []string) error {
	if len(resp) > 0 && resp[0] == "E" {
		return newErr(op, KindProtocolRefused, nil)
	}
	return newErr(op, KindProtocolShape, nil)
}

package bufr

import (
	"fmt"
	"strings"
)

// Structure is one node of the decoded Section 4 tree: an *Element resolved
// against Table B, a *Group produced by a Table D expansion, or a
// *Replication holding the repeated instantiations of its controlled
// descriptors. The tree is immutable once the message is assembled.
type Structure interface {
	dump(sb *strings.Builder, level int)
}

// ValueKind discriminates the payload of an Element.
type ValueKind uint8

const (
	ValueMissing ValueKind = iota
	ValueFloat
	ValueSigned
	ValueCode
	ValueText
)

// Value is the decoded payload of a single element. The kind is selected by
// the Table B units of the descriptor; an all-ones raw field decodes to
// ValueMissing for every units except CCITT IA5, since text fields have no
// missing sentinel.
type Value struct {
	kind ValueKind
	f    float64
	i    int64
	u    uint64
	s    string
}

func missingValue() Value        { return Value{kind: ValueMissing} }
func floatValue(v float64) Value { return Value{kind: ValueFloat, f: v} }
func signedValue(v int64) Value  { return Value{kind: ValueSigned, i: v} }
func codeValue(v uint64) Value   { return Value{kind: ValueCode, u: v} }
func textValue(v string) Value   { return Value{kind: ValueText, s: v} }

// Kind reports which variant the value holds.
func (v Value) Kind() ValueKind { return v.kind }

func (v Value) String() string {
	switch v.kind {
	case ValueFloat:
		return fmt.Sprintf("%v", v.f)
	case ValueSigned:
		return fmt.Sprintf("%d", v.i)
	case ValueCode:
		return fmt.Sprintf("%d", v.u)
	case ValueText:
		return v.s
	default:
		return "Missing"
	}
}

// Element is a leaf node: one Table B element and its decoded value.
type Element struct {
	fxy   string
	units string
	name  string
	val   Value
}

// Code returns the canonical descriptor string, e.g. "012101".
func (e *Element) Code() string { return e.fxy }

// Units returns the Table B units string for the element.
func (e *Element) Units() string { return e.units }

// Name returns the human-readable Table B element name.
func (e *Element) Name() string { return e.name }

// Value returns the decoded value.
func (e *Element) Value() Value { return e.val }

// IsMissing reports whether the raw field was the all-ones sentinel.
func (e *Element) IsMissing() bool { return e.val.kind == ValueMissing }

// AsText returns the text payload, or false if the element is not textual.
func (e *Element) AsText() (string, bool) {
	if e.val.kind != ValueText {
		return "", false
	}
	return e.val.s, true
}

// AsSigned returns the integer payload of a dimensionless numeric or
// date/time element, or false on any other variant.
func (e *Element) AsSigned() (int64, bool) {
	if e.val.kind != ValueSigned {
		return 0, false
	}
	return e.val.i, true
}

// AsUnsigned returns the payload of a code- or flag-table element, or false
// on any other variant.
func (e *Element) AsUnsigned() (uint64, bool) {
	if e.val.kind != ValueCode {
		return 0, false
	}
	return e.val.u, true
}

// AsFloat returns the scaled physical value, or false on any other variant.
func (e *Element) AsFloat() (float64, bool) {
	if e.val.kind != ValueFloat {
		return 0, false
	}
	return e.val.f, true
}

// Group is the expansion of one Table D sequence descriptor.
type Group struct {
	fxy   string
	name  string
	items []Structure
}

// Code returns the canonical sequence descriptor string, e.g. "309052".
func (g *Group) Code() string { return g.fxy }

// Name returns the Table D sequence title.
func (g *Group) Name() string { return g.name }

// Items returns the expanded children in descriptor order.
func (g *Group) Items() []Structure { return g.items }

// Replication is the concatenation of repeat-count instantiations of the
// controlled descriptor window.
type Replication struct {
	items []Structure
}

// Len returns the total number of decoded child structures.
func (r *Replication) Len() int { return len(r.items) }

// Items returns the children in bit-consumption order.
func (r *Replication) Items() []Structure { return r.items }

func indent(sb *strings.Builder, level int) {
	for i := 0; i < 4*level; i++ {
		sb.WriteByte(' ')
	}
}

func (e *Element) dump(sb *strings.Builder, level int) {
	indent(sb, level)
	fmt.Fprintf(sb, "Element: %q | Value: %12s | Units: %-12s | Name: %q\n",
		e.fxy, e.val.String(), e.units, e.name)
}

func (g *Group) dump(sb *strings.Builder, level int) {
	indent(sb, level)
	fmt.Fprintf(sb, "Group: %q | %q\n", g.fxy, g.name)
	for _, item := range g.items {
		item.dump(sb, level+1)
	}
}

// Replications print their first two and last items; long profiles would
// otherwise dominate the dump.
func (r *Replication) dump(sb *strings.Builder, level int) {
	indent(sb, level)
	fmt.Fprintf(sb, "Replication (%d)\n", len(r.items))

	n := len(r.items)
	head := n
	if head > 2 {
		head = 2
	}
	for _, item := range r.items[:head] {
		item.dump(sb, level+1)
	}
	if n > head {
		if n > head+1 {
			for i := 0; i < 6; i++ {
				indent(sb, level)
				sb.WriteString(".\n")
			}
		}
		r.items[n-1].dump(sb, level+1)
	}
}

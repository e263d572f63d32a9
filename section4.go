package bufr

import (
	"fmt"
	"io"
)

// descCursor walks an ordered descriptor list. A single cursor is shared
// between a sequence and any replication it contains, because the
// replication consumes its controlled descriptors from the enclosing
// stream.
type descCursor struct {
	descs []Descriptor
	next  int
}

func (c *descCursor) nextDesc() (Descriptor, bool) {
	if c.next >= len(c.descs) {
		return Descriptor{}, false
	}
	d := c.descs[c.next]
	c.next++
	return d, true
}

// readSection4 parses the data section header, buffers the bit-packed
// payload, and decodes it by expanding the Section 3 descriptor list. The
// returned structures preserve depth-first bit-consumption order. Trailing
// pad octets up to the section length are opaque and discarded.
func readSection4(r io.Reader, descriptors []Descriptor, tables *Tables) ([]Structure, error) {
	size, err := readU24(r)
	if err != nil {
		return nil, fmt.Errorf("section 4: length: %w", err)
	}
	if size < 4 {
		return nil, fmt.Errorf("%w: section 4 length %d < 4", ErrInvalidLayout, size)
	}
	reserved, err := readOctet(r)
	if err != nil {
		return nil, fmt.Errorf("section 4: reserved octet: %w", err)
	}
	if reserved != 0 {
		return nil, fmt.Errorf("%w: section 4 octet 4 is %d, must be 0", ErrInvalidLayout, reserved)
	}

	payload, err := readExact(r, size-4)
	if err != nil {
		return nil, fmt.Errorf("section 4: payload: %w", err)
	}

	bb := newBitBuffer(payload)
	cur := &descCursor{descs: descriptors}

	var structures []Structure
	for {
		d, ok := cur.nextDesc()
		if !ok {
			break
		}
		s, err := decodeStructure(bb, d, cur, tables)
		if err != nil {
			return nil, fmt.Errorf("section 4: %w", err)
		}
		structures = append(structures, s)
	}

	return structures, nil
}

// decodeStructure dispatches one descriptor by its F value. cur is the
// cursor feeding the caller; a replication advances it past the descriptors
// it controls.
func decodeStructure(bb *bitBuffer, d Descriptor, cur *descCursor, tables *Tables) (Structure, error) {
	switch d.F {
	case 0:
		return decodeElement(bb, d, tables)
	case 1:
		return decodeReplication(bb, d, cur, tables)
	case 3:
		return decodeSequence(bb, d, tables)
	default:
		return nil, fmt.Errorf("%w: operator descriptor %s", ErrUnsupportedFeature, d)
	}
}

// decodeElement resolves an element descriptor against Table B and reads
// its field. The Table B units select the decode: CCITT IA5 text,
// dimensionless/date-time integers, code and flag tables, or a scaled
// physical float. Every width is consumed whether or not the value is
// missing.
func decodeElement(bb *bitBuffer, d Descriptor, tables *Tables) (*Element, error) {
	fxy := d.String()
	entry, ok := tables.ElementEntry(fxy)
	if !ok {
		return nil, fmt.Errorf("%w: %s not in Table B", ErrUnknownDescriptor, fxy)
	}

	e := &Element{fxy: entry.FXY, units: entry.Units, name: entry.Name}

	switch entry.Units {
	case "CCITT IA5":
		s, err := bb.readText(entry.WidthBits)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", fxy, err)
		}
		e.val = textValue(s)
	case "Numeric", "a", "mon", "d", "h", "min", "s":
		v, missing, err := bb.readSigned(entry.WidthBits, entry.Reference)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", fxy, err)
		}
		if missing {
			e.val = missingValue()
		} else {
			e.val = signedValue(v)
		}
	case "Code table", "Flag table":
		v, missing, err := bb.readU64(entry.WidthBits)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", fxy, err)
		}
		if missing {
			e.val = missingValue()
		} else {
			e.val = codeValue(v)
		}
	default:
		v, missing, err := bb.readFloat(entry.WidthBits, entry.Reference, entry.Scale)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", fxy, err)
		}
		if missing {
			e.val = missingValue()
		} else {
			e.val = floatValue(v)
		}
	}

	return e, nil
}

// decodeSequence expands a sequence descriptor against Table D and decodes
// each child in order. The children get their own cursor so that a
// replication inside the sequence draws its window from the expansion, not
// from the caller's stream.
func decodeSequence(bb *bitBuffer, d Descriptor, tables *Tables) (*Group, error) {
	fxy := d.String()
	entry, ok := tables.SequenceEntry(fxy)
	if !ok {
		return nil, fmt.Errorf("%w: invalid Table D entry %s", ErrUnknownDescriptor, fxy)
	}

	children := make([]Descriptor, 0, len(entry.Elements))
	for _, s := range entry.Elements {
		child, err := parseDescriptor(s)
		if err != nil {
			return nil, fmt.Errorf("sequence %s: %w", fxy, err)
		}
		children = append(children, child)
	}

	g := &Group{fxy: entry.FXY, name: entry.Name, items: make([]Structure, 0, len(children))}
	cur := &descCursor{descs: children}
	for {
		child, ok := cur.nextDesc()
		if !ok {
			break
		}
		s, err := decodeStructure(bb, child, cur, tables)
		if err != nil {
			return nil, fmt.Errorf("sequence %s: %w", fxy, err)
		}
		g.items = append(g.items, s)
	}

	return g, nil
}

// decodeReplication handles an F=1 descriptor: X subsequent descriptors
// repeated Y times. Y=0 is delayed replication, where the next descriptor
// must be 0-31-001 (8-bit count) or 0-31-002 (16-bit count) and the count
// itself sits in the payload.
func decodeReplication(bb *bitBuffer, d Descriptor, cur *descCursor, tables *Tables) (*Replication, error) {
	numDescriptors := int(d.X)
	numRepetitions := int(d.Y)

	if numRepetitions == 0 {
		countDesc, ok := cur.nextDesc()
		if !ok {
			return nil, fmt.Errorf("%w: delayed replication %s has no count descriptor", ErrInvalidLayout, d)
		}
		if countDesc.F != 0 || countDesc.X != 31 {
			return nil, fmt.Errorf("%w: delayed replication %s followed by %s, want class 31 element",
				ErrInvalidLayout, d, countDesc)
		}
		var countBits int
		switch countDesc.Y {
		case 1:
			countBits = 8
		case 2:
			countBits = 16
		default:
			return nil, fmt.Errorf("%w: delayed replication count descriptor %s", ErrUnsupportedFeature, countDesc)
		}
		n, err := bb.readCount(countBits)
		if err != nil {
			return nil, fmt.Errorf("replication %s: count: %w", d, err)
		}
		numRepetitions = n
	}

	window := make([]Descriptor, 0, numDescriptors)
	for i := 0; i < numDescriptors; i++ {
		next, ok := cur.nextDesc()
		if !ok {
			return nil, fmt.Errorf("%w: replication %s ran out of descriptors (%d of %d)",
				ErrInvalidLayout, d, i, numDescriptors)
		}
		window = append(window, next)
	}

	// A replication nested inside the window keeps drawing its own window
	// from the enclosing stream, so cur is threaded through every
	// repetition.
	rep := &Replication{items: make([]Structure, 0, numRepetitions*numDescriptors)}
	for i := 0; i < numRepetitions; i++ {
		for _, child := range window {
			s, err := decodeStructure(bb, child, cur, tables)
			if err != nil {
				return nil, fmt.Errorf("replication %s repetition %d: %w", d, i, err)
			}
			rep.items = append(rep.items, s)
		}
	}

	return rep, nil
}

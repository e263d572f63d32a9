package bufr

import (
	"fmt"
	"strconv"
)

// Descriptor is a BUFR F-X-Y triplet. F selects the descriptor kind
// (0=element, 1=replication, 2=operator, 3=sequence), X is the 6-bit class,
// Y the 8-bit entry within the class.
type Descriptor struct {
	F uint8
	X uint8
	Y uint8
}

// decodeDescriptor splits a 2-octet big-endian descriptor word
// (FF XXXXXX YYYYYYYY) and validates it.
//
// Element descriptors in the reserved classes 0 and 9 are rejected, and
// operator (Table C) descriptors are not supported.
func decodeDescriptor(word uint16) (Descriptor, error) {
	d := Descriptor{
		F: uint8(word >> 14),
		X: uint8((word >> 8) & 0x3F),
		Y: uint8(word & 0xFF),
	}

	switch d.F {
	case 0:
		if d.X == 0 || d.X == 9 {
			return Descriptor{}, fmt.Errorf("%w: X=%d in element descriptor %s", ErrTableBClass, d.X, d)
		}
	case 1:
		// Y=0 signals delayed replication; the count is read from the payload.
	case 2:
		return Descriptor{}, fmt.Errorf("%w: operator descriptor %s", ErrUnsupportedFeature, d)
	case 3:
		// Resolved against Table D at decode time.
	}

	return d, nil
}

// parseDescriptor parses the canonical 6-character decimal form FXXYYY, the
// representation Table D uses for sequence children.
func parseDescriptor(s string) (Descriptor, error) {
	if len(s) != 6 {
		return Descriptor{}, fmt.Errorf("%w: descriptor string %q is not 6 characters", ErrUnknownDescriptor, s)
	}
	f, err := strconv.Atoi(s[0:1])
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: descriptor string %q: %v", ErrUnknownDescriptor, s, err)
	}
	x, err := strconv.Atoi(s[1:3])
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: descriptor string %q: %v", ErrUnknownDescriptor, s, err)
	}
	y, err := strconv.Atoi(s[3:6])
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: descriptor string %q: %v", ErrUnknownDescriptor, s, err)
	}
	if f > 3 || x > 63 {
		return Descriptor{}, fmt.Errorf("%w: descriptor string %q out of range", ErrUnknownDescriptor, s)
	}
	return Descriptor{F: uint8(f), X: uint8(x), Y: uint8(y)}, nil
}

// word re-encodes the descriptor as its 2-octet binary form.
func (d Descriptor) word() uint16 {
	return uint16(d.F)<<14 | uint16(d.X)<<8 | uint16(d.Y)
}

// String returns the canonical form FXXYYY used as the table lookup key.
func (d Descriptor) String() string {
	return fmt.Sprintf("%d%02d%03d", d.F, d.X, d.Y)
}

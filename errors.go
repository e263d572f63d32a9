package bufr

import "errors"

// Decode errors. Failures of the format checks wrap one of these sentinels,
// so callers can discriminate with errors.Is while still getting the
// section/descriptor context from the message text. Some failures carry no
// sentinel: I/O errors, including a stream that ends inside Sections 0-4
// (these wrap the io error, e.g. io.ErrUnexpectedEOF), and a Table B width
// the bit buffer cannot read (over 64 bits, or text that is not a whole
// number of octets).
var (
	// ErrMagicMismatch: Section 0 does not start with "BUFR", or Section 5
	// is not "7777".
	ErrMagicMismatch = errors.New("bad BUFR magic")

	// ErrUnsupportedVersion: BUFR edition outside 3-4, or the message was
	// encoded with master tables newer than maxTableVersion.
	ErrUnsupportedVersion = errors.New("unsupported BUFR version")

	// ErrUnsupportedFeature: compressed Section 4, multiple subsets,
	// operator (F=2) descriptors, non-meteorological/non-oceanographic
	// master tables, or a delayed-replication count width other than 8/16.
	ErrUnsupportedFeature = errors.New("unsupported BUFR feature")

	// ErrInvalidLayout: reserved octets or bits non-zero, a section length
	// below its fixed size, required metadata or a replication count read as
	// the missing sentinel, a malformed replication descriptor sequence, or a
	// message that ends before the Section 5 terminator. A stream that ends
	// inside Sections 0-4 is reported as the wrapped io error instead.
	ErrInvalidLayout = errors.New("invalid section layout")

	// ErrUnknownDescriptor: Section 3 referenced a descriptor absent from
	// Table B (F=0) or Table D (F=3).
	ErrUnknownDescriptor = errors.New("unknown descriptor")

	// ErrTableBClass: an element descriptor with a reserved class (X=0 or X=9).
	ErrTableBClass = errors.New("invalid Table B class")

	// ErrBitBufferOverrun: a bit read past the end of the Section 4 payload.
	ErrBitBufferOverrun = errors.New("bit buffer overrun")

	// ErrEndOfStream: the scanner hit EOF without finding a "BUFR" header.
	ErrEndOfStream = errors.New("not a bufr file")
)

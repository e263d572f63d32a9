package bufr

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Fixed-size big-endian integer reads used by the section parsers.
// Section lengths are 3 octets, so readU24 returns an int directly.

func readOctet(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func readU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readU24(r io.Reader) (int, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[1:]); err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(b[:])), nil
}

// readExact reads exactly n octets, failing with the wrapped cause when the
// stream ends early.
func readExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading %d octets: %w", n, err)
	}
	return buf, nil
}

package bufr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, tables *Tables, payload []byte, codes ...string) []Structure {
	t.Helper()
	structures, err := readSection4(bytes.NewReader(section4Bytes(payload)), descriptorList(codes...), tables)
	require.NoError(t, err)
	return structures
}

// TestDecodeSingleElement: one 7-bit numeric element.
func TestDecodeSingleElement(t *testing.T) {
	payload := (&bitWriter{}).writeBits(1, 7).bytes()
	structures := decodePayload(t, testTables(), payload, "001001")

	require.Len(t, structures, 1)
	e, ok := structures[0].(*Element)
	require.True(t, ok)
	require.Equal(t, "001001", e.Code())
	require.Equal(t, "Numeric", e.Units())
	require.Equal(t, "WMO block number", e.Name())

	v, ok := e.AsSigned()
	require.True(t, ok)
	require.Equal(t, int64(1), v)
}

// TestDecodeMissingElement: the all-ones raw decodes as Missing.
func TestDecodeMissingElement(t *testing.T) {
	payload := (&bitWriter{}).writeMissing(7).bytes()
	structures := decodePayload(t, testTables(), payload, "001001")

	e := structures[0].(*Element)
	require.True(t, e.IsMissing())
	_, ok := e.AsSigned()
	require.False(t, ok)
	_, ok = e.AsFloat()
	require.False(t, ok)
}

// TestDecodeSequence: Table D expansion of a year/month/day group.
func TestDecodeSequence(t *testing.T) {
	payload := (&bitWriter{}).
		writeBits(2024, 16).
		writeBits(1, 8).
		writeBits(15, 8).
		bytes()
	structures := decodePayload(t, testTables(), payload, "301011")

	require.Len(t, structures, 1)
	g, ok := structures[0].(*Group)
	require.True(t, ok)
	require.Equal(t, "301011", g.Code())
	require.Equal(t, "(Year month day)", g.Name())
	require.Len(t, g.Items(), 3)

	want := []struct {
		code string
		val  int64
	}{
		{"004001", 2024},
		{"004002", 1},
		{"004003", 15},
	}
	for i, w := range want {
		e := g.Items()[i].(*Element)
		require.Equal(t, w.code, e.Code())
		v, ok := e.AsSigned()
		require.True(t, ok)
		require.Equal(t, w.val, v)
	}
}

// TestDecodeFixedReplication: 101002 repeats the next descriptor twice.
func TestDecodeFixedReplication(t *testing.T) {
	payload := (&bitWriter{}).
		writeBits(11, 8).
		writeBits(22, 8).
		bytes()
	structures := decodePayload(t, testTables(), payload, "101002", "010004")

	require.Len(t, structures, 1)
	r, ok := structures[0].(*Replication)
	require.True(t, ok)
	require.Equal(t, 2, r.Len())

	for i, want := range []int64{11, 22} {
		e := r.Items()[i].(*Element)
		require.Equal(t, "010004", e.Code())
		v, ok := e.AsSigned()
		require.True(t, ok)
		require.Equal(t, want, v)
	}
}

// TestDecodeDelayedReplication: 102000 with an 8-bit embedded count of 3
// over a pair of elements.
func TestDecodeDelayedReplication(t *testing.T) {
	w := &bitWriter{}
	w.writeBits(3, 8) // embedded count
	pairs := [][2]uint64{{1, 2}, {3, 4}, {5, 6}}
	for _, p := range pairs {
		w.writeBits(p[0], 7)
		w.writeBits(p[1], 10)
	}
	structures := decodePayload(t, testTables(), w.bytes(), "102000", "031001", "001001", "001002")

	require.Len(t, structures, 1)
	r := structures[0].(*Replication)
	require.Equal(t, 6, r.Len())

	for i, p := range pairs {
		block := r.Items()[2*i].(*Element)
		station := r.Items()[2*i+1].(*Element)
		require.Equal(t, "001001", block.Code())
		require.Equal(t, "001002", station.Code())
		v, _ := block.AsSigned()
		require.Equal(t, int64(p[0]), v)
		v, _ = station.AsSigned()
		require.Equal(t, int64(p[1]), v)
	}
}

// TestDecodeDelayedReplicationZeroCount: a zero count consumes the window
// descriptors but no payload bits.
func TestDecodeDelayedReplicationZeroCount(t *testing.T) {
	w := &bitWriter{}
	w.writeBits(0, 8)
	w.writeBits(42, 8) // the element after the replication
	structures := decodePayload(t, testTables(), w.bytes(), "101000", "031001", "001001", "010004")

	require.Len(t, structures, 2)
	r := structures[0].(*Replication)
	require.Equal(t, 0, r.Len())

	e := structures[1].(*Element)
	require.Equal(t, "010004", e.Code())
	v, _ := e.AsSigned()
	require.Equal(t, int64(42), v)
}

// TestDecodeReplicationInsideSequence: the replication draws its window from
// the sequence expansion it sits in.
func TestDecodeReplicationInsideSequence(t *testing.T) {
	w := &bitWriter{}
	w.writeBits(9, 8)  // 010004
	w.writeBits(3, 4)  // 020011, first repetition
	w.writeBits(7, 4)  // 020011, second repetition
	structures := decodePayload(t, testTables(), w.bytes(), "302000")

	require.Len(t, structures, 1)
	g := structures[0].(*Group)
	require.Len(t, g.Items(), 2)

	e := g.Items()[0].(*Element)
	require.Equal(t, "010004", e.Code())

	r := g.Items()[1].(*Replication)
	require.Equal(t, 2, r.Len())
	for i, want := range []uint64{3, 7} {
		e := r.Items()[i].(*Element)
		require.Equal(t, "020011", e.Code())
		v, ok := e.AsUnsigned()
		require.True(t, ok)
		require.Equal(t, want, v)
	}
}

// TestDecodeTextElement: CCITT IA5 fields decode to NUL-stripped text.
func TestDecodeTextElement(t *testing.T) {
	payload := (&bitWriter{}).writeText("AB", 2).bytes()
	structures := decodePayload(t, testTables(), payload, "001015")

	e := structures[0].(*Element)
	s, ok := e.AsText()
	require.True(t, ok)
	require.Equal(t, "AB", s)
}

// TestDecodeFloatElement: physical units decode through scale/reference.
func TestDecodeFloatElement(t *testing.T) {
	payload := (&bitWriter{}).writeBits(28815, 16).bytes()
	structures := decodePayload(t, testTables(), payload, "012101")

	e := structures[0].(*Element)
	v, ok := e.AsFloat()
	require.True(t, ok)
	require.InDelta(t, 288.15, v, 1e-9)
}

// TestDecodeCoverage: the decode consumes exactly the sum of the element
// widths plus the delayed-replication count width.
func TestDecodeCoverage(t *testing.T) {
	w := &bitWriter{}
	w.writeBits(2, 8) // count
	w.writeBits(1, 7)
	w.writeBits(2, 10)
	w.writeBits(3, 7)
	w.writeBits(4, 10)
	payload := w.bytes()

	bb := newBitBuffer(payload)
	cur := &descCursor{descs: descriptorList("102000", "031001", "001001", "001002")}
	d, ok := cur.nextDesc()
	require.True(t, ok)
	_, err := decodeStructure(bb, d, cur, testTables())
	require.NoError(t, err)

	require.Equal(t, 8+2*(7+10), bb.bitsConsumed())
}

// TestDecodePaddingIgnored: trailing pad octets after the last element are
// opaque.
func TestDecodePaddingIgnored(t *testing.T) {
	payload := (&bitWriter{}).writeBits(1, 7).bytes()
	payload = append(payload, 0x00, 0x00, 0x00)
	structures := decodePayload(t, testTables(), payload, "001001")
	require.Len(t, structures, 1)
}

func TestDecodeUnknownElement(t *testing.T) {
	_, err := readSection4(bytes.NewReader(section4Bytes([]byte{0x00})),
		descriptorList("063255"), testTables())
	require.ErrorIs(t, err, ErrUnknownDescriptor)
}

func TestDecodeUnknownSequence(t *testing.T) {
	_, err := readSection4(bytes.NewReader(section4Bytes([]byte{0x00})),
		descriptorList("363001"), testTables())
	require.ErrorIs(t, err, ErrUnknownDescriptor)
}

func TestDecodeOneBitDelayedReplicationUnsupported(t *testing.T) {
	payload := (&bitWriter{}).writeBits(1, 1).writeBits(1, 7).bytes()
	_, err := readSection4(bytes.NewReader(section4Bytes(payload)),
		descriptorList("101000", "031000", "001001"), testTables())
	require.ErrorIs(t, err, ErrUnsupportedFeature)
}

func TestDecodeDelayedCountNotClass31(t *testing.T) {
	payload := (&bitWriter{}).writeBits(1, 8).bytes()
	_, err := readSection4(bytes.NewReader(section4Bytes(payload)),
		descriptorList("101000", "010004", "001001"), testTables())
	require.ErrorIs(t, err, ErrInvalidLayout)
}

func TestDecodeDelayedCountMissingSentinel(t *testing.T) {
	payload := (&bitWriter{}).writeMissing(8).bytes()
	_, err := readSection4(bytes.NewReader(section4Bytes(payload)),
		descriptorList("101000", "031001", "001001"), testTables())
	require.ErrorIs(t, err, ErrInvalidLayout)
}

func TestDecodeReplicationRunsOutOfDescriptors(t *testing.T) {
	payload := (&bitWriter{}).writeBits(1, 7).bytes()
	_, err := readSection4(bytes.NewReader(section4Bytes(payload)),
		descriptorList("103002", "001001"), testTables())
	require.ErrorIs(t, err, ErrInvalidLayout)
}

func TestDecodeOperatorDescriptorUnsupported(t *testing.T) {
	bb := newBitBuffer([]byte{0x00})
	_, err := decodeStructure(bb, Descriptor{F: 2, X: 1, Y: 0}, &descCursor{}, testTables())
	require.ErrorIs(t, err, ErrUnsupportedFeature)
}

func TestDecodePayloadTooShort(t *testing.T) {
	// 16-bit element against an empty payload.
	_, err := readSection4(bytes.NewReader(section4Bytes(nil)),
		descriptorList("004001"), testTables())
	require.ErrorIs(t, err, ErrBitBufferOverrun)
}

func TestDecodeSection4ReservedOctet(t *testing.T) {
	sec := section4Bytes([]byte{0x02})
	sec[3] = 1
	_, err := readSection4(bytes.NewReader(sec), descriptorList("001001"), testTables())
	require.ErrorIs(t, err, ErrInvalidLayout)
}

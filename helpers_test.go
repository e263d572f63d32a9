package bufr

import (
	"encoding/binary"
)

// bitWriter packs values MSB-first for building synthetic Section 4
// payloads, mirroring the layout the bit buffer reads.
type bitWriter struct {
	buf  []byte
	nbit int
}

func (w *bitWriter) writeBits(v uint64, n int) *bitWriter {
	for i := n - 1; i >= 0; i-- {
		if w.nbit%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		bit := byte((v >> i) & 1)
		w.buf[len(w.buf)-1] |= bit << (7 - w.nbit%8)
		w.nbit++
	}
	return w
}

func (w *bitWriter) writeMissing(n int) *bitWriter {
	return w.writeBits(missingSentinel(n), n)
}

// writeText writes s padded with NUL octets to width octets.
func (w *bitWriter) writeText(s string, width int) *bitWriter {
	for i := 0; i < width; i++ {
		var c byte
		if i < len(s) {
			c = s[i]
		}
		w.writeBits(uint64(c), 8)
	}
	return w
}

func (w *bitWriter) bytes() []byte { return w.buf }

// testTables builds the minimal synthetic catalogue used by the section 4
// scenario tests. Widths and units are chosen per scenario, not copied from
// the WMO publication.
func testTables() *Tables {
	return &Tables{
		b: map[string]TableBEntry{
			"001001": {FXY: "001001", WidthBits: 7, Units: "Numeric", Name: "WMO block number"},
			"001002": {FXY: "001002", WidthBits: 10, Units: "Numeric", Name: "WMO station number"},
			"001015": {FXY: "001015", WidthBits: 16, Units: "CCITT IA5", Name: "Station or site name"},
			"004001": {FXY: "004001", WidthBits: 16, Units: "a", Name: "Year"},
			"004002": {FXY: "004002", WidthBits: 8, Units: "mon", Name: "Month"},
			"004003": {FXY: "004003", WidthBits: 8, Units: "d", Name: "Day"},
			"010004": {FXY: "010004", WidthBits: 8, Units: "Numeric", Name: "Pressure"},
			"012101": {FXY: "012101", WidthBits: 16, Scale: 2, Units: "K", Name: "Temperature/air temperature"},
			"020011": {FXY: "020011", WidthBits: 4, Units: "Code table", Name: "Cloud amount"},
			"031000": {FXY: "031000", WidthBits: 1, Units: "Numeric", Name: "Short delayed descriptor replication factor"},
			"031001": {FXY: "031001", WidthBits: 8, Units: "Numeric", Name: "Delayed descriptor replication factor"},
			"031002": {FXY: "031002", WidthBits: 16, Units: "Numeric", Name: "Extended delayed descriptor replication factor"},
		},
		d: map[string]TableDEntry{
			"301011": {FXY: "301011", Name: "(Year month day)", Elements: []string{"004001", "004002", "004003"}},
			"302000": {FXY: "302000", Name: "(Pair with repeated tail)", Elements: []string{"010004", "101002", "020011"}},
		},
	}
}

// section4Bytes frames a payload as a complete Section 4: 3-octet length,
// reserved octet, payload.
func section4Bytes(payload []byte) []byte {
	size := 4 + len(payload)
	out := make([]byte, 0, size)
	out = append(out, byte(size>>16), byte(size>>8), byte(size))
	out = append(out, 0)
	return append(out, payload...)
}

// messageOptions controls the synthetic messages built by buildMessage.
type messageOptions struct {
	edition        byte
	masterTable    byte
	dataCategory   byte
	tablesVersion  byte
	numDatasets    uint16
	compressed     bool
	section2       []byte // nil = absent
	badMagic       bool
	badTerminator  bool
	yearMissing    bool
	sec3Reserved   byte
	extraSection1  []byte
}

func defaultOptions() messageOptions {
	return messageOptions{
		edition:       4,
		masterTable:   0,
		dataCategory:  2, // vertical soundings
		tablesVersion: 29,
		numDatasets:   1,
	}
}

// buildMessage assembles a complete wire-format message around the given
// Section 3 descriptors and Section 4 payload.
func buildMessage(opts messageOptions, descriptors []Descriptor, payload []byte) []byte {
	var msg []byte

	// Section 0; total length patched at the end.
	if opts.badMagic {
		msg = append(msg, "XUFR"...)
	} else {
		msg = append(msg, "BUFR"...)
	}
	msg = append(msg, 0, 0, 0)
	msg = append(msg, opts.edition)

	// Section 1.
	sec1Size := section1MinSize + len(opts.extraSection1)
	var flags byte
	if opts.section2 != nil {
		flags = flagSection2Present
	}
	year := uint16(2026)
	if opts.yearMissing {
		year = yearMissing
	}
	msg = append(msg, byte(sec1Size>>16), byte(sec1Size>>8), byte(sec1Size))
	msg = append(msg, opts.masterTable)
	msg = binary.BigEndian.AppendUint16(msg, 59) // originating centre: NCEP
	msg = binary.BigEndian.AppendUint16(msg, 0)
	msg = append(msg, 1)     // update number
	msg = append(msg, flags) // section 2 flag
	msg = append(msg, opts.dataCategory)
	msg = append(msg, 4)    // international subcategory
	msg = append(msg, 0xFF) // local subcategory unassigned
	msg = append(msg, opts.tablesVersion)
	msg = append(msg, 0) // local tables version
	msg = binary.BigEndian.AppendUint16(msg, year)
	msg = append(msg, 3, 15, 11, 2, 30) // month day hour minute second
	msg = append(msg, opts.extraSection1...)

	// Section 2.
	if opts.section2 != nil {
		sec2Size := 4 + len(opts.section2)
		msg = append(msg, byte(sec2Size>>16), byte(sec2Size>>8), byte(sec2Size))
		msg = append(msg, 0)
		msg = append(msg, opts.section2...)
	}

	// Section 3.
	sec3Size := 7 + 2*len(descriptors)
	var sec3Flags byte = flagObservedData
	if opts.compressed {
		sec3Flags |= flagCompressedData
	}
	msg = append(msg, byte(sec3Size>>16), byte(sec3Size>>8), byte(sec3Size))
	msg = append(msg, opts.sec3Reserved)
	msg = binary.BigEndian.AppendUint16(msg, opts.numDatasets)
	msg = append(msg, sec3Flags)
	for _, d := range descriptors {
		msg = binary.BigEndian.AppendUint16(msg, d.word())
	}

	// Section 4.
	msg = append(msg, section4Bytes(payload)...)

	// Section 5.
	if opts.badTerminator {
		msg = append(msg, "8888"...)
	} else {
		msg = append(msg, "7777"...)
	}

	msg[4] = byte(len(msg) >> 16)
	msg[5] = byte(len(msg) >> 8)
	msg[6] = byte(len(msg))
	return msg
}

func mustDescriptor(s string) Descriptor {
	d, err := parseDescriptor(s)
	if err != nil {
		panic(err)
	}
	return d
}

func descriptorList(codes ...string) []Descriptor {
	out := make([]Descriptor, len(codes))
	for i, c := range codes {
		out[i] = mustDescriptor(c)
	}
	return out
}

package bufr

import (
	"fmt"
	"strings"
	"time"
)

// Message is one fully-decoded BUFR message. It is immutable: every accessor
// is read-only and the structure tree owns all of its contents.
type Message struct {
	edition uint8

	masterTable          uint8
	originatingCenter    uint16
	originatingSubcenter uint16
	updateNum            uint8
	dataCategory         uint8
	dataSubcategory      uint8
	localDataSubcategory uint8
	masterTableVersion   uint8
	localTablesVersion   uint8
	year                 uint16
	month, day           uint8
	hour, minute, second uint8
	extraSection1Data    []byte

	numDatasets    int
	observedData   bool
	compressedData bool

	section2Data []byte

	structures []Structure

	fingerprint uint64
}

// Edition returns the BUFR edition number from Section 0.
func (m *Message) Edition() uint8 { return m.edition }

// MasterTable returns the master table number (0 meteorology, 10 oceanography).
func (m *Message) MasterTable() uint8 { return m.masterTable }

// OriginatingCenter returns the originating centre code.
func (m *Message) OriginatingCenter() uint16 { return m.originatingCenter }

// OriginatingSubcenter returns the originating sub-centre code.
func (m *Message) OriginatingSubcenter() uint16 { return m.originatingSubcenter }

// UpdateNum returns the update sequence number.
func (m *Message) UpdateNum() uint8 { return m.updateNum }

// DataCategory returns the Table A data category.
func (m *Message) DataCategory() uint8 { return m.dataCategory }

// DataSubcategory returns the international data subcategory.
func (m *Message) DataSubcategory() uint8 { return m.dataSubcategory }

// LocalDataSubcategory returns the originator-defined data subcategory.
// ok is false when the originating centre left it unassigned.
func (m *Message) LocalDataSubcategory() (v uint8, ok bool) {
	if m.localDataSubcategory == localSubcategoryMissing {
		return 0, false
	}
	return m.localDataSubcategory, true
}

// MasterTableVersion returns the master table version the message was
// encoded against.
func (m *Message) MasterTableVersion() uint8 { return m.masterTableVersion }

// LocalTablesVersion returns the local tables version, 0 if none were used.
func (m *Message) LocalTablesVersion() uint8 { return m.localTablesVersion }

// ReferenceTime returns the Section 1 date/time in UTC. Its significance
// (observation time, launch time, ...) depends on the data category.
func (m *Message) ReferenceTime() time.Time {
	return time.Date(int(m.year), time.Month(m.month), int(m.day),
		int(m.hour), int(m.minute), int(m.second), 0, time.UTC)
}

// Section1ExtraDataPresent reports whether Section 1 carried local-use
// octets past the fixed layout.
func (m *Message) Section1ExtraDataPresent() bool { return len(m.extraSection1Data) > 0 }

// Section1ExtraData returns the local-use octets of Section 1. Callers must
// not modify the returned slice.
func (m *Message) Section1ExtraData() []byte { return m.extraSection1Data }

// NumDatasets returns the Section 3 subset count (at most 1 for messages this
// decoder accepts).
func (m *Message) NumDatasets() int { return m.numDatasets }

// ObservedData reports the Section 3 observed-data flag.
func (m *Message) ObservedData() bool { return m.observedData }

// Section2Present reports whether the message carried a Section 2.
func (m *Message) Section2Present() bool { return m.section2Data != nil }

// Section2Data returns the verbatim Section 2 payload. Callers must not
// modify the returned slice.
func (m *Message) Section2Data() []byte { return m.section2Data }

// Structures returns the top-level nodes of the decoded data tree in
// Section 3 descriptor order.
func (m *Message) Structures() []Structure { return m.structures }

// Fingerprint returns the xxhash64 digest of the raw message octets, Section
// 0 through the "7777" terminator. GTS broadcasts routinely repeat messages;
// identical octets hash identically, so the digest serves as a duplicate key.
func (m *Message) Fingerprint() uint64 { return m.fingerprint }

func (m *Message) masterTableString() string {
	switch m.masterTable {
	case 0:
		return "Meteorology (maintained by WMO)"
	case 10:
		return "Oceanography (maintained by IOC of UNESCO)"
	default:
		return "Unknown"
	}
}

// String renders the message metadata followed by the indented data tree.
func (m *Message) String() string {
	var sb strings.Builder

	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "             BUFR version: %d\n", m.edition)
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "             Master Table: %d - %s\n", m.masterTable, m.masterTableString())
	fmt.Fprintf(&sb, "BUFR Master Table Version: %d\n", m.masterTableVersion)
	fmt.Fprintf(&sb, "     Local Tables Version: %d\n", m.localTablesVersion)
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "            Data Category: %d\n", m.dataCategory)
	fmt.Fprintf(&sb, "         Data Subcategory: %d\n", m.dataSubcategory)
	if v, ok := m.LocalDataSubcategory(); ok {
		fmt.Fprintf(&sb, "   Local Data Subcategory: %d\n", v)
	} else {
		fmt.Fprintf(&sb, "   Local Data Subcategory: none\n")
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "       Originating Center: %d\n", m.originatingCenter)
	fmt.Fprintf(&sb, "    Originating Subcenter: %d\n", m.originatingSubcenter)
	fmt.Fprintf(&sb, "            Update Number: %d\n", m.updateNum)
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "       Extra Sect. 1 Data: %t\n", m.Section1ExtraDataPresent())
	fmt.Fprintf(&sb, "        Section 2 Present: %t\n", m.Section2Present())
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "                     Year: %d\n", m.year)
	fmt.Fprintf(&sb, "                    Month: %d\n", m.month)
	fmt.Fprintf(&sb, "                      Day: %d\n", m.day)
	fmt.Fprintf(&sb, "                     Hour: %d\n", m.hour)
	fmt.Fprintf(&sb, "                   Minute: %d\n", m.minute)
	fmt.Fprintf(&sb, "                   Second: %d\n", m.second)
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "       Number of Datasets: %d\n", m.numDatasets)
	fmt.Fprintf(&sb, "            Observed Data: %t\n", m.observedData)
	sb.WriteByte('\n')

	if len(m.section2Data) > 0 {
		fmt.Fprintf(&sb, "   Size of Section 2 Data: %d\n", len(m.section2Data))
		sb.WriteByte('\n')
	}

	sb.WriteString("-------------------- Data --------------------\n\n")
	for _, s := range m.structures {
		s.dump(&sb, 0)
	}

	return sb.String()
}

// Package bufr decodes WMO BUFR (FM 94) messages, editions 3 and 4.
//
// A BUFR message is six framed sections; Section 3 enumerates F-X-Y
// descriptors and Section 4 holds an unaligned bit-packed payload whose
// shape is the recursive expansion of those descriptors against the Table B
// (element) and Table D (sequence) catalogues. ReadMessage materialises the
// payload into a tree of Element, Group and Replication nodes that callers
// walk through the read-only traversal accessors.
//
// The decoder is synchronous and single-threaded per message; a shared
// Tables catalogue is immutable after load, so decoding many messages
// concurrently is safe when each decode owns its reader.
//
// Unsupported by design: compressed Section 4 payloads, multi-subset
// messages, Table C (F=2) operator descriptors, and master tables other
// than meteorology (0) and oceanography (10). These fail with
// ErrUnsupportedFeature rather than decode incorrectly.
package bufr

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Supported format revisions.
const (
	minEditionSupported = 3
	maxEditionSupported = 4

	// maxTableVersion is the newest master table version the builtin
	// catalogue tracks. Messages encoded against newer tables may use
	// descriptors this decoder has no definition for, so they are rejected.
	maxTableVersion = 39
)

// ReadMessage decodes one complete BUFR message from r, which must be
// positioned at the "BUFR" magic (see ScanToStart). Exactly the octets of
// the message, Section 0 through the "7777" terminator, are consumed.
// tables may be nil, in which case the builtin catalogue is used.
func ReadMessage(r io.Reader, tables *Tables) (*Message, error) {
	if tables == nil {
		tables = Builtin()
	}

	// Every consumed octet also feeds the duplicate-detection digest.
	digest := xxhash.New()
	tr := io.TeeReader(r, digest)

	s0, err := readSection0(tr)
	if err != nil {
		return nil, err
	}
	if s0.edition < minEditionSupported || s0.edition > maxEditionSupported {
		return nil, fmt.Errorf("%w: edition %d, supported %d-%d",
			ErrUnsupportedVersion, s0.edition, minEditionSupported, maxEditionSupported)
	}

	s1, err := readSection1(tr)
	if err != nil {
		return nil, err
	}
	if s1.masterTableVersion > maxTableVersion {
		return nil, fmt.Errorf("%w: master table version %d, newest supported %d",
			ErrUnsupportedVersion, s1.masterTableVersion, maxTableVersion)
	}

	var sec2 []byte
	if s1.section2Present {
		if sec2, err = readSection2(tr); err != nil {
			return nil, err
		}
	}

	s3, err := readSection3(tr)
	if err != nil {
		return nil, err
	}
	if s3.numDatasets > 1 {
		return nil, fmt.Errorf("%w: %d data subsets in one message", ErrUnsupportedFeature, s3.numDatasets)
	}
	if s3.compressedData {
		return nil, fmt.Errorf("%w: compressed section 4 payload", ErrUnsupportedFeature)
	}

	structures, err := readSection4(tr, s3.descriptors, tables)
	if err != nil {
		return nil, err
	}

	if err := readSection5(tr); err != nil {
		return nil, err
	}

	return &Message{
		edition:              s0.edition,
		masterTable:          s1.masterTable,
		originatingCenter:    s1.originatingCenter,
		originatingSubcenter: s1.originatingSubcenter,
		updateNum:            s1.updateNum,
		dataCategory:         s1.dataCategory,
		dataSubcategory:      s1.dataSubcategory,
		localDataSubcategory: s1.localDataSubcategory,
		masterTableVersion:   s1.masterTableVersion,
		localTablesVersion:   s1.localTablesVersion,
		year:                 s1.year,
		month:                s1.month,
		day:                  s1.day,
		hour:                 s1.hour,
		minute:               s1.minute,
		second:               s1.second,
		extraSection1Data:    s1.extraData,
		numDatasets:          s3.numDatasets,
		observedData:         s3.observedData,
		compressedData:       s3.compressedData,
		section2Data:         sec2,
		structures:           structures,
		fingerprint:          digest.Sum64(),
	}, nil
}

// ReadFile decodes every BUFR message in the named file, scanning over any
// interleaved non-BUFR bytes (GTS bulletin headers and the like). tables may
// be nil for the builtin catalogue.
func ReadFile(path string, tables *Tables) ([]*Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var msgs []*Message
	for {
		if err := ScanToStart(f); err != nil {
			if errors.Is(err, ErrEndOfStream) {
				if len(msgs) == 0 {
					return nil, err
				}
				return msgs, nil
			}
			return nil, err
		}
		msg, err := ReadMessage(f, tables)
		if err != nil {
			return nil, fmt.Errorf("%s: message %d: %w", path, len(msgs), err)
		}
		msgs = append(msgs, msg)
	}
}

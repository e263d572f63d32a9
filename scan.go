package bufr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// scanWindow is the chunk size the scanner reads while hunting for the
// message start.
const scanWindow = 24

// ScanToStart advances f to the next occurrence of the ASCII magic "BUFR"
// and leaves it positioned at the 'B'. Files from GTS feeds carry bulletin
// headers and other framing before each message; the scanner skips them.
// Returns ErrEndOfStream when no magic exists before EOF.
func ScanToStart(f io.ReadSeeker) error {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	var window [scanWindow]byte
	for {
		n, err := f.Read(window[:])
		if n == 0 {
			if err == nil || errors.Is(err, io.EOF) {
				return ErrEndOfStream
			}
			return fmt.Errorf("scan: %w", err)
		}

		if n >= 4 && bytes.Equal(window[:4], []byte("BUFR")) {
			if _, err := f.Seek(pos, io.SeekStart); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			return nil
		}

		// No match at the window start. Jump to the next candidate 'B' so a
		// magic straddling the window boundary is re-read whole; otherwise
		// move past the window.
		if idx := bytes.IndexByte(window[1:n], 'B'); idx >= 0 {
			pos += int64(idx) + 1
		} else {
			pos += int64(n)
		}
		if _, err := f.Seek(pos, io.SeekStart); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
	}
}

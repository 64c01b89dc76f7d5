// =============================================================================
// Swiss QR Reader - Raw Record
// =============================================================================
//
// This module turns the decoded text of a QR symbol into a RawRecord: one
// trimmed string per line, in original order.
//
// ACQUISITION:
//   1. Split the decoded text on "\r\n" or "\n".
//   2. Trim leading and trailing whitespace of every line.
//   3. Drop any lines before the "SPC" sentinel (scanners sometimes prefix
//      their own output).
//
// The scanner-side acceptance check (LooksComplete) is used when several
// candidate decodings exist, e.g. one per crop or rotation of a scanned page.
//
// =============================================================================

package record

import (
	"strings"

	"github.com/ginjaninja78/swissqr/internal/schema"
)

// trailerWindow is the number of trailing lines searched for the "EPD" marker.
const trailerWindow = 4

// Raw is a record as decoded from the QR symbol, one element per line.
type Raw []string

// Split breaks decoded QR text into trimmed lines.
//
// A single trailing line break does not produce an extra empty line.
func Split(text string) Raw {
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	if text == "" {
		return Raw{}
	}

	lines := strings.Split(text, "\n")
	raw := make(Raw, len(lines))
	for i, line := range lines {
		raw[i] = strings.TrimSpace(line)
	}
	return raw
}

// TrimToPayload drops every line before the first "SPC" line. A record with
// no "SPC" line at all comes back empty.
func TrimToPayload(lines Raw) Raw {
	for i, line := range lines {
		if line == schema.QRTypeSentinel {
			return lines[i:]
		}
	}
	return Raw{}
}

// Parse splits text and trims it to the payload in one step.
func Parse(text string) Raw {
	return TrimToPayload(Split(text))
}

// LooksComplete reports whether lines is a plausible full payload: the first
// line is "SPC" and "EPD" appears in one of the last four lines.
func LooksComplete(lines Raw) bool {
	if len(lines) == 0 || lines[0] != schema.QRTypeSentinel {
		return false
	}

	for i := len(lines) - 1; i >= 0 && i >= len(lines)-trailerWindow; i-- {
		if lines[i] == schema.TrailerSentinel {
			return true
		}
	}
	return false
}

// Line returns line i, or an empty string when the record is too short.
func (r Raw) Line(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

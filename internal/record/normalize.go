// =============================================================================
// Swiss QR Reader - Field Normalizer
// =============================================================================
//
// Normalization produces the canonical record the validator works on. It
// upper-cases exactly four fields:
//   - reference type
//   - currency
//   - creditor country
//   - debtor country
//
// Everything else keeps its original case and content. Normalization neither
// trims (that happens at acquisition) nor checks lengths; a record shorter
// than the schema is copied as is and its missing lines read as empty.
//
// =============================================================================

package record

import (
	"strings"

	"github.com/ginjaninja78/swissqr/internal/schema"
)

// upperCaseFields are the fields compared case-insensitively by the standard.
var upperCaseFields = []schema.Field{
	schema.ReferenceType,
	schema.Currency,
	schema.CreditorCountry,
	schema.DebtorCountry,
}

// Normalized is a record ready for validation. It is a value type; the
// underlying lines are never shared with the raw record it came from.
type Normalized struct {
	lines  []string
	schema *schema.Schema
}

// Normalize returns the canonical form of raw for the layout s.
func Normalize(raw Raw, s *schema.Schema) Normalized {
	lines := make([]string, len(raw))
	copy(lines, raw)

	for _, field := range upperCaseFields {
		i := s.MustIndex(field)
		if i < len(lines) {
			lines[i] = strings.ToUpper(lines[i])
		}
	}

	return Normalized{lines: lines, schema: s}
}

// Schema returns the layout the record was normalized against.
func (n Normalized) Schema() *schema.Schema {
	return n.schema
}

// Line returns line i, or an empty string when the record is too short.
func (n Normalized) Line(i int) string {
	if i < 0 || i >= len(n.lines) {
		return ""
	}
	return n.lines[i]
}

// Get returns the value of field.
func (n Normalized) Get(field schema.Field) string {
	i, ok := n.schema.Index(field)
	if !ok {
		return ""
	}
	return n.Line(i)
}

// Len returns the number of lines actually present.
func (n Normalized) Len() int {
	return len(n.lines)
}

// ReferenceType returns the parsed reference type.
func (n Normalized) ReferenceType() ReferenceType {
	return ParseReferenceType(n.Get(schema.ReferenceType))
}

// AddressType returns the parsed address type of block.
func (n Normalized) AddressType(block schema.AddressBlock) AddressType {
	return ParseAddressType(n.Get(block.Type))
}

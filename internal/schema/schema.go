// =============================================================================
// Swiss QR Reader - Record Schema
// =============================================================================
//
// This module maps a QR-bill specification version to the line positions of
// every field in the "SPC" payload record.
//
// RECORD LAYOUT (version 0200):
//
//   | Line  | Field                              |
//   |-------|------------------------------------|
//   | 0     | QR type, literally "SPC"           |
//   | 1     | Version                            |
//   | 2     | Coding type ("1" = UTF-8)          |
//   | 3     | IBAN                               |
//   | 4-10  | Creditor address (7 lines)         |
//   | 11-17 | Ultimate creditor (reserved)       |
//   | 18-19 | Amount, currency                   |
//   | 20-26 | Ultimate debtor address (7 lines)  |
//   | 27-28 | Reference type, reference          |
//   | 29-31 | Message, trailer "EPD", bill info  |
//   | 32-33 | Alternative procedures             |
//
// VERSION RESOLUTION:
//   Lookup is by exact version string. Any unknown version starting with "02"
//   resolves to the 0200 layout, as required for forward-compatible minor
//   versions of the standard.
//
// The schema table is built once at package initialisation and never mutated;
// all accessors return copies, so schemas are safe to share across goroutines.
//
// =============================================================================

package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// FIELD CATALOGUE
// =============================================================================

// Field is the symbolic name of a record field. Field names double as the
// stable failure tags reported by the validator.
type Field string

const (
	QRType  Field = "SPC"
	Version Field = "VERSION"
	Coding  Field = "CODING"
	IBAN    Field = "IBAN"

	CreditorType    Field = "ADDR_CREDITOR_TYPE"
	CreditorName    Field = "ADDR_CREDITOR_NAME"
	CreditorStreet  Field = "ADDR_CREDITOR_STREET_OR_LINE1"
	CreditorHouse   Field = "ADDR_CREDITOR_HOUSE_OR_LINE2"
	CreditorPostal  Field = "ADDR_CREDITOR_NPA"
	CreditorCity    Field = "ADDR_CREDITOR_CITY"
	CreditorCountry Field = "ADDR_CREDITOR_COUNTRY"

	Amount   Field = "AMOUNT"
	Currency Field = "CURRENCY"

	DebtorType    Field = "ADDR_DEBITOR_TYPE"
	DebtorName    Field = "ADDR_DEBITOR_NAME"
	DebtorStreet  Field = "ADDR_DEBITOR_STREET_OR_LINE1"
	DebtorHouse   Field = "ADDR_DEBITOR_HOUSE_OR_LINE2"
	DebtorPostal  Field = "ADDR_DEBITOR_NPA"
	DebtorCity    Field = "ADDR_DEBITOR_CITY"
	DebtorCountry Field = "ADDR_DEBITOR_COUNTRY"

	ReferenceType  Field = "REFERENCE_TYPE"
	Reference      Field = "REFERENCE"
	Message        Field = "COMMUNICATION"
	Trailer        Field = "EPD"
	AdditionalInfo Field = "ADDITIONAL_INFO"
	AltProcedure1  Field = "ALT_PROCEDURE1"
	AltProcedure2  Field = "ALT_PROCEDURE2"

	// Reserved is the tag used for lines reserved for future use.
	Reserved Field = "_RESERVED"
)

// Header lines sit at the same position in every version of the standard, so
// the version can be read before a schema is known.
const (
	QRTypeLine  = 0
	VersionLine = 1

	// QRTypeSentinel is the literal value of the first line of every payload.
	QRTypeSentinel = "SPC"

	// TrailerSentinel is the literal value of the end-of-payment-data line.
	TrailerSentinel = "EPD"
)

// DefaultVersion is the version every "02xx" record resolves to.
const DefaultVersion = "0200"

// ErrSchemaNotFound is returned for versions without a known layout.
var ErrSchemaNotFound = errors.New("schema not found")

// =============================================================================
// ADDRESS BLOCKS
// =============================================================================

// AddressBlock groups the seven fields of one party's address.
type AddressBlock struct {
	// Prefix is the common tag prefix, e.g. "ADDR_CREDITOR".
	Prefix  string
	Type    Field
	Name    Field
	Street  Field
	House   Field
	Postal  Field
	City    Field
	Country Field
}

// Creditor is the address block of the account holder being paid.
var Creditor = AddressBlock{
	Prefix:  "ADDR_CREDITOR",
	Type:    CreditorType,
	Name:    CreditorName,
	Street:  CreditorStreet,
	House:   CreditorHouse,
	Postal:  CreditorPostal,
	City:    CreditorCity,
	Country: CreditorCountry,
}

// Debtor is the address block of the ultimate debtor.
var Debtor = AddressBlock{
	Prefix:  "ADDR_DEBITOR",
	Type:    DebtorType,
	Name:    DebtorName,
	Street:  DebtorStreet,
	House:   DebtorHouse,
	Postal:  DebtorPostal,
	City:    DebtorCity,
	Country: DebtorCountry,
}

// =============================================================================
// SCHEMA
// =============================================================================

// Schema is the immutable field layout of one specification version.
type Schema struct {
	version   string
	positions map[Field]int
	reserved  []int
	lines     int
}

// Version returns the version the schema was registered under.
func (s *Schema) Version() string {
	return s.version
}

// Index returns the zero-based line index of field.
func (s *Schema) Index(field Field) (int, bool) {
	i, ok := s.positions[field]
	return i, ok
}

// MustIndex returns the line index of field and panics for fields outside the
// catalogue. It is meant for the fixed field constants of this package.
func (s *Schema) MustIndex(field Field) int {
	i, ok := s.positions[field]
	if !ok {
		panic(fmt.Sprintf("schema %s: unknown field %q", s.version, field))
	}
	return i
}

// Reserved returns the line indices that must be empty.
func (s *Schema) Reserved() []int {
	out := make([]int, len(s.reserved))
	copy(out, s.reserved)
	return out
}

// Lines returns the number of lines a complete record of this version has.
func (s *Schema) Lines() int {
	return s.lines
}

// Fields returns every field of the schema ordered by line index.
func (s *Schema) Fields() []Field {
	fields := make([]Field, 0, len(s.positions))
	for f := range s.positions {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		return s.positions[fields[i]] < s.positions[fields[j]]
	})
	return fields
}

// =============================================================================
// REGISTRY
// =============================================================================

// registry holds one schema per supported version.
var registry = map[string]*Schema{
	DefaultVersion: newSchema(DefaultVersion, map[Field]int{
		QRType:          0,
		Version:         1,
		Coding:          2,
		IBAN:            3,
		CreditorType:    4,
		CreditorName:    5,
		CreditorStreet:  6,
		CreditorHouse:   7,
		CreditorPostal:  8,
		CreditorCity:    9,
		CreditorCountry: 10,
		Amount:          18,
		Currency:        19,
		DebtorType:      20,
		DebtorName:      21,
		DebtorStreet:    22,
		DebtorHouse:     23,
		DebtorPostal:    24,
		DebtorCity:      25,
		DebtorCountry:   26,
		ReferenceType:   27,
		Reference:       28,
		Message:         29,
		Trailer:         30,
		AdditionalInfo:  31,
		AltProcedure1:   32,
		AltProcedure2:   33,
	}, []int{11, 12, 13, 14, 15, 16, 17}),
}

// newSchema builds a schema and computes its record length.
func newSchema(version string, positions map[Field]int, reserved []int) *Schema {
	lines := 0
	for _, i := range positions {
		if i+1 > lines {
			lines = i + 1
		}
	}
	for _, i := range reserved {
		if i+1 > lines {
			lines = i + 1
		}
	}
	return &Schema{
		version:   version,
		positions: positions,
		reserved:  reserved,
		lines:     lines,
	}
}

// Resolve returns the schema for the version found on the version line.
//
// PARAMETERS:
//   - version: The raw version field, e.g. "0200".
//
// RETURNS:
//   - The schema registered for version, or the 0200 schema for any other
//     version starting with "02".
//   - ErrSchemaNotFound otherwise.
func Resolve(version string) (*Schema, error) {
	if s, ok := registry[version]; ok {
		return s, nil
	}
	if strings.HasPrefix(version, "02") {
		return registry[DefaultVersion], nil
	}
	return nil, fmt.Errorf("%w: version %q", ErrSchemaNotFound, version)
}

// Versions lists the registered versions.
func Versions() []string {
	versions := make([]string, 0, len(registry))
	for v := range registry {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

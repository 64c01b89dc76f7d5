// =============================================================================
// Swiss QR Reader - Validation Engine
// =============================================================================
//
// This module applies the Swiss QR-bill business rules to a payload record.
// It accepts or rejects the record as a whole and, on rejection, names the
// first field that failed together with a stable reason token.
//
// VALIDATION ORDER:
//   Checks run in a fixed order and the first failure wins, so the same record
//   always produces the same diagnostic:
//   1.  Sentinel line is "SPC"
//   2.  Version is present and resolves to a schema
//   3.  Coding is "1" (UTF-8)
//   4.  Trailer is "EPD"
//   5.  Reserved lines are empty
//   6.  Mandatory fields are present
//   7.  IBAN passes MOD 97-10
//   8.  Reference matches its reference type (QRR / SCOR / NON)
//   9.  Creditor and debtor address blocks
//   10. Length caps on the optional free-text fields
//
// PURITY:
//   Validation performs no I/O and holds no state. It is safe to call from any
//   number of goroutines at once.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ginjaninja78/swissqr/internal/checksum"
	"github.com/ginjaninja78/swissqr/internal/record"
	"github.com/ginjaninja78/swissqr/internal/schema"
)

// =============================================================================
// LENGTH LIMITS
// =============================================================================

const (
	maxNameLen         = 70
	maxStreetLine1Len  = 70
	maxLine2Len        = 70
	maxHouseLen        = 16
	maxPostalLen       = 16
	maxCityLen         = 35
	maxCountryLen      = 2
	maxFreeTextLen     = 140
	maxAltProcedureLen = 100

	qrrReferenceLen     = 27
	scorReferenceMinLen = 5
	scorReferenceMaxLen = 25

	// qrIBANMarkerPos is the IBAN position holding the first digit of the
	// bank identifier; QR-IBANs carry a '3' there.
	qrIBANMarkerPos = 4
	qrIBANMarker    = '3'

	codingUTF8 = "1"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Reason is a short, machine-stable token describing why a field failed.
type Reason string

const (
	ReasonMissing     Reason = "MISSING"
	ReasonTooLong     Reason = "TOO_LONG"
	ReasonBadLength   Reason = "BAD_LENGTH"
	ReasonBadChecksum Reason = "BAD_CHECKSUM"
	ReasonBadValue    Reason = "BAD_VALUE"
	ReasonBadType     Reason = "BAD_TYPE"
	ReasonNotEmpty    Reason = "NOT_EMPTY"
	ReasonMalformed   Reason = "MALFORMED"
	ReasonUnsupported Reason = "UNSUPPORTED"
)

// ValidationError describes the first rule a record violated.
type ValidationError struct {
	// Field is the tag of the field that failed, e.g. "IBAN" or
	// "ADDR_CREDITOR_NPA".
	Field schema.Field

	// Reason is the machine-stable failure token.
	Reason Reason

	// Value is the offending field value.
	Value string

	// Message is a human-readable explanation.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s (value: '%s')", e.Reason, e.Field, e.Message, e.Value)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result is the outcome of validating one record.
type Result struct {
	// Record is the normalized record. It is the zero value when validation
	// stopped before a schema was resolved.
	Record record.Normalized

	// Schema is the resolved layout, nil when the version was not resolvable.
	Schema *schema.Schema

	// Err is nil for a valid record.
	Err *ValidationError
}

// Valid reports whether the record was accepted.
func (r *Result) Valid() bool {
	return r.Err == nil
}

// Error returns the failure as an error value, or nil when valid.
func (r *Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// Validate resolves the schema of raw, normalizes it and applies every rule.
//
// PARAMETERS:
//   - raw: The trimmed payload lines, starting with "SPC".
//
// RETURNS:
//   - A Result that is either valid or carries the first failure.
func Validate(raw record.Raw) *Result {
	if err := checkSentinel(raw.Line(schema.QRTypeLine)); err != nil {
		return &Result{Err: err}
	}

	s, err := resolveVersion(raw.Line(schema.VersionLine))
	if err != nil {
		return &Result{Err: err}
	}

	return ValidateNormalized(record.Normalize(raw, s))
}

// ValidateNormalized applies every rule to an already normalized record.
func ValidateNormalized(n record.Normalized) *Result {
	result := &Result{Record: n, Schema: n.Schema()}

	if err := checkSentinel(n.Line(schema.QRTypeLine)); err != nil {
		result.Err = err
		return result
	}
	if _, err := resolveVersion(n.Line(schema.VersionLine)); err != nil {
		result.Err = err
		return result
	}

	checks := []func(record.Normalized) *ValidationError{
		checkHeader,
		checkReserved,
		checkMandatory,
		checkIBAN,
		checkReference,
		func(n record.Normalized) *ValidationError { return checkAddress(n, schema.Creditor) },
		func(n record.Normalized) *ValidationError { return checkAddress(n, schema.Debtor) },
		checkFreeText,
	}

	for _, check := range checks {
		if err := check(n); err != nil {
			result.Err = err
			return result
		}
	}

	return result
}

// =============================================================================
// HEADER CHECKS
// =============================================================================

// checkSentinel verifies the first line is literally "SPC".
func checkSentinel(value string) *ValidationError {
	if value != schema.QRTypeSentinel {
		return fail(schema.QRType, ReasonBadValue, value, "first line must be %q", schema.QRTypeSentinel)
	}
	return nil
}

// resolveVersion verifies the version line and returns its schema.
func resolveVersion(value string) (*schema.Schema, *ValidationError) {
	if value == "" {
		return nil, fail(schema.Version, ReasonMissing, value, "version is empty")
	}

	s, err := schema.Resolve(value)
	if err != nil {
		return nil, fail(schema.Version, ReasonUnsupported, value, "unsupported version")
	}
	return s, nil
}

// checkHeader verifies the coding type and the "EPD" trailer.
func checkHeader(n record.Normalized) *ValidationError {
	if coding := n.Get(schema.Coding); coding != codingUTF8 {
		return fail(schema.Coding, missingOr(coding, ReasonBadValue), coding, "coding type must be %q", codingUTF8)
	}

	if trailer := n.Get(schema.Trailer); trailer != schema.TrailerSentinel {
		return fail(schema.Trailer, missingOr(trailer, ReasonBadValue), trailer, "trailer must be %q", schema.TrailerSentinel)
	}

	return nil
}

// checkReserved verifies that every line reserved for future use is empty.
func checkReserved(n record.Normalized) *ValidationError {
	for _, i := range n.Schema().Reserved() {
		if value := n.Line(i); value != "" {
			return fail(schema.Reserved, ReasonNotEmpty, value, "line %d is reserved and must be empty", i)
		}
	}
	return nil
}

// mandatoryFields must be non-empty regardless of reference or address type.
var mandatoryFields = []schema.Field{
	schema.IBAN,
	schema.Currency,
	schema.CreditorType,
	schema.DebtorType,
	schema.CreditorName,
	schema.DebtorName,
	schema.CreditorCountry,
	schema.DebtorCountry,
}

// checkMandatory verifies every mandatory field is present.
func checkMandatory(n record.Normalized) *ValidationError {
	for _, field := range mandatoryFields {
		if n.Get(field) == "" {
			return fail(field, ReasonMissing, "", "mandatory field is empty")
		}
	}
	return nil
}

// =============================================================================
// CHECKSUM CHECKS
// =============================================================================

// checkIBAN verifies the IBAN check digits.
func checkIBAN(n record.Normalized) *ValidationError {
	iban := n.Get(schema.IBAN)
	return checkMod97(schema.IBAN, iban)
}

// checkMod97 reports a MOD 97-10 failure for field.
func checkMod97(field schema.Field, value string) *ValidationError {
	ok, err := checksum.VerifyMod97(value)
	if err != nil {
		return checksumFailure(field, value, err)
	}
	if !ok {
		return fail(field, ReasonBadChecksum, value, "MOD 97-10 check failed")
	}
	return nil
}

// checkReference dispatches on the reference type.
func checkReference(n record.Normalized) *ValidationError {
	reference := n.Get(schema.Reference)

	switch n.ReferenceType() {
	case record.ReferenceSCOR:
		if l := length(reference); l < scorReferenceMinLen || l > scorReferenceMaxLen {
			return fail(schema.Reference, ReasonBadLength, reference,
				"creditor reference must be %d to %d characters", scorReferenceMinLen, scorReferenceMaxLen)
		}
		return checkMod97(schema.Reference, reference)

	case record.ReferenceQRR:
		iban := n.Get(schema.IBAN)
		if len(iban) <= qrIBANMarkerPos || iban[qrIBANMarkerPos] != qrIBANMarker {
			return fail(schema.IBAN, ReasonBadValue, iban, "QR reference requires a QR-IBAN")
		}

		currency := n.Get(schema.Currency)
		if currency != "CHF" && currency != "EUR" {
			return fail(schema.Currency, ReasonBadValue, currency, "QR reference is only defined for CHF and EUR")
		}

		if length(reference) != qrrReferenceLen {
			return fail(schema.Reference, ReasonBadLength, reference, "QR reference must be %d digits", qrrReferenceLen)
		}

		ok, err := checksum.VerifyMod10(reference)
		if err != nil {
			return checksumFailure(schema.Reference, reference, err)
		}
		if !ok {
			return fail(schema.Reference, ReasonBadChecksum, reference, "MOD-10 check failed")
		}
		return nil

	case record.ReferenceNON:
		if reference != "" {
			return fail(schema.Reference, ReasonNotEmpty, reference, "reference must be empty for reference type NON")
		}
		return nil

	default:
		value := n.Get(schema.ReferenceType)
		return fail(schema.ReferenceType, ReasonBadType, value, "unknown reference type")
	}
}

// checksumFailure maps a checksum engine error to a field failure.
func checksumFailure(field schema.Field, value string, err error) *ValidationError {
	if errors.Is(err, checksum.ErrMalformedInput) {
		return fail(field, ReasonMalformed, value, "contains characters outside the checksum alphabet")
	}
	return fail(field, ReasonBadChecksum, value, "%v", err)
}

// =============================================================================
// ADDRESS CHECKS
// =============================================================================

// checkAddress verifies one party's address block.
func checkAddress(n record.Normalized, block schema.AddressBlock) *ValidationError {
	name := n.Get(block.Name)
	if err := required(block.Name, name, maxNameLen); err != nil {
		return err
	}

	country := n.Get(block.Country)
	if country == "" {
		return fail(block.Country, ReasonMissing, country, "country is empty")
	}
	if length(country) != maxCountryLen {
		return fail(block.Country, ReasonBadLength, country, "country must be a two-letter code")
	}

	switch n.AddressType(block) {
	case record.AddressStructured:
		if err := required(block.Postal, n.Get(block.Postal), maxPostalLen); err != nil {
			return err
		}
		if err := required(block.City, n.Get(block.City), maxCityLen); err != nil {
			return err
		}
		if err := required(block.House, n.Get(block.House), maxHouseLen); err != nil {
			return err
		}
		return optional(block.Street, n.Get(block.Street), maxStreetLine1Len)

	case record.AddressCombined:
		if postal := n.Get(block.Postal); postal != "" {
			return fail(block.Postal, ReasonNotEmpty, postal, "postcode must be empty for combined addresses")
		}
		if city := n.Get(block.City); city != "" {
			return fail(block.City, ReasonNotEmpty, city, "city must be empty for combined addresses")
		}
		if err := required(block.House, n.Get(block.House), maxLine2Len); err != nil {
			return err
		}
		return optional(block.Street, n.Get(block.Street), maxStreetLine1Len)

	default:
		value := n.Get(block.Type)
		return fail(schema.Field(block.Prefix+"_TYPE"), ReasonBadType, value, "address type must be S or K")
	}
}

// =============================================================================
// FREE TEXT CHECKS
// =============================================================================

// freeTextLimits lists the optional fields and their caps, in check order.
var freeTextLimits = []struct {
	field schema.Field
	limit int
}{
	{schema.Message, maxFreeTextLen},
	{schema.AdditionalInfo, maxFreeTextLen},
	{schema.AltProcedure1, maxAltProcedureLen},
	{schema.AltProcedure2, maxAltProcedureLen},
}

// checkFreeText enforces the caps on the optional free-text fields.
func checkFreeText(n record.Normalized) *ValidationError {
	for _, rule := range freeTextLimits {
		if err := optional(rule.field, n.Get(rule.field), rule.limit); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// required fails when value is empty or longer than limit.
func required(field schema.Field, value string, limit int) *ValidationError {
	if value == "" {
		return fail(field, ReasonMissing, value, "mandatory field is empty")
	}
	return optional(field, value, limit)
}

// optional fails when value is longer than limit.
func optional(field schema.Field, value string, limit int) *ValidationError {
	if l := length(value); l > limit {
		return fail(field, ReasonTooLong, value, "exceeds maximum length of %d characters (actual: %d)", limit, l)
	}
	return nil
}

// length counts characters; payloads are UTF-8 encoded.
func length(value string) int {
	return utf8.RuneCountInString(value)
}

// missingOr returns ReasonMissing for empty values and reason otherwise.
func missingOr(value string, reason Reason) Reason {
	if value == "" {
		return ReasonMissing
	}
	return reason
}

// fail builds a ValidationError.
func fail(field schema.Field, reason Reason, value, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Reason:  reason,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	}
}

// FormatResult renders a result for display or logging.
func FormatResult(r *Result) string {
	if r.Valid() {
		return fmt.Sprintf("valid (version %s)", r.Schema.Version())
	}
	return fmt.Sprintf("invalid: %s", r.Err.Error())
}
